package reactive

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"
)

// Mapping is a tracked map keyed by entry identity. Keys and values are
// reacted, so an object key is stored as its tracked counterpart and looking
// it up by the original finds the same entry. Iteration follows insertion
// order, and maps passed to React contribute their entries sorted by their
// printed key.
type Mapping struct {
	base
	keys    []any
	entries map[any]any
}

func (rt *Runtime) wrapMapping(v any) *Mapping {
	m := &Mapping{entries: make(map[any]any)}
	m.base = base{r: newReactivity(rt, KindMapping, m)}
	rt.registry.register(v, m)

	rv := reflect.ValueOf(v)
	for _, k := range sortedKeys(rv) {
		key := rt.React(k.Interface())
		value := rt.React(rv.MapIndex(k).Interface())
		m.keys = append(m.keys, key)
		m.entries[key] = value
		rt.link(m.r, key, value)
	}
	return m
}

// sortedKeys orders map keys deterministically.
func sortedKeys(rv reflect.Value) []reflect.Value {
	keys := rv.MapKeys()
	slices.SortStableFunc(keys, func(a, b reflect.Value) int {
		return cmp.Compare(fmt.Sprint(a.Interface()), fmt.Sprint(b.Interface()))
	})
	return keys
}

// hashable reports whether key can be used as a map key.
func hashable(key any) bool {
	if key == nil {
		return true
	}
	return reflect.ValueOf(key).Comparable()
}

// entryKey resolves v to the key a set or mapping stores it under. Objects
// are reacted, so the original and its tracked counterpart name the same
// entry.
func (rt *Runtime) entryKey(v any) (any, bool) {
	v = rt.React(v)
	return v, hashable(v)
}

// Get returns the value under key, or nil.
func (m *Mapping) Get(key any) any {
	v, _ := m.Lookup(key)
	return v
}

// Lookup returns the value under key and whether it was present.
func (m *Mapping) Lookup(key any) (any, bool) {
	rt := m.rt()
	key, ok := rt.entryKey(key)
	if !ok {
		return nil, false
	}
	rt.track(m.r, key)
	v, ok := m.entries[key]
	if ok {
		rt.trackValue(v)
	}
	return v, ok
}

// Has reports whether key is present.
func (m *Mapping) Has(key any) bool {
	key, ok := m.rt().entryKey(key)
	if !ok {
		return false
	}
	m.rt().track(m.r, key)
	_, ok = m.entries[key]
	return ok
}

// Set stores value under key.
func (m *Mapping) Set(key, value any) error {
	rt := m.rt()
	key, ok := rt.entryKey(key)
	if !ok {
		return keyError("set", KindMapping, key, ErrUnhashable)
	}
	v := rt.React(value)
	prev, exists := m.entries[key]
	if exists && sameValue(prev, v) {
		return nil
	}
	if !exists {
		m.keys = append(m.keys, key)
	}
	m.entries[key] = v
	rt.link(m.r, key, v)
	rt.notify(m.r, []any{key}, false)
	return nil
}

// Delete removes key. Deleting a missing key does nothing.
func (m *Mapping) Delete(key any) error {
	rt := m.rt()
	key, ok := rt.entryKey(key)
	if !ok {
		return keyError("delete", KindMapping, key, ErrUnhashable)
	}
	if _, ok := m.entries[key]; !ok {
		return nil
	}
	rt.unlink(m.r, key)
	delete(m.entries, key)
	if i := slices.Index(m.keys, key); i >= 0 {
		m.keys = slices.Delete(m.keys, i, i+1)
	}
	rt.notify(m.r, []any{key}, false)
	m.r.prune(key)
	return nil
}

// Clear removes every entry, notifying each key's watchers and the object
// watchers once.
func (m *Mapping) Clear() {
	if len(m.keys) == 0 {
		return
	}
	rt := m.rt()
	keys := m.keys
	for _, k := range keys {
		rt.unlink(m.r, k)
	}
	m.keys = nil
	clear(m.entries)

	rt.notify(m.r, keys, false)
	for _, k := range keys {
		m.r.prune(k)
	}
}

// Len returns the number of entries.
func (m *Mapping) Len() int {
	m.rt().trackObject(m.r)
	return len(m.keys)
}

// Keys returns the keys in insertion order.
func (m *Mapping) Keys() []any {
	m.rt().trackObject(m.r)
	return slices.Clone(m.keys)
}

// Values returns the values in key order.
func (m *Mapping) Values() []any {
	rt := m.rt()
	rt.trackObject(m.r)
	out := make([]any, len(m.keys))
	for i, k := range m.keys {
		v := m.entries[k]
		rt.trackValue(v)
		out[i] = v
	}
	return out
}

// Range calls fn for each entry until fn returns false.
func (m *Mapping) Range(fn func(key, value any) bool) {
	m.rt().trackObject(m.r)
	for _, k := range slices.Clone(m.keys) {
		if !fn(k, m.Get(k)) {
			return
		}
	}
}
