package reactive

import (
	"reflect"
	"slices"
	"strings"
)

// Computed is a getter slot on a Record. Its result is memoized and
// recomputed only after something it read changes. A plain
// func(*Record) any stored in a record is treated the same way.
type Computed func(self *Record) any

// ReadOnly marks a record value that is stored as-is: it is never made
// reactive and the slot rejects writes and deletes.
type ReadOnly struct {
	Value any
}

// Const wraps v as a read-only record value.
func Const(v any) ReadOnly {
	return ReadOnly{Value: v}
}

type slotKind uint8

const (
	slotStored slotKind = iota
	slotReadOnly
	slotComputed
)

type slot struct {
	kind    slotKind
	value   any
	compute Computed
}

// Record is a tracked string-keyed object. It is built from a map[string]any
// or from a pointer to a struct. Struct inputs contribute their exported
// fields, renamed or skipped with a `reactive:"name,readonly"` or
// `reactive:"-"` tag. Writes go to the record, not to the original value.
type Record struct {
	base
	keys  []string
	slots map[string]*slot
}

func (rt *Runtime) wrapRecord(v any) *Record {
	rec := &Record{slots: make(map[string]*slot)}
	rec.base = base{r: newReactivity(rt, KindRecord, rec)}

	// Register before recursing so cycles resolve to rec.
	rt.registry.register(v, rec)

	if m, ok := v.(map[string]any); ok {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			rec.put(k, rec.slotFor(m[k]))
		}
		return rec
	}

	rv := reflect.ValueOf(v).Elem()
	rtyp := rv.Type()
	for i := range rtyp.NumField() {
		field := rtyp.Field(i)
		if !field.IsExported() {
			continue
		}
		name, readonly, skip := parseTag(field)
		if skip {
			continue
		}
		value := rv.Field(i).Interface()
		if readonly {
			rec.put(name, &slot{kind: slotReadOnly, value: value})
			continue
		}
		rec.put(name, rec.slotFor(value))
	}
	return rec
}

// parseTag reads the `reactive` struct tag.
func parseTag(field reflect.StructField) (name string, readonly, skip bool) {
	name = field.Name
	tag, ok := field.Tag.Lookup("reactive")
	if !ok {
		return name, false, false
	}
	if tag == "-" {
		return "", false, true
	}
	parts := strings.Split(tag, ",")
	if parts[0] != "" {
		name = parts[0]
	}
	for _, opt := range parts[1:] {
		if strings.TrimSpace(opt) == "readonly" {
			readonly = true
		}
	}
	return name, readonly, false
}

// slotFor classifies a value written to the record.
func (rec *Record) slotFor(value any) *slot {
	switch v := value.(type) {
	case Computed:
		return &slot{kind: slotComputed, compute: v}
	case func(*Record) any:
		return &slot{kind: slotComputed, compute: Computed(v)}
	case ReadOnly:
		return &slot{kind: slotReadOnly, value: v.Value}
	}
	v := rec.rt().React(value)
	if d, ok := v.(*Deferred); ok && d.settled && !d.rejected {
		v = d.value
	}
	return &slot{kind: slotStored, value: v}
}

// put installs s under name and links stored children. A computed slot
// being replaced stops computing.
func (rec *Record) put(name string, s *slot) {
	if _, exists := rec.slots[name]; !exists {
		rec.keys = append(rec.keys, name)
	} else {
		rec.rt().uncache(rec.r, name)
	}
	rec.slots[name] = s
	if s.kind != slotStored {
		rec.rt().unlink(rec.r, name)
		return
	}
	rec.rt().link(rec.r, name, s.value)

	// A pending deferred is replaced by its value once it resolves, unless
	// the key has been written in the meantime.
	if d, ok := s.value.(*Deferred); ok && !d.settled {
		d.whenSettled(func() {
			if rec.slots[name] != s || d.rejected {
				return
			}
			if err := rec.Set(name, d.value); err != nil {
				rec.rt().logger.Debug("reactive: storing resolved value failed", "key", name, "error", err)
			}
		})
	}
}

// Get returns the value stored under key, which must be a string. Missing
// keys return nil but are still tracked, so a watcher is notified when the
// key is added later.
func (rec *Record) Get(key any) any {
	name, ok := key.(string)
	if !ok {
		return nil
	}
	rt := rec.rt()
	rt.track(rec.r, name)

	s := rec.slots[name]
	if s == nil {
		return nil
	}
	switch s.kind {
	case slotReadOnly:
		return s.value
	case slotComputed:
		compute := s.compute
		return rt.computed(rec.r, name, func() any { return compute(rec) })
	}
	rt.trackValue(s.value)
	return s.value
}

// Set stores value under key. Passing a Computed or a func(*Record) any
// defines a computed slot; passing a ReadOnly defines a read-only slot.
// Writing a value identical to the current one does nothing.
func (rec *Record) Set(key, value any) error {
	name, ok := key.(string)
	if !ok {
		return keyError("set", KindRecord, key, ErrInvalidKey)
	}
	prev := rec.slots[name]
	if prev != nil && prev.kind == slotReadOnly {
		return keyError("set", KindRecord, name, ErrReadOnly)
	}

	next := rec.slotFor(value)
	if prev != nil && prev.kind == slotStored && next.kind == slotStored && sameValue(prev.value, next.value) {
		return nil
	}

	rec.put(name, next)
	rec.r.invalidate(name)
	rec.rt().notify(rec.r, []any{name}, false)
	return nil
}

// Delete removes key. Deleting a missing key does nothing.
func (rec *Record) Delete(key any) error {
	name, ok := key.(string)
	if !ok {
		return keyError("delete", KindRecord, key, ErrInvalidKey)
	}
	s := rec.slots[name]
	if s == nil {
		return nil
	}
	if s.kind == slotReadOnly {
		return keyError("delete", KindRecord, name, ErrReadOnly)
	}

	rt := rec.rt()
	rt.unlink(rec.r, name)
	rt.uncache(rec.r, name)
	delete(rec.slots, name)
	if i := slices.Index(rec.keys, name); i >= 0 {
		rec.keys = slices.Delete(rec.keys, i, i+1)
	}
	rt.notify(rec.r, []any{name}, false)
	rec.r.prune(name)
	return nil
}

// Has reports whether key is present.
func (rec *Record) Has(key any) bool {
	name, ok := key.(string)
	if !ok {
		return false
	}
	rec.rt().track(rec.r, name)
	_, ok = rec.slots[name]
	return ok
}

// Len returns the number of keys.
func (rec *Record) Len() int {
	rec.rt().trackObject(rec.r)
	return len(rec.keys)
}

// Keys returns the keys in insertion order.
func (rec *Record) Keys() []string {
	rec.rt().trackObject(rec.r)
	return slices.Clone(rec.keys)
}

// Range calls fn for each key in insertion order until fn returns false.
func (rec *Record) Range(fn func(key string, value any) bool) {
	rec.rt().trackObject(rec.r)
	for _, k := range slices.Clone(rec.keys) {
		if !fn(k, rec.Get(k)) {
			return
		}
	}
}

// IsReadOnly reports whether key holds a read-only slot.
func (rec *Record) IsReadOnly(key string) bool {
	s := rec.slots[key]
	return s != nil && s.kind == slotReadOnly
}

// IsComputed reports whether key holds a computed slot.
func (rec *Record) IsComputed(key string) bool {
	s := rec.slots[key]
	return s != nil && s.kind == slotComputed
}
