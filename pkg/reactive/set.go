package reactive

import (
	"reflect"
	"slices"
)

// Set is a tracked collection of unique members built from a map whose
// values are struct{}. Members are reacted before insertion, so adding the
// same original object twice stores one member.
type Set struct {
	base
	members []any
	index   map[any]struct{}
}

func (rt *Runtime) wrapSet(v any) *Set {
	s := &Set{index: make(map[any]struct{})}
	s.base = base{r: newReactivity(rt, KindSet, s)}
	rt.registry.register(v, s)

	for _, k := range sortedKeys(reflect.ValueOf(v)) {
		member := rt.React(k.Interface())
		if _, dup := s.index[member]; dup {
			continue
		}
		s.members = append(s.members, member)
		s.index[member] = struct{}{}
		rt.link(s.r, member, member)
	}
	return s
}

// Has reports whether v is a member. An object is found by its original or
// its tracked counterpart.
func (s *Set) Has(v any) bool {
	k, ok := s.rt().entryKey(v)
	if !ok {
		return false
	}
	s.rt().track(s.r, k)
	_, ok = s.index[k]
	return ok
}

// Get reports membership as a bool.
func (s *Set) Get(v any) any {
	return s.Has(v)
}

// Add inserts v. Adding an existing member does nothing.
func (s *Set) Add(v any) error {
	rt := s.rt()
	member, ok := rt.entryKey(v)
	if !ok {
		return keyError("add", KindSet, v, ErrUnhashable)
	}
	if _, ok := s.index[member]; ok {
		return nil
	}
	s.members = append(s.members, member)
	s.index[member] = struct{}{}
	rt.link(s.r, member, member)
	rt.notify(s.r, []any{member}, false)
	return nil
}

// Remove deletes v. Removing a missing member does nothing.
func (s *Set) Remove(v any) error {
	rt := s.rt()
	k, ok := rt.entryKey(v)
	if !ok {
		return keyError("remove", KindSet, v, ErrUnhashable)
	}
	if _, ok := s.index[k]; !ok {
		return nil
	}
	rt.unlink(s.r, k)
	delete(s.index, k)
	if i := slices.Index(s.members, k); i >= 0 {
		s.members = slices.Delete(s.members, i, i+1)
	}
	rt.notify(s.r, []any{k}, false)
	s.r.prune(k)
	return nil
}

// Delete is Remove.
func (s *Set) Delete(v any) error {
	return s.Remove(v)
}

// Set adds v when present is true and removes it when false.
func (s *Set) Set(v, present any) error {
	b, ok := present.(bool)
	if !ok {
		return keyError("set", KindSet, v, ErrInvalidValue)
	}
	if b {
		return s.Add(v)
	}
	return s.Remove(v)
}

// Clear removes every member.
func (s *Set) Clear() {
	if len(s.members) == 0 {
		return
	}
	rt := s.rt()
	members := s.members
	for _, m := range members {
		rt.unlink(s.r, m)
	}
	s.members = nil
	clear(s.index)

	rt.notify(s.r, members, false)
	for _, m := range members {
		s.r.prune(m)
	}
}

// Len returns the number of members.
func (s *Set) Len() int {
	s.rt().trackObject(s.r)
	return len(s.members)
}

// Values returns the members in insertion order.
func (s *Set) Values() []any {
	rt := s.rt()
	rt.trackObject(s.r)
	out := slices.Clone(s.members)
	for _, m := range out {
		rt.trackValue(m)
	}
	return out
}

// Range calls fn for each member until fn returns false.
func (s *Set) Range(fn func(member any) bool) {
	for _, m := range s.Values() {
		if !fn(m) {
			return
		}
	}
}
