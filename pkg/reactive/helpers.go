package reactive

import "reflect"

// sameValue reports whether writing b over a would change nothing.
// Comparable values use ==; everything else falls back to reflect.DeepEqual.
func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if reflect.ValueOf(a).Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

// AsObservable returns v as an Observable, or ErrNotTracked.
func AsObservable(v any) (Observable, error) {
	if o, ok := v.(Observable); ok {
		return o, nil
	}
	return nil, ErrNotTracked
}

// Lookup reads key from o and asserts the result to T.
func Lookup[T any](o Observable, key any) (T, bool) {
	v, ok := o.Get(key).(T)
	return v, ok
}

// Peek reads key from o without subscribing the evaluating watcher.
func Peek(o Observable, key any) any {
	return o.Runtime().Isolate(func() any { return o.Get(key) })
}

// Snapshot returns a plain, untracked copy of v: records become
// map[string]any, sequences and sets []any, mappings map[any]any and
// deferred values their resolved value. Cycles map back to the same copy.
// Non-observable values are returned unchanged.
func Snapshot(v any) any {
	o, ok := v.(Observable)
	if !ok {
		return v
	}
	return o.Runtime().Isolate(func() any {
		return snapshot(v, make(map[Observable]any))
	})
}

func snapshot(v any, seen map[Observable]any) any {
	o, ok := v.(Observable)
	if !ok {
		return v
	}
	if out, ok := seen[o]; ok {
		return out
	}

	switch t := o.(type) {
	case *Record:
		out := make(map[string]any, len(t.keys))
		seen[o] = out
		for _, k := range t.keys {
			out[k] = snapshot(t.Get(k), seen)
		}
		return out
	case *Sequence:
		out := make([]any, len(t.items))
		seen[o] = out
		for i, item := range t.items {
			out[i] = snapshot(item, seen)
		}
		return out
	case *Mapping:
		out := make(map[any]any, len(t.keys))
		seen[o] = out
		for _, k := range t.keys {
			out[k] = snapshot(t.entries[k], seen)
		}
		return out
	case *Set:
		out := make([]any, len(t.members))
		seen[o] = out
		for i, m := range t.members {
			out[i] = snapshot(m, seen)
		}
		return out
	case *Deferred:
		return snapshot(t.value, seen)
	}
	return v
}
