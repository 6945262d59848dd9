package reactive

import "reflect"

// lengthKey is the synthetic key every structural change of a sequence
// notifies.
const lengthKey = "length"

// Sequence is a tracked ordered list built from any slice. Indices are int
// keys; the synthetic "length" key tracks the size.
type Sequence struct {
	base
	items []any
}

func (rt *Runtime) wrapSequence(v any) *Sequence {
	seq := &Sequence{}
	seq.base = base{r: newReactivity(rt, KindSequence, seq)}
	rt.registry.register(v, seq)

	rv := reflect.ValueOf(v)
	seq.items = make([]any, rv.Len())
	for i := range seq.items {
		item := rt.React(rv.Index(i).Interface())
		seq.items[i] = item
		rt.link(seq.r, i, item)
	}
	return seq
}

// Get returns the item at an int index, or the length for "length".
func (seq *Sequence) Get(key any) any {
	switch k := key.(type) {
	case int:
		return seq.At(k)
	case string:
		if k == lengthKey {
			return seq.Len()
		}
	}
	return nil
}

// At returns the item at i, or nil when i is out of range. The index is
// tracked either way.
func (seq *Sequence) At(i int) any {
	rt := seq.rt()
	rt.track(seq.r, i)
	if i < 0 || i >= len(seq.items) {
		return nil
	}
	v := seq.items[i]
	rt.trackValue(v)
	return v
}

// Len returns the number of items and tracks "length".
func (seq *Sequence) Len() int {
	seq.rt().track(seq.r, lengthKey)
	return len(seq.items)
}

// Has reports whether i is a valid index.
func (seq *Sequence) Has(key any) bool {
	switch k := key.(type) {
	case int:
		seq.rt().track(seq.r, k)
		return k >= 0 && k < len(seq.items)
	case string:
		return k == lengthKey
	}
	return false
}

// Set assigns the item at index i. Assigning at Len() appends. Setting
// "length" to an int truncates the sequence or extends it with nil items.
func (seq *Sequence) Set(key, value any) error {
	if key == lengthKey {
		return seq.setLength(value)
	}
	i, ok := key.(int)
	if !ok {
		return keyError("set", KindSequence, key, ErrInvalidKey)
	}
	if i < 0 || i > len(seq.items) {
		return keyError("set", KindSequence, i, ErrOutOfRange)
	}
	if i == len(seq.items) {
		seq.Push(value)
		return nil
	}

	rt := seq.rt()
	v := rt.React(value)
	if sameValue(seq.items[i], v) {
		return nil
	}
	seq.items[i] = v
	rt.link(seq.r, i, v)
	rt.notify(seq.r, []any{i}, false)
	return nil
}

func (seq *Sequence) setLength(value any) error {
	n, ok := value.(int)
	if !ok || n < 0 {
		return keyError("set", KindSequence, lengthKey, ErrInvalidValue)
	}
	switch cur := len(seq.items); {
	case n < cur:
		seq.Splice(n, cur-n)
	case n > cur:
		seq.Splice(cur, 0, make([]any, n-cur)...)
	}
	return nil
}

// Delete removes the item at index i, shifting later items down.
func (seq *Sequence) Delete(key any) error {
	i, ok := key.(int)
	if !ok {
		return keyError("delete", KindSequence, key, ErrInvalidKey)
	}
	if i < 0 || i >= len(seq.items) {
		return keyError("delete", KindSequence, i, ErrOutOfRange)
	}
	seq.Splice(i, 1)
	return nil
}

// Push appends values and returns the new length.
func (seq *Sequence) Push(values ...any) int {
	seq.Splice(len(seq.items), 0, values...)
	return len(seq.items)
}

// Pop removes and returns the last item.
func (seq *Sequence) Pop() (any, bool) {
	if len(seq.items) == 0 {
		return nil, false
	}
	removed := seq.Splice(len(seq.items)-1, 1)
	return removed[0], true
}

// Shift removes and returns the first item.
func (seq *Sequence) Shift() (any, bool) {
	if len(seq.items) == 0 {
		return nil, false
	}
	removed := seq.Splice(0, 1)
	return removed[0], true
}

// Unshift prepends values and returns the new length.
func (seq *Sequence) Unshift(values ...any) int {
	seq.Splice(0, 0, values...)
	return len(seq.items)
}

// Splice removes deleteCount items at start, inserts items in their place
// and returns the removed items. A negative start counts from the end.
//
// Every index whose item changed is notified together with "length" (when
// the size changed) in a single pass, so a watcher depending on several of
// them runs once.
func (seq *Sequence) Splice(start, deleteCount int, items ...any) []any {
	rt := seq.rt()
	n := len(seq.items)

	if start < 0 {
		start = max(n+start, 0)
	}
	start = min(start, n)
	deleteCount = min(max(deleteCount, 0), n-start)
	if deleteCount == 0 && len(items) == 0 {
		return nil
	}

	removed := make([]any, deleteCount)
	copy(removed, seq.items[start:start+deleteCount])

	added := make([]any, len(items))
	for i, v := range items {
		added[i] = rt.React(v)
	}

	old := seq.items
	next := make([]any, 0, n-deleteCount+len(added))
	next = append(next, old[:start]...)
	next = append(next, added...)
	next = append(next, old[start+deleteCount:]...)
	seq.items = next

	var keys []any
	end := max(len(old), len(next))
	for i := start; i < end; i++ {
		if i < len(next) {
			rt.link(seq.r, i, next[i])
		} else {
			rt.unlink(seq.r, i)
		}
		if i >= len(old) || i >= len(next) || !sameValue(old[i], next[i]) {
			keys = append(keys, i)
		}
	}
	if len(old) != len(next) {
		keys = append(keys, lengthKey)
	}

	if len(keys) > 0 {
		rt.notify(seq.r, keys, false)
	}
	for i := len(next); i < len(old); i++ {
		seq.r.prune(i)
	}
	return removed
}

// Values returns a copy of the items. The whole sequence is tracked.
func (seq *Sequence) Values() []any {
	rt := seq.rt()
	rt.trackObject(seq.r)
	rt.track(seq.r, lengthKey)
	out := make([]any, len(seq.items))
	for i, v := range seq.items {
		rt.trackValue(v)
		out[i] = v
	}
	return out
}

// Range calls fn for each item until fn returns false.
func (seq *Sequence) Range(fn func(i int, v any) bool) {
	for i, v := range seq.Values() {
		if !fn(i, v) {
			return
		}
	}
}
