package reactive

import (
	"errors"
	"slices"
	"testing"
)

func TestMappingScenario(t *testing.T) {
	rt := newTestRuntime(t)
	m := rt.React(map[string]int{"x": 1}).(*Mapping)

	var h counter
	m.WatchKey("x", h.handle)

	m.Set("x", 2)
	if h.calls != 1 || h.last != 2 {
		t.Errorf("expected x watcher to fire with 2, got calls=%d last=%v", h.calls, h.last)
	}

	m.Set("y", 9)
	if h.calls != 1 {
		t.Errorf("expected y to leave x watcher alone, got %d calls", h.calls)
	}
}

func TestMappingObjectWatcher(t *testing.T) {
	rt := newTestRuntime(t)
	m := rt.React(map[int]string{1: "one"}).(*Mapping)

	var whole, one counter
	m.Watch(whole.handle)
	rt.Watch(func() any { return m.Get(1) }, one.handle)

	m.Set(2, "two")
	if whole.calls != 1 {
		t.Errorf("expected set of new key to fire object watcher, got %d", whole.calls)
	}

	m.Set(1, "uno")
	if one.calls != 1 || one.last != "uno" {
		t.Errorf("expected key 1 watcher to fire with uno, got calls=%d last=%v", one.calls, one.last)
	}

	if got := m.Keys(); !slices.Equal(got, []any{1, 2}) {
		t.Errorf("expected keys [1 2], got %v", got)
	}
}

func TestMappingDeleteAndClear(t *testing.T) {
	rt := newTestRuntime(t)
	m := rt.React(map[string]int{"a": 1, "b": 2}).(*Mapping)

	var a, size counter
	rt.Watch(func() any { return m.Has("a") }, a.handle)
	rt.Watch(func() any { return m.Len() }, size.handle)

	if err := m.Delete("missing"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if size.calls != 0 {
		t.Errorf("expected missing delete to be silent, got %d", size.calls)
	}

	m.Delete("a")
	if a.calls != 1 || a.last != false {
		t.Errorf("expected has(a) to become false, got calls=%d last=%v", a.calls, a.last)
	}

	m.Clear()
	if size.calls != 2 || size.last != 0 {
		t.Errorf("expected clear to report size 0, got calls=%d last=%v", size.calls, size.last)
	}
	m.Clear()
	if size.calls != 2 {
		t.Errorf("expected clearing an empty mapping to be silent, got %d", size.calls)
	}
}

func TestMappingUnhashableKey(t *testing.T) {
	type pair struct{ Parts []int }
	rt := newTestRuntime(t)
	m := rt.React(map[any]any{}).(*Mapping)

	err := m.Set(pair{Parts: []int{1}}, "x")
	if !errors.Is(err, ErrUnhashable) {
		t.Errorf("expected ErrUnhashable, got %v", err)
	}
	if m.Has(pair{Parts: []int{1}}) {
		t.Error("expected unhashable key to be absent")
	}
}

func TestMappingObjectKeys(t *testing.T) {
	rt := newTestRuntime(t)
	m := rt.React(map[any]any{}).(*Mapping)

	key := map[string]any{"id": 1}
	if err := m.Set(key, "first"); err != nil {
		t.Fatalf("expected an object key to be accepted, got %v", err)
	}
	if got := m.Get(key); got != "first" {
		t.Errorf("expected lookup by the original to find the entry, got %v", got)
	}
	tracked := rt.React(key)
	if !m.Has(tracked) {
		t.Error("expected lookup by the tracked key to find the entry")
	}
	if _, ok := m.Keys()[0].(*Record); !ok {
		t.Errorf("expected the stored key to be the tracked record, got %T", m.Keys()[0])
	}

	var h counter
	rt.Watch(func() any { return m.Get(key) }, h.handle)
	m.Set(tracked, "second")
	if h.calls != 1 || h.last != "second" {
		t.Errorf("expected one entry for both forms of the key, got calls=%d last=%v", h.calls, h.last)
	}

	if m.Has(map[string]any{"id": 1}) {
		t.Error("expected an equal but distinct object to miss")
	}
	if err := m.Delete(key); err != nil || m.Len() != 0 {
		t.Errorf("expected delete by the original to remove the entry, err=%v len=%d", err, m.Len())
	}
}

func TestMappingValuesAreReacted(t *testing.T) {
	rt := newTestRuntime(t)
	m := rt.React(map[string]any{}).(*Record)
	inner := rt.React(map[int][]string{1: {"a"}}).(*Mapping)

	m.Set("inner", inner)
	seq, ok := inner.Get(1).(*Sequence)
	if !ok {
		t.Fatalf("expected nested slice to be a Sequence, got %T", inner.Get(1))
	}

	var deep counter
	m.Watch(deep.handle, Deep())
	seq.Push("b")
	if deep.calls != 1 {
		t.Errorf("expected change two levels down to reach deep watcher, got %d", deep.calls)
	}
}
