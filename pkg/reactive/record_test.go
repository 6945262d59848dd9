package reactive

import (
	"errors"
	"slices"
	"testing"
)

type profile struct {
	Name   string
	Age    int    `reactive:"age"`
	ID     string `reactive:"id,readonly"`
	Skip   int    `reactive:"-"`
	secret string
}

func TestRecordFromStruct(t *testing.T) {
	rt := newTestRuntime(t)
	p := &profile{Name: "ada", Age: 36, ID: "u1", Skip: 1, secret: "x"}

	rec := rt.React(p).(*Record)
	want := []string{"Name", "age", "id"}
	if got := rec.Keys(); !slices.Equal(got, want) {
		t.Errorf("expected keys %v, got %v", want, got)
	}
	if rec.Get("age") != 36 {
		t.Errorf("expected age 36, got %v", rec.Get("age"))
	}
	if !rec.IsReadOnly("id") {
		t.Error("expected id to be read-only")
	}
	if rt.React(p) != any(rec) {
		t.Error("expected the same struct pointer to map to the same record")
	}
}

func TestRecordReadOnly(t *testing.T) {
	rt := newTestRuntime(t)
	frozen := map[string]any{"inner": 1}
	rec := rt.React(map[string]any{
		"const": Const(frozen),
	}).(*Record)

	raw, ok := rec.Get("const").(map[string]any)
	if !ok {
		t.Fatalf("expected raw map, got %T", rec.Get("const"))
	}
	raw["inner"] = 2
	if frozen["inner"] != 2 {
		t.Error("expected read-only value to be the original map")
	}

	err := rec.Set("const", 1)
	if !errors.Is(err, ErrReadOnly) {
		t.Errorf("expected ErrReadOnly, got %v", err)
	}
	var keyErr *KeyError
	if !errors.As(err, &keyErr) || keyErr.Op != "set" || keyErr.Key != "const" {
		t.Errorf("expected KeyError for set const, got %#v", err)
	}

	if err := rec.Delete("const"); !errors.Is(err, ErrReadOnly) {
		t.Errorf("expected ErrReadOnly on delete, got %v", err)
	}
}

func TestRecordInvalidKey(t *testing.T) {
	rt := newTestRuntime(t)
	rec := rt.React(map[string]any{}).(*Record)

	if err := rec.Set(1, "x"); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("expected ErrInvalidKey, got %v", err)
	}
	if err := rec.Delete(1); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("expected ErrInvalidKey, got %v", err)
	}
	if rec.Get(1) != nil {
		t.Error("expected nil for non-string key")
	}
}

func TestRecordAddAndDelete(t *testing.T) {
	rt := newTestRuntime(t)
	rec := rt.React(map[string]any{"a": 1}).(*Record)

	var missing, size counter
	rt.Watch(func() any { return rec.Get("b") }, missing.handle)
	rt.Watch(func() any { return rec.Len() }, size.handle)

	rec.Set("b", 2)
	if missing.calls != 1 || missing.last != 2 {
		t.Errorf("expected watcher of missing key to fire with 2, got calls=%d last=%v", missing.calls, missing.last)
	}
	if size.calls != 1 || size.last != 2 {
		t.Errorf("expected size watcher to fire with 2, got calls=%d last=%v", size.calls, size.last)
	}

	rec.Delete("b")
	if missing.calls != 2 || missing.last != nil {
		t.Errorf("expected delete to notify with nil, got calls=%d last=%v", missing.calls, missing.last)
	}
	if rec.Has("b") {
		t.Error("expected b to be gone")
	}

	if err := rec.Delete("nope"); err != nil {
		t.Errorf("expected delete of missing key to succeed, got %v", err)
	}
	if size.calls != 2 {
		t.Errorf("expected delete of missing key to be silent, got %d size calls", size.calls)
	}
}

func TestRecordDeletePrunesProperty(t *testing.T) {
	rt := newTestRuntime(t)
	rec := rt.React(map[string]any{"a": 1}).(*Record)

	stop := rt.Watch(func() any { return rec.Get("a") }, nil)
	stop()
	rec.Delete("a")

	if _, ok := rec.rx().properties["a"]; ok {
		t.Error("expected property record to be pruned")
	}
}

func TestRecordRedefineComputed(t *testing.T) {
	rt := newTestRuntime(t)
	rec := rt.React(map[string]any{"a": 2}).(*Record)

	rec.Set("sq", Computed(func(r *Record) any { return r.Get("a").(int) * r.Get("a").(int) }))
	if !rec.IsComputed("sq") {
		t.Fatal("expected sq to be computed")
	}

	var h counter
	rt.Watch(func() any { return rec.Get("sq") }, h.handle)

	rec.Set("a", 3)
	if h.last != 9 {
		t.Errorf("expected 9, got %v", h.last)
	}

	rec.Set("sq", 0)
	if rec.IsComputed("sq") || h.last != 0 {
		t.Errorf("expected sq to become stored 0, got %v", h.last)
	}
}

func TestRecordReplacedComputedDropsDependencies(t *testing.T) {
	rt := newTestRuntime(t)
	rec := rt.React(map[string]any{"a": 1, "b": 10}).(*Record)

	rec.Set("c", Computed(func(r *Record) any { return r.Get("a") }))
	var h counter
	rt.Watch(func() any { return rec.Get("c") }, h.handle)

	rec.Set("c", Computed(func(r *Record) any { return r.Get("b") }))
	if h.calls != 1 || h.last != 10 {
		t.Fatalf("expected redefinition to fire once with 10, got calls=%d last=%v", h.calls, h.last)
	}

	rec.Set("a", 2)
	if h.calls != 1 {
		t.Errorf("expected a to be forgotten after redefinition, got %d calls", h.calls)
	}
	rec.Set("b", 11)
	if h.calls != 2 || h.last != 11 {
		t.Errorf("expected b to drive c, got calls=%d last=%v", h.calls, h.last)
	}
}

func TestRecordDeletedComputedDropsDependencies(t *testing.T) {
	rt := newTestRuntime(t)
	rec := rt.React(map[string]any{"a": 1}).(*Record)

	rec.Set("c", Computed(func(r *Record) any { return r.Get("a") }))
	var h counter
	rt.Watch(func() any { return rec.Get("c") }, h.handle)

	rec.Delete("c")
	rec.Set("c", 5)
	if h.calls != 2 || h.last != 5 {
		t.Fatalf("expected delete and store to fire, got calls=%d last=%v", h.calls, h.last)
	}

	rec.Set("a", 2)
	if h.calls != 2 {
		t.Errorf("expected a to be forgotten after delete, got %d calls", h.calls)
	}
	if _, ok := rec.r.caches["c"]; ok {
		t.Error("expected no cache frame for a stored key")
	}
}

func TestRecordComputedPanicDoesNotCache(t *testing.T) {
	rt := newTestRuntime(t)
	fail := true
	rec := rt.React(map[string]any{
		"c": Computed(func(*Record) any {
			if fail {
				panic("not ready")
			}
			return "ok"
		}),
	}).(*Record)

	func() {
		defer func() { _ = recover() }()
		rec.Get("c")
	}()

	fail = false
	if got := rec.Get("c"); got != "ok" {
		t.Errorf("expected recomputation after panic, got %v", got)
	}
}

func TestRecordRange(t *testing.T) {
	rt := newTestRuntime(t)
	rec := rt.React(map[string]any{"b": 2, "a": 1, "c": 3}).(*Record)

	var keys []string
	rec.Range(func(k string, _ any) bool {
		keys = append(keys, k)
		return k != "b"
	})
	if !slices.Equal(keys, []string{"a", "b"}) {
		t.Errorf("expected early stop after b, got %v", keys)
	}
}

func TestLookup(t *testing.T) {
	rt := newTestRuntime(t)
	rec := rt.React(map[string]any{"name": "oz"}).(*Record)

	name, ok := Lookup[string](rec, "name")
	if !ok || name != "oz" {
		t.Errorf("expected oz, got %q (%v)", name, ok)
	}
	if _, ok := Lookup[int](rec, "name"); ok {
		t.Error("expected type mismatch to report false")
	}

	if _, err := AsObservable(1); !errors.Is(err, ErrNotTracked) {
		t.Errorf("expected ErrNotTracked, got %v", err)
	}
}
