package reactive

import (
	"runtime"
	"testing"
	"time"
)

func TestRegistryLookup(t *testing.T) {
	rt := newTestRuntime(t)
	m := map[string]any{"a": 1}
	obs := rt.React(m).(*Record)

	got, ok := rt.registry.lookup(m)
	if !ok || got != Observable(obs) {
		t.Fatalf("expected lookup to return the record, got %v %v", got, ok)
	}

	if _, ok := rt.registry.lookup(map[string]any{"a": 1}); ok {
		t.Error("expected an equal but distinct map to miss")
	}
}

func TestRegistrySkipsValuesWithoutAddress(t *testing.T) {
	rt := newTestRuntime(t)
	var nilMap map[string]any

	first := rt.React(nilMap)
	second := rt.React(nilMap)
	if first == second {
		t.Error("expected nil maps to produce distinct records")
	}
	if rt.Stats().Tracked != 0 {
		t.Errorf("expected nothing registered, got %d", rt.Stats().Tracked)
	}
}

func TestRegistryEvictsCollectedOriginals(t *testing.T) {
	rt := newTestRuntime(t)

	func() {
		m := map[string]any{"a": 1, "b": []int{1, 2, 3}}
		rt.React(m)
	}()
	if rt.Stats().Tracked == 0 {
		t.Fatal("expected entries to be registered")
	}

	deadline := time.Now().Add(5 * time.Second)
	for rt.Stats().Tracked > 0 && time.Now().Before(deadline) {
		runtime.GC()
		time.Sleep(10 * time.Millisecond)
	}
	if n := rt.Stats().Tracked; n != 0 {
		t.Errorf("expected registry to drop collected originals, %d entries left", n)
	}
}

type staticPoint struct{ X, Y int }

var (
	globalPoint  staticPoint
	staticRecord = &staticPoint{X: 2}
	staticItems  = []any{1, 2, 3}
)

func TestRegistryPackageLevelValues(t *testing.T) {
	rt := newTestRuntime(t)

	byVar := rt.React(&globalPoint)
	if _, ok := byVar.(*Record); !ok {
		t.Fatalf("expected a record for a package-level variable, got %T", byVar)
	}
	if rt.React(&globalPoint) != byVar {
		t.Error("expected reacting the same variable twice to return one record")
	}

	byLiteral := rt.React(staticRecord).(*Record)
	if got := byLiteral.Get("X"); got != 2 {
		t.Errorf("expected X=2, got %v", got)
	}
	if rt.React(staticRecord) != Observable(byLiteral) {
		t.Error("expected reacting the same literal twice to return one record")
	}

	seq := rt.React(staticItems).(*Sequence)
	if seq.Len() != 3 || rt.React(staticItems) != Observable(seq) {
		t.Error("expected a package-level slice to keep its identity")
	}

	runtime.GC()
	if got, ok := rt.registry.lookup(staticRecord); !ok || got != Observable(byLiteral) {
		t.Error("expected static entries to survive a collection")
	}
}
