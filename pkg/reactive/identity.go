package reactive

import (
	"reflect"
	"runtime"
	"sync"
	"unsafe"
	"weak"
)

// identityKey is the address-based identity of an original value. Slices
// include their length because two slices over the same backing array are
// different sequences.
type identityKey struct {
	typ reflect.Type
	ptr uintptr
	n   int
}

type identityEntry struct {
	key     identityKey
	ref     weak.Pointer[byte]
	tracked Observable

	// static entries belong to memory the collector does not manage
	// (package-level variables and linker-allocated literals). They hold
	// no weak handle and are never evicted.
	static bool
}

// registry maps originals to their tracked counterparts without keeping the
// originals alive. An entry is evicted by a runtime cleanup once its original
// is collected; lookups also verify the weak pointer so a recycled address
// never resolves to a stale observable. Originals outside the heap are
// kept in static entries keyed by address alone.
//
// Cleanups run on a runtime goroutine, so the map is guarded by mu.
type registry struct {
	mu      sync.Mutex
	entries map[identityKey]*identityEntry
}

func newRegistry() *registry {
	return &registry{entries: make(map[identityKey]*identityEntry)}
}

// identityOf returns the identity of v. Values without a stable, non-zero
// sized address have no identity.
func identityOf(v any) (identityKey, unsafe.Pointer, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Chan:
		if rv.IsNil() {
			return identityKey{}, nil, false
		}
		p := rv.UnsafePointer()
		return identityKey{typ: rv.Type(), ptr: uintptr(p)}, p, true
	case reflect.Pointer:
		if rv.IsNil() || rv.Type().Elem().Size() == 0 {
			return identityKey{}, nil, false
		}
		p := rv.UnsafePointer()
		return identityKey{typ: rv.Type(), ptr: uintptr(p)}, p, true
	case reflect.Slice:
		if rv.Cap() == 0 || rv.Type().Elem().Size() == 0 {
			return identityKey{}, nil, false
		}
		p := rv.UnsafePointer()
		return identityKey{typ: rv.Type(), ptr: uintptr(p), n: rv.Len()}, p, true
	}
	return identityKey{}, nil, false
}

func (r *registry) register(original any, tracked Observable) {
	key, p, ok := identityOf(original)
	if !ok {
		return
	}
	e := &identityEntry{key: key, tracked: tracked}
	if heap := attachCleanup(p, r, e); heap {
		e.ref = weak.Make((*byte)(p))
	} else {
		e.static = true
	}

	r.mu.Lock()
	r.entries[key] = e
	r.mu.Unlock()
}

// attachCleanup schedules the eviction of e once the object holding p is
// collected. It reports false when p is not heap memory: AddCleanup returns
// the zero Cleanup for package-level data and panics for memory the Go
// runtime did not allocate at all. weak.Make must not be called in either
// case.
func attachCleanup(p unsafe.Pointer, r *registry, e *identityEntry) (heap bool) {
	defer func() {
		if recover() != nil {
			heap = false
		}
	}()
	return runtime.AddCleanup((*byte)(p), r.evict, e) != runtime.Cleanup{}
}

func (r *registry) lookup(original any) (Observable, bool) {
	key, p, ok := identityOf(original)
	if !ok {
		return nil, false
	}

	r.mu.Lock()
	e := r.entries[key]
	r.mu.Unlock()

	if e == nil {
		return nil, false
	}
	if !e.static && e.ref.Value() != (*byte)(p) {
		return nil, false
	}
	return e.tracked, true
}

// evict removes e unless a newer registration reused the key.
func (r *registry) evict(e *identityEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.entries[e.key] == e {
		delete(r.entries, e.key)
	}
}

// Len returns the number of live identity entries.
func (r *registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
