// Package reactive provides the reactivity engine for the oz component runtime.
//
// The engine turns plain Go data (records, sequences, mappings, sets and
// deferred values) into observable objects. Reading a property while a
// watcher is evaluating records a dependency; writing the property re-runs
// exactly the watchers that read it.
//
// # Core API
//
// React wraps a value. Wrapping is idempotent and preserves identity:
//
//	state := reactive.React(map[string]any{
//	    "a": 1,
//	    "b": 2,
//	    "sum": reactive.Computed(func(r *reactive.Record) any {
//	        return r.Get("a").(int) + r.Get("b").(int)
//	    }),
//	}).(*reactive.Record)
//
// Watch evaluates a getter, records what it read, and calls the handler
// whenever one of those reads changes:
//
//	stop := reactive.Watch(func() any { return state.Get("sum") }, func(v, old any) {
//	    fmt.Println("sum:", old, "->", v)
//	})
//	defer stop()
//
//	state.Set("a", 5) // prints "sum: 3 -> 7"
//
// Isolate reads reactive state without subscribing anyone:
//
//	snapshot := reactive.Isolate(func() any { return state.Get("sum") })
//
// # Accessors
//
// Go has no property traps, so every tracked value is an explicit accessor
// implementing Observable (Get, Set, Delete, Has, Len). The concrete types
// add kind-specific operations: Sequence.Push and Splice, Mapping.Clear,
// Set.Add, Deferred.Resolved and so on.
//
// # Deep watching
//
// Storing a tracked object inside another links the two. A change inside the
// child is re-announced on the parent's key as a deep notification, which
// only watchers created with Deep() receive.
//
// # Threading
//
// A Runtime is confined to one goroutine and takes no locks. Deferred values
// settle through the runtime's task queue: the owning goroutine runs queued
// tasks with Run, Step or Drain.
package reactive
