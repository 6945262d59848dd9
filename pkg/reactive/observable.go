package reactive

// Observable is a tracked value. Reads through Get, Has and Len register the
// evaluating watcher as a dependent; Set and Delete notify dependents
// synchronously before returning.
//
// Key types depend on the kind: records use string keys, sequences use int
// indices (plus "length"), mappings use the map's key values, sets use
// members, and deferred values expose "resolved", "value", "rejected" and
// "error".
type Observable interface {
	Kind() Kind
	Get(key any) any
	Set(key, value any) error
	Delete(key any) error
	Has(key any) bool
	Len() int

	// Watch subscribes handler to every change of the object. With Deep,
	// changes inside nested tracked values are included.
	Watch(handler Handler, opts ...WatchOption) Unsubscribe

	// WatchKey subscribes handler to the value stored under key.
	WatchKey(key any, handler Handler, opts ...WatchOption) Unsubscribe

	// WatchDependencies calls fn whenever the number of watchers of a key,
	// or of the object as a whole, changes. It runs synchronously on the
	// runtime goroutine and must not read or write tracked values.
	WatchDependencies(fn DependencyFunc) Unsubscribe

	Runtime() *Runtime

	rx() *reactivity
}

// base carries the methods every adapter shares.
type base struct {
	r *reactivity
}

func (b *base) rx() *reactivity { return b.r }
func (b *base) Kind() Kind { return b.r.kind }
func (b *base) Runtime() *Runtime { return b.r.rt }
func (b *base) rt() *Runtime { return b.r.rt }

func (b *base) Watch(handler Handler, opts ...WatchOption) Unsubscribe {
	return b.r.rt.watchObject(b.r, handler, opts)
}

func (b *base) WatchKey(key any, handler Handler, opts ...WatchOption) Unsubscribe {
	return b.r.rt.watchKey(b.r, key, handler, opts)
}

func (b *base) WatchDependencies(fn DependencyFunc) Unsubscribe {
	return b.r.watchDependencies(fn)
}

// IsTracked reports whether v is an observable.
func IsTracked(v any) bool {
	_, ok := v.(Observable)
	return ok
}
