package reactive

// Handler receives the new and previous value of a watched getter. Object
// watchers receive the observable itself as both values.
type Handler func(newValue, oldValue any)

// Unsubscribe stops a watcher. Calling it more than once is a no-op.
type Unsubscribe func()

// frame is one live subscription. A frame is pushed on the runtime's stack
// while its getter evaluates; every tracked read during that time adds the
// frame to the read key's watcher list.
type frame struct {
	id   uint64
	name string

	getter  func() any
	handler Handler

	// deep frames also receive deep notifications and subscribe to the
	// object level of every tracked value they read.
	deep bool

	// cache frames back a computed slot. They fire once and are replaced
	// on the next read.
	cache bool

	// inert frames swallow reads (Isolate, handler bodies).
	inert bool

	// link frames propagate child changes to a parent key.
	link bool

	immediate bool
	stopped   bool

	// runs counts fires; a batch skips a frame that re-ran after the
	// batch was collected.
	runs uint64

	// value is the getter's last result.
	value any

	// target is the object an object-level frame watches.
	target *reactivity

	// owner and key locate the cache entry (cache frames) or the parent
	// slot (link frames).
	owner *reactivity
	key   any

	sources []*watcherList
}

// release removes the frame from every list it joined.
func (f *frame) release() {
	for _, l := range f.sources {
		l.remove(f)
	}
	clear(f.sources)
	f.sources = f.sources[:0]
}

// WatchOption configures a watcher.
type WatchOption interface {
	applyWatch(f *frame)
}

type watchOptionFunc func(*frame)

func (fn watchOptionFunc) applyWatch(f *frame) { fn(f) }

// Deep makes the watcher react to changes inside nested tracked objects it
// reads, not only to the keys themselves.
func Deep() WatchOption {
	return watchOptionFunc(func(f *frame) {
		f.deep = true
	})
}

// Name labels the watcher in observer events.
func Name(name string) WatchOption {
	return watchOptionFunc(func(f *frame) {
		f.name = name
	})
}

// Immediate calls the handler once with the initial value (and a nil old
// value) right after the first evaluation.
func Immediate() WatchOption {
	return watchOptionFunc(func(f *frame) {
		f.immediate = true
	})
}

// nextFrameID numbers frames from 1 within a runtime.
func (rt *Runtime) nextFrameID() uint64 {
	rt.frames++
	return rt.frames
}

func (rt *Runtime) newFrame(getter func() any, handler Handler, opts []WatchOption) *frame {
	f := &frame{
		id:      rt.nextFrameID(),
		getter:  getter,
		handler: handler,
	}
	for _, opt := range opts {
		opt.applyWatch(f)
	}
	return f
}

// Watch evaluates getter inside a new frame and calls handler with the new
// and previous result whenever something the getter read changes.
//
// A panic in getter propagates to the caller after the watcher stack has
// been restored.
func (rt *Runtime) Watch(getter func() any, handler Handler, opts ...WatchOption) Unsubscribe {
	if getter == nil {
		rt.logger.Warn("reactive: Watch called without a getter; nothing to subscribe to")
		return func() {}
	}

	f := rt.newFrame(getter, handler, opts)
	ok := false
	defer func() {
		if !ok {
			f.stopped = true
			f.release()
		}
	}()
	f.value = rt.evaluate(f, getter)
	ok = true
	rt.subscribeResult(f, f.value)
	rt.started(f)

	if f.immediate {
		rt.callHandler(f, f.value, nil)
	}
	return rt.unsubscriber(f)
}

// watchObject subscribes a getter-less frame to the object level of r.
func (rt *Runtime) watchObject(r *reactivity, handler Handler, opts []WatchOption) Unsubscribe {
	f := rt.newFrame(nil, handler, opts)
	f.target = r
	r.watchers.add(f)
	rt.started(f)

	if f.immediate {
		rt.callHandler(f, r.owner, r.owner)
	}
	return rt.unsubscriber(f)
}

// watchKey watches a single key of r through the owner's Get.
func (rt *Runtime) watchKey(r *reactivity, key any, handler Handler, opts []WatchOption) Unsubscribe {
	owner := r.owner
	return rt.Watch(func() any { return owner.Get(key) }, handler, opts...)
}

func (rt *Runtime) started(f *frame) {
	rt.watchers++
	rt.logger.Debug("reactive: watcher started", "id", f.id, "name", f.name, "deep", f.deep)
	rt.emit(Event{Type: EventWatch, WatcherID: f.id, Watcher: f.name, Deep: f.deep})
}

func (rt *Runtime) unsubscriber(f *frame) Unsubscribe {
	return func() {
		if f.stopped {
			return
		}
		f.stopped = true
		f.release()
		rt.watchers--
		rt.emit(Event{Type: EventUnwatch, WatcherID: f.id, Watcher: f.name, Deep: f.deep})
	}
}

// Isolate runs fn without recording any dependency and returns its result.
func (rt *Runtime) Isolate(fn func() any) any {
	return rt.evaluate(rt.inert, fn)
}

// evaluate runs fn with f on top of the watcher stack. The stack is restored
// to its previous depth even if fn panics.
func (rt *Runtime) evaluate(f *frame, fn func() any) any {
	depth := len(rt.stack)
	rt.stack = append(rt.stack, f)
	defer func() {
		clear(rt.stack[depth:])
		rt.stack = rt.stack[:depth]
	}()
	return fn()
}

// evaluating returns the frame reads are attributed to, or nil when reads
// are untracked.
func (rt *Runtime) evaluating() *frame {
	if len(rt.stack) == 0 {
		return nil
	}
	f := rt.stack[len(rt.stack)-1]
	if f.inert {
		return nil
	}
	return f
}

// track records a read of key on r.
func (rt *Runtime) track(r *reactivity, key any) {
	f := rt.evaluating()
	if f == nil {
		return
	}
	r.property(key).watchers.add(f)
}

// trackObject records a read of r as a whole (size, enumeration).
func (rt *Runtime) trackObject(r *reactivity) {
	f := rt.evaluating()
	if f == nil {
		return
	}
	r.watchers.add(f)
}

// trackValue subscribes a deep frame to the object level of a tracked value
// it just read.
func (rt *Runtime) trackValue(v any) {
	f := rt.evaluating()
	if f == nil || !f.deep {
		return
	}
	if o, ok := v.(Observable); ok {
		o.rx().watchers.add(f)
	}
}

// subscribeResult subscribes a deep getter frame to the object it returned.
func (rt *Runtime) subscribeResult(f *frame, v any) {
	if !f.deep {
		return
	}
	if o, ok := v.(Observable); ok {
		o.rx().watchers.add(f)
	}
}

// callHandler runs the handler inside an inert frame so its reads do not
// subscribe whatever frame triggered the write.
func (rt *Runtime) callHandler(f *frame, newValue, oldValue any) {
	if f.handler == nil {
		return
	}
	rt.evaluate(rt.inert, func() any {
		f.handler(newValue, oldValue)
		return nil
	})
}

// cacheFrame creates the frame that evaluates computed key on r. When any of
// its dependencies change it notifies the computed key's own watchers.
func (rt *Runtime) cacheFrame(r *reactivity, key any) *frame {
	f := &frame{id: rt.nextFrameID(), cache: true, owner: r, key: key}
	f.handler = func(_, _ any) {
		rt.notify(r, []any{key}, false)
	}
	return f
}

// computed returns the cached value of key on r, evaluating compute inside a
// cache frame on a miss.
func (rt *Runtime) computed(r *reactivity, key any, compute func() any) any {
	if v, ok := r.cached(key); ok {
		return v
	}
	f := rt.cacheFrame(r, key)
	done := false
	defer func() {
		if !done {
			f.stopped = true
			f.release()
		}
	}()
	v := rt.evaluate(f, compute)
	r.store(key, v)
	done = true

	if prev := r.caches[key]; prev != nil && prev != f {
		prev.stopped = true
		prev.release()
	}
	if r.caches == nil {
		r.caches = make(map[any]*frame)
	}
	r.caches[key] = f
	return v
}

// uncache drops the cached value of key on r and stops the frame that
// computed it, so the old dependencies no longer reach the key.
func (rt *Runtime) uncache(r *reactivity, key any) {
	r.invalidate(key)
	f, ok := r.caches[key]
	if !ok {
		return
	}
	f.stopped = true
	f.release()
	delete(r.caches, key)
}

// link installs a deep frame on child that re-announces child changes on
// parent's key. Any previous link for the key is stopped first.
func (rt *Runtime) link(parent *reactivity, key, child any) {
	rt.unlink(parent, key)
	o, ok := child.(Observable)
	if !ok {
		return
	}
	f := &frame{id: rt.nextFrameID(), deep: true, link: true, target: o.rx(), owner: parent, key: key}
	f.handler = func(_, _ any) {
		rt.notify(parent, []any{key}, true)
	}
	o.rx().watchers.add(f)
	if parent.links == nil {
		parent.links = make(map[any]*frame)
	}
	parent.links[key] = f
}

func (rt *Runtime) unlink(parent *reactivity, key any) {
	f, ok := parent.links[key]
	if !ok {
		return
	}
	f.stopped = true
	f.release()
	delete(parent.links, key)
}
