package reactive

import (
	"context"
	"log/slog"
	"sync"
)

// DefaultQueueSize is the capacity of a runtime's task queue.
const DefaultQueueSize = 1024

// Runtime owns the watcher stack, the identity registry and the task queue
// for one reactive world. A Runtime is not safe for concurrent use: every
// read, write and watch must happen on the goroutine driving Run, Step or
// Drain. Other goroutines hand work over with Dispatch.
type Runtime struct {
	stack []*frame
	inert *frame

	registry *registry
	opaque   opaqueSet

	logger    *slog.Logger
	observers []Observer

	tasks     chan func()
	done      chan struct{}
	closeOnce sync.Once

	// ctx parents the waits of pending deferred values; Close cancels it.
	ctx    context.Context
	cancel context.CancelFunc

	watchers int
	frames   uint64
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger. Runtimes log through slog.Default otherwise.
func WithLogger(logger *slog.Logger) Option {
	return func(rt *Runtime) {
		if logger != nil {
			rt.logger = logger
		}
	}
}

// WithObserver adds an observer for runtime events.
func WithObserver(o Observer) Option {
	return func(rt *Runtime) {
		if o != nil {
			rt.observers = append(rt.observers, o)
		}
	}
}

// WithOpaque excludes the dynamic types of samples from tracking.
func WithOpaque(samples ...any) Option {
	return func(rt *Runtime) {
		rt.RegisterOpaque(samples...)
	}
}

// WithQueueSize sets the capacity of the task queue.
func WithQueueSize(n int) Option {
	return func(rt *Runtime) {
		if n > 0 {
			rt.tasks = make(chan func(), n)
		}
	}
}

// New creates a runtime.
func New(opts ...Option) *Runtime {
	rt := &Runtime{
		inert:    &frame{inert: true},
		registry: newRegistry(),
		opaque:   newOpaqueSet(),
		logger:   slog.Default(),
		done:     make(chan struct{}),
	}
	rt.ctx, rt.cancel = context.WithCancel(context.Background())
	for _, opt := range opts {
		opt(rt)
	}
	if rt.tasks == nil {
		rt.tasks = make(chan func(), DefaultQueueSize)
	}
	return rt
}

var (
	defaultMu      sync.Mutex
	defaultRuntime *Runtime
)

// Default returns the process-wide runtime used by the package-level
// functions, creating it on first use.
func Default() *Runtime {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultRuntime == nil {
		defaultRuntime = New()
	}
	return defaultRuntime
}

// SetDefault replaces the runtime returned by Default.
func SetDefault(rt *Runtime) {
	defaultMu.Lock()
	defaultRuntime = rt
	defaultMu.Unlock()
}

// Logger returns the runtime's logger.
func (rt *Runtime) Logger() *slog.Logger {
	return rt.logger
}

// React returns the tracked counterpart of v. Primitive and opaque values and
// values that are already tracked are returned unchanged. Reacting the same
// original twice yields the same observable for as long as the original is
// reachable.
func (rt *Runtime) React(v any) any {
	kind := rt.KindOf(v)
	if !kind.Tracked() {
		return v
	}
	if o, ok := v.(Observable); ok {
		return o
	}
	if o, ok := rt.registry.lookup(v); ok {
		return o
	}

	var o Observable
	switch kind {
	case KindRecord:
		o = rt.wrapRecord(v)
	case KindSequence:
		o = rt.wrapSequence(v)
	case KindMapping:
		o = rt.wrapMapping(v)
	case KindSet:
		o = rt.wrapSet(v)
	case KindDeferred:
		o = rt.wrapDeferred(v)
	default:
		return v
	}

	rt.logger.Debug("reactive: tracking value", "kind", kind)
	rt.emit(Event{Type: EventTrack, Kind: kind})
	return o
}

// Stats is a point-in-time view of a runtime.
type Stats struct {
	Tracked  int `json:"tracked"`
	Watchers int `json:"watchers"`
	Depth    int `json:"depth"`
	Pending  int `json:"pending"`
}

// Stats reports registry size, live watchers, watcher stack depth and queued
// tasks. Call it from the runtime goroutine.
func (rt *Runtime) Stats() Stats {
	return Stats{
		Tracked:  rt.registry.Len(),
		Watchers: rt.watchers,
		Depth:    len(rt.stack),
		Pending:  len(rt.tasks),
	}
}

// React tracks v on the default runtime.
func React(v any) any {
	return Default().React(v)
}

// Watch watches getter on the default runtime.
func Watch(getter func() any, handler Handler, opts ...WatchOption) Unsubscribe {
	return Default().Watch(getter, handler, opts...)
}

// Isolate runs fn untracked on the default runtime.
func Isolate(fn func() any) any {
	return Default().Isolate(fn)
}
