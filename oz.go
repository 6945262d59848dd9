// Package oz provides the public API for the oz reactivity engine.
//
// This is the recommended import for most applications:
//
//	import "github.com/vango-dev/oz"
//
// Usage:
//
//	state := oz.React(map[string]any{"count": 1}).(*oz.Record)
//	stop := oz.Watch(func() any { return state.Get("count") }, func(n, o any) {
//	    fmt.Println(o, "->", n)
//	})
//	defer stop()
//	state.Set("count", 2)
package oz

import (
	"github.com/vango-dev/oz/pkg/reactive"
)

// =============================================================================
// Runtime
// =============================================================================

// Runtime owns the tracking registry and the watcher stack. It is
// confined to one goroutine.
type Runtime = reactive.Runtime

// Option configures a Runtime.
type Option = reactive.Option

// Stats is a point-in-time view of a runtime.
type Stats = reactive.Stats

// New creates a runtime.
var New = reactive.New

// Default returns the package-level runtime used by React, Watch and Isolate.
var Default = reactive.Default

// SetDefault replaces the package-level runtime.
var SetDefault = reactive.SetDefault

var (
	WithLogger    = reactive.WithLogger
	WithObserver  = reactive.WithObserver
	WithOpaque    = reactive.WithOpaque
	WithQueueSize = reactive.WithQueueSize
)

// =============================================================================
// Reactive primitives
// =============================================================================

// React returns the tracked counterpart of v on the default runtime.
// Primitive and opaque values are returned unchanged.
func React(v any) any {
	return reactive.React(v)
}

// Watch runs getter under tracking and calls handler whenever anything it
// read changes. The returned function stops the watcher.
//
// Example:
//
//	stop := oz.Watch(func() any { return todos.Len() }, func(n, o any) {
//	    log.Printf("todos: %v -> %v", o, n)
//	}, oz.Immediate())
func Watch(getter func() any, handler Handler, opts ...WatchOption) Unsubscribe {
	return reactive.Watch(getter, handler, opts...)
}

// Isolate runs fn without recording dependencies for the enclosing watcher.
func Isolate(fn func() any) any {
	return reactive.Isolate(fn)
}

type (
	Handler     = reactive.Handler
	Unsubscribe = reactive.Unsubscribe
	WatchOption = reactive.WatchOption
)

var (
	Deep      = reactive.Deep
	Name      = reactive.Name
	Immediate = reactive.Immediate
)

// =============================================================================
// Containers
// =============================================================================

type (
	Observable = reactive.Observable
	Record     = reactive.Record
	Sequence   = reactive.Sequence
	Mapping    = reactive.Mapping
	Set        = reactive.Set
	Deferred   = reactive.Deferred
	Promise    = reactive.Promise
	Future     = reactive.Future
	Computed   = reactive.Computed
	ReadOnly   = reactive.ReadOnly
	Opaque     = reactive.Opaque
	Kind       = reactive.Kind
)

const (
	KindPrimitive = reactive.KindPrimitive
	KindOpaque    = reactive.KindOpaque
	KindRecord    = reactive.KindRecord
	KindSequence  = reactive.KindSequence
	KindMapping   = reactive.KindMapping
	KindSet       = reactive.KindSet
	KindDeferred  = reactive.KindDeferred
)

var (
	Const      = reactive.Const
	NewPromise = reactive.NewPromise
	KindOf     = reactive.KindOf
	IsTracked  = reactive.IsTracked
	Snapshot   = reactive.Snapshot
	Peek       = reactive.Peek
)

// =============================================================================
// Observation
// =============================================================================

type (
	Event        = reactive.Event
	EventType    = reactive.EventType
	Observer     = reactive.Observer
	ObserverFunc = reactive.ObserverFunc
)

const (
	EventTrack      = reactive.EventTrack
	EventWatch      = reactive.EventWatch
	EventUnwatch    = reactive.EventUnwatch
	EventNotify     = reactive.EventNotify
	EventInvalidate = reactive.EventInvalidate
	EventSettle     = reactive.EventSettle
)

// =============================================================================
// Errors
// =============================================================================

type KeyError = reactive.KeyError

var (
	ErrReadOnly     = reactive.ErrReadOnly
	ErrInvalidKey   = reactive.ErrInvalidKey
	ErrInvalidValue = reactive.ErrInvalidValue
	ErrOutOfRange   = reactive.ErrOutOfRange
	ErrUnhashable   = reactive.ErrUnhashable
	ErrEmpty        = reactive.ErrEmpty
	ErrNotTracked   = reactive.ErrNotTracked
	ErrClosed       = reactive.ErrClosed
)
