package reactive

import "time"

// EventType identifies a runtime event.
type EventType uint8

const (
	EventTrack EventType = iota
	EventWatch
	EventUnwatch
	EventNotify
	EventInvalidate
	EventSettle
)

func (t EventType) String() string {
	switch t {
	case EventTrack:
		return "track"
	case EventWatch:
		return "watch"
	case EventUnwatch:
		return "unwatch"
	case EventNotify:
		return "notify"
	case EventInvalidate:
		return "invalidate"
	case EventSettle:
		return "settle"
	default:
		return "unknown"
	}
}

// Event describes something the runtime did. Fields not relevant to the
// event type are zero.
type Event struct {
	Type      EventType
	Kind      Kind
	Watcher   string
	WatcherID uint64
	Keys      []any
	Deep      bool

	// Batch is the number of frames collected by a notification and Fired
	// the number that actually ran.
	Batch int
	Fired int

	Duration time.Duration
	Time     time.Time

	// Err is the rejection reason of a settled deferred value.
	Err error
}

// Observer receives runtime events on the runtime goroutine. Observers must
// not read or write tracked values.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (fn ObserverFunc) Observe(e Event) { fn(e) }

// AddObserver registers o. Call it from the runtime goroutine.
func (rt *Runtime) AddObserver(o Observer) {
	if o != nil {
		rt.observers = append(rt.observers, o)
	}
}

func (rt *Runtime) emit(e Event) {
	if len(rt.observers) == 0 {
		return
	}
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	for _, o := range rt.observers {
		o.Observe(e)
	}
}
