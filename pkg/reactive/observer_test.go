package reactive

import "testing"

type eventLog struct {
	events []Event
}

func (l *eventLog) Observe(e Event) {
	l.events = append(l.events, e)
}

func (l *eventLog) count(typ EventType) int {
	n := 0
	for _, e := range l.events {
		if e.Type == typ {
			n++
		}
	}
	return n
}

func TestObserverEvents(t *testing.T) {
	log := &eventLog{}
	rt := newTestRuntime(t, WithObserver(log))

	obs := rt.React(map[string]any{
		"a": 1,
		"c": Computed(func(r *Record) any { return r.Get("a") }),
	}).(*Record)
	stop := rt.Watch(func() any { return obs.Get("c") }, nil, Name("c-watcher"))
	obs.Set("a", 2)
	stop()

	if n := log.count(EventTrack); n != 1 {
		t.Errorf("expected 1 track event, got %d", n)
	}
	if n := log.count(EventWatch); n != 1 {
		t.Errorf("expected 1 watch event, got %d", n)
	}
	if n := log.count(EventUnwatch); n != 1 {
		t.Errorf("expected 1 unwatch event, got %d", n)
	}
	if n := log.count(EventInvalidate); n != 1 {
		t.Errorf("expected 1 invalidate event, got %d", n)
	}
	// One notification for "a", one for the computed "c".
	if n := log.count(EventNotify); n != 2 {
		t.Errorf("expected 2 notify events, got %d", n)
	}

	for _, e := range log.events {
		if e.Time.IsZero() {
			t.Errorf("event %s has no time", e.Type)
		}
		if e.Type == EventWatch && e.Watcher != "c-watcher" {
			t.Errorf("expected watcher name, got %q", e.Watcher)
		}
	}
}

func TestObserverFunc(t *testing.T) {
	rt := newTestRuntime(t)
	var types []EventType
	rt.AddObserver(ObserverFunc(func(e Event) { types = append(types, e.Type) }))

	rt.React([]int{1})
	if len(types) != 1 || types[0] != EventTrack {
		t.Errorf("expected a single track event, got %v", types)
	}
	if EventSettle.String() != "settle" {
		t.Errorf("unexpected name %q", EventSettle.String())
	}
}

func TestWatcherIDsPerRuntime(t *testing.T) {
	for i := 0; i < 2; i++ {
		log := &eventLog{}
		rt := newTestRuntime(t, WithObserver(log))
		rt.Watch(func() any { return nil }, nil)
		rt.Watch(func() any { return nil }, nil)

		var ids []uint64
		for _, e := range log.events {
			if e.Type == EventWatch {
				ids = append(ids, e.WatcherID)
			}
		}
		if len(ids) != 2 || ids[0] != 1 || ids[1] != 2 {
			t.Errorf("runtime %d: expected watcher ids [1 2], got %v", i, ids)
		}
	}
}
