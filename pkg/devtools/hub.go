package devtools

import (
	"fmt"
	"sync"
	"time"

	"github.com/vango-dev/oz/pkg/reactive"
)

// DefaultHistory is the number of entries a hub keeps when NewHub is given
// a non-positive size.
const DefaultHistory = 512

// Entry is the JSON form of a runtime event.
type Entry struct {
	Seq       uint64    `json:"seq"`
	Type      string    `json:"type"`
	Kind      string    `json:"kind,omitempty"`
	Watcher   string    `json:"watcher,omitempty"`
	WatcherID uint64    `json:"watcherId,omitempty"`
	Keys      []string  `json:"keys,omitempty"`
	Deep      bool      `json:"deep,omitempty"`
	Batch     int       `json:"batch,omitempty"`
	Fired     int       `json:"fired,omitempty"`
	Duration  int64     `json:"durationNs,omitempty"`
	Time      time.Time `json:"time"`
	Error     string    `json:"error,omitempty"`
}

// NewEntry converts a runtime event.
func NewEntry(e reactive.Event) Entry {
	entry := Entry{
		Type:      e.Type.String(),
		Watcher:   e.Watcher,
		WatcherID: e.WatcherID,
		Deep:      e.Deep,
		Batch:     e.Batch,
		Fired:     e.Fired,
		Duration:  int64(e.Duration),
		Time:      e.Time,
	}
	if e.Type != reactive.EventWatch && e.Type != reactive.EventUnwatch {
		entry.Kind = e.Kind.String()
	}
	if len(e.Keys) > 0 {
		entry.Keys = make([]string, len(e.Keys))
		for i, k := range e.Keys {
			entry.Keys[i] = fmt.Sprint(k)
		}
	}
	if e.Err != nil {
		entry.Error = e.Err.Error()
	}
	return entry
}

// Hub is a reactive.Observer that keeps a bounded history of events and
// fans them out to subscribers. Observe runs on the runtime goroutine; all
// other methods may be called from any goroutine.
type Hub struct {
	mu     sync.RWMutex
	ring   []Entry
	next   int
	full   bool
	seq    uint64
	counts map[string]uint64
	subs   map[chan Entry]struct{}
}

// NewHub creates a hub that remembers the last size events.
func NewHub(size int) *Hub {
	if size <= 0 {
		size = DefaultHistory
	}
	return &Hub{
		ring:   make([]Entry, size),
		counts: make(map[string]uint64),
		subs:   make(map[chan Entry]struct{}),
	}
}

// Observe implements reactive.Observer. Subscribers that are not keeping up
// miss entries rather than blocking the runtime.
func (h *Hub) Observe(e reactive.Event) {
	entry := NewEntry(e)

	h.mu.Lock()
	defer h.mu.Unlock()

	h.seq++
	entry.Seq = h.seq
	h.counts[entry.Type]++

	h.ring[h.next] = entry
	h.next = (h.next + 1) % len(h.ring)
	if h.next == 0 {
		h.full = true
	}

	for ch := range h.subs {
		select {
		case ch <- entry:
		default:
		}
	}
}

// Recent returns up to limit entries, oldest first. A non-positive limit
// returns the whole history.
func (h *Hub) Recent(limit int) []Entry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var ordered []Entry
	if h.full {
		ordered = append(ordered, h.ring[h.next:]...)
	}
	ordered = append(ordered, h.ring[:h.next]...)

	if limit > 0 && len(ordered) > limit {
		ordered = ordered[len(ordered)-limit:]
	}
	return ordered
}

// Counts returns the number of events seen per type.
func (h *Hub) Counts() map[string]uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make(map[string]uint64, len(h.counts))
	for k, v := range h.counts {
		out[k] = v
	}
	return out
}

// Total returns the number of events seen.
func (h *Hub) Total() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.seq
}

// Subscribe returns a channel receiving new entries and a function that
// ends the subscription and closes the channel.
func (h *Hub) Subscribe(buffer int) (<-chan Entry, func()) {
	ch := make(chan Entry, buffer)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}
