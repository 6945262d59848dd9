package reactive

import "time"

type pending struct {
	f    *frame
	runs uint64
}

// notify announces that keys of r changed. Property watchers are collected
// before object watchers, each frame at most once. Deep notifications only
// reach deep frames; shallow frames keep their subscription.
//
// The frame currently evaluating (if any) is never notified by its own
// writes.
func (rt *Runtime) notify(r *reactivity, keys []any, deep bool) {
	start := time.Now()
	cur := rt.evaluating()

	take := func(f *frame) bool {
		return f != cur && (!deep || f.deep)
	}

	var batch []pending
	seen := make(map[*frame]struct{})
	collect := func(frames []*frame) {
		for _, f := range frames {
			// A frame drained from one list must leave all the others too,
			// otherwise it would fire again from a stale subscription.
			f.release()
			if _, ok := seen[f]; ok {
				continue
			}
			seen[f] = struct{}{}
			batch = append(batch, pending{f: f, runs: f.runs})
		}
	}

	for _, key := range keys {
		if p, ok := r.properties[key]; ok {
			collect(p.watchers.drain(take))
		}
	}
	collect(r.watchers.drain(take))

	if len(batch) == 0 {
		return
	}

	for _, p := range batch {
		if p.f.cache && p.f.owner != nil {
			p.f.owner.invalidate(p.f.key)
			rt.emit(Event{Type: EventInvalidate, Kind: p.f.owner.kind, Keys: []any{p.f.key}})
		}
	}

	fired := 0
	for _, p := range batch {
		if p.f.cache && rt.fire(p) {
			fired++
		}
	}
	for _, p := range batch {
		if !p.f.cache && rt.fire(p) {
			fired++
		}
	}

	rt.emit(Event{
		Type:     EventNotify,
		Kind:     r.kind,
		Keys:     keys,
		Deep:     deep,
		Batch:    len(batch),
		Fired:    fired,
		Time:     start,
		Duration: time.Since(start),
	})
}

// fire runs one collected frame. It reports false when the frame was
// stopped or already re-ran since the batch was collected.
func (rt *Runtime) fire(p pending) bool {
	f := p.f
	if f.stopped || f.runs != p.runs {
		return false
	}
	f.runs++

	switch {
	case f.cache:
		f.stopped = true
		f.handler(nil, nil)

	case f.getter != nil:
		old := f.value
		f.value = rt.evaluate(f, f.getter)
		rt.subscribeResult(f, f.value)
		rt.callHandler(f, f.value, old)

	default:
		// Object-level frames resubscribe after the handler so a write
		// from inside the handler does not re-enter it.
		owner := f.target.owner
		if f.link {
			f.handler(owner, owner)
		} else {
			rt.callHandler(f, owner, owner)
		}
		if !f.stopped {
			f.target.watchers.add(f)
		}
	}
	return true
}
