package reactive

import "slices"

// watcherList is an ordered set of frames.
type watcherList struct {
	frames []*frame

	// owner and key identify the list to dependency listeners.
	owner *reactivity
	key   any
}

// add appends f unless it is already present. The list is recorded in f's
// sources so f can leave it later.
func (l *watcherList) add(f *frame) bool {
	if l.contains(f) {
		return false
	}
	l.frames = append(l.frames, f)
	f.sources = append(f.sources, l)
	l.changed()
	return true
}

// changed reports the list's new size to the owner's dependency listeners.
func (l *watcherList) changed() {
	if l.owner == nil || len(l.owner.listeners) == 0 {
		return
	}
	for _, dl := range append([]*dependencyListener(nil), l.owner.listeners...) {
		dl.fn(l.key, len(l.frames))
	}
}

func (l *watcherList) contains(f *frame) bool {
	for _, existing := range l.frames {
		if existing == f {
			return true
		}
	}
	return false
}

// remove deletes f, keeping the order of the remaining frames.
func (l *watcherList) remove(f *frame) {
	for i, existing := range l.frames {
		if existing == f {
			copy(l.frames[i:], l.frames[i+1:])
			l.frames[len(l.frames)-1] = nil
			l.frames = l.frames[:len(l.frames)-1]
			l.changed()
			return
		}
	}
}

// drain removes and returns every frame for which take reports true.
// Frames that are not taken stay subscribed in their original order.
func (l *watcherList) drain(take func(*frame) bool) []*frame {
	if len(l.frames) == 0 {
		return nil
	}
	var taken []*frame
	kept := l.frames[:0]
	for _, f := range l.frames {
		if take(f) {
			taken = append(taken, f)
		} else {
			kept = append(kept, f)
		}
	}
	clear(l.frames[len(kept):])
	l.frames = kept
	if len(taken) > 0 {
		l.changed()
	}
	return taken
}

func (l *watcherList) len() int {
	return len(l.frames)
}

// propertyRecord holds the watchers of one key.
type propertyRecord struct {
	watchers watcherList
}

// reactivity is the bookkeeping attached to every tracked object.
type reactivity struct {
	rt    *Runtime
	kind  Kind
	owner Observable

	// watchers are subscribed to the object as a whole.
	watchers watcherList

	// properties is created lazily, one entry per key that was read
	// while a frame was evaluating.
	properties map[any]*propertyRecord

	// cache holds computed values by key. An entry is removed before the
	// frames depending on it are notified.
	cache map[any]any

	// caches are the live frames evaluating computed keys.
	caches map[any]*frame

	// links carry changes inside a child object back to the key the
	// child is stored under.
	links map[any]*frame

	listeners []*dependencyListener
}

// DependencyFunc receives the key whose watcher count changed and the new
// count. The key is ObjectKey for watchers of the object as a whole.
type DependencyFunc func(key any, count int)

type objectKey struct{}

// ObjectKey is the key DependencyFunc receives for object-level watchers.
var ObjectKey any = objectKey{}

type dependencyListener struct {
	fn DependencyFunc
}

func newReactivity(rt *Runtime, kind Kind, owner Observable) *reactivity {
	r := &reactivity{
		rt:         rt,
		kind:       kind,
		owner:      owner,
		properties: make(map[any]*propertyRecord),
	}
	r.watchers.owner = r
	r.watchers.key = ObjectKey
	return r
}

// watchDependencies adds fn to the dependency listeners.
func (r *reactivity) watchDependencies(fn DependencyFunc) Unsubscribe {
	dl := &dependencyListener{fn: fn}
	r.listeners = append(r.listeners, dl)
	return func() {
		if i := slices.Index(r.listeners, dl); i >= 0 {
			r.listeners = slices.Delete(r.listeners, i, i+1)
		}
	}
}

// property returns the record for key, creating it on first use.
func (r *reactivity) property(key any) *propertyRecord {
	if p, ok := r.properties[key]; ok {
		return p
	}
	p := &propertyRecord{watchers: watcherList{owner: r, key: key}}
	r.properties[key] = p
	return p
}

// prune drops the record for key once nothing watches it.
func (r *reactivity) prune(key any) {
	if p, ok := r.properties[key]; ok && p.watchers.len() == 0 {
		delete(r.properties, key)
	}
}

func (r *reactivity) cached(key any) (any, bool) {
	if r.cache == nil {
		return nil, false
	}
	v, ok := r.cache[key]
	return v, ok
}

func (r *reactivity) store(key, value any) {
	if r.cache == nil {
		r.cache = make(map[any]any)
	}
	r.cache[key] = value
}

func (r *reactivity) invalidate(key any) {
	delete(r.cache, key)
}
