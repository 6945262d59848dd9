package reactive

import (
	"context"
	"reflect"
	"sync"
)

// Future is a value that becomes available later. Await blocks until the
// value is ready or ctx is done.
type Future interface {
	Await(ctx context.Context) (any, error)
}

// Promise is a Future settled by calling Resolve or Reject. Only the first
// call has an effect.
type Promise struct {
	once  sync.Once
	done  chan struct{}
	value any
	err   error
}

// NewPromise returns a pending promise.
func NewPromise() *Promise {
	return &Promise{done: make(chan struct{})}
}

// Resolve fulfils the promise with v.
func (p *Promise) Resolve(v any) {
	p.once.Do(func() {
		p.value = v
		close(p.done)
	})
}

// Reject fails the promise with err.
func (p *Promise) Reject(err error) {
	p.once.Do(func() {
		p.err = err
		close(p.done)
	})
}

// Await implements Future.
func (p *Promise) Await(ctx context.Context) (any, error) {
	select {
	case <-p.done:
		return p.value, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Deferred pseudo-property keys.
const (
	KeyResolved = "resolved"
	KeyValue    = "value"
	KeyRejected = "rejected"
	KeyErr      = "error"
)

// Deferred tracks the outcome of a Future or a receive channel. Settlement
// is delivered through the runtime's task queue, so watchers of "value" or
// "resolved" run on the runtime goroutine once Run, Step or Drain picks up
// the result.
type Deferred struct {
	base

	settled  bool
	rejected bool
	value    any
	err      error

	done   chan struct{}
	cancel context.CancelFunc

	// settled hooks run on the runtime goroutine after the settlement has
	// been announced.
	hooks []func()
}

func (rt *Runtime) wrapDeferred(v any) *Deferred {
	d := &Deferred{done: make(chan struct{})}
	d.base = base{r: newReactivity(rt, KindDeferred, d)}
	rt.registry.register(v, d)

	ctx, cancel := context.WithCancel(rt.ctx)
	d.cancel = cancel

	go func() {
		value, err := await(ctx, v)
		if ctx.Err() != nil {
			return
		}
		if !rt.post(ctx, func() { d.settle(value, err) }) {
			rt.logger.Debug("reactive: deferred result dropped", "error", err)
		}
	}()
	return d
}

// await waits for a Future or the first value received from a channel. A
// closed channel settles with nil.
func await(ctx context.Context, v any) (any, error) {
	if f, ok := v.(Future); ok {
		return f.Await(ctx)
	}
	cases := []reflect.SelectCase{
		{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(v)},
		{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(ctx.Done())},
	}
	chosen, value, ok := reflect.Select(cases)
	if chosen == 1 {
		return nil, ctx.Err()
	}
	if !ok {
		return nil, nil
	}
	return value.Interface(), nil
}

func (d *Deferred) settle(value any, err error) {
	if d.settled {
		return
	}
	rt := d.rt()
	d.settled = true
	d.cancel()

	var keys []any
	if err != nil {
		d.rejected = true
		d.err = err
		keys = []any{KeyRejected, KeyErr}
	} else {
		d.value = rt.React(value)
		rt.link(d.r, KeyValue, d.value)
		keys = []any{KeyResolved, KeyValue}
	}
	close(d.done)

	rt.logger.Debug("reactive: deferred settled", "rejected", d.rejected)
	rt.emit(Event{Type: EventSettle, Kind: KindDeferred, Keys: keys, Err: err})
	rt.notify(d.r, keys, false)

	hooks := d.hooks
	d.hooks = nil
	for _, fn := range hooks {
		fn()
	}
}

// whenSettled runs fn on the runtime goroutine once d settles. A settled
// deferred runs fn immediately.
func (d *Deferred) whenSettled(fn func()) {
	if d.settled {
		fn()
		return
	}
	d.hooks = append(d.hooks, fn)
}

// Get returns one of the pseudo-properties "resolved", "value", "rejected"
// or "error".
func (d *Deferred) Get(key any) any {
	name, ok := key.(string)
	if !ok {
		return nil
	}
	rt := d.rt()
	rt.track(d.r, name)
	switch name {
	case KeyResolved:
		return d.settled && !d.rejected
	case KeyValue:
		rt.trackValue(d.value)
		return d.value
	case KeyRejected:
		return d.rejected
	case KeyErr:
		return d.err
	}
	return nil
}

// Resolved reports whether the deferred value resolved successfully.
func (d *Deferred) Resolved() bool {
	return d.Get(KeyResolved).(bool)
}

// Value returns the resolved value, or nil while pending or rejected.
func (d *Deferred) Value() any {
	return d.Get(KeyValue)
}

// Err returns the rejection error.
func (d *Deferred) Err() error {
	err, _ := d.Get(KeyErr).(error)
	return err
}

// Done is closed once the deferred value settles on the runtime goroutine.
func (d *Deferred) Done() <-chan struct{} {
	return d.done
}

// Cancel stops waiting for the underlying value. A cancelled deferred never
// settles. Closing the runtime cancels every pending deferred.
func (d *Deferred) Cancel() {
	d.cancel()
}

// Has reports whether key is one of the pseudo-properties.
func (d *Deferred) Has(key any) bool {
	switch key {
	case KeyResolved, KeyValue, KeyRejected, KeyErr:
		return true
	}
	return false
}

// Len reports 1 once the value has settled and 0 before.
func (d *Deferred) Len() int {
	d.rt().trackObject(d.r)
	if d.settled {
		return 1
	}
	return 0
}

// Set always fails: deferred values are settled by their source only.
func (d *Deferred) Set(key, _ any) error {
	return keyError("set", KindDeferred, key, ErrReadOnly)
}

// Delete always fails.
func (d *Deferred) Delete(key any) error {
	return keyError("delete", KindDeferred, key, ErrReadOnly)
}
