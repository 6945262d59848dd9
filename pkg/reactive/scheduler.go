package reactive

import (
	"context"
	"errors"
)

// ErrClosed is returned by Run and Step after Close.
var ErrClosed = errors.New("reactive: runtime closed")

// Dispatch queues fn to run on the runtime goroutine. It never blocks: when
// the queue is full or the runtime is closed the task is dropped and false
// is returned.
func (rt *Runtime) Dispatch(fn func()) bool {
	if fn == nil {
		return false
	}
	select {
	case <-rt.done:
		return false
	default:
	}
	select {
	case rt.tasks <- fn:
		return true
	default:
		rt.logger.Warn("reactive: dispatch queue full, dropping task", "capacity", cap(rt.tasks))
		return false
	}
}

// post queues fn, waiting for room. Settlement of deferred values uses it so
// results are never dropped.
func (rt *Runtime) post(ctx context.Context, fn func()) bool {
	select {
	case rt.tasks <- fn:
		return true
	case <-rt.done:
		return false
	case <-ctx.Done():
		return false
	}
}

// Step runs one queued task, waiting for it if none is queued.
func (rt *Runtime) Step(ctx context.Context) error {
	select {
	case fn := <-rt.tasks:
		rt.runTask(fn)
		return nil
	case <-rt.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Drain runs queued tasks until the queue is empty, including tasks queued
// by the tasks it runs, and returns how many ran.
func (rt *Runtime) Drain() int {
	n := 0
	for {
		select {
		case fn := <-rt.tasks:
			rt.runTask(fn)
			n++
		default:
			return n
		}
	}
}

// Run processes tasks until ctx is done or the runtime is closed.
func (rt *Runtime) Run(ctx context.Context) error {
	rt.logger.Debug("reactive: runtime started")
	defer rt.logger.Debug("reactive: runtime stopped")
	for {
		if err := rt.Step(ctx); err != nil {
			if errors.Is(err, ErrClosed) {
				return nil
			}
			return err
		}
	}
}

// Close stops Run and makes further Dispatch calls fail. Queued tasks are
// discarded and deferred values still waiting stop waiting.
func (rt *Runtime) Close() {
	rt.closeOnce.Do(func() {
		close(rt.done)
		rt.cancel()
	})
}

// runTask runs fn, logging and recovering a panic so one bad task does not
// stop the loop.
func (rt *Runtime) runTask(fn func()) {
	depth := len(rt.stack)
	defer func() {
		if r := recover(); r != nil {
			clear(rt.stack[depth:])
			rt.stack = rt.stack[:depth]
			rt.logger.Error("reactive: task panicked", "panic", r)
		}
	}()
	fn()
}
