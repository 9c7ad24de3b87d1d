package fx

import (
	"context"
	"errors"
	"sync"
)

// Awaitable is anything that settles exactly once. Queued tasks return one so
// the queue knows when to start the next task.
type Awaitable interface {
	// OnSettle registers fn to run when the value settles. If it already has,
	// fn runs immediately on the calling goroutine.
	OnSettle(fn func(err error))
}

// Future is a value that is resolved or rejected once. Callbacks registered
// with Then run synchronously on the goroutine that settles the future, in
// registration order.
//
// A Future is safe for concurrent use; Wait is the usual way for another
// goroutine to block on a value settled by the scheduler goroutine.
type Future[T any] struct {
	mu        sync.Mutex
	done      chan struct{}
	settled   bool
	val       T
	err       error
	callbacks []func(T, error)
}

// NewFuture returns an unsettled future.
func NewFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Resolved returns a future already resolved with v.
func Resolved[T any](v T) *Future[T] {
	f := NewFuture[T]()
	f.Resolve(v)
	return f
}

// Rejected returns a future already rejected with err.
func Rejected[T any](err error) *Future[T] {
	f := NewFuture[T]()
	f.Reject(err)
	return f
}

// Resolve settles the future with v. It reports false if the future had
// already settled.
func (f *Future[T]) Resolve(v T) bool {
	return f.settle(v, nil)
}

// Reject settles the future with err. A nil err is replaced by a generic
// error so that a rejected future always carries one.
func (f *Future[T]) Reject(err error) bool {
	if err == nil {
		err = errors.New("fx: rejected without error")
	}
	var zero T
	return f.settle(zero, err)
}

func (f *Future[T]) settle(v T, err error) bool {
	f.mu.Lock()
	if f.settled {
		f.mu.Unlock()
		return false
	}
	f.settled = true
	f.val = v
	f.err = err
	cbs := f.callbacks
	f.callbacks = nil
	close(f.done)
	f.mu.Unlock()

	for _, cb := range cbs {
		cb(v, err)
	}
	return true
}

// Then registers fn to receive the settled value. If the future has already
// settled, fn runs immediately.
func (f *Future[T]) Then(fn func(T, error)) {
	f.mu.Lock()
	if !f.settled {
		f.callbacks = append(f.callbacks, fn)
		f.mu.Unlock()
		return
	}
	v, err := f.val, f.err
	f.mu.Unlock()
	fn(v, err)
}

// OnSettle implements Awaitable.
func (f *Future[T]) OnSettle(fn func(error)) {
	f.Then(func(_ T, err error) { fn(err) })
}

// Settled reports whether the future has been resolved or rejected.
func (f *Future[T]) Settled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.settled
}

// Result returns the settled value, or ErrPending if the future is still open.
func (f *Future[T]) Result() (T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.settled {
		var zero T
		return zero, ErrPending
	}
	return f.val, f.err
}

// Done returns a channel that is closed once the future settles.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the future settles or ctx is done. Never call Wait from
// the goroutine that drives the scheduler; the future could only settle on a
// later frame of that same goroutine.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.Result()
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// All combines futures into one that resolves with every value, in order,
// once all of them resolve. It rejects with the first rejection observed and
// does not wait for or cancel the others. All of nothing is already resolved
// with an empty slice.
func All[T any](futures ...*Future[T]) *Future[[]T] {
	out := NewFuture[[]T]()
	if len(futures) == 0 {
		out.Resolve([]T{})
		return out
	}
	vals := make([]T, len(futures))
	remaining := len(futures)
	var mu sync.Mutex
	for i, f := range futures {
		f.Then(func(v T, err error) {
			if err != nil {
				out.Reject(err)
				return
			}
			mu.Lock()
			vals[i] = v
			remaining--
			last := remaining == 0
			mu.Unlock()
			if last {
				out.Resolve(vals)
			}
		})
	}
	return out
}
