package readygate

import (
	"context"
	"sync"
)

// Future is the handle of a result that may become available later.
// It is safe for concurrent use.
type Future[T any] struct {
	mu       sync.Mutex
	done     chan struct{}
	resolved bool
	val      T
	err      error
	wakers   []Waker
}

func NewFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Resolved returns a Future that already holds val and err.
func Resolved[T any](val T, err error) *Future[T] {
	f := NewFuture[T]()
	f.Resolve(val, err)
	return f
}

// Resolve stores the result and wakes every registered waker. Only the first
// resolution takes effect; it reports whether this call was that one.
func (f *Future[T]) Resolve(val T, err error) bool {
	f.mu.Lock()
	if f.resolved {
		f.mu.Unlock()
		return false
	}
	f.resolved = true
	f.val, f.err = val, err
	wakers := f.wakers
	f.wakers = nil
	close(f.done)
	f.mu.Unlock()

	for _, w := range wakers {
		w.Wake()
	}
	return true
}

// Done is closed once the Future is resolved.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Poll returns the result if the Future is resolved. Otherwise it reports
// false and w is woken on resolution.
func (f *Future[T]) Poll(w Waker) (T, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.resolved {
		f.wakers = append(f.wakers, w)
		var zero T
		return zero, false, nil
	}
	return f.val, true, f.err
}

// Await blocks until the Future is resolved or ctx is done.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	default:
	}
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Then returns a Future resolved with fn applied to the result of f.
// fn runs synchronously when f is already resolved.
func Then[T, U any](f *Future[T], fn func(T, error) (U, error)) *Future[U] {
	select {
	case <-f.done:
		return Resolved(fn(f.val, f.err))
	default:
	}
	next := NewFuture[U]()
	go func() {
		<-f.done
		next.Resolve(fn(f.val, f.err))
	}()
	return next
}
