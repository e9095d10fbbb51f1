package assets

import (
	"context"
	"errors"
	"sync"
)

// ErrPending is returned by Result while a future is still loading.
var ErrPending = errors.New("asset still loading")

// Progress reports how many bytes of a source have been read. Total is -1
// when the size is not known up front.
type Progress struct {
	Loaded int64
	Total  int64
}

func (p Progress) Fraction() float64 {
	if p.Total <= 0 {
		return 0
	}
	return float64(p.Loaded) / float64(p.Total)
}

// Future is the eventual result of a load. It resolves exactly once, with a
// value or an error.
type Future[T any] struct {
	done   chan struct{}
	cancel context.CancelFunc

	mu       sync.Mutex
	value    T
	err      error
	resolved bool
	progress chan Progress
}

func newFuture[T any](cancel context.CancelFunc) *Future[T] {
	return &Future[T]{
		done:     make(chan struct{}),
		cancel:   cancel,
		progress: make(chan Progress, 16),
	}
}

// Resolved returns a future that is already complete.
func Resolved[T any](v T, err error) *Future[T] {
	f := newFuture[T](nil)
	f.resolve(v, err)
	return f
}

func (f *Future[T]) resolve(v T, err error) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.resolved {
		return false
	}
	f.value, f.err, f.resolved = v, err, true
	close(f.progress)
	close(f.done)
	if f.cancel != nil {
		f.cancel()
	}
	return true
}

// report publishes p without blocking. Updates are dropped when nobody reads.
func (f *Future[T]) report(p Progress) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.resolved {
		return
	}
	select {
	case f.progress <- p:
	default:
	}
}

// Done is closed once the future has resolved.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Progress delivers read progress and is closed when the future resolves.
func (f *Future[T]) Progress() <-chan Progress {
	return f.progress
}

// Result returns the outcome without blocking, or ErrPending.
func (f *Future[T]) Result() (T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.resolved {
		var zero T
		return zero, ErrPending
	}
	return f.value, f.err
}

// Await blocks until the future resolves or ctx is done. A done ctx does not
// cancel the load itself.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.Result()
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Cancel stops the load. The future resolves with context.Canceled unless it
// had already resolved.
func (f *Future[T]) Cancel() {
	var zero T
	f.resolve(zero, context.Canceled)
}
