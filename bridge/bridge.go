// Package bridge lets callers without a context run context-bound
// operations to completion on a dedicated worker goroutine.
package bridge

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned when work is submitted to a closed handle.
var ErrClosed = errors.New("bridge handle is closed")

type job func(ctx context.Context)

// Handle owns the worker goroutine and the context work runs under.
// It is passed to callers explicitly; nothing in this package is global.
type Handle struct {
	ctx    context.Context
	jobs   chan job
	done   chan struct{}
	mu     sync.RWMutex
	closed bool
}

// NewHandle starts a worker that runs submitted work under ctx, one job at a time.
func NewHandle(ctx context.Context) *Handle {
	handle := &Handle{
		ctx:  ctx,
		jobs: make(chan job),
		done: make(chan struct{}),
	}

	go handle.work()

	return handle
}

func (h *Handle) work() {
	defer close(h.done)

	for fn := range h.jobs {
		fn(h.ctx)
	}
}

// Close waits for the running job to finish and stops the worker.
func (h *Handle) Close() {
	h.mu.Lock()
	if !h.closed {
		h.closed = true
		close(h.jobs)
	}
	h.mu.Unlock()

	<-h.done
}

func (h *Handle) submit(fn job) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return ErrClosed
	}

	h.jobs <- fn

	return nil
}

type result[T any] struct {
	value T
	err   error
}

// Run blocks until fn has run on the handle's worker and returns its
// result unchanged. There is no timeout and no retry.
func Run[T any](handle *Handle, fn func(ctx context.Context) (T, error)) (T, error) {
	results := make(chan result[T], 1)

	err := handle.submit(func(ctx context.Context) {
		value, err := fn(ctx)
		results <- result[T]{value: value, err: err}
	})
	if err != nil {
		var zero T

		return zero, err
	}

	outcome := <-results

	return outcome.value, outcome.err
}
