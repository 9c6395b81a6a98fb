package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jzx17/dpool/pkg/types"
)

// Future is the read side of a task's one-shot result channel.
// The worker that runs the task writes it exactly once.
type Future[R any] struct {
	taskID string
	clock  types.Clock
	done   chan struct{}

	mu        sync.Mutex
	completed bool
	value     R
	err       error
}

func newFuture[R any](taskID string, clock types.Clock) *Future[R] {
	if clock == nil {
		clock = types.NewRealClock()
	}
	return &Future[R]{
		taskID: taskID,
		clock:  clock,
		done:   make(chan struct{}),
	}
}

// TaskID returns the ID of the task feeding this future
func (f *Future[R]) TaskID() string {
	return f.taskID
}

// Done returns a channel closed once the outcome is available
func (f *Future[R]) Done() <-chan struct{} {
	return f.done
}

// Get blocks until the task's outcome is available
func (f *Future[R]) Get() (R, error) {
	<-f.done
	return f.value, f.err
}

// GetWithContext blocks until the outcome is available or ctx ends
func (f *Future[R]) GetWithContext(ctx context.Context) (R, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	}
}

// GetWithTimeout blocks for at most timeout, returning types.ErrTimeout when it elapses
func (f *Future[R]) GetWithTimeout(timeout time.Duration) (R, error) {
	timer := f.clock.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-f.done:
		return f.value, f.err
	case <-timer.C():
		var zero R
		return zero, types.ErrTimeout
	}
}

// TryGet polls the future; ok is false while the task has not finished
func (f *Future[R]) TryGet() (value R, err error, ok bool) {
	select {
	case <-f.done:
		return f.value, f.err, true
	default:
		var zero R
		return zero, nil, false
	}
}

// complete writes the outcome. A second write is rejected and leaves the
// first outcome in place.
func (f *Future[R]) complete(value R, err error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.completed {
		return fmt.Errorf("%w: task %s already completed", types.ErrBrokenPromise, f.taskID)
	}
	f.completed = true
	f.value = value
	f.err = err
	close(f.done)
	return nil
}
