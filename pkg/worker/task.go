package worker

import (
	"fmt"
	"sync/atomic"

	"github.com/jzx17/dpool/pkg/types"
)

// taskIDCounter is the global task ID counter
var taskIDCounter int64

func nextTaskID() string {
	id := atomic.AddInt64(&taskIDCounter, 1)
	return fmt.Sprintf("task-%d", id)
}

// boundTask binds a caller function to the future that receives its outcome
type boundTask[R any] struct {
	id     string
	fn     func() (R, error)
	future *Future[R]
}

// newBoundTask creates a task and its future
func newBoundTask[R any](fn func() (R, error), clock types.Clock) *boundTask[R] {
	id := nextTaskID()
	return &boundTask[R]{
		id:     id,
		fn:     fn,
		future: newFuture[R](id, clock),
	}
}

// ID returns the task ID
func (t *boundTask[R]) ID() string {
	return t.id
}

// Execute runs the bound function and writes its outcome to the future.
// A panic escapes to the caller, which recovers it and calls Fail.
func (t *boundTask[R]) Execute() error {
	if t.fn == nil {
		err := types.NewTaskExecutionError(t.id, fmt.Errorf("task %s has no execution function", t.id))
		_ = t.future.complete(*new(R), err)
		return err
	}

	value, err := t.fn()
	if err != nil {
		execErr := types.NewTaskExecutionError(t.id, err)
		if completeErr := t.future.complete(value, execErr); completeErr != nil {
			return completeErr
		}
		return execErr
	}
	return t.future.complete(value, nil)
}

// Fail writes err as the task's outcome
func (t *boundTask[R]) Fail(err error) error {
	var zero R
	return t.future.complete(zero, err)
}
