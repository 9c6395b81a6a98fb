// Package types defines error types
package types

import (
	"errors"
	"fmt"
)

// Predefined errors
var (
	// ErrPoolStopped indicates a submission after the pool began shutting down
	ErrPoolStopped = errors.New("pool is stopped")

	// ErrBrokenPromise indicates a future whose task never produced an outcome,
	// or a second attempt to complete an already completed future
	ErrBrokenPromise = errors.New("broken promise")

	// ErrNilTask indicates a nil task or task function was submitted
	ErrNilTask = errors.New("task cannot be nil")

	// ErrTimeout indicates operation timeout
	ErrTimeout = errors.New("operation timeout")

	// ErrInvalidConfig indicates the pool configuration was rejected
	ErrInvalidConfig = errors.New("invalid pool config")
)

// TaskExecutionError represents a failure raised by a task's function.
// It is delivered through the task's future and never stops the worker.
type TaskExecutionError struct {
	// TaskID is the ID of the failed task
	TaskID string

	// Cause is the underlying error
	Cause error

	// Panicked reports whether the failure was a recovered panic
	Panicked bool

	// Stack holds the goroutine stack captured on panic
	Stack string

	// Context contains error context information
	Context map[string]interface{}
}

// Error implements the error interface
func (e *TaskExecutionError) Error() string {
	if e.Panicked {
		return fmt.Sprintf("task %s panicked: %v", e.TaskID, e.Cause)
	}
	return fmt.Sprintf("task %s failed: %v", e.TaskID, e.Cause)
}

// Unwrap returns the underlying error
func (e *TaskExecutionError) Unwrap() error {
	return e.Cause
}

// Is checks if the error is a specific error
func (e *TaskExecutionError) Is(target error) bool {
	return errors.Is(e.Cause, target)
}

// NewTaskExecutionError creates a new task execution error
func NewTaskExecutionError(taskID string, cause error) *TaskExecutionError {
	return &TaskExecutionError{
		TaskID:  taskID,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// WithContext adds error context
func (e *TaskExecutionError) WithContext(key string, value interface{}) *TaskExecutionError {
	e.Context[key] = value
	return e
}

// IsTaskExecutionError reports whether err carries a TaskExecutionError
func IsTaskExecutionError(err error) bool {
	var execErr *TaskExecutionError
	return errors.As(err, &execErr)
}

// AsTaskExecutionError extracts the TaskExecutionError from err's chain
func AsTaskExecutionError(err error) (*TaskExecutionError, bool) {
	var execErr *TaskExecutionError
	if errors.As(err, &execErr) {
		return execErr, true
	}
	return nil, false
}
