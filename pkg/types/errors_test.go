package types

import (
	"errors"
	"fmt"
	"testing"
)

func TestPredefinedErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrPoolStopped", ErrPoolStopped},
		{"ErrBrokenPromise", ErrBrokenPromise},
		{"ErrNilTask", ErrNilTask},
		{"ErrTimeout", ErrTimeout},
		{"ErrInvalidConfig", ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err == nil {
				t.Errorf("expected error, got nil")
			}
			if tt.err.Error() == "" {
				t.Errorf("expected non-empty error message")
			}
		})
	}
}

func TestTaskExecutionError(t *testing.T) {
	t.Run("Returned Error", func(t *testing.T) {
		cause := errors.New("disk full")
		execErr := NewTaskExecutionError("task-7", cause)

		expectedMsg := "task task-7 failed: disk full"
		if execErr.Error() != expectedMsg {
			t.Errorf("expected message %q, got %q", expectedMsg, execErr.Error())
		}
		if execErr.Unwrap() != cause {
			t.Errorf("expected Unwrap to return the cause")
		}
		if !errors.Is(execErr, cause) {
			t.Errorf("expected errors.Is to match the cause")
		}
		if execErr.Panicked {
			t.Errorf("expected Panicked to be false")
		}
	})

	t.Run("Recovered Panic", func(t *testing.T) {
		execErr := NewTaskExecutionError("task-8", errors.New("index out of range"))
		execErr.Panicked = true

		expectedMsg := "task task-8 panicked: index out of range"
		if execErr.Error() != expectedMsg {
			t.Errorf("expected message %q, got %q", expectedMsg, execErr.Error())
		}
	})

	t.Run("Context", func(t *testing.T) {
		execErr := NewTaskExecutionError("task-9", errors.New("boom")).
			WithContext("worker_id", 3).
			WithContext("attempt", "first")

		if execErr.Context["worker_id"] != 3 {
			t.Errorf("expected worker_id 3, got %v", execErr.Context["worker_id"])
		}
		if execErr.Context["attempt"] != "first" {
			t.Errorf("expected attempt 'first', got %v", execErr.Context["attempt"])
		}
	})

	t.Run("Is Sentinel Through Cause", func(t *testing.T) {
		execErr := NewTaskExecutionError("task-10", fmt.Errorf("wrapped: %w", ErrTimeout))
		if !errors.Is(execErr, ErrTimeout) {
			t.Errorf("expected errors.Is to find ErrTimeout through the cause")
		}
		if errors.Is(execErr, ErrPoolStopped) {
			t.Errorf("did not expect ErrPoolStopped")
		}
	})
}

func TestAsTaskExecutionError(t *testing.T) {
	execErr := NewTaskExecutionError("task-11", errors.New("boom"))
	wrapped := fmt.Errorf("outer: %w", execErr)

	if !IsTaskExecutionError(wrapped) {
		t.Errorf("expected wrapped error to be recognized")
	}
	if IsTaskExecutionError(errors.New("plain")) {
		t.Errorf("did not expect plain error to be recognized")
	}

	got, ok := AsTaskExecutionError(wrapped)
	if !ok || got != execErr {
		t.Errorf("expected to extract the original error, got %v", got)
	}

	if _, ok := AsTaskExecutionError(nil); ok {
		t.Errorf("did not expect nil to be recognized")
	}
}
