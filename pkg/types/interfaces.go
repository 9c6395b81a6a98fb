// Package types defines core interfaces and types shared by the pool packages
package types

import (
	"context"
	"time"
)

// Task defines a unit of work owned by the queue until a worker takes it
type Task interface {
	// ID returns the task ID (for tracking)
	ID() string

	// Execute runs the task and delivers its outcome to the submitter.
	// The returned error is the failure already delivered, if any.
	Execute() error

	// Fail delivers err as the task's outcome without running it.
	// It returns an error if the outcome was already delivered.
	Fail(err error) error
}

// ThreadPool defines the dynamically sized pool interface
type ThreadPool interface {
	// Submit enqueues a task, waking an idle worker or spawning a new one
	Submit(task Task) error

	// ThreadCount returns the number of live workers
	ThreadCount() int

	// IdleThreadCount returns the number of workers blocked waiting for work
	IdleThreadCount() int

	// MaxThreads returns the effective worker ceiling
	MaxThreads() int

	// InitThreads returns the floor below which idle workers do not retire
	InitThreads() int

	// Stats returns pool statistics
	Stats() PoolStats

	// Shutdown stops accepting tasks and waits for all workers to exit
	Shutdown(ctx context.Context) error

	// Close is Shutdown without a deadline
	Close() error
}

// PoolStats defines statistics for the pool
type PoolStats struct {
	// PoolID identifies the pool instance
	PoolID string

	// Threads is the number of live workers
	Threads int

	// IdleThreads is the number of workers waiting for work
	IdleThreads int

	// MaxThreads is the effective worker ceiling
	MaxThreads int

	// InitThreads is the retirement floor
	InitThreads int

	// QueueLength is the number of tasks waiting to be picked up
	QueueLength int

	// Stopping reports whether shutdown has begun
	Stopping bool

	// Task counters
	TotalSubmitted int64
	TotalCompleted int64
	TotalFailed    int64
	TotalAbandoned int64

	// Worker population counters
	TotalSpawned int64
	TotalRetired int64

	// AverageExecutionTime is the mean task run time
	AverageExecutionTime time.Duration
}

// ErrorHandler is called with every task failure; its return value is ignored by the pool
type ErrorHandler func(error) error
