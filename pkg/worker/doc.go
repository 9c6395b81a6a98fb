/*
Package worker provides a dynamically sized worker pool that runs arbitrary
functions and hands their results back through futures.

# Overview

The pool keeps between InitThreads and MaxThreads worker goroutines:
- Workers are spawned on demand when a task arrives and nobody is idle
- Idle workers retire after IdleTimeout while the pool is above InitThreads
- Tasks are dequeued in strict submission order (FIFO)
- Each task's outcome is delivered through a one-shot Future
- Task errors and panics stay local to the task's Future

# Core Components

## Pool

The controller that accepts submissions and owns the worker population:
- One mutex guards the queue, the live/idle counts and the worker registry
- Submit wakes exactly one idle worker, or spawns one below the ceiling
- Shutdown broadcasts to every waiting worker and joins them all

## Worker

A goroutine that repeatedly waits for and runs tasks:
- Waits with a bounded idle window on wake, stop and timeout
- Drains queued tasks before exiting on shutdown
- Recovers task panics and reports them as TaskExecutionError
- Keeps per-worker statistics

## Future

The read side of a task's result channel:
- Get, GetWithContext, GetWithTimeout and TryGet
- Yields types.ErrBrokenPromise when the task can no longer run

# Thread Count Normalization

MaxThreads values of zero, below zero, or above runtime.NumCPU() are clamped
to runtime.NumCPU(). Set AllowOversubscribe to keep a larger ceiling for
pools that mostly block.

# Shutdown Policy

Shutdown rejects new submissions with types.ErrPoolStopped. Workers still
alive keep draining the queue before they exit, but no worker is spawned to
help. Tasks left in the queue after the last worker exits fail with
types.ErrBrokenPromise, so no Future blocks forever.

# Usage Examples

Basic usage:

	pool, err := worker.NewPool(&worker.PoolConfig{
		MaxThreads:  8,
		InitThreads: 2,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	future, err := worker.Submit(pool, func() (int, error) {
		return compute(), nil
	})
	if err != nil {
		log.Fatal(err)
	}

	sum, err := future.Get()

Waiting for a batch:

	futures, err := worker.SubmitAll(pool, jobs)
	if err != nil {
		log.Printf("Failed to submit: %v", err)
	}
	results, err := worker.AwaitAll(ctx, futures)

Inspecting a failure:

	if execErr, ok := types.AsTaskExecutionError(err); ok && execErr.Panicked {
		log.Printf("task %s panicked:\n%s", execErr.TaskID, execErr.Stack)
	}

Retrieve statistics:

	stats := pool.Stats()
	fmt.Printf("Workers: %d (idle %d) of %d\n", stats.Threads, stats.IdleThreads, stats.MaxThreads)
	fmt.Printf("Completed: %d, Failed: %d\n", stats.TotalCompleted, stats.TotalFailed)

# Configuration Options

PoolConfig supports the following configurations:
- MaxThreads: Worker ceiling
- InitThreads: Workers spawned up front and the retirement floor
- IdleTimeout: Wait window before an idle worker may retire (default 2s)
- AllowOversubscribe: Skip the runtime.NumCPU() clamp
- Clock: Time source, replaceable in tests
- Logger: logrus logger for lifecycle events (defaults to discard)
- Metrics: Prometheus collectors
- RateLimiter: Throttles task starts
- ErrorHandler: Called with every task failure
*/
package worker
