package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jzx17/dpool/pkg/types"
)

// WorkerState defines the state of a Worker
type WorkerState int32

const (
	// WorkerStateStarting represents a spawned worker that has not looked for work yet
	WorkerStateStarting WorkerState = iota
	// WorkerStateWaiting represents a worker blocked waiting for work
	WorkerStateWaiting
	// WorkerStateRunning represents a worker executing a task
	WorkerStateRunning
	// WorkerStateRetired represents a worker that exited after idling above the floor
	WorkerStateRetired
	// WorkerStateStopped represents a worker that exited on pool shutdown
	WorkerStateStopped
)

// String returns the string representation of WorkerState
func (ws WorkerState) String() string {
	switch ws {
	case WorkerStateStarting:
		return "starting"
	case WorkerStateWaiting:
		return "waiting"
	case WorkerStateRunning:
		return "running"
	case WorkerStateRetired:
		return "retired"
	case WorkerStateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Terminal reports whether the worker has exited
func (ws WorkerState) Terminal() bool {
	return ws == WorkerStateRetired || ws == WorkerStateStopped
}

// Worker represents a single worker goroutine owned by a Pool
type Worker struct {
	id    int
	pool  *Pool
	state int32 // atomic state

	// wake carries a single signal from Submit; capacity 1
	wake chan struct{}
	done chan struct{}

	// statistics
	totalProcessed int64
	totalFailed    int64
	lastTaskTime   int64 // Unix nanosecond timestamp
}

func newWorker(id int, pool *Pool) *Worker {
	return &Worker{
		id:    id,
		pool:  pool,
		state: int32(WorkerStateStarting),
		wake:  make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
}

// ID returns the Worker ID
func (w *Worker) ID() int {
	return w.id
}

// State returns the current Worker state
func (w *Worker) State() WorkerState {
	return WorkerState(atomic.LoadInt32(&w.state))
}

// Done returns a channel closed when the worker goroutine exits
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

func (w *Worker) setState(state WorkerState) {
	atomic.StoreInt32(&w.state, int32(state))
}

// run is the worker goroutine body
func (w *Worker) run() {
	defer w.pool.wg.Done()
	defer close(w.done)

	for {
		task, ok := w.next()
		if !ok {
			return
		}
		w.processTask(task)
	}
}

// next returns the next task to run, or false once the worker has
// deregistered itself. Every decision is made while holding the pool lock.
func (w *Worker) next() (types.Task, bool) {
	p := w.pool
	p.mu.Lock()
	defer p.mu.Unlock()

	timedOut := false
	for {
		if task, ok := p.queue.pop(); ok {
			w.setState(WorkerStateRunning)
			p.observeLocked()
			return task, true
		}

		if p.stopping {
			p.deregisterLocked(w, WorkerStateStopped)
			return nil, false
		}

		if timedOut && p.current > p.config.InitThreads {
			p.deregisterLocked(w, WorkerStateRetired)
			return nil, false
		}

		timedOut = w.waitLocked()
	}
}

// waitLocked parks the worker until it is signaled, the pool stops, or
// the idle window elapses. It is entered and left with the pool lock held.
func (w *Worker) waitLocked() (timedOut bool) {
	p := w.pool

	p.idle = append(p.idle, w)
	w.setState(WorkerStateWaiting)
	p.observeLocked()
	timer := p.clock.NewTimer(p.config.IdleTimeout)
	p.mu.Unlock()

	select {
	case <-w.wake:
	case <-p.stopCh:
	case <-timer.C():
		timedOut = true
	}
	timer.Stop()

	p.mu.Lock()
	p.removeIdleLocked(w)
	// a signal that raced the timer is stale now
	select {
	case <-w.wake:
	default:
	}
	p.observeLocked()
	return timedOut
}

// processTask processes a single task
func (w *Worker) processTask(task types.Task) {
	p := w.pool

	if p.config.RateLimiter != nil {
		// the limiter has no deadline, so Wait only fails when a single
		// task exceeds the burst size
		if err := p.config.RateLimiter.Wait(context.Background()); err != nil {
			w.taskLogger(task).WithError(err).Warn("rate limiter rejected task, running it anyway")
		}
	}

	startTime := p.clock.Now()
	atomic.StoreInt64(&w.lastTaskTime, startTime.UnixNano())

	err := w.executeTask(task)

	executionTime := p.clock.Since(startTime)

	failed := err != nil
	if failed {
		atomic.AddInt64(&w.totalFailed, 1)
		w.handleError(err, task)
	} else {
		atomic.AddInt64(&w.totalProcessed, 1)
	}

	p.recordCompletion(executionTime, failed)
}

// executeTask executes a task with panic recovery support
func (w *Worker) executeTask(task types.Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			var buf [4096]byte
			n := runtime.Stack(buf[:], false)

			var cause error
			switch v := r.(type) {
			case error:
				cause = v
			case string:
				cause = errors.New(v)
			default:
				cause = fmt.Errorf("%v", v)
			}

			execErr := types.NewTaskExecutionError(task.ID(), cause)
			execErr.Panicked = true
			execErr.Stack = string(buf[:n])
			execErr.WithContext("worker_id", w.id)

			if failErr := task.Fail(execErr); failErr != nil {
				w.taskLogger(task).WithError(failErr).Warn("could not deliver task panic")
			}
			err = execErr
		}
	}()

	return task.Execute()
}

// handleError hands a task failure to the configured error handler
func (w *Worker) handleError(err error, task types.Task) {
	p := w.pool
	logger := w.taskLogger(task)
	logger.WithError(err).Debug("task failed")

	// a failure raised by the task itself may wrap ErrBrokenPromise too
	if errors.Is(err, types.ErrBrokenPromise) && !types.IsTaskExecutionError(err) {
		logger.Warn("task outcome delivered twice")
	}

	if handler := p.config.ErrorHandler; handler != nil {
		// the handler's verdict is informational only
		_ = handler(err)
	}
}

func (w *Worker) taskLogger(task types.Task) logrus.FieldLogger {
	return w.pool.logger.WithFields(logrus.Fields{
		"worker_id": w.id,
		"task_id":   task.ID(),
	})
}

// Stats gets Worker statistics
func (w *Worker) Stats() WorkerStats {
	return WorkerStats{
		ID:             w.id,
		State:          w.State(),
		TotalProcessed: atomic.LoadInt64(&w.totalProcessed),
		TotalFailed:    atomic.LoadInt64(&w.totalFailed),
		LastTaskTime:   time.Unix(0, atomic.LoadInt64(&w.lastTaskTime)),
	}
}

// WorkerStats defines Worker statistics
type WorkerStats struct {
	ID             int
	State          WorkerState
	TotalProcessed int64
	TotalFailed    int64
	LastTaskTime   time.Time
}

// IsActive checks if Worker is running a task
func (ws WorkerStats) IsActive() bool {
	return ws.State == WorkerStateRunning
}

// IsIdle checks if Worker is waiting for work
func (ws WorkerStats) IsIdle() bool {
	return ws.State == WorkerStateWaiting
}

// GetSuccessRate gets the success rate
func (ws WorkerStats) GetSuccessRate() float64 {
	total := ws.TotalProcessed + ws.TotalFailed
	if total == 0 {
		return 0
	}
	return float64(ws.TotalProcessed) / float64(total)
}

// GetErrorRate gets the error rate
func (ws WorkerStats) GetErrorRate() float64 {
	total := ws.TotalProcessed + ws.TotalFailed
	if total == 0 {
		return 0
	}
	return float64(ws.TotalFailed) / float64(total)
}
