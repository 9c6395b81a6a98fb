package worker

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jzx17/dpool/pkg/types"
)

// Pool is a worker pool that grows on demand up to MaxThreads and lets
// idle workers retire down to InitThreads.
type Pool struct {
	id      string
	config  *PoolConfig
	clock   types.Clock
	logger  logrus.FieldLogger
	metrics *Metrics

	// mu guards the queue, the population counters and the registry as one unit
	mu           sync.Mutex
	queue        *taskQueue
	idle         []*Worker
	workers      map[int]*Worker
	current      int
	stopping     bool
	nextWorkerID int

	// stopCh is closed once to wake every waiting worker
	stopCh chan struct{}
	// wg counts worker goroutines; Add happens under mu before stopping
	wg       sync.WaitGroup
	stopOnce sync.Once
	closed   chan struct{}

	// statistics
	totalSubmitted int64
	totalCompleted int64
	totalFailed    int64
	totalAbandoned int64
	totalSpawned   int64
	totalRetired   int64
	totalExecNanos int64
}

var _ types.ThreadPool = (*Pool)(nil)

// NewPool creates a pool and spawns config.InitThreads workers
func NewPool(config *PoolConfig) (*Pool, error) {
	if config == nil {
		config = DefaultPoolConfig()
	}

	cfg, err := config.normalize()
	if err != nil {
		return nil, err
	}

	p := &Pool{
		id:      uuid.NewString(),
		config:  cfg,
		clock:   cfg.Clock,
		metrics: cfg.Metrics,
		queue:   newTaskQueue(cfg.MaxThreads),
		idle:    make([]*Worker, 0, cfg.MaxThreads),
		workers: make(map[int]*Worker, cfg.MaxThreads),
		stopCh:  make(chan struct{}),
		closed:  make(chan struct{}),
	}
	p.logger = cfg.Logger.WithField("pool_id", p.id)

	p.mu.Lock()
	for i := 0; i < cfg.InitThreads; i++ {
		p.spawnLocked()
	}
	p.observeLocked()
	p.mu.Unlock()

	p.logger.WithFields(logrus.Fields{
		"max_threads":  cfg.MaxThreads,
		"init_threads": cfg.InitThreads,
		"idle_timeout": cfg.IdleTimeout,
	}).Debug("pool created")

	return p, nil
}

// Submit binds fn to a new future and enqueues it on p
func Submit[R any](p *Pool, fn func() (R, error)) (*Future[R], error) {
	if fn == nil {
		return nil, types.ErrNilTask
	}

	task := newBoundTask(fn, p.clock)
	if err := p.Submit(task); err != nil {
		return nil, err
	}
	return task.future, nil
}

// SubmitFunc enqueues a function without a result
func SubmitFunc(p *Pool, fn func()) (*Future[struct{}], error) {
	if fn == nil {
		return nil, types.ErrNilTask
	}
	return Submit(p, func() (struct{}, error) {
		fn()
		return struct{}{}, nil
	})
}

// Submit enqueues a task. An idle worker is woken if there is one,
// otherwise a new worker is spawned while below MaxThreads, otherwise the
// task waits for the next worker to free up.
func (p *Pool) Submit(task types.Task) error {
	if task == nil {
		return types.ErrNilTask
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopping {
		return types.ErrPoolStopped
	}

	p.queue.push(task)
	atomic.AddInt64(&p.totalSubmitted, 1)
	p.metrics.taskSubmitted()

	if n := len(p.idle); n > 0 {
		// most recently parked first, so the oldest waiters are the ones that time out
		w := p.idle[n-1]
		p.idle = p.idle[:n-1]
		select {
		case w.wake <- struct{}{}:
		default:
		}
	} else if p.current < p.config.MaxThreads {
		p.spawnLocked()
	}

	p.observeLocked()
	return nil
}

// spawnLocked registers and starts one worker
func (p *Pool) spawnLocked() {
	id := p.nextWorkerID
	p.nextWorkerID++

	w := newWorker(id, p)
	p.workers[id] = w
	p.current++
	p.wg.Add(1)
	atomic.AddInt64(&p.totalSpawned, 1)
	p.metrics.workerSpawned()

	go w.run()

	p.logger.WithFields(logrus.Fields{"worker_id": id, "threads": p.current}).Debug("worker spawned")
}

// deregisterLocked removes w from the registry as its final transition
func (p *Pool) deregisterLocked(w *Worker, state WorkerState) {
	p.removeIdleLocked(w)
	delete(p.workers, w.id)
	p.current--
	w.setState(state)
	p.observeLocked()

	if state == WorkerStateRetired {
		atomic.AddInt64(&p.totalRetired, 1)
		p.metrics.workerRetired()
		p.logger.WithFields(logrus.Fields{"worker_id": w.id, "threads": p.current}).Debug("worker retired")
		return
	}
	p.logger.WithFields(logrus.Fields{"worker_id": w.id, "threads": p.current}).Debug("worker stopped")
}

func (p *Pool) removeIdleLocked(w *Worker) {
	for i, idle := range p.idle {
		if idle == w {
			p.idle = append(p.idle[:i], p.idle[i+1:]...)
			return
		}
	}
}

func (p *Pool) observeLocked() {
	p.metrics.observePopulation(p.current, len(p.idle), p.queue.len())
}

func (p *Pool) recordCompletion(d time.Duration, failed bool) {
	if failed {
		atomic.AddInt64(&p.totalFailed, 1)
	} else {
		atomic.AddInt64(&p.totalCompleted, 1)
	}
	atomic.AddInt64(&p.totalExecNanos, int64(d))
	p.metrics.taskFinished(d, failed)
}

// ID returns the pool instance ID
func (p *Pool) ID() string {
	return p.id
}

// ThreadCount returns the number of live workers
func (p *Pool) ThreadCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// IdleThreadCount returns the number of workers waiting for work
func (p *Pool) IdleThreadCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.idle)
}

// MaxThreads returns the effective worker ceiling
func (p *Pool) MaxThreads() int {
	return p.config.MaxThreads
}

// InitThreads returns the retirement floor
func (p *Pool) InitThreads() int {
	return p.config.InitThreads
}

// IdleTimeout returns the worker wait window
func (p *Pool) IdleTimeout() time.Duration {
	return p.config.IdleTimeout
}

// QueueLength returns the number of queued tasks
func (p *Pool) QueueLength() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queue.len()
}

// IsStopping reports whether shutdown has begun
func (p *Pool) IsStopping() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopping
}

// Stats returns pool statistics
func (p *Pool) Stats() types.PoolStats {
	p.mu.Lock()
	stats := types.PoolStats{
		PoolID:      p.id,
		Threads:     p.current,
		IdleThreads: len(p.idle),
		MaxThreads:  p.config.MaxThreads,
		InitThreads: p.config.InitThreads,
		QueueLength: p.queue.len(),
		Stopping:    p.stopping,
	}
	p.mu.Unlock()

	stats.TotalSubmitted = atomic.LoadInt64(&p.totalSubmitted)
	stats.TotalCompleted = atomic.LoadInt64(&p.totalCompleted)
	stats.TotalFailed = atomic.LoadInt64(&p.totalFailed)
	stats.TotalAbandoned = atomic.LoadInt64(&p.totalAbandoned)
	stats.TotalSpawned = atomic.LoadInt64(&p.totalSpawned)
	stats.TotalRetired = atomic.LoadInt64(&p.totalRetired)

	if finished := stats.TotalCompleted + stats.TotalFailed; finished > 0 {
		stats.AverageExecutionTime = time.Duration(atomic.LoadInt64(&p.totalExecNanos) / finished)
	}
	return stats
}

// GetWorkerStats returns statistics for every live worker, ordered by ID
func (p *Pool) GetWorkerStats() []WorkerStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	stats := make([]WorkerStats, 0, len(p.workers))
	for _, w := range p.workers {
		stats = append(stats, w.Stats())
	}
	slices.SortFunc(stats, func(a, b WorkerStats) int {
		return a.ID - b.ID
	})
	return stats
}

// Shutdown stops accepting tasks, wakes every waiting worker and waits
// until all workers have exited. Workers drain tasks already queued before
// exiting; no worker is spawned to help. If ctx ends first its error is
// returned and the join carries on in the background.
//
// The join waits for the calling goroutine too when it is one of the
// pool's workers, so a task must not call Close or Shutdown without a
// deadline on its own pool: that call never returns. A task that needs to
// stop its pool should pass a context with a deadline and ignore the
// error, or hand the call to another goroutine.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.stopOnce.Do(func() {
		p.mu.Lock()
		p.stopping = true
		close(p.stopCh)
		threads := p.current
		p.mu.Unlock()

		p.logger.WithField("threads", threads).Debug("pool stopping")
		go p.join()
	})

	select {
	case <-p.closed:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for workers to stop: %w", ctx.Err())
	}
}

// Close stops the pool and blocks until every worker has exited.
// It must not be called from a task running on p; see Shutdown.
func (p *Pool) Close() error {
	return p.Shutdown(context.Background())
}

// join waits for every worker, then fails whatever is still queued
func (p *Pool) join() {
	p.wg.Wait()

	p.mu.Lock()
	leftover := p.queue.drain()
	p.observeLocked()
	p.mu.Unlock()

	for _, task := range leftover {
		if err := task.Fail(fmt.Errorf("task %s never ran: %w", task.ID(), types.ErrBrokenPromise)); err != nil {
			p.logger.WithField("task_id", task.ID()).WithError(err).Warn("could not fail abandoned task")
		}
	}
	if n := len(leftover); n > 0 {
		atomic.AddInt64(&p.totalAbandoned, int64(n))
		p.metrics.tasksAbandoned(n)
		p.logger.WithField("tasks", n).Warn("abandoned queued tasks at shutdown")
	}

	close(p.closed)
	p.logger.Debug("pool closed")
}
