package worker

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jzx17/dpool/internal/testutils"
)

func TestMetrics_Register(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics("dpool", "test")

	require.NoError(t, metrics.Register(reg))
	assert.Len(t, metrics.Collectors(), 10)

	// registering the same collectors twice is rejected
	assert.Error(t, metrics.Register(reg))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var metrics *Metrics

	assert.NotPanics(t, func() {
		metrics.observePopulation(1, 1, 1)
		metrics.taskSubmitted()
		metrics.taskFinished(0, true)
		metrics.tasksAbandoned(3)
		metrics.workerSpawned()
		metrics.workerRetired()
	})
}

func TestPool_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics("dpool", "pool")
	require.NoError(t, metrics.Register(reg))

	pool, err := NewPool(&PoolConfig{MaxThreads: 2, AllowOversubscribe: true, Metrics: metrics})
	require.NoError(t, err)

	futures := make([]*Future[int], 0, 5)
	for i := 0; i < 5; i++ {
		f, err := Submit(pool, func() (int, error) {
			if i == 4 {
				return 0, errors.New("last fails")
			}
			return i, nil
		})
		require.NoError(t, err)
		futures = append(futures, f)
	}
	for _, f := range futures {
		_, _ = f.Get()
	}

	testutils.AssertEventually(t, func() bool {
		return testutil.ToFloat64(metrics.TasksCompleted) == 4 &&
			testutil.ToFloat64(metrics.TasksFailed) == 1
	})
	assert.Equal(t, float64(5), testutil.ToFloat64(metrics.TasksSubmitted))
	assert.LessOrEqual(t, testutil.ToFloat64(metrics.WorkersSpawned), float64(2))
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.TaskLatency))

	require.NoError(t, pool.Close())

	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.Threads))
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.IdleThreads))
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.QueueLength))
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.TasksAbandoned))
}

func TestPool_MetricsAbandoned(t *testing.T) {
	metrics := NewMetrics("dpool", "abandon")
	pool, err := NewPool(&PoolConfig{MaxThreads: 1, Metrics: metrics})
	require.NoError(t, err)

	pool.mu.Lock()
	pool.queue.push(newBoundTask(func() (int, error) { return 0, nil }, nil))
	pool.queue.push(newBoundTask(func() (int, error) { return 0, nil }, nil))
	pool.mu.Unlock()

	require.NoError(t, pool.Close())
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.TasksAbandoned))
}
