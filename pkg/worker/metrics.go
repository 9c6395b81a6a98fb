package worker

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus collectors for a pool. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	TasksSubmitted prometheus.Counter
	TasksCompleted prometheus.Counter
	TasksFailed    prometheus.Counter
	TasksAbandoned prometheus.Counter
	WorkersSpawned prometheus.Counter
	WorkersRetired prometheus.Counter
	Threads        prometheus.Gauge
	IdleThreads    prometheus.Gauge
	QueueLength    prometheus.Gauge
	TaskLatency    prometheus.Histogram
}

// NewMetrics creates unregistered collectors under namespace and subsystem
func NewMetrics(namespace, subsystem string) *Metrics {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
		})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
		})
	}

	return &Metrics{
		TasksSubmitted: counter("tasks_submitted_total", "Total number of tasks accepted by the pool"),
		TasksCompleted: counter("tasks_completed_total", "Total number of tasks completed successfully"),
		TasksFailed:    counter("tasks_failed_total", "Total number of tasks that returned an error or panicked"),
		TasksAbandoned: counter("tasks_abandoned_total", "Total number of queued tasks failed with a broken promise at shutdown"),
		WorkersSpawned: counter("workers_spawned_total", "Total number of workers spawned"),
		WorkersRetired: counter("workers_retired_total", "Total number of workers that retired after idling"),
		Threads:        gauge("threads", "Current number of live workers"),
		IdleThreads:    gauge("idle_threads", "Current number of workers waiting for work"),
		QueueLength:    gauge("queue_length", "Current number of queued tasks"),
		TaskLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "task_duration_seconds",
			Help:      "Histogram of task execution time",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// Collectors returns every collector, for registration
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.TasksSubmitted,
		m.TasksCompleted,
		m.TasksFailed,
		m.TasksAbandoned,
		m.WorkersSpawned,
		m.WorkersRetired,
		m.Threads,
		m.IdleThreads,
		m.QueueLength,
		m.TaskLatency,
	}
}

// Register registers every collector with reg
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) observePopulation(threads, idle, queued int) {
	if m == nil {
		return
	}
	m.Threads.Set(float64(threads))
	m.IdleThreads.Set(float64(idle))
	m.QueueLength.Set(float64(queued))
}

func (m *Metrics) taskSubmitted() {
	if m == nil {
		return
	}
	m.TasksSubmitted.Inc()
}

func (m *Metrics) taskFinished(d time.Duration, failed bool) {
	if m == nil {
		return
	}
	if failed {
		m.TasksFailed.Inc()
	} else {
		m.TasksCompleted.Inc()
	}
	m.TaskLatency.Observe(d.Seconds())
}

func (m *Metrics) tasksAbandoned(n int) {
	if m == nil {
		return
	}
	m.TasksAbandoned.Add(float64(n))
}

func (m *Metrics) workerSpawned() {
	if m == nil {
		return
	}
	m.WorkersSpawned.Inc()
}

func (m *Metrics) workerRetired() {
	if m == nil {
		return
	}
	m.WorkersRetired.Inc()
}
