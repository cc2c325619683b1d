// Package metrics exposes Prometheus instrumentation for task execution.
// A Metrics value plugs straight into an executor through the task hooks:
//
//	m := metrics.New(prometheus.DefaultRegisterer)
//	exec := taskman.NewExecutor[string, int](
//	    taskman.WithTaskStartHook(m.TaskStart),
//	    taskman.WithTaskEndHook(m.TaskEnd),
//	)
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "taskme"
	subsystem = "tasks"
)

// Metrics holds the collectors for one executor's task flow.
type Metrics struct {
	// TasksStarted counts callables handed to a worker.
	TasksStarted prometheus.Counter
	// TasksCompleted counts callables that returned, whatever the outcome.
	TasksCompleted prometheus.Counter
	// TasksFailed counts callables that returned an error or panicked.
	TasksFailed prometheus.Counter
	// TasksExecuting tracks callables currently on a worker.
	TasksExecuting prometheus.Gauge
	// TaskDuration observes per-task wall time in seconds.
	TaskDuration prometheus.Histogram
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		TasksStarted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "started_total",
			Help:      "Number of tasks handed to a worker.",
		}),
		TasksCompleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "completed_total",
			Help:      "Number of tasks that finished executing.",
		}),
		TasksFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "failed_total",
			Help:      "Number of tasks that finished with an error.",
		}),
		TasksExecuting: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "executing",
			Help:      "Number of tasks currently executing.",
		}),
		TaskDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "duration_seconds",
			Help:      "Per-task execution time in seconds.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// TaskStart records a task entering execution. Matches the executor's
// start-hook signature.
func (m *Metrics) TaskStart(id int64) {
	m.TasksStarted.Inc()
	m.TasksExecuting.Inc()
}

// TaskEnd records a finished task with its duration and outcome. Matches
// the executor's end-hook signature.
func (m *Metrics) TaskEnd(id int64, d time.Duration, err error) {
	m.TasksExecuting.Dec()
	m.TasksCompleted.Inc()
	m.TaskDuration.Observe(d.Seconds())
	if err != nil {
		m.TasksFailed.Inc()
	}
}
