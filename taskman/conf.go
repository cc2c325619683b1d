package taskman

import (
	"runtime"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultMonitorInterval is the progress monitor's tick interval when
	// none is configured.
	DefaultMonitorInterval = 2 * time.Second

	// DefaultBoundMultiplier is the in-flight bound multiplier when none
	// is configured: a manager keeps at most workers × multiplier tasks
	// submitted but not yet consumed.
	DefaultBoundMultiplier = 2
)

// ExecutorOption configures an Executor.
type ExecutorOption func(*executorConfig)

type executorConfig struct {
	workers   int
	queueSize int
	limiter   *rate.Limiter
	pin       bool
	onStart   func(id int64)
	onEnd     func(id int64, d time.Duration, err error)
}

// WithWorkers sets the number of pool workers. The pool size is fixed for
// the executor's lifetime and is the unit of the manager's backpressure
// bound. Values < 1 fall back to the default, runtime.GOMAXPROCS(0).
func WithWorkers(n int) ExecutorOption {
	return func(cfg *executorConfig) {
		cfg.workers = n
	}
}

// WithQueueSize sets a floor for the internal task-queue capacity. The
// manager raises the capacity to its in-flight bound when it opens the
// executor, so bounded submission never blocks handing a task over; the
// option only matters when a larger buffer is wanted. Values < 1 fall
// back to the worker count.
func WithQueueSize(n int) ExecutorOption {
	return func(cfg *executorConfig) {
		cfg.queueSize = n
	}
}

// WithRateLimit enables rate limiting for task execution. Each worker
// waits for the shared limiter before running a task, smoothing
// throughput to tasksPerSecond with the given burst. Useful when the
// callables hit an external service that must not be overwhelmed.
// A non-positive rate or burst leaves execution unthrottled.
func WithRateLimit(tasksPerSecond float64, burst int) ExecutorOption {
	return func(cfg *executorConfig) {
		if tasksPerSecond > 0 && burst > 0 {
			cfg.limiter = rate.NewLimiter(rate.Limit(tasksPerSecond), burst)
		}
	}
}

// WithPinnedWorkers locks each worker goroutine to an OS thread and, on
// platforms that support it, pins the thread to a CPU core. Worth trying
// for long CPU-bound workloads; a no-op beyond the thread lock elsewhere.
func WithPinnedWorkers() ExecutorOption {
	return func(cfg *executorConfig) {
		cfg.pin = true
	}
}

// WithTaskStartHook registers fn to run on the worker goroutine just
// before a task's callable is invoked.
func WithTaskStartHook(fn func(id int64)) ExecutorOption {
	return func(cfg *executorConfig) {
		cfg.onStart = fn
	}
}

// WithTaskEndHook registers fn to run on the worker goroutine after a
// task's callable returned (or panicked), with the measured duration and
// the outcome error. The metrics package plugs in here.
func WithTaskEndHook(fn func(id int64, d time.Duration, err error)) ExecutorOption {
	return func(cfg *executorConfig) {
		cfg.onEnd = fn
	}
}

func newExecutorConfig(opts ...ExecutorOption) *executorConfig {
	cfg := &executorConfig{
		workers: runtime.GOMAXPROCS(0),
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.workers < 1 {
		cfg.workers = runtime.GOMAXPROCS(0)
	}
	if cfg.queueSize < 1 {
		cfg.queueSize = cfg.workers
	}
	return cfg
}

// ManagerOption configures a Manager.
type ManagerOption func(*managerConfig)

type managerConfig struct {
	policy     ErrorPolicy
	reporter   Reporter
	interval   time.Duration
	multiplier int
}

// WithPolicy sets the error policy. The default is PolicyRaise.
func WithPolicy(p ErrorPolicy) ManagerOption {
	return func(cfg *managerConfig) {
		cfg.policy = p
	}
}

// WithReporter sets the reporting collaborator that receives progress
// reports and, under PolicyLog, task failures. The default reporter
// writes to the standard logger returned by NewLogReporter(nil).
func WithReporter(r Reporter) ManagerOption {
	return func(cfg *managerConfig) {
		cfg.reporter = r
	}
}

// WithMonitorInterval sets the progress monitor's tick interval. Zero
// disables the monitor entirely; negative values fall back to
// DefaultMonitorInterval.
func WithMonitorInterval(d time.Duration) ManagerOption {
	return func(cfg *managerConfig) {
		cfg.interval = d
	}
}

// WithBoundMultiplier sets the in-flight bound to workers × m. The bound
// is what keeps pending work proportional to the pool rather than the
// source, and what limits how many tasks a cancellation can abandon.
// Values < 1 fall back to DefaultBoundMultiplier.
func WithBoundMultiplier(m int) ManagerOption {
	return func(cfg *managerConfig) {
		cfg.multiplier = m
	}
}

func newManagerConfig(opts ...ManagerOption) *managerConfig {
	cfg := &managerConfig{
		policy:     PolicyRaise,
		interval:   DefaultMonitorInterval,
		multiplier: DefaultBoundMultiplier,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.interval < 0 {
		cfg.interval = DefaultMonitorInterval
	}
	if cfg.multiplier < 1 {
		cfg.multiplier = DefaultBoundMultiplier
	}
	if cfg.reporter == nil {
		cfg.reporter = NewLogReporter(nil)
	}
	return cfg
}
