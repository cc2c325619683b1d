package taskman

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Executor wraps a fixed-size pool of worker goroutines behind the
// adapter contract a Manager drives: accepted tasks eventually execute
// on a worker and produce exactly one completion envelope, even when the
// callable errors or panics. Pool size is fixed at construction and is
// the unit of the manager's backpressure bound.
//
// An Executor belongs to one Manager for one drain; construct a fresh
// pair per run.
//
// Type parameters:
//   - T: The source element type for Map submissions
//   - R: The result type
type Executor[T any, R any] struct {
	workers  int
	queueCap int
	limiter  *rate.Limiter
	pin      bool
	onStart  func(id int64)
	onEnd    func(id int64, d time.Duration, err error)

	// ctx is cancelled on immediate shutdown so running calls that honor
	// their context can bail out.
	ctx    context.Context
	cancel context.CancelFunc

	tasks chan *Task[T, R]
	out   chan<- *completion[T, R]

	started   atomic.Bool
	closed    atomic.Bool
	claimed   atomic.Bool
	stop      chan struct{}
	done      chan struct{}
	completed atomic.Int64
}

// NewExecutor creates an executor with the given options.
//
// Default configuration:
//   - workers: runtime.GOMAXPROCS(0)
//   - queue size: equal to the worker count
//   - no rate limit, no pinning, no hooks
//
// Example:
//
//	exec := taskman.NewExecutor[string, int](
//	    taskman.WithWorkers(8),
//	    taskman.WithRateLimit(100, 10),
//	)
func NewExecutor[T any, R any](opts ...ExecutorOption) *Executor[T, R] {
	cfg := newExecutorConfig(opts...)
	ctx, cancel := context.WithCancel(context.Background())
	return &Executor[T, R]{
		workers:  cfg.workers,
		queueCap: cfg.queueSize,
		limiter:  cfg.limiter,
		pin:      cfg.pin,
		onStart:  cfg.onStart,
		onEnd:    cfg.onEnd,
		ctx:      ctx,
		cancel:   cancel,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Size returns the fixed number of pool workers.
func (e *Executor[T, R]) Size() int { return e.workers }

// Done returns a channel closed once every worker has exited. After an
// immediate shutdown it closes as soon as the workers finish whatever
// call they were in, which is the earliest the pool is truly quiescent.
func (e *Executor[T, R]) Done() <-chan struct{} { return e.done }

// completedCount returns the cumulative number of completion envelopes
// produced. The progress monitor samples it.
func (e *Executor[T, R]) completedCount() int64 { return e.completed.Load() }

// claim marks the executor as owned by a manager. Reports false when a
// manager already claimed it.
func (e *Executor[T, R]) claim() bool {
	return e.claimed.CompareAndSwap(false, true)
}

// open wires the completion channel and launches the workers. The task
// queue capacity is raised to bound so that bounded submission never
// blocks handing a task over.
func (e *Executor[T, R]) open(out chan<- *completion[T, R], bound int) error {
	if e.closed.Load() {
		return ErrClosed
	}
	if !e.started.CompareAndSwap(false, true) {
		return ErrClosed
	}

	e.out = out
	e.tasks = make(chan *Task[T, R], max(e.queueCap, bound))

	var g errgroup.Group
	for i := range e.workers {
		g.Go(func() error {
			return e.worker(i)
		})
	}

	go func() {
		_ = g.Wait()
		close(e.done)
	}()

	return nil
}

// submit hands one task to the pool. Fails with ErrClosed only after
// shutdown; on acceptance the task will eventually execute and exactly
// one completion envelope will be delivered for it.
func (e *Executor[T, R]) submit(t *Task[T, R]) error {
	if e.closed.Load() {
		return ErrClosed
	}
	select {
	case e.tasks <- t:
		return nil
	case <-e.stop:
		return ErrClosed
	}
}

// Shutdown stops the pool. With wait true it stops intake, lets the
// workers finish every already-accepted task and returns once they have
// all exited. With wait false it stops intake, signals the workers to
// exit after their current call, cancels the execution context and
// returns immediately; tasks still queued are abandoned.
//
// Goroutines cannot be preempted: with wait false a running call that
// ignores its context runs to completion before its worker exits, unlike
// operating-system processes which could be killed outright. Use Done to
// observe actual quiescence.
//
// Shutdown is idempotent. A second call with wait true blocks until the
// workers from the first shutdown have exited.
func (e *Executor[T, R]) Shutdown(wait bool) {
	if !e.closed.CompareAndSwap(false, true) {
		if wait && e.started.Load() {
			<-e.done
		}
		return
	}

	if !e.started.Load() {
		close(e.done)
		e.cancel()
		return
	}

	if wait {
		close(e.tasks)
		<-e.done
		e.cancel()
		return
	}

	close(e.stop)
	e.cancel()
}
