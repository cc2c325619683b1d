package taskman

import (
	"context"
	"iter"
	"sync/atomic"
)

// Manager orchestrates one bounded drain of submitted work across an
// Executor: it owns the backpressure bound, the completion channel, the
// error-policy decision and the consumption modes (blocking Run, lazy
// AsCompleted).
//
// Submission is lazy. Submit and Map record work; the drain pulls it,
// keeping at most workers × multiplier tasks in flight, so a source of
// any size starts doing work immediately and a cancellation abandons at
// most bound tasks. Consumed tasks are retained for CompletedTasks, so
// memory grows with completions, never with how far the source reaches
// ahead of them.
//
// A Manager is driven by one orchestrating goroutine: Submit, Map, Run,
// AsCompleted and Close must all be called from the same goroutine.
// Workers and the progress monitor are the only other actors, and the
// completion channel is the only structure shared with them.
//
// Type parameters:
//   - T: The source element type consumed by Map
//   - R: The result type
type Manager[T any, R any] struct {
	exec       *Executor[T, R]
	policy     ErrorPolicy
	reporter   Reporter
	multiplier int
	mon        *monitor

	completions chan *completion[T, R]

	// Submission source: segments are consumed in submission order, a
	// cursor per drain. Eager segments hold tasks built by Submit; lazy
	// segments hold a Map source pulled one element at a time.
	segments []segment[T, R]
	segIdx   int
	taskIdx  int
	pull     func() (T, bool)
	stopPull func()

	state     atomic.Int32
	inflight  int
	submitted atomic.Int64
	consumed  atomic.Int64
	completed []*Task[T, R]
	nextID    int64
	runErr    error
	closed    bool
}

type segment[T any, R any] struct {
	tasks []*Task[T, R]
	seq   iter.Seq[T]
	fn    ProcessFunc[T, R]
}

// NewManager creates a manager that drains tasks through exec.
//
// Default configuration:
//   - error policy: PolicyRaise
//   - monitor interval: DefaultMonitorInterval (0 disables)
//   - bound multiplier: DefaultBoundMultiplier
//   - reporter: NewLogReporter(nil)
//
// NewManager panics when exec is nil or already claimed by another
// manager; an executor carries pool state for exactly one drain.
//
// Example:
//
//	exec := taskman.NewExecutor[int, int](taskman.WithWorkers(4))
//	tm := taskman.NewManager(exec, taskman.WithPolicy(taskman.PolicyLog))
//	defer tm.Close()
func NewManager[T any, R any](exec *Executor[T, R], opts ...ManagerOption) *Manager[T, R] {
	if exec == nil {
		panic("taskman: NewManager called with nil executor")
	}
	if !exec.claim() {
		panic("taskman: executor already claimed by another manager")
	}

	cfg := newManagerConfig(opts...)
	return &Manager[T, R]{
		exec:       exec,
		policy:     cfg.policy,
		reporter:   cfg.reporter,
		multiplier: cfg.multiplier,
		mon:        newMonitor(cfg.interval, cfg.reporter, exec.completedCount),
	}
}

// Submit enqueues one bound call. The call executes during the drain,
// subject to the in-flight bound. Returns ErrClosed once the drain has
// moved past submission (draining, terminal, or closed).
func (m *Manager[T, R]) Submit(call Call[R]) error {
	if call == nil {
		panic("taskman: Submit called with nil call")
	}
	if !m.accepting() {
		return ErrClosed
	}

	m.nextID++
	t := &Task[T, R]{id: m.nextID, call: call}
	m.segments = append(m.segments, segment[T, R]{tasks: []*Task[T, R]{t}})
	return nil
}

// Map enqueues one task per element of src, processed by fn. Elements
// are pulled only as the bound admits them, so src may be arbitrarily
// large or infinite. Fixed auxiliary arguments belong in fn's closure.
// Returns ErrClosed once the drain has moved past submission.
func (m *Manager[T, R]) Map(fn ProcessFunc[T, R], src iter.Seq[T]) error {
	if fn == nil {
		panic("taskman: Map called with nil process func")
	}
	if src == nil {
		panic("taskman: Map called with nil source")
	}
	if !m.accepting() {
		return ErrClosed
	}

	m.segments = append(m.segments, segment[T, R]{seq: src, fn: fn})
	return nil
}

// MapSlice is Map over a slice source.
func (m *Manager[T, R]) MapSlice(fn ProcessFunc[T, R], src []T) error {
	return m.Map(fn, func(yield func(T) bool) {
		for _, v := range src {
			if !yield(v) {
				return
			}
		}
	})
}

// Run drains every enqueued task to completion, applying the error
// policy to each consumed outcome. It blocks until all submitted tasks
// have been consumed, the first error halts the drain under PolicyRaise,
// or ctx is cancelled.
//
// Run returns nil after a full drain, a *TaskError when PolicyRaise
// halted it, or ctx.Err() on cancellation; cancellation is never
// swallowed, whatever the policy. Calling Run on an already-terminal
// manager is a no-op returning nil.
func (m *Manager[T, R]) Run(ctx context.Context) error {
	active, err := m.begin()
	if err != nil {
		return err
	}
	if !active {
		return nil
	}

	for {
		more, err := m.topUp(ctx)
		if err != nil {
			return err
		}
		if !more {
			if m.inflight == 0 {
				m.finish()
				return nil
			}
			m.state.Store(int32(StateDraining))
		}
		if _, err := m.awaitCompletion(ctx); err != nil {
			return err
		}
	}
}

// Close is the scope exit: it drains any remaining work with a blocking
// run, shuts the executor down gracefully and stops the monitor. Every
// path releases the pool, including the error paths; a drain halted by
// PolicyRaise or cancellation has already shut the executor down, and
// Close is then a cheap no-op. Idempotent; meant to be deferred right
// after NewManager.
//
// When Close itself performs the drain, it returns the drain's error.
func (m *Manager[T, R]) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true

	if m.terminal() {
		return nil
	}
	return m.Run(context.Background())
}

// CompletedTasks returns the consumed tasks in completion order. After a
// full drain it holds every submitted task; after a halted one, those
// consumed before the halt.
func (m *Manager[T, R]) CompletedTasks() []*Task[T, R] { return m.completed }

// Submitted returns the number of tasks handed to the pool so far.
func (m *Manager[T, R]) Submitted() int64 { return m.submitted.Load() }

// Completed returns the number of completions consumed so far.
func (m *Manager[T, R]) Completed() int64 { return m.consumed.Load() }

// InFlight returns the number of tasks submitted but not yet consumed.
// It never exceeds Bound.
func (m *Manager[T, R]) InFlight() int {
	return int(m.submitted.Load() - m.consumed.Load())
}

// Bound returns the in-flight bound: pool size × multiplier.
func (m *Manager[T, R]) Bound() int { return m.exec.workers * m.multiplier }

// State returns the manager's run state.
func (m *Manager[T, R]) State() RunState { return RunState(m.state.Load()) }

// Err returns the error that halted the drain: the *TaskError raised
// under PolicyRaise, the cancellation cause, or ErrClosed when the pool
// was gone before the drain began. Nil while running and after a full
// drain.
func (m *Manager[T, R]) Err() error { return m.runErr }

func (m *Manager[T, R]) terminal() bool {
	s := m.State()
	return s == StateDone || s == StateCancelled
}

func (m *Manager[T, R]) accepting() bool {
	if m.closed {
		return false
	}
	s := m.State()
	return s == StateIdle || s == StateSubmitting
}

// begin opens the executor and starts the monitor on the first drain
// entry. Reports false when the manager is already terminal; subsequent
// entries resume the drain in progress.
func (m *Manager[T, R]) begin() (bool, error) {
	switch m.State() {
	case StateDone, StateCancelled:
		return false, nil
	case StateSubmitting, StateDraining:
		return true, nil
	}

	bound := m.Bound()
	m.completions = make(chan *completion[T, R], bound)
	if err := m.exec.open(m.completions, bound); err != nil {
		m.state.Store(int32(StateCancelled))
		m.runErr = err
		return false, err
	}
	m.mon.start()
	m.state.Store(int32(StateSubmitting))
	return true, nil
}

// topUp pulls from the source and submits until the in-flight count
// reaches the bound or the source is exhausted. Reports whether the
// source still has elements. Cancellation is checked before every pull,
// which keeps the source-side blocking point responsive.
func (m *Manager[T, R]) topUp(ctx context.Context) (bool, error) {
	bound := m.Bound()
	for m.inflight < bound {
		if err := ctx.Err(); err != nil {
			return false, m.abort(err)
		}
		t, ok := m.nextTask()
		if !ok {
			return false, nil
		}
		if err := m.exec.submit(t); err != nil {
			return false, m.abort(err)
		}
		m.inflight++
		m.submitted.Add(1)
	}
	return true, nil
}

// nextTask advances the submission cursor to the next task, crossing
// segment boundaries as needed.
func (m *Manager[T, R]) nextTask() (*Task[T, R], bool) {
	for {
		if m.pull != nil {
			v, ok := m.pull()
			if !ok {
				m.releaseSource()
				m.segIdx++
				continue
			}
			fn := m.segments[m.segIdx].fn
			m.nextID++
			return &Task[T, R]{
				id:    m.nextID,
				input: v,
				call: func(ctx context.Context) (R, error) {
					return fn(ctx, v)
				},
			}, true
		}

		if m.segIdx >= len(m.segments) {
			return nil, false
		}

		seg := &m.segments[m.segIdx]
		if seg.seq != nil {
			m.pull, m.stopPull = iter.Pull(seg.seq)
			continue
		}
		if m.taskIdx < len(seg.tasks) {
			t := seg.tasks[m.taskIdx]
			m.taskIdx++
			return t, true
		}
		m.taskIdx = 0
		m.segIdx++
	}
}

// awaitCompletion blocks for one envelope, records the task and applies
// the error policy. This is the channel-side blocking point; ctx
// interrupts it and cancels the drain.
func (m *Manager[T, R]) awaitCompletion(ctx context.Context) (*Task[T, R], error) {
	select {
	case c := <-m.completions:
		m.inflight--
		m.consumed.Add(1)
		m.completed = append(m.completed, c.task)
		if c.err != nil {
			if err := m.applyPolicy(c); err != nil {
				return c.task, err
			}
		}
		return c.task, nil
	case <-ctx.Done():
		return nil, m.abort(ctx.Err())
	}
}

// applyPolicy routes one error outcome. Only PolicyRaise produces an
// error, halting the drain.
func (m *Manager[T, R]) applyPolicy(c *completion[T, R]) error {
	switch m.policy {
	case PolicyRaise:
		return m.abort(&TaskError{ID: c.task.id, Err: c.err})
	case PolicyLog:
		m.reporter.TaskFailed(c.task.id, c.err)
	}
	return nil
}

// abort halts the drain without waiting for in-flight tasks: at most
// Bound of them are abandoned. Returns err for convenience.
func (m *Manager[T, R]) abort(err error) error {
	m.state.Store(int32(StateCancelled))
	m.runErr = err
	m.releaseSource()
	m.mon.stop()
	m.exec.Shutdown(false)
	return err
}

// finish completes a fully consumed drain: the executor is already idle,
// so the graceful shutdown returns promptly.
func (m *Manager[T, R]) finish() {
	m.releaseSource()
	m.mon.stop()
	m.exec.Shutdown(true)
	m.state.Store(int32(StateDone))
}

// releaseSource stops the active lazy-segment pull, releasing its
// iterator goroutine.
func (m *Manager[T, R]) releaseSource() {
	if m.stopPull != nil {
		m.stopPull()
	}
	m.pull, m.stopPull = nil, nil
}
