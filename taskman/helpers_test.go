package taskman

import (
	"context"
	"sync"
	"testing"
	"time"
)

// recordReporter captures progress reports and failure reports for
// assertions. Safe for use from the monitor goroutine.
type recordReporter struct {
	mu       sync.Mutex
	progress []progressReport
	failures []failureReport
}

type progressReport struct {
	count    int
	interval time.Duration
}

type failureReport struct {
	id  int64
	err error
}

func (r *recordReporter) Progress(count int, interval time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = append(r.progress, progressReport{count: count, interval: interval})
}

func (r *recordReporter) TaskFailed(id int64, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, failureReport{id: id, err: err})
}

// reportCount returns the number of progress reports received.
func (r *recordReporter) reportCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.progress)
}

// progressTotal returns the sum of all reported completion deltas.
func (r *recordReporter) progressTotal() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0
	for _, p := range r.progress {
		total += p.count
	}
	return total
}

func (r *recordReporter) failureCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.failures)
}

func (r *recordReporter) failedIDs() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]int64, 0, len(r.failures))
	for _, f := range r.failures {
		ids = append(ids, f.id)
	}
	return ids
}

// newTestManager builds an executor/manager pair for tests. The monitor
// is disabled unless a test re-enables it through opts, and the manager
// is closed during cleanup so a failing test never leaks the pool.
func newTestManager(t *testing.T, workers int, opts ...ManagerOption) *Manager[int, int] {
	t.Helper()

	exec := NewExecutor[int, int](WithWorkers(workers))
	opts = append([]ManagerOption{WithMonitorInterval(0)}, opts...)
	tm := NewManager(exec, opts...)
	t.Cleanup(func() { _ = tm.Close() })
	return tm
}

// instantCall returns a call that completes immediately with v.
func instantCall(v int) Call[int] {
	return func(ctx context.Context) (int, error) {
		return v, nil
	}
}

// sleepCall returns a call that sleeps for d but honors ctx, so an
// immediate shutdown interrupts it.
func sleepCall(d time.Duration) Call[int] {
	return func(ctx context.Context) (int, error) {
		select {
		case <-time.After(d):
			return 0, nil
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
}

// failCall returns a call that fails immediately with err.
func failCall(err error) Call[int] {
	return func(ctx context.Context) (int, error) {
		return 0, err
	}
}

// sleepProcess returns a process func that sleeps for d per element but
// honors ctx, then doubles the element.
func sleepProcess(d time.Duration) ProcessFunc[int, int] {
	return func(ctx context.Context, n int) (int, error) {
		select {
		case <-time.After(d):
			return n * 2, nil
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
}

// intRange returns a slice [0, 1, ..., n-1].
func intRange(n int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = i
	}
	return s
}
