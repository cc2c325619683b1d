package benchmarks

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/utkarsh5026/taskme/taskman"
)

// poolConfig defines a benchmark configuration for a manager/executor pair
type poolConfig struct {
	name       string
	workers    int
	multiplier int
}

// drainSlice builds a fresh pair, maps tasks through it and runs the
// drain to completion. Each drain claims its own executor, so the pair
// cannot be reused across iterations.
func drainSlice(b *testing.B, cfg poolConfig, fn taskman.ProcessFunc[int, int], tasks []int) {
	b.Helper()

	exec := taskman.NewExecutor[int, int](taskman.WithWorkers(cfg.workers))
	opts := []taskman.ManagerOption{taskman.WithMonitorInterval(0)}
	if cfg.multiplier > 0 {
		opts = append(opts, taskman.WithBoundMultiplier(cfg.multiplier))
	}
	tm := taskman.NewManager(exec, opts...)

	if err := tm.MapSlice(fn, tasks); err != nil {
		b.Fatal(err)
	}
	if err := tm.Run(context.Background()); err != nil {
		b.Fatal(err)
	}
	if err := tm.Close(); err != nil {
		b.Fatal(err)
	}
}

// reportThroughput converts the elapsed benchmark time into tasks/sec.
func reportThroughput(b *testing.B, taskCount int) {
	b.Helper()
	nsPerOp := float64(b.Elapsed().Nanoseconds()) / float64(b.N)
	tasksPerSec := (float64(taskCount) / nsPerOp) * 1e9
	b.ReportMetric(tasksPerSec, "tasks/sec")
}

func taskRange(n int) []int {
	tasks := make([]int, n)
	for i := range tasks {
		tasks[i] = i
	}
	return tasks
}

// =============================================================================
// Benchmark Workload Generators
// =============================================================================

// cpuBoundWork simulates a CPU-intensive operation
func cpuBoundWork(iterations int) taskman.ProcessFunc[int, int] {
	return func(ctx context.Context, task int) (int, error) {
		result := 0
		for i := range iterations {
			result += i * task
		}
		return result, nil
	}
}

// ioBoundWork simulates an I/O operation with a delay
func ioBoundWork(delay time.Duration) taskman.ProcessFunc[int, int] {
	return func(ctx context.Context, task int) (int, error) {
		select {
		case <-time.After(delay):
			return task * 2, nil
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
}

// flakyWork fails a fixed fraction of tasks for policy benchmarks
func flakyWork(everyNth int) taskman.ProcessFunc[int, int] {
	return func(ctx context.Context, task int) (int, error) {
		if task%everyNth == 0 {
			return 0, fmt.Errorf("simulated error for task %d", task)
		}
		return task * 2, nil
	}
}
