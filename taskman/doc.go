// Package taskman coordinates submission and collection of independent
// units of work across a bounded pool of workers, with backpressure,
// configurable failure routing and progress reporting.
//
// The primary types are Executor[T, R], a fixed-size worker pool behind
// an adapter contract, and Manager[T, R], the orchestrator that drains
// work through it. The manager keeps at most pool-size × multiplier
// tasks in flight: an arbitrarily large (or infinite) source is never
// materialized, pending work stays proportional to the bound, and
// interrupting a drain abandons at most bound tasks.
//
// # Basic Usage
//
//	exec := taskman.NewExecutor[int, int](taskman.WithWorkers(4))
//	tm := taskman.NewManager(exec)
//	defer tm.Close()
//
//	_ = tm.MapSlice(func(ctx context.Context, n int) (int, error) {
//	    return n * n, nil
//	}, []int{1, 2, 3, 4, 5})
//
//	if err := tm.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	for _, t := range tm.CompletedTasks() {
//	    fmt.Println(t.Input(), "->", t.Result())
//	}
//
// # Error Policies
//
// Every consumed completion is routed by the manager's policy, fixed at
// construction:
//
//   - PolicyRaise (default): the first error halts the drain, shuts the
//     pool down without waiting and surfaces a *TaskError from Run.
//   - PolicyLog: failures are reported through the Reporter and the
//     drain continues.
//   - PolicyIgnore: failures are stored on the Task only.
//
// A panicking callable never crashes a worker; the panic is captured as
// the task's error and routed like any other failure.
//
// # Backpressure
//
// Submission is lazy: Submit and Map record work, and the drain pulls it
// under the in-flight bound. Map sources are pulled one element at a
// time, so this starts working on a billion inputs immediately, without
// ever materializing them:
//
//	tm.Map(handle, func(yield func(int) bool) {
//	    for i := range 1_000_000_000 {
//	        if !yield(i) {
//	            return
//	        }
//	    }
//	})
//	err := tm.Run(ctx)
//
// # Incremental Consumption
//
// AsCompleted yields tasks as the pool finishes them, in completion
// order, re-arming backpressure with each element:
//
//	for t, err := range tm.AsCompleted(ctx) {
//	    if err != nil {
//	        return err
//	    }
//	    handle(t)
//	}
//
// # Progress Monitoring
//
// A background monitor samples completions on a fixed interval and
// reports "N tasks completed in the last X.XXs" deltas through the
// pluggable Reporter. It starts with the drain, stops promptly with it,
// and is disabled with WithMonitorInterval(0).
//
// # Cancellation
//
// The drain observes ctx at both of its blocking points: waiting on the
// completion channel and pulling from the source. Cancellation halts
// submission, shuts the pool down without waiting for in-flight tasks
// and returns ctx.Err() regardless of policy. Workers cannot be
// preempted: a running callable that ignores its context finishes
// before its worker exits; use the executor's Done channel to await true
// quiescence.
package taskman
