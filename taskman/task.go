package taskman

import "fmt"

// Task is the record for one submitted unit of work: an identity (id plus
// the bound callable, and for Map submissions the source element) and an
// outcome written exactly once by the worker that ran it. Identity is the
// pointer; two tasks built from equal inputs are distinct entities.
//
// A task's outcome fields are written before its completion envelope is
// made visible to the consuming drain, and never written again, so the
// accessors are safe once the task has been handed back by Run,
// AsCompleted or CompletedTasks.
//
// Type parameters:
//   - T: The source element type for Map submissions (zero for Submit)
//   - R: The result type
type Task[T any, R any] struct {
	id    int64
	input T
	call  Call[R]

	result R
	err    error
	done   bool
}

// ID returns the task's id. Ids are assigned in creation order and are
// unique within a Manager.
func (t *Task[T, R]) ID() int64 { return t.id }

// Input returns the source element this task was built from. For tasks
// submitted as bound calls it is the zero value of T.
func (t *Task[T, R]) Input() T { return t.input }

// Result returns the task's result. It is the zero value of R until the
// task has completed, and when the task completed with an error.
func (t *Task[T, R]) Result() R { return t.result }

// Err returns the error the task's callable produced, or the error
// synthesized from its panic. Nil for successful and pending tasks.
func (t *Task[T, R]) Err() error { return t.err }

// Completed reports whether the task's outcome has been written.
func (t *Task[T, R]) Completed() bool { return t.done }

// String renders the task for log lines.
func (t *Task[T, R]) String() string {
	switch {
	case !t.done:
		return fmt.Sprintf("task %d (pending)", t.id)
	case t.err != nil:
		return fmt.Sprintf("task %d (failed: %v)", t.id, t.err)
	default:
		return fmt.Sprintf("task %d (completed)", t.id)
	}
}

// complete writes the outcome. Called once, by the worker that ran the
// task, before the completion envelope is published.
func (t *Task[T, R]) complete(result R, err error) {
	t.result = result
	t.err = err
	t.done = true
}
