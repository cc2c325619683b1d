package taskman

import "context"

// Call is a unit of executable work with its arguments already bound.
// Plain function submission captures arguments through the closure; the
// context is the executor's and is cancelled on immediate shutdown, so
// long-running calls that honor it can bail out early.
//
// Type parameters:
//   - R: The result type produced by the call
type Call[R any] func(ctx context.Context) (R, error)

// ProcessFunc is a function type that defines how individual source elements
// are processed when submitting through Map. It takes a context for
// cancellation control and one element of type T, returning a result of
// type R. Fixed auxiliary arguments are captured by the closure.
//
// Type parameters:
//   - T: The type of input element to be processed
//   - R: The type of result produced after processing
type ProcessFunc[T any, R any] func(ctx context.Context, input T) (R, error)

// completion is the envelope a worker places on the completion channel
// once a task's outcome has been written. The outcome write happens
// before the envelope is visible, so the consumer may read the task's
// result and error without further synchronization. Produced exactly
// once per accepted task, consumed exactly once by the draining logic.
type completion[T any, R any] struct {
	task *Task[T, R]
	err  error
}

// RunState describes where a Manager is in its single-drain lifecycle.
type RunState int32

const (
	// StateIdle is the state before any drain has started.
	StateIdle RunState = iota
	// StateSubmitting means the drain is pulling from the source and
	// feeding the pool under the in-flight bound.
	StateSubmitting
	// StateDraining means the source is exhausted and only in-flight
	// completions remain to be consumed.
	StateDraining
	// StateDone is the terminal state of a fully consumed drain.
	StateDone
	// StateCancelled is the terminal state of a halted drain, reached on
	// external cancellation or on the first error under PolicyRaise.
	StateCancelled
)

// String returns a readable name for the run state.
func (s RunState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateDraining:
		return "draining"
	case StateDone:
		return "done"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}
