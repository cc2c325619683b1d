package taskman

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned by submission paths once no more work can be
	// accepted: the executor has been shut down, or the manager's drain
	// has passed the point where new tasks could still be scheduled.
	ErrClosed = errors.New("no longer accepting tasks")
)

// TaskError is the terminal error surfaced by a drain under PolicyRaise.
// It wraps the failing task's own error (or the error synthesized from a
// recovered panic) together with the task's id; Unwrap exposes the cause
// so errors.Is and errors.As see through it.
type TaskError struct {
	// ID of the task whose outcome halted the drain.
	ID int64
	// Err is the error the task's callable produced.
	Err error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("task %d failed: %v", e.ID, e.Err)
}

func (e *TaskError) Unwrap() error {
	return e.Err
}
