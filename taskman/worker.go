package taskman

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/utkarsh5026/taskme/internal/cpu"
)

// worker is the loop each pool goroutine runs. The stop channel is
// checked with priority before the task queue so an immediate shutdown
// wins over queued work that is also ready.
func (e *Executor[T, R]) worker(id int) error {
	if e.pin {
		defer cpu.Pin(id)()
	}

	for {
		select {
		case <-e.stop:
			return nil
		default:
		}

		select {
		case t, ok := <-e.tasks:
			if !ok {
				return nil
			}
			e.execute(t)
		case <-e.stop:
			return nil
		}
	}
}

// execute runs one task and publishes its envelope. The outcome is
// written into the task before the envelope is sent, and the completion
// channel is sized to the in-flight bound, so the send cannot block.
func (e *Executor[T, R]) execute(t *Task[T, R]) {
	if e.limiter != nil {
		if err := e.limiter.Wait(e.ctx); err != nil {
			if e.ctx.Err() != nil {
				// Interrupted by immediate shutdown before the task began;
				// it is abandoned like any other queued task.
				return
			}
			// The limiter refused outright. The callable never ran, but
			// an accepted task still owes exactly one envelope.
			var zero R
			t.complete(zero, err)
			e.completed.Add(1)
			e.out <- &completion[T, R]{task: t, err: err}
			return
		}
	}

	if e.onStart != nil {
		e.onStart(t.id)
	}

	start := time.Now()
	result, err := runProtected(e.ctx, t.call)
	elapsed := time.Since(start)

	t.complete(result, err)

	if e.onEnd != nil {
		e.onEnd(t.id, elapsed, err)
	}

	e.completed.Add(1)
	e.out <- &completion[T, R]{task: t, err: err}
}

// runProtected executes a call with panic recovery. A panic is converted
// to an error with a stack trace so it can never take a worker down.
func runProtected[R any](ctx context.Context, call Call[R]) (result R, err error) {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			err = fmt.Errorf("task panic: %v\nstack trace:\n%s", r, buf[:n])
		}
	}()

	return call(ctx)
}
