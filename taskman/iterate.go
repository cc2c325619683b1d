package taskman

import (
	"context"
	"iter"
)

// AsCompleted drains incrementally: it returns a lazy, single-pass
// sequence of tasks in completion order, whatever order the pool
// delivers, not submission order. Each pull tops submission up to the
// bound, blocks for one completion envelope and applies the error policy
// before yielding, so backpressure re-arms with every consumed element.
// Failed tasks are yielded like successful ones under PolicyLog and
// PolicyIgnore; their error stays on the task.
//
// When PolicyRaise halts the drain or ctx is cancelled, the sequence
// yields (nil, err) once and stops; the halt has already shut the
// executor down. The sequence is exhausted exactly when every submitted
// task has been yielded, and it is not restartable: iterating again on
// a terminal manager yields nothing.
//
// Breaking out mid-iteration leaves the drain in progress: a later Run
// or Close consumes the remainder without yielding anything twice.
//
// Example:
//
//	for t, err := range tm.AsCompleted(ctx) {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(t.Input(), "->", t.Result())
//	}
func (m *Manager[T, R]) AsCompleted(ctx context.Context) iter.Seq2[*Task[T, R], error] {
	return func(yield func(*Task[T, R], error) bool) {
		active, err := m.begin()
		if err != nil {
			yield(nil, err)
			return
		}
		if !active {
			return
		}

		for {
			more, err := m.topUp(ctx)
			if err != nil {
				yield(nil, err)
				return
			}
			if !more {
				if m.inflight == 0 {
					m.finish()
					return
				}
				m.state.Store(int32(StateDraining))
			}
			t, err := m.awaitCompletion(ctx)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(t, nil) {
				return
			}
		}
	}
}

// FromChan adapts a channel into a Map source. The sequence ends when ch
// is closed or ctx is done, which keeps a drain fed from a live channel
// interruptible while it waits for the next element; the drain then
// observes ctx at its own blocking points and reports the cancellation.
func FromChan[T any](ctx context.Context, ch <-chan T) iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			select {
			case v, ok := <-ch:
				if !ok {
					return
				}
				if !yield(v) {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}
}
