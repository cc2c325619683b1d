package taskman

import (
	"sync/atomic"
	"time"
)

// monitor periodically samples cumulative completions and reports the
// delta since the previous tick. It is a pure side-effect component:
// reporting never influences task execution, and a zero interval means
// no monitor at all.
type monitor struct {
	interval time.Duration
	reporter Reporter
	count    func() int64

	started atomic.Bool
	stopped atomic.Bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func newMonitor(interval time.Duration, reporter Reporter, count func() int64) *monitor {
	return &monitor{
		interval: interval,
		reporter: reporter,
		count:    count,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// start launches the sampling loop. No-op when the monitor is disabled
// or already running.
func (m *monitor) start() {
	if m.interval <= 0 || !m.started.CompareAndSwap(false, true) {
		return
	}
	go m.loop()
}

// stop halts the loop and waits for it to exit. The loop selects on the
// stop channel every tick, so the wait is bounded and shutdown is never
// held up by a sleeping monitor.
func (m *monitor) stop() {
	if !m.started.Load() || !m.stopped.CompareAndSwap(false, true) {
		return
	}
	close(m.stopCh)
	<-m.doneCh
}

func (m *monitor) loop() {
	defer close(m.doneCh)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	var last int64
	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
			current := m.count()
			if delta := current - last; delta > 0 {
				m.report(int(delta))
			}
			last = current
		}
	}
}

// report emits one progress delta. A reporter panic is recovered here:
// reporting is a side channel and is never fatal to the run.
func (m *monitor) report(delta int) {
	defer func() {
		_ = recover()
	}()
	m.reporter.Progress(delta, m.interval)
}
