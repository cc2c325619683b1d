package taskman

import (
	"log"
	"os"
	"time"
)

// Reporter is the pluggable collaborator that receives the manager's two
// observable side channels: periodic progress reports from the monitor,
// and task failures routed by PolicyLog. Implementations must tolerate
// calls from the monitor goroutine and the orchestrating goroutine.
type Reporter interface {
	// Progress reports that count tasks completed during the last
	// monitor interval. Only called when count > 0.
	Progress(count int, interval time.Duration)

	// TaskFailed reports one error outcome under PolicyLog.
	TaskFailed(id int64, err error)
}

// logReporter writes reports through a standard library logger.
type logReporter struct {
	l *log.Logger
}

// NewLogReporter returns a Reporter backed by the given logger. A nil
// logger falls back to one writing to os.Stderr with a "[taskme]"
// prefix. This is the manager's default reporter.
func NewLogReporter(l *log.Logger) Reporter {
	if l == nil {
		l = log.New(os.Stderr, "[taskme] ", log.Ltime|log.Lmicroseconds)
	}
	return &logReporter{l: l}
}

func (r *logReporter) Progress(count int, interval time.Duration) {
	r.l.Printf("%d tasks completed in the last %.2fs", count, interval.Seconds())
}

func (r *logReporter) TaskFailed(id int64, err error) {
	r.l.Printf("task %d failed: %v", id, err)
}
