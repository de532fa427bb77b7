package ports

import "time"

// Scheduler runs a callback once after a delay. The transition lock and
// autoplay timers go through this so tests can fire them manually.
type Scheduler interface {
	Schedule(d time.Duration, fn func()) ScheduledTask
}

// ScheduledTask is the handle to a pending scheduled callback
type ScheduledTask interface {
	// Cancel stops the task and reports whether it was still pending.
	// Cancelling an already-fired or already-cancelled task is a no-op.
	Cancel() bool
}

// RealScheduler implements Scheduler using time.AfterFunc
type RealScheduler struct{}

// NewRealScheduler creates a new real scheduler implementation
func NewRealScheduler() Scheduler {
	return &RealScheduler{}
}

// Schedule runs fn on its own goroutine after d
func (s *RealScheduler) Schedule(d time.Duration, fn func()) ScheduledTask {
	return &realTask{timer: time.AfterFunc(d, fn)}
}

// realTask implements ScheduledTask using time.Timer
type realTask struct {
	timer *time.Timer
}

func (t *realTask) Cancel() bool {
	return t.timer.Stop()
}
