// Package timing coalesces rapid edit notifications (debounce) and
// rate-limits repeated triggers (throttle) so that every keystroke does not
// itself trigger a full structural resync.
//
// Both controllers run on an injectable Scheduler rather than the host
// event loop, so the same logic is testable against a manual clock.
package timing

import "time"

// Timer is a scheduled callback that can be stopped before it fires.
type Timer interface {
	// Stop cancels the callback. It reports whether the cancellation
	// happened before the callback ran.
	Stop() bool
}

// Scheduler provides deferred execution and the current time. The
// production implementation delegates to the runtime timer wheel; tests use
// ManualScheduler to step time explicitly.
type Scheduler interface {
	Schedule(d time.Duration, fn func()) Timer
	Now() time.Time
}

// NewScheduler returns the wall-clock scheduler.
func NewScheduler() Scheduler {
	return wallScheduler{}
}

type wallScheduler struct{}

func (wallScheduler) Schedule(d time.Duration, fn func()) Timer {
	return wallTimer{t: time.AfterFunc(d, fn)}
}

func (wallScheduler) Now() time.Time {
	return time.Now()
}

type wallTimer struct {
	t *time.Timer
}

func (w wallTimer) Stop() bool {
	return w.t.Stop()
}
