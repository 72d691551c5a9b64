package timing

import (
	"sort"
	"sync"
	"time"
)

// ManualScheduler is a Scheduler driven by explicit Advance calls instead of
// the wall clock. Tests for anything built on timers (debounce, throttle,
// the sync timeout) use it to make timer firings deterministic.
type ManualScheduler struct {
	mu     sync.Mutex
	now    time.Time
	timers []*manualTimer
}

// NewManualScheduler starts a manual clock at an arbitrary fixed instant.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{now: time.Unix(1_700_000_000, 0)}
}

// Schedule implements Scheduler
func (s *ManualScheduler) Schedule(d time.Duration, fn func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{sched: s, deadline: s.now.Add(d), fn: fn}
	s.timers = append(s.timers, t)
	return t
}

// Now implements Scheduler
func (s *ManualScheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Advance moves the clock forward, firing due timers in deadline order.
// Callbacks run outside the scheduler lock and may schedule new timers;
// newly scheduled timers that fall within the advanced window fire too.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now.Add(d)
	s.mu.Unlock()

	for {
		s.mu.Lock()
		var next *manualTimer
		for _, t := range s.timers {
			if t.stopped || t.fired || t.deadline.After(target) {
				continue
			}
			if next == nil || t.deadline.Before(next.deadline) {
				next = t
			}
		}
		if next == nil {
			s.now = target
			s.mu.Unlock()
			return
		}
		next.fired = true
		if next.deadline.After(s.now) {
			s.now = next.deadline
		}
		s.mu.Unlock()

		next.fn()
	}
}

// PendingTimers returns the number of scheduled, unfired, unstopped timers.
func (s *ManualScheduler) PendingTimers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			count++
		}
	}
	return count
}

// gc drops dead timers so long tests do not accumulate them
func (s *ManualScheduler) gc() {
	live := s.timers[:0]
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			live = append(live, t)
		}
	}
	s.timers = live
	sort.Slice(s.timers, func(i, j int) bool {
		return s.timers[i].deadline.Before(s.timers[j].deadline)
	})
}

type manualTimer struct {
	sched    *ManualScheduler
	deadline time.Time
	fn       func()
	stopped  bool
	fired    bool
}

// Stop implements Timer
func (t *manualTimer) Stop() bool {
	t.sched.mu.Lock()
	defer t.sched.mu.Unlock()
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	t.sched.gc()
	return true
}
