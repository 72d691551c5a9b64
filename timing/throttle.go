package timing

import (
	"sync"

	"golang.org/x/time/rate"

	"github.com/teranos/duet/errors"
)

// Throttler fires the wrapped callback at most once per interval. The
// leading edge is gated by a rate limiter fed the scheduler's clock, so the
// same code path works under the manual test clock; the trailing edge
// delivers the last suppressed call at the end of the window.
type Throttler struct {
	mu        sync.Mutex
	fn        func()
	cfg       Config
	sched     Scheduler
	limiter   *rate.Limiter
	timer     Timer
	pending   bool
	destroyed bool
}

// NewThrottler wraps fn with throttle semantics.
func NewThrottler(fn func(), cfg Config, sched Scheduler) *Throttler {
	if sched == nil {
		sched = NewScheduler()
	}
	if !cfg.Leading && !cfg.Trailing {
		cfg.Leading = true
	}
	return &Throttler{
		fn:      fn,
		cfg:     cfg,
		sched:   sched,
		limiter: rate.NewLimiter(rate.Every(cfg.Delay), 1),
	}
}

// Execute registers a call. Within one interval at most one leading and one
// trailing invocation happen regardless of call volume.
func (t *Throttler) Execute() error {
	t.mu.Lock()
	if t.destroyed {
		t.mu.Unlock()
		return errors.Wrap(errors.ErrDestroyed, "throttler")
	}

	if t.cfg.Leading && t.limiter.AllowN(t.sched.Now(), 1) {
		t.mu.Unlock()
		t.fn()
		return nil
	}

	if t.cfg.Trailing && !t.pending {
		t.pending = true
		t.timer = t.sched.Schedule(t.cfg.Delay, t.onWindowEnd)
	}
	t.mu.Unlock()
	return nil
}

func (t *Throttler) onWindowEnd() {
	t.mu.Lock()
	if t.destroyed || !t.pending {
		t.mu.Unlock()
		return
	}
	t.pending = false
	t.timer = nil
	t.mu.Unlock()

	t.fn()
}

// Cancel discards the pending trailing call with no side effects.
func (t *Throttler) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.pending = false
}

// Flush forces immediate execution of the pending trailing call, if any.
func (t *Throttler) Flush() {
	t.mu.Lock()
	if t.destroyed || !t.pending {
		t.mu.Unlock()
		return
	}
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.pending = false
	t.mu.Unlock()

	t.fn()
}

// IsPending reports whether a trailing call is waiting for the window end.
func (t *Throttler) IsPending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending
}

// Destroy cancels any pending call and rejects further use.
func (t *Throttler) Destroy() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.pending = false
	t.destroyed = true
}
