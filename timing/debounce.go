package timing

import (
	"sync"
	"time"

	"github.com/teranos/duet/errors"
)

// Config controls edge behavior for debouncers and throttlers.
type Config struct {
	Delay    time.Duration // quiet period (debounce) or minimum interval (throttle)
	Leading  bool          // fire on the first call of a burst
	Trailing bool          // fire after the burst settles
}

// DefaultConfig returns trailing-edge debouncing with a 300ms quiet period.
func DefaultConfig() Config {
	return Config{
		Delay:    300 * time.Millisecond,
		Trailing: true,
	}
}

// Debouncer coalesces a burst of Execute calls into at most two invocations
// of the wrapped callback: optionally one at the leading edge and one after
// the quiet period.
type Debouncer struct {
	mu        sync.Mutex
	fn        func()
	cfg       Config
	sched     Scheduler
	timer     Timer
	inWindow  bool
	callCount int
	destroyed bool
}

// NewDebouncer wraps fn with debounce semantics.
func NewDebouncer(fn func(), cfg Config, sched Scheduler) *Debouncer {
	if sched == nil {
		sched = NewScheduler()
	}
	if !cfg.Leading && !cfg.Trailing {
		cfg.Trailing = true
	}
	return &Debouncer{fn: fn, cfg: cfg, sched: sched}
}

// Execute registers a call. The quiet-period timer restarts on every call;
// the callback runs once the burst settles (and once up front with Leading).
func (d *Debouncer) Execute() error {
	d.mu.Lock()
	if d.destroyed {
		d.mu.Unlock()
		return errors.Wrap(errors.ErrDestroyed, "debouncer")
	}

	fireLeading := false
	if !d.inWindow {
		d.inWindow = true
		d.callCount = 0
		fireLeading = d.cfg.Leading
	}
	d.callCount++

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = d.sched.Schedule(d.cfg.Delay, d.onQuiet)
	d.mu.Unlock()

	if fireLeading {
		d.fn()
	}
	return nil
}

// onQuiet runs when the quiet period elapses without a new call.
func (d *Debouncer) onQuiet() {
	d.mu.Lock()
	if d.destroyed || !d.inWindow {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.inWindow = false
	// With leading enabled a single isolated call already fired; the
	// trailing edge only reports calls that arrived after it
	shouldFire := d.cfg.Trailing && (d.callCount > 1 || !d.cfg.Leading)
	d.mu.Unlock()

	if shouldFire {
		d.fn()
	}
}

// Cancel discards the pending call with no side effects.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.inWindow = false
	d.callCount = 0
}

// Flush forces immediate execution of the latest pending call, if any.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.destroyed || !d.inWindow {
		d.mu.Unlock()
		return
	}
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.inWindow = false
	shouldFire := d.cfg.Trailing && (d.callCount > 1 || !d.cfg.Leading)
	d.callCount = 0
	d.mu.Unlock()

	if shouldFire {
		d.fn()
	}
}

// IsPending reports whether a call is waiting for the quiet period.
func (d *Debouncer) IsPending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.inWindow
}

// Destroy cancels any pending call and rejects further use.
func (d *Debouncer) Destroy() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.inWindow = false
	d.destroyed = true
}
