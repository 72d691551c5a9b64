package syncctl

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/duet/logger"
	"github.com/teranos/duet/timing"
)

// Config tunes the controller.
type Config struct {
	Timeout      time.Duration // sync deadline; expiry fires SYNC_TIMEOUT (default 5s)
	PendingLimit int           // max edits queued during SYNC_PROCESSING (default 32)
	MaxRetries   int           // retry allowance for UNKNOWN-class failures (default 1)
}

// DefaultConfig returns the stock controller tuning.
func DefaultConfig() Config {
	return Config{
		Timeout:      5 * time.Second,
		PendingLimit: 32,
		MaxRetries:   1,
	}
}

// Controller is the finite-state machine over the two editor sides. It is
// long-lived process state, mutated only through this API; each editor
// session constructs its own controller so sessions cannot cross-talk.
type Controller struct {
	mu    sync.Mutex
	cfg   Config
	sched timing.Scheduler
	log   *zap.SugaredLogger

	rules         map[State][]State
	state         State
	lastDirtySide Side
	pending       []Side
	version       int // version of the last fully-synced snapshot
	retryCount    int
	timeoutTimer  timing.Timer

	nextListenerID int
	stateListeners map[int]Listener
	failListeners  map[int]FailureListener

	rollbackFn func(version int) bool
	retryFn    func(side Side)
}

// New creates a controller in StateAllSynced. A nil scheduler selects the
// wall clock; a nil logger selects the process logger.
func New(cfg Config, sched timing.Scheduler, log *zap.SugaredLogger) *Controller {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	if cfg.PendingLimit <= 0 {
		cfg.PendingLimit = DefaultConfig().PendingLimit
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if sched == nil {
		sched = timing.NewScheduler()
	}
	if log == nil {
		log = logger.Logger
	}
	return &Controller{
		cfg:            cfg,
		sched:          sched,
		log:            log,
		rules:          defaultRules,
		state:          StateAllSynced,
		stateListeners: map[int]Listener{},
		failListeners:  map[int]FailureListener{},
	}
}

// Initialize resets the controller to a state, optionally with a custom
// transition rule table (nil keeps the defaults).
func (c *Controller) Initialize(state State, rules map[State][]State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopTimeoutLocked()
	c.state = state
	c.lastDirtySide = SideNone
	c.pending = nil
	c.retryCount = 0
	if rules != nil {
		c.rules = rules
	} else {
		c.rules = defaultRules
	}
}

// CurrentState returns the current synchronization state.
func (c *Controller) CurrentState() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Version returns the version of the last fully-synced snapshot.
func (c *Controller) Version() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

// LastDirtySide returns which side the in-flight sync started from. It is
// meaningful only while SYNC_PROCESSING.
func (c *Controller) LastDirtySide() Side {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastDirtySide
}

// PendingCount returns the number of edits queued during processing.
func (c *Controller) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// HasPendingEdit reports whether an edit for the given side is queued
// behind the in-flight sync.
func (c *Controller) HasPendingEdit(side Side) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, queued := range c.pending {
		if queued == side {
			return true
		}
	}
	return false
}

// SetRollbackFunc registers the orchestrator hook that restores a snapshot
// version on SYSTEM-class failures.
func (c *Controller) SetRollbackFunc(fn func(version int) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rollbackFn = fn
}

// SetRetryFunc registers the orchestrator hook invoked for the single retry
// of an UNKNOWN-class failure.
func (c *Controller) SetRetryFunc(fn func(side Side)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.retryFn = fn
}

// legalLocked reports whether a transition is in the rule table.
func (c *Controller) legalLocked(target State) bool {
	for _, allowed := range c.rules[c.state] {
		if allowed == target {
			return true
		}
	}
	return false
}

// TryTransition requests a transition to target. Illegal requests are a
// no-op returning false, never an error.
func (c *Controller) TryTransition(target State) bool {
	c.mu.Lock()
	if !c.legalLocked(target) {
		c.mu.Unlock()
		return false
	}
	notify := c.setStateLocked(target)
	c.mu.Unlock()
	notify()
	return true
}

// HandleEditA records an edit on side A. During SYNC_PROCESSING the edit is
// queued instead of rejected; on the opposite dirty state it is refused.
func (c *Controller) HandleEditA() bool { return c.handleEdit(SideA) }

// HandleEditB records an edit on side B.
func (c *Controller) HandleEditB() bool { return c.handleEdit(SideB) }

func (c *Controller) handleEdit(side Side) bool {
	c.mu.Lock()

	switch c.state {
	case StateSyncProcessing:
		if len(c.pending) >= c.cfg.PendingLimit {
			c.mu.Unlock()
			c.log.Warnw("Pending edit queue full, edit dropped",
				"side", side.String(),
				"limit", c.cfg.PendingLimit)
			return false
		}
		c.pending = append(c.pending, side)
		c.mu.Unlock()
		return true

	case StateAllSynced:
		notify := c.setStateLocked(side.dirtyState())
		c.mu.Unlock()
		notify()
		return true

	default:
		// Already dirty: more edits on the same side accumulate; the
		// other side is read-only until the sync completes
		accepted := c.state == side.dirtyState()
		c.mu.Unlock()
		if !accepted {
			c.log.Warnw("Edit rejected on read-only side",
				"side", side.String(),
				"state", c.state.String())
		}
		return accepted
	}
}

// TriggerSync moves a dirty state into SYNC_PROCESSING, recording which
// side is authoritative and arming the timeout. On ALL_SYNCED it is a no-op.
func (c *Controller) TriggerSync() bool {
	c.mu.Lock()
	var side Side
	switch c.state {
	case StateADirty:
		side = SideA
	case StateBDirty:
		side = SideB
	default:
		c.mu.Unlock()
		return false
	}

	c.lastDirtySide = side
	c.retryCount = 0
	notify := c.setStateLocked(StateSyncProcessing)
	c.armTimeoutLocked()
	c.mu.Unlock()
	notify()
	return true
}

// HandleSyncSuccess completes the in-flight sync, bumps the snapshot
// version and replays the pending-edit queue as fresh edits in FIFO order.
func (c *Controller) HandleSyncSuccess() bool {
	c.mu.Lock()
	if c.state != StateSyncProcessing {
		c.mu.Unlock()
		return false
	}
	c.stopTimeoutLocked()
	c.version++
	c.retryCount = 0
	c.lastDirtySide = SideNone

	queued := c.pending
	c.pending = nil
	notify := c.setStateLocked(StateAllSynced)
	c.mu.Unlock()
	notify()

	// Replay: the first queued edit re-dirties its side immediately;
	// same-side followers accumulate, cross-side followers are refused
	// (and logged) exactly as fresh edits would be
	for _, side := range queued {
		c.handleEdit(side)
	}
	return true
}

// HandleSyncFailed resolves the in-flight sync as failed. Every failure
// returns the machine to the dirty side that attempted the sync. DATA-class
// codes leave the user's input in place so they can fix it; SYSTEM-class
// codes first restore the content of the last synced snapshot; UNKNOWN codes
// get a single retry (unless skipRetry) and are then treated as SYSTEM.
func (c *Controller) HandleSyncFailed(message, code string, skipRetry bool) bool {
	c.mu.Lock()
	if c.state != StateSyncProcessing {
		c.mu.Unlock()
		return false
	}
	c.stopTimeoutLocked()

	class := Classify(code)
	side := c.lastDirtySide

	if class == ClassUnknown && !skipRetry && c.retryCount < c.cfg.MaxRetries && c.retryFn != nil {
		c.retryCount++
		retry := c.retryFn
		c.armTimeoutLocked()
		c.mu.Unlock()
		c.log.Warnw("Sync failed with unknown error, retrying",
			"error", message,
			"code", code,
			"side", side.String())
		retry(side)
		return true
	}

	failure := Failure{
		ErrorMessage:      message,
		ErrorCode:         code,
		OriginalState:     side.dirtyState(),
		AttemptedSyncFrom: side,
	}
	c.retryCount = 0
	c.lastDirtySide = SideNone
	if dropped := len(c.pending); dropped > 0 {
		c.log.Warnw("Dropping pending edits after sync failure",
			"count", dropped)
		c.pending = nil
	}

	rollback := c.rollbackFn
	version := c.version
	notify := c.setStateLocked(side.dirtyState())
	c.mu.Unlock()
	if class != ClassData && rollback != nil {
		// SYSTEM (and exhausted UNKNOWN): restore the content of the last
		// synced snapshot; the side stays dirty so the user keeps
		// authority to retry
		rollback(version)
	}

	c.log.Errorw("Sync failed",
		"error", message,
		"code", code,
		"class", class.String(),
		"side", side.String())
	notify()
	c.notifyFailure(failure)
	return true
}

// RollbackToVersion restores a specific snapshot version through the
// registered rollback hook and reports the system fully synced.
func (c *Controller) RollbackToVersion(version int) bool {
	c.mu.Lock()
	rollback := c.rollbackFn
	if rollback == nil {
		c.mu.Unlock()
		return false
	}
	c.stopTimeoutLocked()
	c.lastDirtySide = SideNone
	c.pending = nil
	notify := c.setStateLocked(StateAllSynced)
	c.mu.Unlock()

	ok := rollback(version)
	notify()
	return ok
}

// EditPermissions derives edit gating from the current state.
func (c *Controller) EditPermissions() Permissions {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case StateAllSynced:
		return Permissions{AEditable: true, BEditable: true, CanSwitch: true}
	case StateADirty:
		return Permissions{AEditable: true}
	case StateBDirty:
		return Permissions{BEditable: true}
	default:
		return Permissions{LastDirtySide: c.lastDirtySide}
	}
}

// AddStateChangeListener registers a transition observer and returns its
// unsubscribe function. A panicking listener is caught and logged, never
// propagated to other listeners or back into the state machine.
func (c *Controller) AddStateChangeListener(fn Listener) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextListenerID
	c.nextListenerID++
	c.stateListeners[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.stateListeners, id)
	}
}

// AddSyncFailedListener registers a failure observer and returns its
// unsubscribe function.
func (c *Controller) AddSyncFailedListener(fn FailureListener) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextListenerID
	c.nextListenerID++
	c.failListeners[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.failListeners, id)
	}
}

// setStateLocked changes state and returns the deferred notification; the
// caller fires it after releasing the lock.
func (c *Controller) setStateLocked(to State) func() {
	from := c.state
	c.state = to
	if from == to {
		return func() {}
	}
	listeners := make([]Listener, 0, len(c.stateListeners))
	for _, fn := range c.stateListeners {
		listeners = append(listeners, fn)
	}
	log := c.log
	return func() {
		log.Debugw("Sync state transition",
			"from", from.String(),
			"to", to.String())
		for _, fn := range listeners {
			safeNotify(log, func() { fn(from, to) })
		}
	}
}

func (c *Controller) notifyFailure(failure Failure) {
	c.mu.Lock()
	listeners := make([]FailureListener, 0, len(c.failListeners))
	for _, fn := range c.failListeners {
		listeners = append(listeners, fn)
	}
	c.mu.Unlock()
	for _, fn := range listeners {
		fn := fn
		safeNotify(c.log, func() { fn(failure) })
	}
}

// safeNotify shields the state machine and sibling listeners from a
// panicking observer.
func safeNotify(log *zap.SugaredLogger, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorw("Sync listener panicked",
				"panic", r)
		}
	}()
	fn()
}

// armTimeoutLocked starts the processing deadline. If neither success nor
// failure arrives first, the controller self-reports SYNC_TIMEOUT so it can
// never wedge in SYNC_PROCESSING.
func (c *Controller) armTimeoutLocked() {
	c.stopTimeoutLocked()
	c.timeoutTimer = c.sched.Schedule(c.cfg.Timeout, func() {
		c.HandleSyncFailed("sync timed out", CodeSyncTimeout, true)
	})
}

func (c *Controller) stopTimeoutLocked() {
	if c.timeoutTimer != nil {
		c.timeoutTimer.Stop()
		c.timeoutTimer = nil
	}
}
