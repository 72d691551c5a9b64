package syncctl

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/duet/timing"
)

func newTestController() (*Controller, *timing.ManualScheduler) {
	sched := timing.NewManualScheduler()
	return New(DefaultConfig(), sched, nil), sched
}

func TestControllerInitialState(t *testing.T) {
	c, _ := newTestController()
	assert.Equal(t, StateAllSynced, c.CurrentState())
	assert.Equal(t, 0, c.Version())

	perms := c.EditPermissions()
	assert.True(t, perms.AEditable)
	assert.True(t, perms.BEditable)
	assert.True(t, perms.CanSwitch)
}

func TestEditDirtiesOneSide(t *testing.T) {
	c, _ := newTestController()

	require.True(t, c.HandleEditA())
	assert.Equal(t, StateADirty, c.CurrentState())

	perms := c.EditPermissions()
	assert.True(t, perms.AEditable)
	assert.False(t, perms.BEditable)
	assert.False(t, perms.CanSwitch)

	// The clean side is read-only until the sync completes
	assert.False(t, c.HandleEditB())
	assert.Equal(t, StateADirty, c.CurrentState())

	// More edits on the dirty side accumulate
	assert.True(t, c.HandleEditA())
	assert.Equal(t, StateADirty, c.CurrentState())
}

func TestSyncHappyPath(t *testing.T) {
	c, _ := newTestController()

	var transitions [][2]State
	c.AddStateChangeListener(func(from, to State) {
		transitions = append(transitions, [2]State{from, to})
	})

	require.True(t, c.HandleEditB())
	require.True(t, c.TriggerSync())
	assert.Equal(t, StateSyncProcessing, c.CurrentState())
	assert.Equal(t, SideB, c.LastDirtySide())

	perms := c.EditPermissions()
	assert.False(t, perms.AEditable)
	assert.False(t, perms.BEditable)
	assert.Equal(t, SideB, perms.LastDirtySide)

	require.True(t, c.HandleSyncSuccess())
	assert.Equal(t, StateAllSynced, c.CurrentState())
	assert.Equal(t, 1, c.Version())

	assert.Equal(t, [][2]State{
		{StateAllSynced, StateBDirty},
		{StateBDirty, StateSyncProcessing},
		{StateSyncProcessing, StateAllSynced},
	}, transitions)
}

func TestTriggerSyncIsNoOpWhenSynced(t *testing.T) {
	c, _ := newTestController()
	assert.False(t, c.TriggerSync())
	assert.Equal(t, StateAllSynced, c.CurrentState())
}

func TestTryTransitionRejectsIllegalMoves(t *testing.T) {
	c, _ := newTestController()

	// ALL_SYNCED cannot jump straight into processing
	assert.False(t, c.TryTransition(StateSyncProcessing))
	assert.Equal(t, StateAllSynced, c.CurrentState())

	require.True(t, c.TryTransition(StateADirty))
	// A dirty side cannot hand authority to the other side
	assert.False(t, c.TryTransition(StateBDirty))
	assert.Equal(t, StateADirty, c.CurrentState())
}

func TestEditsQueueDuringProcessing(t *testing.T) {
	c, _ := newTestController()

	require.True(t, c.HandleEditA())
	require.True(t, c.TriggerSync())

	require.True(t, c.HandleEditA())
	require.True(t, c.HandleEditA())
	assert.Equal(t, 2, c.PendingCount())
	assert.True(t, c.HasPendingEdit(SideA))
	assert.False(t, c.HasPendingEdit(SideB))
	assert.Equal(t, StateSyncProcessing, c.CurrentState())

	// Replay re-dirties the side immediately after success
	require.True(t, c.HandleSyncSuccess())
	assert.Equal(t, StateADirty, c.CurrentState())
	assert.Equal(t, 0, c.PendingCount())
	assert.Equal(t, 1, c.Version())
}

func TestPendingQueueIsBounded(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PendingLimit = 2
	c := New(cfg, timing.NewManualScheduler(), nil)

	require.True(t, c.HandleEditA())
	require.True(t, c.TriggerSync())

	assert.True(t, c.HandleEditA())
	assert.True(t, c.HandleEditB())
	assert.False(t, c.HandleEditA())
	assert.Equal(t, 2, c.PendingCount())
}

func TestDataErrorReturnsToDirtySide(t *testing.T) {
	c, _ := newTestController()

	var failures []Failure
	c.AddSyncFailedListener(func(f Failure) { failures = append(failures, f) })

	rollbackCalled := false
	c.SetRollbackFunc(func(version int) bool {
		rollbackCalled = true
		return true
	})

	require.True(t, c.HandleEditB())
	require.True(t, c.TriggerSync())
	require.True(t, c.HandleSyncFailed("unexpected token", CodeParseError, false))

	// The user keeps their broken input and stays in control of side B
	assert.Equal(t, StateBDirty, c.CurrentState())
	assert.False(t, rollbackCalled)
	assert.Equal(t, 0, c.Version())

	require.Len(t, failures, 1)
	assert.Equal(t, CodeParseError, failures[0].ErrorCode)
	assert.Equal(t, "unexpected token", failures[0].ErrorMessage)
	assert.Equal(t, StateBDirty, failures[0].OriginalState)
	assert.Equal(t, SideB, failures[0].AttemptedSyncFrom)
}

func TestSystemErrorRollsBack(t *testing.T) {
	c, _ := newTestController()

	var rolledBackTo []int
	c.SetRollbackFunc(func(version int) bool {
		rolledBackTo = append(rolledBackTo, version)
		return true
	})

	require.True(t, c.HandleEditA())
	require.True(t, c.TriggerSync())
	require.True(t, c.HandleSyncSuccess())
	assert.Equal(t, 1, c.Version())

	require.True(t, c.HandleEditA())
	require.True(t, c.TriggerSync())
	require.True(t, c.HandleSyncFailed("backend down", CodeServiceUnavailable, false))

	// Content is rolled back but the side stays dirty, keeping authority
	// with the user who attempted the sync
	assert.Equal(t, StateADirty, c.CurrentState())
	assert.Equal(t, []int{1}, rolledBackTo)
	assert.Equal(t, 1, c.Version())
}

func TestSyncTimeoutFiresAsSystemFailure(t *testing.T) {
	c, sched := newTestController()

	var failures []Failure
	c.AddSyncFailedListener(func(f Failure) { failures = append(failures, f) })

	rollbackCalled := false
	c.SetRollbackFunc(func(version int) bool {
		rollbackCalled = true
		return true
	})

	require.True(t, c.HandleEditA())
	require.True(t, c.TriggerSync())

	sched.Advance(4999 * time.Millisecond)
	assert.Equal(t, StateSyncProcessing, c.CurrentState())

	// The deadline reverts to the prior dirty state, not ALL_SYNCED
	sched.Advance(time.Millisecond)
	assert.Equal(t, StateADirty, c.CurrentState())
	assert.True(t, rollbackCalled)
	require.Len(t, failures, 1)
	assert.Equal(t, CodeSyncTimeout, failures[0].ErrorCode)
}

func TestSuccessDisarmsTimeout(t *testing.T) {
	c, sched := newTestController()

	var failures []Failure
	c.AddSyncFailedListener(func(f Failure) { failures = append(failures, f) })

	require.True(t, c.HandleEditA())
	require.True(t, c.TriggerSync())
	require.True(t, c.HandleSyncSuccess())

	sched.Advance(time.Minute)
	assert.Empty(t, failures)
	assert.Equal(t, StateAllSynced, c.CurrentState())
	assert.Equal(t, 0, sched.PendingTimers())
}

func TestUnknownErrorRetriesOnce(t *testing.T) {
	c, _ := newTestController()

	var retries []Side
	c.SetRetryFunc(func(side Side) { retries = append(retries, side) })

	var rolledBackTo []int
	c.SetRollbackFunc(func(version int) bool {
		rolledBackTo = append(rolledBackTo, version)
		return true
	})

	require.True(t, c.HandleEditB())
	require.True(t, c.TriggerSync())

	// First unknown failure: retry, still processing
	require.True(t, c.HandleSyncFailed("glitch", "SOMETHING_ODD", false))
	assert.Equal(t, StateSyncProcessing, c.CurrentState())
	assert.Equal(t, []Side{SideB}, retries)

	// Second failure exhausts the retry and falls back to rollback; the
	// side that attempted the sync stays dirty
	require.True(t, c.HandleSyncFailed("glitch again", "SOMETHING_ODD", false))
	assert.Equal(t, StateBDirty, c.CurrentState())
	assert.Equal(t, []Side{SideB}, retries)
	assert.Equal(t, []int{0}, rolledBackTo)
}

func TestSkipRetryBypassesRetry(t *testing.T) {
	c, _ := newTestController()

	retried := false
	c.SetRetryFunc(func(Side) { retried = true })

	require.True(t, c.HandleEditA())
	require.True(t, c.TriggerSync())
	require.True(t, c.HandleSyncFailed("give up", "SOMETHING_ODD", true))

	assert.False(t, retried)
	assert.Equal(t, StateADirty, c.CurrentState())
}

func TestFailureDropsPendingEdits(t *testing.T) {
	c, _ := newTestController()

	require.True(t, c.HandleEditA())
	require.True(t, c.TriggerSync())
	require.True(t, c.HandleEditA())
	require.True(t, c.HandleEditB())
	assert.Equal(t, 2, c.PendingCount())

	require.True(t, c.HandleSyncFailed("bad input", CodeValidationError, false))
	assert.Equal(t, 0, c.PendingCount())
	assert.Equal(t, StateADirty, c.CurrentState())
}

func TestRollbackToVersion(t *testing.T) {
	c, _ := newTestController()

	var rolledBackTo []int
	c.SetRollbackFunc(func(version int) bool {
		rolledBackTo = append(rolledBackTo, version)
		return true
	})

	require.True(t, c.HandleEditA())
	assert.True(t, c.RollbackToVersion(0))
	assert.Equal(t, StateAllSynced, c.CurrentState())
	assert.Equal(t, []int{0}, rolledBackTo)
}

func TestRollbackWithoutHookFails(t *testing.T) {
	c, _ := newTestController()
	assert.False(t, c.RollbackToVersion(0))
}

func TestPanickingListenerIsIsolated(t *testing.T) {
	c, _ := newTestController()

	var seen []State
	c.AddStateChangeListener(func(from, to State) { panic("listener bug") })
	c.AddSyncFailedListener(func(Failure) { panic("failure listener bug") })
	c.AddStateChangeListener(func(from, to State) { seen = append(seen, to) })

	require.True(t, c.HandleEditA())
	require.True(t, c.TriggerSync())
	require.True(t, c.HandleSyncFailed("oops", CodeRuntimeError, false))

	assert.Equal(t, StateADirty, c.CurrentState())
	assert.Contains(t, seen, StateADirty)
	assert.Contains(t, seen, StateSyncProcessing)
}

func TestUnsubscribeStopsNotifications(t *testing.T) {
	c, _ := newTestController()

	count := 0
	unsub := c.AddStateChangeListener(func(from, to State) { count++ })

	require.True(t, c.HandleEditA())
	assert.Equal(t, 1, count)

	unsub()
	require.True(t, c.TriggerSync())
	assert.Equal(t, 1, count)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, ClassSystem, Classify(CodeSyncTimeout))
	assert.Equal(t, ClassSystem, Classify(CodeServiceUnavailable))
	assert.Equal(t, ClassSystem, Classify(CodeResourceExhausted))
	assert.Equal(t, ClassSystem, Classify(CodeRuntimeError))
	assert.Equal(t, ClassData, Classify(CodeFormatError))
	assert.Equal(t, ClassData, Classify(CodeParseError))
	assert.Equal(t, ClassData, Classify(CodeValidationError))
	assert.Equal(t, ClassData, Classify(CodeSchemaError))
	assert.Equal(t, ClassUnknown, Classify("SOMETHING_ODD"))
}
