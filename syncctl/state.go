// Package syncctl implements the finite-state synchronization controller
// that governs which representation is authoritative at any instant: edit
// permission gating, timeout-based recovery, error classification, the
// pending-edit queue and rollback.
package syncctl

// State is the synchronization state of the two editor sides.
type State int

const (
	// StateAllSynced: both sides agree; either may be edited
	StateAllSynced State = iota
	// StateADirty: side A has unpropagated edits; B is read-only
	StateADirty
	// StateBDirty: side B has unpropagated edits; A is read-only
	StateBDirty
	// StateSyncProcessing: a sync is in flight; edits are queued
	StateSyncProcessing
)

func (s State) String() string {
	switch s {
	case StateAllSynced:
		return "ALL_SYNCED"
	case StateADirty:
		return "A_DIRTY"
	case StateBDirty:
		return "B_DIRTY"
	case StateSyncProcessing:
		return "SYNC_PROCESSING"
	}
	return "UNKNOWN"
}

// Side identifies one of the two editors.
type Side int

const (
	SideNone Side = iota
	SideA         // the visual, block-structured editor
	SideB         // the textual editor
)

func (s Side) String() string {
	switch s {
	case SideA:
		return "A"
	case SideB:
		return "B"
	}
	return "none"
}

// dirtyState returns the dirty state owned by a side
func (s Side) dirtyState() State {
	if s == SideB {
		return StateBDirty
	}
	return StateADirty
}

// Permissions reports which sides may accept edits in the current state.
type Permissions struct {
	AEditable     bool `json:"a_editable"`
	BEditable     bool `json:"b_editable"`
	CanSwitch     bool `json:"can_switch"` // true only when fully synced
	LastDirtySide Side `json:"last_dirty_side"`
}

// defaultRules is the legal transition table. Anything absent is a no-op.
var defaultRules = map[State][]State{
	StateAllSynced:      {StateADirty, StateBDirty},
	StateADirty:         {StateSyncProcessing},
	StateBDirty:         {StateSyncProcessing},
	StateSyncProcessing: {StateAllSynced, StateADirty, StateBDirty},
}

// Listener observes state transitions.
type Listener func(from, to State)

// Failure is the payload delivered to sync-failure listeners.
type Failure struct {
	ErrorMessage      string `json:"error_message"`
	ErrorCode         string `json:"error_code"`
	OriginalState     State  `json:"original_state"`
	AttemptedSyncFrom Side   `json:"attempted_sync_from"`
}

// FailureListener observes sync failures.
type FailureListener func(Failure)
