// Package flow is the data-flow orchestrator tying the pieces together: it
// owns the current snapshot of all three representations (visual tree,
// intermediate tree, text), runs the debounced sync pipelines in both
// directions, rebuilds the position mapping after every successful sync, and
// keeps a bounded snapshot history for rollback.
package flow

import (
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/teranos/duet/ast"
	"github.com/teranos/duet/errors"
	"github.com/teranos/duet/logger"
	"github.com/teranos/duet/mapping"
	"github.com/teranos/duet/parser"
	"github.com/teranos/duet/syncctl"
	"github.com/teranos/duet/timing"
	"github.com/teranos/duet/typehint"
	"github.com/teranos/duet/visual"
)

// Snapshot is one fully-synced, mutually-consistent triple of
// representations.
type Snapshot struct {
	Version int          `json:"version"`
	Visual  *visual.Node `json:"visual"`
	Tree    ast.Node     `json:"-"`
	Text    string       `json:"text"`
}

// Config tunes the orchestrator.
type Config struct {
	Debounce     timing.Config   // edit coalescing before a sync fires
	Controller   syncctl.Config  // state machine tuning
	Hints        typehint.Policy
	HistoryLimit int             // snapshot versions retained for rollback
}

// DefaultConfig returns the stock orchestrator tuning.
func DefaultConfig() Config {
	return Config{
		Debounce:     timing.DefaultConfig(),
		Controller:   syncctl.DefaultConfig(),
		Hints:        typehint.Default(),
		HistoryLimit: 32,
	}
}

// Orchestrator coordinates edits between the visual editor (side A) and the
// text editor (side B). All methods are safe for concurrent use.
type Orchestrator struct {
	mu    sync.Mutex
	cfg   Config
	ctrl  *syncctl.Controller
	sched timing.Scheduler
	log   *zap.SugaredLogger

	debA *timing.Debouncer
	debB *timing.Debouncer

	visual  *visual.Node
	tree    ast.Node
	text    string
	mapping *mapping.Mapping

	draftVisual *visual.Node
	draftText   string

	history []Snapshot
	closed  bool
}

// New builds an orchestrator over an empty document. A nil scheduler selects
// the wall clock; a nil logger selects the process logger.
func New(cfg Config, sched timing.Scheduler, log *zap.SugaredLogger) *Orchestrator {
	if cfg.Hints == nil {
		cfg.Hints = typehint.Default()
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = DefaultConfig().HistoryLimit
	}
	if cfg.Debounce.Delay <= 0 {
		cfg.Debounce = timing.DefaultConfig()
	}
	if sched == nil {
		sched = timing.NewScheduler()
	}
	if log == nil {
		log = logger.Logger
	}

	o := &Orchestrator{
		cfg:   cfg,
		ctrl:  syncctl.New(cfg.Controller, sched, log),
		sched: sched,
		log:   log,
	}
	o.debA = timing.NewDebouncer(o.syncFromVisual, cfg.Debounce, sched)
	o.debB = timing.NewDebouncer(o.syncFromText, cfg.Debounce, sched)

	o.ctrl.SetRollbackFunc(o.restoreVersion)
	o.ctrl.SetRetryFunc(func(side syncctl.Side) {
		if side == syncctl.SideB {
			o.runTextSync()
		} else {
			o.runVisualSync()
		}
	})
	return o
}

// Load replaces the document with the given expression text. The text must
// parse and validate; Load establishes version 0 of the snapshot history.
func (o *Orchestrator) Load(text string) error {
	tree, err := parser.Parse(text)
	if err != nil {
		return err
	}
	if result := ast.Validate(tree); !result.Valid {
		return errors.Newf("invalid expression: %s", strings.Join(result.Errors, "; "))
	}

	vis, warnings := visual.FromIntermediateWithHints(tree, o.cfg.Hints)
	o.logWarnings("load", warnings)
	m := mapping.Create(tree, text)

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return errors.Wrap(errors.ErrDestroyed, "orchestrator")
	}
	o.visual = vis
	o.tree = tree
	o.text = text
	o.mapping = m
	o.draftVisual = vis
	o.draftText = text
	o.history = []Snapshot{{Version: 0, Visual: vis, Tree: tree, Text: text}}
	o.mu.Unlock()

	o.ctrl.Initialize(syncctl.StateAllSynced, nil)
	return nil
}

// UpdateVisual records an edit from the visual side. The new tree becomes
// the side-A draft; a debounced sync propagates it to the other
// representations once the burst settles.
func (o *Orchestrator) UpdateVisual(root *visual.Node) error {
	if !visual.CheckTree(root) {
		return errors.New("visual tree contains a cycle")
	}

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return errors.Wrap(errors.ErrDestroyed, "orchestrator")
	}
	o.draftVisual = root
	o.mu.Unlock()

	if !o.ctrl.HandleEditA() {
		return errors.Wrap(errors.ErrEditRejected, "visual side is read-only")
	}
	return o.debA.Execute()
}

// UpdateText records an edit from the text side.
func (o *Orchestrator) UpdateText(text string) error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return errors.Wrap(errors.ErrDestroyed, "orchestrator")
	}
	o.draftText = text
	o.mu.Unlock()

	if !o.ctrl.HandleEditB() {
		return errors.Wrap(errors.ErrEditRejected, "text side is read-only")
	}
	return o.debB.Execute()
}

// Flush forces any debounced sync to run immediately.
func (o *Orchestrator) Flush() {
	o.debA.Flush()
	o.debB.Flush()
}

// syncFromVisual is the debounced side-A pipeline entry.
func (o *Orchestrator) syncFromVisual() {
	if !o.ctrl.TriggerSync() {
		return
	}
	o.runVisualSync()
}

// syncFromText is the debounced side-B pipeline entry.
func (o *Orchestrator) syncFromText() {
	if !o.ctrl.TriggerSync() {
		return
	}
	o.runTextSync()
}

// runVisualSync converts the side-A draft into the intermediate tree,
// renders canonical text from it and commits all three representations.
func (o *Orchestrator) runVisualSync() {
	o.mu.Lock()
	draft := o.draftVisual
	o.mu.Unlock()

	if draft == nil {
		o.ctrl.HandleSyncFailed("no visual tree to sync", syncctl.CodeFormatError, false)
		return
	}

	tree, warnings := visual.ToIntermediate(draft)
	o.logWarnings("visual sync", warnings)

	if result := ast.Validate(tree); !result.Valid {
		o.ctrl.HandleSyncFailed(strings.Join(result.Errors, "; "), syncctl.CodeValidationError, false)
		return
	}

	text, renderWarnings := ast.RenderWarn(tree)
	o.logRenderWarnings("render", renderWarnings)
	m := mapping.Create(tree, text)

	o.commit(draft, tree, text, m)
}

// runTextSync parses the side-B draft and rebuilds the visual tree from it.
// The user's text is preserved verbatim; only the structural sides change.
func (o *Orchestrator) runTextSync() {
	o.mu.Lock()
	draft := o.draftText
	o.mu.Unlock()

	tree, err := parser.Parse(draft)
	if err != nil {
		o.ctrl.HandleSyncFailed(err.Error(), syncctl.CodeParseError, false)
		return
	}
	if result := ast.Validate(tree); !result.Valid {
		o.ctrl.HandleSyncFailed(strings.Join(result.Errors, "; "), syncctl.CodeValidationError, false)
		return
	}

	vis, warnings := visual.FromIntermediateWithHints(tree, o.cfg.Hints)
	o.logWarnings("text sync", warnings)
	m := mapping.Create(tree, draft)

	o.commit(vis, tree, draft, m)
}

// commit installs a consistent triple, reports success to the state machine
// and records the new snapshot version. If the success replayed queued edits
// into a dirty state, the matching debounced sync is rearmed.
func (o *Orchestrator) commit(vis *visual.Node, tree ast.Node, text string, m *mapping.Mapping) {
	// A draft carrying an edit queued during this sync must survive the
	// commit; resetting it would make the replay re-sync the content that
	// was just committed instead of the user's queued work
	keepDraftA := o.ctrl.HasPendingEdit(syncctl.SideA)
	keepDraftB := o.ctrl.HasPendingEdit(syncctl.SideB)

	o.mu.Lock()
	o.visual = vis
	o.tree = tree
	o.text = text
	o.mapping = m
	if !keepDraftA {
		o.draftVisual = vis
	}
	if !keepDraftB {
		o.draftText = text
	}
	o.mu.Unlock()

	if !o.ctrl.HandleSyncSuccess() {
		// The timeout beat us to it and rolled back; undo the late commit
		o.restoreVersion(o.ctrl.Version())
		return
	}

	o.mu.Lock()
	o.history = append(o.history, Snapshot{
		Version: o.ctrl.Version(),
		Visual:  vis,
		Tree:    tree,
		Text:    text,
	})
	if len(o.history) > o.cfg.HistoryLimit {
		o.history = o.history[len(o.history)-o.cfg.HistoryLimit:]
	}
	o.mu.Unlock()

	switch o.ctrl.CurrentState() {
	case syncctl.StateADirty:
		o.debA.Execute()
	case syncctl.StateBDirty:
		o.debB.Execute()
	}
}

// restoreVersion is the controller's rollback hook. It restores the newest
// retained snapshot whose version is at most the requested one.
func (o *Orchestrator) restoreVersion(version int) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	for i := len(o.history) - 1; i >= 0; i-- {
		snap := o.history[i]
		if snap.Version > version {
			continue
		}
		o.visual = snap.Visual
		o.tree = snap.Tree
		o.text = snap.Text
		o.draftVisual = snap.Visual
		o.draftText = snap.Text
		if snap.Tree != nil {
			o.mapping = mapping.Create(snap.Tree, snap.Text)
		} else {
			o.mapping = nil
		}
		o.log.Infow("Rolled back to snapshot",
			"version", snap.Version,
			"requested", version)
		return true
	}
	o.log.Warnw("No snapshot available for rollback",
		"requested", version,
		"retained", len(o.history))
	return false
}

// Rollback restores an explicit snapshot version and reports both sides
// clean.
func (o *Orchestrator) Rollback(version int) bool {
	return o.ctrl.RollbackToVersion(version)
}

// Text returns the current synced text.
func (o *Orchestrator) Text() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.text
}

// Tree returns the current synced intermediate tree.
func (o *Orchestrator) Tree() ast.Node {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.tree
}

// Visual returns the current synced visual tree.
func (o *Orchestrator) Visual() *visual.Node {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.visual
}

// Snapshot returns the current synced triple and its version.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return Snapshot{
		Version: o.ctrl.Version(),
		Visual:  o.visual,
		Tree:    o.tree,
		Text:    o.text,
	}
}

// Version returns the version of the last fully-synced snapshot.
func (o *Orchestrator) Version() int { return o.ctrl.Version() }

// State returns the synchronization state.
func (o *Orchestrator) State() syncctl.State { return o.ctrl.CurrentState() }

// Permissions returns the current edit gating.
func (o *Orchestrator) Permissions() syncctl.Permissions { return o.ctrl.EditPermissions() }

// OnStateChange registers a state transition observer.
func (o *Orchestrator) OnStateChange(fn syncctl.Listener) func() {
	return o.ctrl.AddStateChangeListener(fn)
}

// OnSyncFailed registers a sync failure observer.
func (o *Orchestrator) OnSyncFailed(fn syncctl.FailureListener) func() {
	return o.ctrl.AddSyncFailedListener(fn)
}

// SpanOf reports the text span of an element, by ID.
func (o *Orchestrator) SpanOf(id string) (mapping.Span, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.mapping == nil {
		return mapping.Span{}, false
	}
	return o.mapping.FindPositionByElement(id)
}

// ElementAt reports the innermost element covering a byte offset.
func (o *Orchestrator) ElementAt(offset int) (string, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.mapping == nil {
		return "", false
	}
	return o.mapping.FindElementByPosition(offset)
}

// Mapping returns the current position mapping. It is rebuilt wholesale on
// every sync, so callers must not retain it across edits.
func (o *Orchestrator) Mapping() *mapping.Mapping {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.mapping
}

// Close releases the debounce timers and rejects further edits.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()
	o.debA.Destroy()
	o.debB.Destroy()
}

func (o *Orchestrator) logWarnings(stage string, warnings []visual.Warning) {
	for _, w := range warnings {
		o.log.Warnw("Conversion warning",
			"stage", stage,
			"node", w.NodeID,
			"message", w.Message)
	}
}

func (o *Orchestrator) logRenderWarnings(stage string, warnings []string) {
	for _, w := range warnings {
		o.log.Warnw("Render warning",
			"stage", stage,
			"message", w)
	}
}
