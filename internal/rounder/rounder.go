// Package rounder implements the per-session history-cycling state
// machine. A rounder captures an immutable snapshot of the history at the
// start of a paste, tracks a cursor within it, and navigates older/newer
// entries by restoring an editor checkpoint before each apply, so a whole
// cycling session costs exactly one undo step.
package rounder

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/yring/yring/internal/host"
	"github.com/yring/yring/internal/store"
)

// State is the rounder lifecycle state.
type State int

const (
	// Idle means no cycling session is in progress.
	Idle State = iota

	// Active means a snapshot is held and navigation is possible.
	Active
)

// Stop reasons passed to Stop for logging.
const (
	StopReasonDone     = "done"      // user finished cycling
	StopReasonCanceled = "canceled"  // explicit cancellation
	StopReasonNewEntry = "new-entry" // a new yank invalidated the snapshot
	StopReasonRestart  = "restart"   // Start while already active
)

// ReplaceMeta describes the prior replace-selection operation when
// cycling was entered via "replace selection with register". The range is
// recomputed from each applied change so every step replaces the right
// region.
type ReplaceMeta struct {
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

// Rounder is one session's cycling state machine. All state transitions
// are serialized by an internal mutex: navigation calls are normally
// serialized by the host, but a call arriving while a previous one is
// suspended on I/O must not corrupt the cursor.
type Rounder struct {
	mu   sync.Mutex
	h    host.Host
	log  zerolog.Logger

	state      State
	snapshot   []*store.Entry
	cursor     int
	firstCycle bool
	checkpoint host.CheckpointHandle
	pctx       host.PasteContext
	overrides  map[string]string
	replace    *ReplaceMeta
}

// New creates an idle rounder bound to the given host capabilities.
func New(h host.Host, log zerolog.Logger) *Rounder {
	return &Rounder{
		h:   h,
		log: log,
	}
}

// Start begins a cycling session over the given snapshot. The snapshot
// is copied and stays fixed even if the underlying cache changes. The
// cursor starts at index 0, the entry already applied before cycling
// began. Starting while active discards the previous session first.
// Returns false when the snapshot is empty and no session was started.
func (r *Rounder) Start(snapshot []*store.Entry, pctx host.PasteContext) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == Active {
		r.stopLocked(StopReasonRestart)
	}
	if len(snapshot) == 0 {
		return false
	}

	r.snapshot = make([]*store.Entry, len(snapshot))
	copy(r.snapshot, snapshot)
	r.cursor = 0
	r.firstCycle = true
	r.pctx = pctx
	r.overrides = make(map[string]string)
	r.replace = nil

	cp, err := r.h.SaveCheckpoint()
	if err != nil {
		// Cycle without a restore point; the first successful apply
		// will try to record one.
		r.log.Warn().Err(err).Msg("failed to save checkpoint at cycle start")
		cp = host.NoCheckpoint
	}
	r.checkpoint = cp
	r.state = Active
	return true
}

// Next navigates one step toward older history. Returns nil at the
// oldest boundary, leaving the cursor unchanged; there is no wrap-around.
// Calling Next on an idle rounder is a defined no-op returning nil.
func (r *Rounder) Next() (*store.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != Active || r.cursor >= len(r.snapshot)-1 {
		return nil, nil
	}
	return r.stepLocked(r.cursor + 1)
}

// Previous navigates one step toward newer history. Returns nil at the
// newest boundary, leaving the cursor unchanged.
func (r *Rounder) Previous() (*store.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != Active || r.cursor <= 0 {
		return nil, nil
	}
	return r.stepLocked(r.cursor - 1)
}

// stepLocked restores the pre-cycle checkpoint, applies the entry at the
// target cursor, and re-records a checkpoint when the session started
// without one. The cursor only moves after a successful apply.
func (r *Rounder) stepLocked(target int) (*store.Entry, error) {
	entry := r.snapshot[target]

	if r.checkpoint != host.NoCheckpoint {
		if err := r.h.RestoreCheckpoint(r.checkpoint); err != nil {
			return nil, err
		}
	}

	change, err := r.h.ApplyEntry(entry, target, r.pctx, r.checkpoint)
	if err != nil {
		return nil, err
	}
	if r.replace != nil {
		// Each step rewrites a differently-sized region; keep the
		// replace range tracking what the entry now occupies.
		r.replace.StartLine = change.StartLine
		r.replace.StartCol = change.StartCol
		r.replace.EndLine = change.EndLine
		r.replace.EndCol = change.EndCol
	}

	if r.firstCycle {
		r.firstCycle = false
		if r.checkpoint == host.NoCheckpoint {
			cp, err := r.h.SaveCheckpoint()
			if err != nil {
				r.log.Warn().Err(err).Msg("failed to re-record checkpoint")
			} else {
				r.checkpoint = cp
			}
		}
	}

	r.cursor = target
	r.h.HighlightApply(r.pctx.Register)
	return entry, nil
}

// Stop ends the session, releases the checkpoint and clears all cycle
// state. Idempotent: stopping an idle rounder is a no-op. Returns the
// entry the session left applied when it differs from the snapshot
// front, so the caller can promote it in the cache; nil otherwise.
func (r *Rounder) Stop(reason string) *store.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stopLocked(reason)
}

func (r *Rounder) stopLocked(reason string) *store.Entry {
	if r.state != Active {
		return nil
	}

	var promoted *store.Entry
	if r.cursor > 0 && r.cursor < len(r.snapshot) {
		promoted = r.snapshot[r.cursor]
	}

	if r.checkpoint != host.NoCheckpoint {
		if err := r.h.DiscardCheckpoint(r.checkpoint); err != nil {
			r.log.Warn().Err(err).Str("reason", reason).
				Msg("failed to discard checkpoint")
		}
	}
	r.h.HighlightClear()

	r.log.Debug().Str("reason", reason).Int("cursor", r.cursor).
		Msg("cycling stopped")

	r.state = Idle
	r.snapshot = nil
	r.cursor = 0
	r.firstCycle = false
	r.checkpoint = host.NoCheckpoint
	r.pctx = host.PasteContext{}
	r.overrides = nil
	r.replace = nil

	return promoted
}

// IsActive reports whether a cycling session is in progress.
func (r *Rounder) IsActive() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state == Active
}

// CurrentEntry returns the entry at the cursor, or false when idle.
func (r *Rounder) CurrentEntry() (*store.Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != Active {
		return nil, false
	}
	return r.snapshot[r.cursor], true
}

// PasteContext returns the context captured at Start.
func (r *Rounder) PasteContext() host.PasteContext {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pctx
}

// SetOverride records a transient presentation option (e.g. a temporary
// reindent toggle) that lasts only for the active cycle.
func (r *Rounder) SetOverride(key, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.overrides != nil {
		r.overrides[key] = value
	}
}

// Override returns a transient option set during this cycle.
func (r *Rounder) Override(key string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.overrides == nil {
		return "", false
	}
	value, ok := r.overrides[key]
	return value, ok
}

// SetReplaceMeta records the range of the replace-selection operation
// that entered this cycle.
func (r *Rounder) SetReplaceMeta(meta *ReplaceMeta) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replace = meta
}

// ReplaceRange returns the replace-selection metadata, nil when cycling
// was not entered via replace.
func (r *Rounder) ReplaceRange() *ReplaceMeta {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.replace
}
