// Package host defines the capability interfaces the cycling core needs
// from the editor-integration layer. The core depends only on these
// interfaces and never on a concrete editor, so every capability can be
// substituted with a fake in tests.
package host

import "github.com/yring/yring/internal/store"

// CheckpointHandle is an opaque reference to saved editor undo state.
// The zero value means "no checkpoint".
type CheckpointHandle uint64

// NoCheckpoint is the absent checkpoint handle.
const NoCheckpoint CheckpointHandle = 0

// PasteContext captures how a cycling session was entered: which
// register, whether it came from a visual selection, the repeat count,
// and the concrete apply command chosen by the editor layer.
type PasteContext struct {
	// Register is the register the paste read from.
	Register string

	// Visual is true when the paste replaced a visual selection.
	Visual bool

	// Count is the repeat count of the paste command.
	Count int

	// Command is the concrete apply command (e.g. "p" or "P").
	Command string
}

// AppliedChange describes the buffer region an applied entry occupies,
// so replace-mode cycling can recompute the replaced range on each step.
type AppliedChange struct {
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

// Applier applies a history entry to the editor buffer.
type Applier interface {
	// ApplyEntry applies the entry for the given cycle step. It must be
	// idempotent with respect to repeated calls for the same step given
	// the same checkpoint.
	ApplyEntry(entry *store.Entry, step int, pctx PasteContext, cp CheckpointHandle) (AppliedChange, error)
}

// Checkpointer saves and restores editor undo state so that cycling
// produces exactly one undo step overall.
type Checkpointer interface {
	// SaveCheckpoint records the current undo state. Returns
	// NoCheckpoint when there is nothing meaningful to checkpoint yet.
	SaveCheckpoint() (CheckpointHandle, error)

	// RestoreCheckpoint reverts the buffer to a saved checkpoint. A
	// checkpoint that has already been removed is treated as restored,
	// not as an error.
	RestoreCheckpoint(cp CheckpointHandle) error

	// DiscardCheckpoint releases a checkpoint's resources. Idempotent;
	// discarding an already-gone checkpoint is a no-op.
	DiscardCheckpoint(cp CheckpointHandle) error
}

// Highlighter renders transient paste highlights. Presentation only; it
// has no effect on data-model correctness.
type Highlighter interface {
	// HighlightApply highlights the region just applied from register.
	HighlightApply(register string)

	// HighlightClear removes any apply highlight.
	HighlightClear()
}

// Host bundles every capability the cycling core consumes.
type Host interface {
	Applier
	Checkpointer
	Highlighter
}
