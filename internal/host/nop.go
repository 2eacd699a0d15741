package host

import "github.com/yring/yring/internal/store"

// NopHost is a Host for surfaces with no editor attached, such as the
// CLI. Every capability is a no-op.
type NopHost struct{}

// ApplyEntry does nothing.
func (NopHost) ApplyEntry(entry *store.Entry, step int, pctx PasteContext, cp CheckpointHandle) (AppliedChange, error) {
	return AppliedChange{}, nil
}

// SaveCheckpoint reports nothing to checkpoint.
func (NopHost) SaveCheckpoint() (CheckpointHandle, error) {
	return NoCheckpoint, nil
}

// RestoreCheckpoint does nothing.
func (NopHost) RestoreCheckpoint(cp CheckpointHandle) error {
	return nil
}

// DiscardCheckpoint does nothing.
func (NopHost) DiscardCheckpoint(cp CheckpointHandle) error {
	return nil
}

// HighlightApply does nothing.
func (NopHost) HighlightApply(register string) {}

// HighlightClear does nothing.
func (NopHost) HighlightClear() {}
