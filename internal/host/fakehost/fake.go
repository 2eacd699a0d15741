// Package fakehost provides an in-memory host implementation for testing
// and demos. It models the editor buffer as a single string and keeps
// checkpoints in a map so save/restore/discard ordering can be asserted.
package fakehost

import (
	"fmt"
	"strings"
	"sync"

	"github.com/yring/yring/internal/host"
	"github.com/yring/yring/internal/store"
)

// ApplyCall records one ApplyEntry invocation.
type ApplyCall struct {
	EntryID    uint
	Content    string
	Step       int
	Checkpoint host.CheckpointHandle
}

// FakeHost implements host.Host against an in-memory buffer.
type FakeHost struct {
	mu sync.Mutex

	// Buffer is the simulated editor buffer content.
	Buffer string

	// NothingToCheckpoint makes SaveCheckpoint return NoCheckpoint.
	NothingToCheckpoint bool

	// FailApply, FailSave and FailRestore force the corresponding
	// capability to return an error.
	FailApply   bool
	FailSave    bool
	FailRestore bool

	checkpoints map[host.CheckpointHandle]string
	nextHandle  host.CheckpointHandle

	// Applies records every ApplyEntry call in order.
	Applies []ApplyCall

	// Restores and Discards record the handles passed in.
	Restores []host.CheckpointHandle
	Discards []host.CheckpointHandle

	// Highlighted holds the register of the active highlight, "" when
	// cleared.
	Highlighted string
}

// New creates an empty fake host.
func New() *FakeHost {
	return &FakeHost{
		checkpoints: make(map[host.CheckpointHandle]string),
		nextHandle:  1,
	}
}

// ApplyEntry sets the buffer to the entry content and records the call.
func (f *FakeHost) ApplyEntry(entry *store.Entry, step int, pctx host.PasteContext, cp host.CheckpointHandle) (host.AppliedChange, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailApply {
		return host.AppliedChange{}, fmt.Errorf("apply failed")
	}

	f.Buffer = entry.Content
	f.Applies = append(f.Applies, ApplyCall{
		EntryID:    entry.ID,
		Content:    entry.Content,
		Step:       step,
		Checkpoint: cp,
	})

	lines := strings.Split(entry.Content, "\n")
	return host.AppliedChange{
		StartLine: 0,
		StartCol:  0,
		EndLine:   len(lines) - 1,
		EndCol:    len(lines[len(lines)-1]),
	}, nil
}

// SaveCheckpoint snapshots the current buffer.
func (f *FakeHost) SaveCheckpoint() (host.CheckpointHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailSave {
		return host.NoCheckpoint, fmt.Errorf("save checkpoint failed")
	}
	if f.NothingToCheckpoint {
		return host.NoCheckpoint, nil
	}

	handle := f.nextHandle
	f.nextHandle++
	f.checkpoints[handle] = f.Buffer
	return handle, nil
}

// RestoreCheckpoint reverts the buffer. An unknown handle is treated as
// already restored.
func (f *FakeHost) RestoreCheckpoint(cp host.CheckpointHandle) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailRestore {
		return fmt.Errorf("restore checkpoint failed")
	}

	f.Restores = append(f.Restores, cp)
	if saved, ok := f.checkpoints[cp]; ok {
		f.Buffer = saved
	}
	return nil
}

// DiscardCheckpoint releases a checkpoint. Idempotent.
func (f *FakeHost) DiscardCheckpoint(cp host.CheckpointHandle) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Discards = append(f.Discards, cp)
	delete(f.checkpoints, cp)
	return nil
}

// HighlightApply records the highlighted register.
func (f *FakeHost) HighlightApply(register string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Highlighted = register
}

// HighlightClear removes the highlight.
func (f *FakeHost) HighlightClear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Highlighted = ""
}

// CheckpointCount returns the number of live checkpoints.
func (f *FakeHost) CheckpointCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.checkpoints)
}
