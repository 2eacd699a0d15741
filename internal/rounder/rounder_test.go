package rounder

import (
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/yring/yring/internal/host"
	"github.com/yring/yring/internal/host/fakehost"
	"github.com/yring/yring/internal/store"
)

func testLog() zerolog.Logger {
	return zerolog.New(io.Discard)
}

// snapshot3 builds a newest-first history: "third" is the entry applied
// before cycling began.
func snapshot3() []*store.Entry {
	return []*store.Entry{
		{ID: 3, Content: "third", Kind: store.KindCharwise, Timestamp: 3},
		{ID: 2, Content: "second", Kind: store.KindCharwise, Timestamp: 2},
		{ID: 1, Content: "first", Kind: store.KindCharwise, Timestamp: 1},
	}
}

func startActive(t *testing.T, h *fakehost.FakeHost) *Rounder {
	t.Helper()
	r := New(h, testLog())
	if !r.Start(snapshot3(), host.PasteContext{Register: `"`, Command: "p"}) {
		t.Fatal("Start() = false with non-empty snapshot")
	}
	return r
}

// TestRounder_StartEmptySnapshot verifies no session starts over empty
// history.
func TestRounder_StartEmptySnapshot(t *testing.T) {
	r := New(fakehost.New(), testLog())

	if r.Start(nil, host.PasteContext{}) {
		t.Error("Start(nil) = true, want false")
	}
	if r.IsActive() {
		t.Error("rounder active after failed start")
	}
}

// TestRounder_NextWalksTowardOlder covers the full navigation scenario:
// next steps to the second-newest, then the oldest, then hits the
// boundary without moving.
func TestRounder_NextWalksTowardOlder(t *testing.T) {
	h := fakehost.New()
	h.Buffer = "third"
	r := startActive(t, h)

	entry, err := r.Next()
	if err != nil {
		t.Fatalf("Next() error: %v", err)
	}
	if entry == nil || entry.Content != "second" {
		t.Fatalf("first Next() = %+v, want the second entry", entry)
	}
	if h.Buffer != "second" {
		t.Errorf("buffer = %q after step, want second", h.Buffer)
	}

	entry, err = r.Next()
	if err != nil {
		t.Fatalf("Next() error: %v", err)
	}
	if entry == nil || entry.Content != "first" {
		t.Fatalf("second Next() = %+v, want the oldest entry", entry)
	}

	// Oldest boundary: no wrap, cursor stays.
	entry, err = r.Next()
	if err != nil {
		t.Fatalf("Next() at boundary error: %v", err)
	}
	if entry != nil {
		t.Errorf("Next() at oldest boundary = %+v, want nil", entry)
	}
	if current, _ := r.CurrentEntry(); current.Content != "first" {
		t.Errorf("cursor moved at boundary: current = %q", current.Content)
	}
	if h.Buffer != "first" {
		t.Errorf("buffer changed at boundary: %q", h.Buffer)
	}
}

// TestRounder_PreviousWalksTowardNewer verifies backward navigation and
// the newest boundary.
func TestRounder_PreviousWalksTowardNewer(t *testing.T) {
	h := fakehost.New()
	r := startActive(t, h)

	// At cursor 0 the newest entry is already applied.
	if entry, err := r.Previous(); err != nil || entry != nil {
		t.Errorf("Previous() at newest boundary = (%+v, %v), want (nil, nil)", entry, err)
	}

	r.Next()
	r.Next()

	entry, err := r.Previous()
	if err != nil {
		t.Fatalf("Previous() error: %v", err)
	}
	if entry == nil || entry.Content != "second" {
		t.Errorf("Previous() = %+v, want the second entry", entry)
	}
	if h.Buffer != "second" {
		t.Errorf("buffer = %q, want second", h.Buffer)
	}
}

// TestRounder_RestoreBeforeApply verifies each step restores the
// pre-cycle checkpoint before applying, so the whole session is one undo
// step.
func TestRounder_RestoreBeforeApply(t *testing.T) {
	h := fakehost.New()
	h.Buffer = "third"
	r := startActive(t, h)

	r.Next()
	r.Next()

	if len(h.Restores) != 2 {
		t.Fatalf("got %d restores for 2 steps, want 2", len(h.Restores))
	}
	if len(h.Applies) != 2 {
		t.Fatalf("got %d applies for 2 steps, want 2", len(h.Applies))
	}
	// Both steps restored the same pre-cycle checkpoint.
	if h.Restores[0] != h.Restores[1] {
		t.Errorf("steps restored different checkpoints: %v", h.Restores)
	}
	// The restore reverted the buffer, so both applies started from the
	// pre-cycle content.
	if h.Applies[1].Content != "first" {
		t.Errorf("second apply content = %q, want first", h.Applies[1].Content)
	}
}

// TestRounder_StopPromotesCurrentEntry verifies stopping away from the
// snapshot front returns the shown entry.
func TestRounder_StopPromotesCurrentEntry(t *testing.T) {
	h := fakehost.New()
	r := startActive(t, h)

	r.Next()
	promoted := r.Stop(StopReasonDone)
	if promoted == nil || promoted.ID != 2 {
		t.Fatalf("Stop() promoted %+v, want entry 2", promoted)
	}
	if r.IsActive() {
		t.Error("rounder still active after Stop")
	}
}

// TestRounder_StopAtFrontPromotesNothing verifies no promotion when the
// session never moved.
func TestRounder_StopAtFrontPromotesNothing(t *testing.T) {
	r := startActive(t, fakehost.New())

	if promoted := r.Stop(StopReasonDone); promoted != nil {
		t.Errorf("Stop() without navigation promoted %+v, want nil", promoted)
	}
}

// TestRounder_StopDiscardsCheckpointAndClearsHighlight verifies resource
// release on stop.
func TestRounder_StopDiscardsCheckpointAndClearsHighlight(t *testing.T) {
	h := fakehost.New()
	r := startActive(t, h)
	r.Next()

	if h.Highlighted == "" {
		t.Fatal("no highlight after a step")
	}

	r.Stop(StopReasonDone)

	if h.CheckpointCount() != 0 {
		t.Errorf("%d checkpoints alive after Stop, want 0", h.CheckpointCount())
	}
	if len(h.Discards) != 1 {
		t.Errorf("got %d discards, want 1", len(h.Discards))
	}
	if h.Highlighted != "" {
		t.Error("highlight survived Stop")
	}
}

// TestRounder_StopIdempotent verifies double stop is safe and the second
// returns nothing.
func TestRounder_StopIdempotent(t *testing.T) {
	h := fakehost.New()
	r := startActive(t, h)
	r.Next()

	r.Stop(StopReasonDone)
	if promoted := r.Stop(StopReasonDone); promoted != nil {
		t.Errorf("second Stop() promoted %+v, want nil", promoted)
	}
	if len(h.Discards) != 1 {
		t.Errorf("second Stop discarded again: %d discards", len(h.Discards))
	}
}

// TestRounder_IdleNavigationNoOp verifies Next/Previous on an idle
// rounder are defined no-ops.
func TestRounder_IdleNavigationNoOp(t *testing.T) {
	r := New(fakehost.New(), testLog())

	if entry, err := r.Next(); entry != nil || err != nil {
		t.Errorf("idle Next() = (%+v, %v), want (nil, nil)", entry, err)
	}
	if entry, err := r.Previous(); entry != nil || err != nil {
		t.Errorf("idle Previous() = (%+v, %v), want (nil, nil)", entry, err)
	}
	if _, ok := r.CurrentEntry(); ok {
		t.Error("idle CurrentEntry() = ok")
	}
}

// TestRounder_RestartDiscardsPriorSession verifies Start on an active
// rounder releases the old checkpoint and begins fresh.
func TestRounder_RestartDiscardsPriorSession(t *testing.T) {
	h := fakehost.New()
	r := startActive(t, h)
	r.Next()

	if !r.Start(snapshot3(), host.PasteContext{Register: `"`}) {
		t.Fatal("restart Start() = false")
	}

	if len(h.Discards) != 1 {
		t.Errorf("restart discarded %d checkpoints, want 1", len(h.Discards))
	}
	if current, _ := r.CurrentEntry(); current.ID != 3 {
		t.Errorf("cursor after restart at entry %d, want 3", current.ID)
	}
}

// TestRounder_SnapshotIsImmutable verifies mutating the caller's slice
// after Start does not affect navigation.
func TestRounder_SnapshotIsImmutable(t *testing.T) {
	h := fakehost.New()
	entries := snapshot3()
	r := New(h, testLog())
	r.Start(entries, host.PasteContext{})

	entries[1] = &store.Entry{ID: 99, Content: "intruder"}

	entry, err := r.Next()
	if err != nil {
		t.Fatalf("Next() error: %v", err)
	}
	if entry.ID != 2 {
		t.Errorf("Next() = entry %d, want the snapshotted entry 2", entry.ID)
	}
}

// TestRounder_NoCheckpointReRecordedOnFirstStep verifies the deferred
// checkpoint path: when the start-time save reports nothing to
// checkpoint, the first successful apply records one and later steps
// restore it.
func TestRounder_NoCheckpointReRecordedOnFirstStep(t *testing.T) {
	h := fakehost.New()
	h.NothingToCheckpoint = true
	r := startActive(t, h)

	h.NothingToCheckpoint = false
	h.Buffer = "third"

	// First step: no checkpoint to restore, apply, then re-record.
	if _, err := r.Next(); err != nil {
		t.Fatalf("Next() error: %v", err)
	}
	if len(h.Restores) != 0 {
		t.Errorf("first step restored %d checkpoints, want 0", len(h.Restores))
	}
	if h.CheckpointCount() != 1 {
		t.Fatalf("checkpoint not re-recorded after first step: %d live", h.CheckpointCount())
	}

	// Second step restores the re-recorded checkpoint. Its saved content
	// is the first step's result, which becomes the session's undo
	// baseline.
	if _, err := r.Next(); err != nil {
		t.Fatalf("Next() error: %v", err)
	}
	if len(h.Restores) != 1 {
		t.Errorf("second step restored %d checkpoints, want 1", len(h.Restores))
	}
}

// TestRounder_FailedApplyKeepsCursor verifies a failed apply reports the
// error and leaves the cursor unmoved.
func TestRounder_FailedApplyKeepsCursor(t *testing.T) {
	h := fakehost.New()
	r := startActive(t, h)
	r.Next()

	h.FailApply = true
	if _, err := r.Next(); err == nil {
		t.Fatal("Next() with failing apply returned no error")
	}

	if current, _ := r.CurrentEntry(); current.ID != 2 {
		t.Errorf("cursor moved after failed apply: at entry %d, want 2", current.ID)
	}

	// The session survives; recovery is possible.
	h.FailApply = false
	if entry, err := r.Next(); err != nil || entry == nil || entry.ID != 1 {
		t.Errorf("recovery Next() = (%+v, %v), want entry 1", entry, err)
	}
}

// TestRounder_FailedRestorePropagates verifies restore failures abort the
// step before anything is applied.
func TestRounder_FailedRestorePropagates(t *testing.T) {
	h := fakehost.New()
	r := startActive(t, h)

	h.FailRestore = true
	if _, err := r.Next(); err == nil {
		t.Fatal("Next() with failing restore returned no error")
	}
	if len(h.Applies) != 0 {
		t.Errorf("apply ran despite failed restore: %d applies", len(h.Applies))
	}
}

// TestRounder_Overrides verifies transient options live only for the
// session.
func TestRounder_Overrides(t *testing.T) {
	r := startActive(t, fakehost.New())

	r.SetOverride("indent", "off")
	if value, ok := r.Override("indent"); !ok || value != "off" {
		t.Errorf("Override(indent) = (%q, %v), want (off, true)", value, ok)
	}
	if _, ok := r.Override("missing"); ok {
		t.Error("Override(missing) = ok")
	}

	r.Stop(StopReasonDone)
	if _, ok := r.Override("indent"); ok {
		t.Error("override survived Stop")
	}
}

// TestRounder_ReplaceMetaTracksAppliedChange verifies the replace range
// is recomputed from each step's applied change.
func TestRounder_ReplaceMetaTracksAppliedChange(t *testing.T) {
	h := fakehost.New()
	r := New(h, testLog())
	r.Start([]*store.Entry{
		{ID: 2, Content: "short", Kind: store.KindCharwise},
		{ID: 1, Content: "line one\nline two", Kind: store.KindLinewise},
	}, host.PasteContext{Visual: true})
	r.SetReplaceMeta(&ReplaceMeta{StartLine: 4, StartCol: 2, EndLine: 4, EndCol: 7})

	if _, err := r.Next(); err != nil {
		t.Fatalf("Next() error: %v", err)
	}

	meta := r.ReplaceRange()
	if meta == nil {
		t.Fatal("ReplaceRange() = nil after step")
	}
	// The fake host reports the applied region of the two-line entry.
	if meta.EndLine != 1 || meta.EndCol != len("line two") {
		t.Errorf("replace range end = (%d, %d), want (1, %d)",
			meta.EndLine, meta.EndCol, len("line two"))
	}
}
