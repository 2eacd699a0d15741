package rounder

import (
	"testing"

	"github.com/yring/yring/internal/host"
	"github.com/yring/yring/internal/host/fakehost"
)

// TestManager_GetReturnsSameInstance verifies rounders are created
// lazily and reused per session.
func TestManager_GetReturnsSameInstance(t *testing.T) {
	m := NewManager(fakehost.New(), testLog())

	a := m.Get("buffer-1")
	if a == nil {
		t.Fatal("Get() returned nil")
	}
	if m.Get("buffer-1") != a {
		t.Error("Get() returned a different rounder for the same session")
	}
	if m.Get("buffer-2") == a {
		t.Error("Get() shared a rounder across sessions")
	}
}

// TestManager_StopAll verifies cancellation reaches every active session
// without promoting anything.
func TestManager_StopAll(t *testing.T) {
	h := fakehost.New()
	m := NewManager(h, testLog())

	first := m.Get("buffer-1")
	second := m.Get("buffer-2")
	first.Start(snapshot3(), host.PasteContext{})
	second.Start(snapshot3(), host.PasteContext{})
	first.Next()

	if !m.AnyActive() {
		t.Fatal("AnyActive() = false with two active sessions")
	}

	m.StopAll(StopReasonNewEntry)

	if first.IsActive() || second.IsActive() {
		t.Error("session still active after StopAll")
	}
	if m.AnyActive() {
		t.Error("AnyActive() = true after StopAll")
	}
	if h.CheckpointCount() != 0 {
		t.Errorf("%d checkpoints alive after StopAll, want 0", h.CheckpointCount())
	}
}

// TestManager_StopAllIdleSessions verifies StopAll tolerates sessions
// that never started.
func TestManager_StopAllIdleSessions(t *testing.T) {
	m := NewManager(fakehost.New(), testLog())
	m.Get("buffer-1")

	m.StopAll(StopReasonCanceled)

	if m.AnyActive() {
		t.Error("AnyActive() = true after StopAll on idle sessions")
	}
}
