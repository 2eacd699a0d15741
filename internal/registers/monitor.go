// Package registers detects genuine content changes in editor registers
// and materializes them as history entries. Each register carries a
// baseline of its last recorded content; only observations that differ
// byte-for-byte from the baseline produce entries.
package registers

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"
	"github.com/yring/yring/internal/store"
)

// UnnamedRegister is the primary register checked when an event does not
// name one. It is always tracked.
const UnnamedRegister = `"`

// Content is the current state of a register as reported by a Source.
type Content struct {
	// Text is the register content.
	Text string

	// Kind is how the content was captured.
	Kind store.EntryKind

	// BlockWidth is the rectangle width for blockwise content.
	BlockWidth int
}

// Source fetches register content from the host editor or OS.
type Source interface {
	// Get returns the register's current content. ok is false when the
	// register is empty or unavailable.
	Get(register string) (content Content, ok bool, err error)
}

// Recorder persists a detected change. The engine implements it by
// appending to the store and mirroring into the cache.
type Recorder interface {
	RecordEntry(input *store.AppendInput) (*store.Entry, error)
}

// Canceler stops any in-progress cycling whose snapshot a new entry
// would make stale.
type Canceler interface {
	StopAll(reason string)
}

// ChangeEvent describes one observation request.
type ChangeEvent struct {
	// Register names the register to check; empty means the unnamed
	// register.
	Register string

	// EventSourced is true when the host explicitly reported that this
	// register changed because of an event. Event-sourced observations
	// record an entry even on the very first sighting of a register;
	// polled observations only establish a baseline.
	EventSourced bool

	// SourceFile, SourceLine and ContentType are optional provenance
	// attached to any recorded entry.
	SourceFile  string
	SourceLine  int
	ContentType string
}

// Monitor applies the per-register change-detection state machine. A
// register is Uninitialized until first observed; the first observation
// records a baseline without creating an entry (content that existed
// before we attached is not history), unless the observation is
// event-sourced.
type Monitor struct {
	mu        sync.Mutex
	source    Source
	recorder  Recorder
	canceler  Canceler
	log       zerolog.Logger
	tracked   map[string]bool
	baselines map[string]string
}

// NewMonitor creates a monitor over the given source. Only registers in
// tracked (plus the unnamed register, always) are observed; canceler may
// be nil when no cycling exists.
func NewMonitor(source Source, recorder Recorder, canceler Canceler, tracked []string, log zerolog.Logger) *Monitor {
	trackedSet := make(map[string]bool, len(tracked)+1)
	trackedSet[UnnamedRegister] = true
	for _, register := range tracked {
		trackedSet[register] = true
	}

	return &Monitor{
		source:    source,
		recorder:  recorder,
		canceler:  canceler,
		log:       log,
		tracked:   trackedSet,
		baselines: make(map[string]string),
	}
}

// CheckChanges observes one register and records an entry when its
// content genuinely changed. Returns the recorded entry, or nil when the
// observation was a no-op. Failed writes are logged and swallowed: the
// entry is simply not recorded this time, and no retry is scheduled — a
// subsequent distinct change is tried independently.
func (m *Monitor) CheckChanges(event ChangeEvent) (*store.Entry, error) {
	register := event.Register
	if register == "" {
		register = UnnamedRegister
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.tracked[register] {
		return nil, nil
	}

	content, ok, err := m.source.Get(register)
	if err != nil {
		m.log.Warn().Str("register", register).Err(err).
			Msg("failed to read register")
		return nil, nil
	}
	if !ok {
		return nil, nil
	}

	baseline, seen := m.baselines[register]
	if !seen && !event.EventSourced {
		// First sighting of this register: record the baseline only.
		m.baselines[register] = content.Text
		return nil, nil
	}
	if seen && baseline == content.Text {
		return nil, nil
	}

	// The sets being cycled through are stale now; cancel before the
	// entry is stored.
	if m.canceler != nil {
		m.canceler.StopAll("new-entry")
	}

	// Whatever happens to the write, this content has been observed.
	m.baselines[register] = content.Text

	entry, err := m.recorder.RecordEntry(&store.AppendInput{
		Content:     content.Text,
		Kind:        content.Kind,
		BlockWidth:  content.BlockWidth,
		Register:    register,
		SourceFile:  event.SourceFile,
		SourceLine:  event.SourceLine,
		ContentType: event.ContentType,
	})
	if err != nil {
		if errors.Is(err, store.ErrLockTimeout) {
			m.log.Warn().Str("register", register).Err(err).
				Msg("history store contended, entry not recorded")
		} else {
			m.log.Warn().Str("register", register).Err(err).
				Msg("failed to record history entry")
		}
		return nil, nil
	}

	m.log.Debug().Str("register", register).Uint("id", entry.ID).
		Int64("size", entry.Size).Msg("recorded history entry")
	return entry, nil
}

// Reset clears all register baselines, used on reinitialization.
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.baselines = make(map[string]string)
}
