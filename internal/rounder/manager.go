package rounder

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/yring/yring/internal/host"
)

// Manager owns one rounder per editing session, keyed by a session
// identifier such as a buffer handle. Rounders are created on first
// access and kept for the process lifetime: sessions are cheap, and an
// idle rounder costs only a few fields.
type Manager struct {
	mu       sync.Mutex
	h        host.Host
	log      zerolog.Logger
	rounders map[string]*Rounder
}

// NewManager creates an empty manager bound to the given host.
func NewManager(h host.Host, log zerolog.Logger) *Manager {
	return &Manager{
		h:        h,
		log:      log,
		rounders: make(map[string]*Rounder),
	}
}

// Get returns the rounder for the session, creating it on first access.
func (m *Manager) Get(sessionID string) *Rounder {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rounders[sessionID]
	if !ok {
		r = New(m.h, m.log.With().Str("session", sessionID).Logger())
		m.rounders[sessionID] = r
	}
	return r
}

// StopAll cancels every active cycling session. Used when a new entry
// arrives: the snapshots users were cycling through are now stale, so
// their checkpoints are discarded before the entry is stored. No cache
// promotion happens on cancellation.
func (m *Manager) StopAll(reason string) {
	m.mu.Lock()
	rounders := make([]*Rounder, 0, len(m.rounders))
	for _, r := range m.rounders {
		rounders = append(rounders, r)
	}
	m.mu.Unlock()

	for _, r := range rounders {
		r.Stop(reason)
	}
}

// AnyActive reports whether any session is currently cycling.
func (m *Manager) AnyActive() bool {
	m.mu.Lock()
	rounders := make([]*Rounder, 0, len(m.rounders))
	for _, r := range m.rounders {
		rounders = append(rounders, r)
	}
	m.mu.Unlock()

	for _, r := range rounders {
		if r.IsActive() {
			return true
		}
	}
	return false
}
