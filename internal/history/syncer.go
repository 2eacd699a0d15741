package history

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/yring/yring/internal/store"
)

// Syncer decides when the cache must be refreshed from the shared store.
// Multiple editor processes append to the same backing file; the syncer
// detects foreign writes with one cheap status read instead of re-reading
// the full history on every keystroke.
type Syncer struct {
	mu      sync.Mutex
	entries store.EntryStore
	cache   *Cache
	log     zerolog.Logger

	// last is the store status observed at the previous sync decision.
	last store.SyncStatus
}

// NewSyncer creates a syncer bridging the given entry store and cache.
func NewSyncer(entries store.EntryStore, cache *Cache, log zerolog.Logger) *Syncer {
	return &Syncer{
		entries: entries,
		cache:   cache,
		log:     log,
	}
}

// SyncIfNeeded reads the store's current SyncStatus and reloads the
// cache only when it differs from the last-observed pair. Returns true
// when a reload happened. When nothing changed the store does no work
// beyond the single aggregate read.
func (s *Syncer) SyncIfNeeded() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status, err := s.entries.SyncStatus()
	if err != nil {
		return false, fmt.Errorf("failed to check store status: %w", err)
	}

	if status == s.last {
		return false, nil
	}

	entries, err := s.entries.Recent(s.cache.MaxSize())
	if err != nil {
		return false, fmt.Errorf("failed to reload history: %w", err)
	}

	s.cache.SetAll(entries)
	s.last = status
	s.log.Debug().
		Int("entries", len(entries)).
		Int64("last_timestamp", status.LastTimestamp).
		Msg("history cache reloaded from store")
	return true, nil
}

// Observe records the store's current status as seen without reloading
// the cache. Called after a local write whose entry was already mirrored
// into the cache, so the next SyncIfNeeded does not reload needlessly.
func (s *Syncer) Observe() {
	s.mu.Lock()
	defer s.mu.Unlock()

	status, err := s.entries.SyncStatus()
	if err != nil {
		// Leave last unchanged; the next SyncIfNeeded will reload.
		s.log.Debug().Err(err).Msg("failed to observe store status")
		return
	}
	s.last = status
}
