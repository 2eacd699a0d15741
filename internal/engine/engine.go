// Package engine wires the yank-history components together: register
// monitoring feeds the durable store, the syncer keeps the bounded cache
// fresh against foreign writers, and the rounder manager drives cycling
// per editing session. The engine is the surface the dispatcher and CLI
// call into.
package engine

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yring/yring/internal/history"
	"github.com/yring/yring/internal/host"
	"github.com/yring/yring/internal/registers"
	"github.com/yring/yring/internal/rounder"
	"github.com/yring/yring/internal/store"
)

// Options configures an Engine.
type Options struct {
	// Store is the durable yank log (required).
	Store store.Store

	// Host provides the editor capabilities for cycling (required).
	Host host.Host

	// Source fetches register content for change detection (required).
	Source registers.Source

	// MaxEntries bounds the in-memory cache; it should match the
	// store's retention bound.
	MaxEntries int

	// TrackedRegisters are monitored in addition to the always-tracked
	// unnamed register.
	TrackedRegisters []string

	// Logger receives component logs.
	Logger zerolog.Logger
}

// Engine owns the history cache, syncer, monitor and rounder manager.
type Engine struct {
	st       store.Store
	cache    *history.Cache
	syncer   *history.Syncer
	monitor  *registers.Monitor
	rounders *rounder.Manager
	log      zerolog.Logger
}

// New builds an engine and performs the initial cache load. An initial
// load failure is not fatal: the engine starts with an empty cache and
// the next sync retries.
func New(opts Options) *Engine {
	cache := history.NewCache(opts.MaxEntries)
	syncer := history.NewSyncer(opts.Store.Entries(), cache, opts.Logger)
	rounders := rounder.NewManager(opts.Host, opts.Logger)

	e := &Engine{
		st:       opts.Store,
		cache:    cache,
		syncer:   syncer,
		rounders: rounders,
		log:      opts.Logger,
	}
	e.monitor = registers.NewMonitor(opts.Source, e, rounders, opts.TrackedRegisters, opts.Logger)

	if _, err := syncer.SyncIfNeeded(); err != nil {
		opts.Logger.Warn().Err(err).Msg("initial history load failed")
	}

	return e
}

// RecordEntry implements registers.Recorder: it appends to the store,
// mirrors the entry into the cache, and marks the resulting store status
// as observed.
func (e *Engine) RecordEntry(input *store.AppendInput) (*store.Entry, error) {
	entry, err := e.st.Entries().Append(input)
	if err != nil {
		return nil, err
	}

	e.cache.Add(entry)
	e.syncer.Observe()
	return entry, nil
}

// RecordChange observes a register through the monitor. Returns the
// entry recorded, or nil when the observation was a no-op.
func (e *Engine) RecordChange(event registers.ChangeEvent) (*store.Entry, error) {
	return e.monitor.CheckChanges(event)
}

// ResetBaselines clears the monitor's register baselines.
func (e *Engine) ResetBaselines() {
	e.monitor.Reset()
}

// StartCycle snapshots the current cache for the session and begins
// cycling. Returns false when the history is empty.
func (e *Engine) StartCycle(sessionID string, pctx host.PasteContext) bool {
	e.syncQuietly()
	return e.rounders.Get(sessionID).Start(e.cache.GetAll(), pctx)
}

// CycleNext navigates the session one step toward older history. Returns
// nil at the boundary or when the session is not cycling.
func (e *Engine) CycleNext(sessionID string) (*store.Entry, error) {
	e.syncQuietly()
	return e.rounders.Get(sessionID).Next()
}

// CyclePrevious navigates the session one step toward newer history.
func (e *Engine) CyclePrevious(sessionID string) (*store.Entry, error) {
	e.syncQuietly()
	return e.rounders.Get(sessionID).Previous()
}

// StopCycle ends the session's cycling. When cycling ended on an entry
// other than the cache front, that entry is promoted so the next cycle
// starts from it.
func (e *Engine) StopCycle(sessionID, reason string) *store.Entry {
	promoted := e.rounders.Get(sessionID).Stop(reason)
	if promoted != nil {
		e.cache.MoveToFront(promoted.ID)
	}
	return promoted
}

// IsCycling reports whether the session has an active cycle.
func (e *Engine) IsCycling(sessionID string) bool {
	return e.rounders.Get(sessionID).IsActive()
}

// Recent returns the newest entries after a freshness check.
func (e *Engine) Recent(limit int) []*store.Entry {
	e.syncQuietly()
	return e.cache.GetRecent(limit)
}

// Search returns entries whose content matches the query
// case-insensitively, newest first.
func (e *Engine) Search(query string, limit int) []*store.Entry {
	e.syncQuietly()
	return e.cache.Search(query, limit)
}

// FilterByContentType returns entries tagged with the given content
// type.
func (e *Engine) FilterByContentType(tag string) []*store.Entry {
	e.syncQuietly()
	return e.cache.FilterByContentType(tag)
}

// Clear removes all history from the store and the cache.
func (e *Engine) Clear() error {
	if err := e.st.Entries().Clear(); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	e.cache.Clear()
	e.syncer.Observe()
	return nil
}

// Close releases the underlying store.
func (e *Engine) Close() error {
	return e.st.Close()
}

// syncQuietly refreshes the cache when the store changed, degrading to
// the cached view on error.
func (e *Engine) syncQuietly() {
	if _, err := e.syncer.SyncIfNeeded(); err != nil {
		e.log.Warn().Err(err).Msg("history sync failed, serving cached view")
	}
}
