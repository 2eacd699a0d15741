// Package memstore provides an in-memory implementation of the store
// interfaces. This implementation is designed for fast unit testing and
// does not persist data.
package memstore

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/yring/yring/internal/store"
)

// DefaultMaxEntries bounds retention when no limit is configured.
const DefaultMaxEntries = 100

// DefaultMaxContentSize bounds entry content when no ceiling is
// configured (1 MiB).
const DefaultMaxContentSize = 1 << 20

// MemoryStore is an in-memory implementation of store.Store.
// It is thread-safe via mutexes; data exists only for the lifetime of
// the process.
type MemoryStore struct {
	entries  *memoryEntryStore
	settings *memorySettingsStore
}

// NewMemoryStore creates a new in-memory store with default bounds.
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithLimits(DefaultMaxEntries, DefaultMaxContentSize)
}

// NewMemoryStoreWithLimits creates a new in-memory store with a custom
// retention bound and content byte ceiling.
func NewMemoryStoreWithLimits(maxEntries int, maxContentSize int64) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if maxContentSize <= 0 {
		maxContentSize = DefaultMaxContentSize
	}
	return &MemoryStore{
		entries:  newMemoryEntryStore(maxEntries, maxContentSize),
		settings: newMemorySettingsStore(),
	}
}

// Entries returns the entry store.
func (m *MemoryStore) Entries() store.EntryStore {
	return m.entries
}

// Settings returns the settings store.
func (m *MemoryStore) Settings() store.SettingsStore {
	return m.settings
}

// Close releases resources (no-op for memory store).
func (m *MemoryStore) Close() error {
	return nil
}

// memoryEntryStore implements store.EntryStore with a mutex-guarded map.
type memoryEntryStore struct {
	mu             sync.RWMutex
	entries        map[uint]*store.Entry
	nextID         uint
	maxEntries     int
	maxContentSize int64
}

func newMemoryEntryStore(maxEntries int, maxContentSize int64) *memoryEntryStore {
	return &memoryEntryStore{
		entries:        make(map[uint]*store.Entry),
		nextID:         1,
		maxEntries:     maxEntries,
		maxContentSize: maxContentSize,
	}
}

// Append validates and stores a new entry, then prunes beyond the
// retention bound.
func (m *memoryEntryStore) Append(input *store.AppendInput) (*store.Entry, error) {
	if !input.Kind.Valid() {
		return nil, fmt.Errorf("%w: %q", store.ErrInvalidKind, input.Kind)
	}

	size := int64(len(input.Content))
	if size > m.maxContentSize {
		return nil, fmt.Errorf("%w: %d bytes (limit %d)",
			store.ErrContentTooLarge, size, m.maxContentSize)
	}

	timestamp := input.Timestamp
	if timestamp == 0 {
		timestamp = time.Now().UnixNano()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++

	entry := &store.Entry{
		ID:          id,
		Content:     input.Content,
		Kind:        input.Kind,
		BlockWidth:  input.BlockWidth,
		Timestamp:   timestamp,
		Size:        size,
		Register:    input.Register,
		SourceFile:  input.SourceFile,
		SourceLine:  input.SourceLine,
		ContentType: input.ContentType,
		CreatedAt:   time.Now(),
	}
	m.entries[id] = entry

	m.pruneLocked()

	return cloneEntry(entry), nil
}

// pruneLocked removes entries beyond the retention bound, oldest first.
// Caller must hold the write lock.
func (m *memoryEntryStore) pruneLocked() {
	if len(m.entries) <= m.maxEntries {
		return
	}

	ordered := m.sortedLocked()
	for _, entry := range ordered[m.maxEntries:] {
		delete(m.entries, entry.ID)
	}
}

// sortedLocked returns all entries newest first by timestamp, ties broken
// by ID descending. Caller must hold at least a read lock.
func (m *memoryEntryStore) sortedLocked() []*store.Entry {
	ordered := make([]*store.Entry, 0, len(m.entries))
	for _, entry := range m.entries {
		ordered = append(ordered, entry)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Timestamp != ordered[j].Timestamp {
			return ordered[i].Timestamp > ordered[j].Timestamp
		}
		return ordered[i].ID > ordered[j].ID
	})
	return ordered
}

// Recent returns the newest entries, capped at the retention bound.
func (m *memoryEntryStore) Recent(limit int) ([]*store.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := m.maxEntries
	if limit > 0 && limit < n {
		n = limit
	}

	ordered := m.sortedLocked()
	if len(ordered) > n {
		ordered = ordered[:n]
	}

	result := make([]*store.Entry, len(ordered))
	for i, entry := range ordered {
		result[i] = cloneEntry(entry)
	}
	return result, nil
}

// SyncStatus returns the staleness fingerprint.
func (m *memoryEntryStore) SyncStatus() (store.SyncStatus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	status := store.SyncStatus{EntryCount: int64(len(m.entries))}
	for _, entry := range m.entries {
		if entry.Timestamp > status.LastTimestamp {
			status.LastTimestamp = entry.Timestamp
		}
	}
	return status, nil
}

// Clear removes all entries.
func (m *memoryEntryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = make(map[uint]*store.Entry)
	return nil
}

// Close releases resources (no-op).
func (m *memoryEntryStore) Close() error {
	return nil
}

// cloneEntry copies an entry so callers cannot mutate stored state.
func cloneEntry(entry *store.Entry) *store.Entry {
	clone := *entry
	return &clone
}

// memorySettingsStore implements store.SettingsStore with a map.
type memorySettingsStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func newMemorySettingsStore() *memorySettingsStore {
	return &memorySettingsStore{
		values: make(map[string]string),
	}
}

// Get retrieves a settings value by key.
func (m *memorySettingsStore) Get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.values[key]
	if !ok {
		return "", fmt.Errorf("settings key %q: %w", key, store.ErrNotFound)
	}
	return value, nil
}

// Set stores a settings value.
func (m *memorySettingsStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = value
	return nil
}

// List returns all settings key-value pairs.
func (m *memorySettingsStore) List() (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string]string, len(m.values))
	for key, value := range m.values {
		result[key] = value
	}
	return result, nil
}

// Delete removes a settings key.
func (m *memorySettingsStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.values[key]; !ok {
		return fmt.Errorf("settings key %q: %w", key, store.ErrNotFound)
	}
	delete(m.values, key)
	return nil
}

// Close releases resources (no-op).
func (m *memorySettingsStore) Close() error {
	return nil
}
