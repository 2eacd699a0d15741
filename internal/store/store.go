// Package store defines the storage interfaces for yring's persistence
// layer. It provides abstractions for the durable yank-history log and
// the small settings table that travels with it.
package store

// EntryStore is the durable append-only yank log.
// Implementations must be safe for concurrent use within a process and,
// for durable implementations, tolerate concurrent writers from
// independent processes.
type EntryStore interface {
	// Append validates and persists a new entry, assigning its ID and
	// Size, then prunes entries beyond the configured retention bound.
	// Returns ErrContentTooLarge for oversize content, ErrInvalidKind
	// for a kind outside the closed set, and ErrLockTimeout when a
	// write lock cannot be acquired within the configured bound.
	Append(input *AppendInput) (*Entry, error)

	// Recent returns entries ordered newest first by timestamp, ties
	// broken by ID descending. At most min(limit, retention bound)
	// entries are returned; limit <= 0 means the retention bound.
	Recent(limit int) ([]*Entry, error)

	// SyncStatus returns the (max timestamp, entry count) pair in a
	// single cheap aggregate query. It never scans entry content.
	SyncStatus() (SyncStatus, error)

	// Clear removes all entries.
	Clear() error

	// Close releases resources. Safe to call multiple times.
	Close() error
}

// SettingsStore manages the key-value settings persisted alongside the
// history (schema version, retention count).
type SettingsStore interface {
	// Get retrieves a settings value by key.
	// Returns an error if the key does not exist.
	Get(key string) (string, error)

	// Set stores a settings value, updating any existing key.
	Set(key, value string) error

	// List returns all settings key-value pairs.
	List() (map[string]string, error)

	// Delete removes a settings key.
	// Returns an error if the key does not exist.
	Delete(key string) error

	// Close releases any resources.
	Close() error
}

// Store combines the entry log and its settings table, managing their
// lifecycle as a single unit.
type Store interface {
	// Entries returns the entry store for the yank log.
	Entries() EntryStore

	// Settings returns the settings store.
	Settings() SettingsStore

	// Close releases all resources for both stores.
	Close() error
}

// Settings keys used by durable stores.
const (
	// SettingSchemaVersion records the schema version of the backing file.
	SettingSchemaVersion = "schema_version"

	// SettingMaxEntries records the retention bound the store was
	// configured with.
	SettingMaxEntries = "max_entries"
)
