// Package dbstore implements the durable yank log on SQLite via GORM.
//
// The backing file is shared between independent editor processes, so the
// store favors WAL journaling with a bounded busy timeout over full
// synchronous durability, and retries contended writes with backoff until
// a configurable deadline. A damaged file is quarantined and recreated at
// open time rather than failing startup.
package dbstore

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/yring/yring/internal/store"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	// SchemaVersion is recorded in the settings table at creation.
	SchemaVersion = "1"

	// DefaultMaxEntries bounds retention when no limit is configured.
	DefaultMaxEntries = 100

	// DefaultMaxContentSize bounds entry content when no ceiling is
	// configured (1 MiB).
	DefaultMaxContentSize = 1 << 20

	// DefaultLockTimeout bounds the wait for a contended write lock.
	DefaultLockTimeout = 3 * time.Second
)

// Options configures a SQLiteStore.
type Options struct {
	// MaxEntries is the retention bound. <= 0 means DefaultMaxEntries.
	MaxEntries int

	// MaxContentSize is the content byte ceiling. <= 0 means
	// DefaultMaxContentSize.
	MaxContentSize int64

	// LockTimeout bounds write-lock acquisition. <= 0 means
	// DefaultLockTimeout.
	LockTimeout time.Duration

	// Logger receives quarantine and degraded-operation events.
	Logger zerolog.Logger
}

func (o *Options) normalize() {
	if o.MaxEntries <= 0 {
		o.MaxEntries = DefaultMaxEntries
	}
	if o.MaxContentSize <= 0 {
		o.MaxContentSize = DefaultMaxContentSize
	}
	if o.LockTimeout <= 0 {
		o.LockTimeout = DefaultLockTimeout
	}
}

// SQLiteStore is a SQLite-backed implementation of store.Store.
type SQLiteStore struct {
	db     *gorm.DB
	dbPath string
	opts   Options
	log    zerolog.Logger

	closeOnce sync.Once
	closeErr  error
}

// Open opens or creates the yank log at dbPath. If the existing file is
// damaged it is renamed aside as a timestamped backup and a fresh store
// is created; if the rename fails the file is deleted; if deletion also
// fails the original open error propagates.
func Open(dbPath string, opts Options) (*SQLiteStore, error) {
	opts.normalize()

	st, err := open(dbPath, opts)
	if err == nil {
		return st, nil
	}
	if !isCorruption(err) {
		return nil, err
	}

	opts.Logger.Warn().Str("path", dbPath).Err(err).
		Msg("history database damaged, quarantining")
	if qerr := quarantine(dbPath); qerr != nil {
		opts.Logger.Error().Str("path", dbPath).Err(qerr).
			Msg("failed to quarantine damaged database")
		return nil, err
	}

	return open(dbPath, opts)
}

// open performs a single open attempt against the given path.
func open(dbPath string, opts Options) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	st := &SQLiteStore{
		db:     db,
		dbPath: dbPath,
		opts:   opts,
		log:    opts.Logger,
	}

	if err := st.configureDurability(); err != nil {
		st.Close()
		return nil, err
	}

	// Schema problems on a damaged file surface here.
	if err := db.AutoMigrate(&EntryModel{}, &SettingModel{}); err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	if err := st.initDefaultSettings(); err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to init settings: %w", err)
	}

	return st, nil
}

// configureDurability sets the multi-process pragmas. WAL with
// synchronous=NORMAL is the primary mode; when the file or filesystem
// cannot run WAL, the store falls back to the default rollback journal
// with synchronous=FULL.
func (s *SQLiteStore) configureDurability() error {
	busyMillis := int(s.opts.LockTimeout / time.Millisecond)
	if err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", busyMillis)).Error; err != nil {
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}

	var mode string
	if err := s.db.Raw("PRAGMA journal_mode = WAL").Scan(&mode).Error; err != nil {
		return fmt.Errorf("failed to set journal mode: %w", err)
	}

	if strings.EqualFold(mode, "wal") {
		if err := s.db.Exec("PRAGMA synchronous = NORMAL").Error; err != nil {
			return fmt.Errorf("failed to set synchronous mode: %w", err)
		}
		return nil
	}

	// WAL unavailable: keep whatever journal mode SQLite settled on and
	// take the stricter durability setting instead.
	s.log.Warn().Str("journal_mode", mode).
		Msg("WAL unavailable, falling back to synchronous=FULL")
	if err := s.db.Exec("PRAGMA synchronous = FULL").Error; err != nil {
		return fmt.Errorf("failed to set synchronous mode: %w", err)
	}
	return nil
}

// initDefaultSettings sets up schema version and retention defaults.
func (s *SQLiteStore) initDefaultSettings() error {
	defaults := map[string]string{
		store.SettingSchemaVersion: SchemaVersion,
		store.SettingMaxEntries:    strconv.Itoa(s.opts.MaxEntries),
	}

	settings := s.Settings()
	for key, value := range defaults {
		// Only set if not already present
		if _, err := settings.Get(key); err != nil {
			if err := settings.Set(key, value); err != nil {
				return err
			}
		}
	}

	return nil
}

// Entries returns the entry store.
func (s *SQLiteStore) Entries() store.EntryStore {
	return &sqliteEntryStore{parent: s}
}

// Settings returns the settings store.
func (s *SQLiteStore) Settings() store.SettingsStore {
	return &sqliteSettingsStore{db: s.db}
}

// Close closes the database connection. Idempotent.
func (s *SQLiteStore) Close() error {
	s.closeOnce.Do(func() {
		sqlDB, err := s.db.DB()
		if err != nil {
			s.closeErr = err
			return
		}
		s.closeErr = sqlDB.Close()
	})
	return s.closeErr
}

// quarantine moves a damaged database aside, deleting it when the move
// fails. WAL sidecar files go with it best-effort.
func quarantine(dbPath string) error {
	backup := fmt.Sprintf("%s.corrupt-%s", dbPath, time.Now().Format("20060102-150405"))
	if err := os.Rename(dbPath, backup); err != nil {
		if rmErr := os.Remove(dbPath); rmErr != nil {
			return fmt.Errorf("failed to rename damaged database: %v, and failed to delete it: %w", err, rmErr)
		}
	}
	for _, suffix := range []string{"-wal", "-shm"} {
		os.Remove(dbPath + suffix)
	}
	return nil
}

// isCorruption reports whether err looks like file damage rather than a
// transient or configuration problem.
func isCorruption(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"file is not a database",
		"not a database",
		"database disk image is malformed",
		"malformed database schema",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// isLocked reports whether err is SQLite lock contention.
func isLocked(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked")
}

// sqliteEntryStore implements store.EntryStore.
type sqliteEntryStore struct {
	parent *SQLiteStore
}

// Append validates, persists and prunes inside one transaction, retrying
// lock contention with backoff until the configured deadline.
func (s *sqliteEntryStore) Append(input *store.AppendInput) (*store.Entry, error) {
	if !input.Kind.Valid() {
		return nil, fmt.Errorf("%w: %q", store.ErrInvalidKind, input.Kind)
	}

	size := int64(len(input.Content))
	if size > s.parent.opts.MaxContentSize {
		return nil, fmt.Errorf("%w: %d bytes (limit %d)",
			store.ErrContentTooLarge, size, s.parent.opts.MaxContentSize)
	}

	timestamp := input.Timestamp
	if timestamp == 0 {
		timestamp = time.Now().UnixNano()
	}

	model := &EntryModel{
		Content:     input.Content,
		Kind:        string(input.Kind),
		BlockWidth:  input.BlockWidth,
		Timestamp:   timestamp,
		Size:        size,
		Register:    input.Register,
		SourceFile:  input.SourceFile,
		SourceLine:  input.SourceLine,
		ContentType: input.ContentType,
	}

	err := s.withRetry(func() error {
		return s.parent.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(model).Error; err != nil {
				return err
			}
			return s.prune(tx)
		})
	})
	if err != nil {
		if errors.Is(err, store.ErrLockTimeout) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to append entry: %w", err)
	}

	return model.ToEntry(), nil
}

// prune deletes everything outside the N most recent entries, ordered by
// timestamp then ID so concurrent writers agree on the survivors.
func (s *sqliteEntryStore) prune(tx *gorm.DB) error {
	keep := tx.Model(&EntryModel{}).
		Select("id").
		Order("timestamp DESC, id DESC").
		Limit(s.parent.opts.MaxEntries)

	return tx.Where("id NOT IN (?)", keep).Delete(&EntryModel{}).Error
}

// Recent returns the newest entries, capped at the retention bound.
func (s *sqliteEntryStore) Recent(limit int) ([]*store.Entry, error) {
	n := s.parent.opts.MaxEntries
	if limit > 0 && limit < n {
		n = limit
	}

	var models []*EntryModel
	err := s.parent.db.
		Order("timestamp DESC, id DESC").
		Limit(n).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}

	entries := make([]*store.Entry, len(models))
	for i, model := range models {
		entries[i] = model.ToEntry()
	}

	return entries, nil
}

// SyncStatus reads the staleness fingerprint in a single aggregate query.
func (s *sqliteEntryStore) SyncStatus() (store.SyncStatus, error) {
	var row syncStatusRow
	err := s.parent.db.Model(&EntryModel{}).
		Select("COUNT(*) AS entry_count, COALESCE(MAX(timestamp), 0) AS last_timestamp").
		Scan(&row).Error
	if err != nil {
		return store.SyncStatus{}, fmt.Errorf("failed to read sync status: %w", err)
	}

	return store.SyncStatus{
		LastTimestamp: row.LastTimestamp,
		EntryCount:    row.EntryCount,
	}, nil
}

// Clear removes all entries.
func (s *sqliteEntryStore) Clear() error {
	if err := s.parent.db.Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&EntryModel{}).Error; err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// Close releases any resources
func (s *sqliteEntryStore) Close() error {
	return nil // No-op, parent store handles DB closing
}

// withRetry runs op, retrying lock contention with doubling backoff until
// the lock timeout elapses, after which ErrLockTimeout is returned.
func (s *sqliteEntryStore) withRetry(op func() error) error {
	deadline := time.Now().Add(s.parent.opts.LockTimeout)
	backoff := 5 * time.Millisecond

	for {
		err := op()
		if err == nil || !isLocked(err) {
			return err
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: %v", store.ErrLockTimeout, err)
		}

		s.parent.log.Debug().Dur("backoff", backoff).
			Msg("history database locked, retrying")
		time.Sleep(backoff)
		if backoff < 250*time.Millisecond {
			backoff *= 2
		}
	}
}

// sqliteSettingsStore implements store.SettingsStore.
type sqliteSettingsStore struct {
	db *gorm.DB
}

// Get retrieves a settings value by key
func (s *sqliteSettingsStore) Get(key string) (string, error) {
	var model SettingModel
	if err := s.db.First(&model, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("settings key %q: %w", key, store.ErrNotFound)
		}
		return "", fmt.Errorf("failed to get setting: %w", err)
	}
	return model.Value, nil
}

// Set stores a settings value (upsert)
func (s *sqliteSettingsStore) Set(key, value string) error {
	model := &SettingModel{
		Key:   key,
		Value: value,
	}

	result := s.db.Where("key = ?", key).
		Assign(map[string]interface{}{"value": value, "updated_at": s.db.NowFunc()}).
		FirstOrCreate(model)

	if result.Error != nil {
		return fmt.Errorf("failed to set setting: %w", result.Error)
	}

	return nil
}

// List returns all settings key-value pairs
func (s *sqliteSettingsStore) List() (map[string]string, error) {
	var models []SettingModel
	if err := s.db.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}

	result := make(map[string]string, len(models))
	for _, model := range models {
		result[model.Key] = model.Value
	}

	return result, nil
}

// Delete removes a settings key
func (s *sqliteSettingsStore) Delete(key string) error {
	result := s.db.Delete(&SettingModel{}, "key = ?", key)
	if result.Error != nil {
		return fmt.Errorf("failed to delete setting: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("settings key %q: %w", key, store.ErrNotFound)
	}
	return nil
}

// Close releases any resources
func (s *sqliteSettingsStore) Close() error {
	return nil // No-op, parent store handles DB closing
}
