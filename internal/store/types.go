package store

import "time"

// EntryKind describes how yanked text was captured. It is a closed set:
// the storage boundary rejects any other value.
type EntryKind string

const (
	// KindCharwise is text captured within a line or spanning partial lines.
	KindCharwise EntryKind = "charwise"

	// KindLinewise is text captured as whole lines.
	KindLinewise EntryKind = "linewise"

	// KindBlockwise is text captured as a rectangular block.
	// Blockwise entries may carry a block width.
	KindBlockwise EntryKind = "blockwise"
)

// Valid reports whether k is one of the three persistable kinds.
func (k EntryKind) Valid() bool {
	switch k {
	case KindCharwise, KindLinewise, KindBlockwise:
		return true
	}
	return false
}

// Entry is one captured yank. Entries are immutable once persisted:
// the store only ever appends new entries and prunes old ones.
type Entry struct {
	// ID is the store-assigned unique identifier. Zero until persisted.
	ID uint

	// Content is the captured text.
	Content string

	// Kind records how the text was captured.
	Kind EntryKind

	// BlockWidth is the rectangle width for blockwise entries, 0 otherwise.
	BlockWidth int

	// Timestamp is the capture time in Unix nanoseconds. It orders the
	// history; ties are broken by ID.
	Timestamp int64

	// Size is the byte length of Content, computed once at append time.
	Size int64

	// Register is the register the content was captured from.
	Register string

	// SourceFile is the file the yank originated in, if known.
	SourceFile string

	// SourceLine is the line the yank originated at, 0 if unknown.
	SourceLine int

	// ContentType is an optional tag describing the content (e.g. a
	// filetype), used for filtering.
	ContentType string

	// CreatedAt is when the row was first written. Managed by the
	// storage layer.
	CreatedAt time.Time
}

// AppendInput carries the data for a new entry. ID and Size are assigned
// by the store.
type AppendInput struct {
	// Content is the captured text (required).
	Content string

	// Kind records how the text was captured (required, must be valid).
	Kind EntryKind

	// BlockWidth is the rectangle width for blockwise entries.
	BlockWidth int

	// Timestamp is the capture time in Unix nanoseconds.
	// If zero, the store uses the current time.
	Timestamp int64

	// Register is the register the content came from.
	Register string

	// SourceFile, SourceLine and ContentType are optional provenance.
	SourceFile  string
	SourceLine  int
	ContentType string
}

// SyncStatus is the cheap staleness fingerprint of the store: the newest
// entry timestamp and the total entry count. Two stores with the same
// pair are treated as having identical visible history.
type SyncStatus struct {
	// LastTimestamp is the maximum entry timestamp, 0 when empty.
	LastTimestamp int64

	// EntryCount is the number of entries currently retained.
	EntryCount int64
}
