package dbstore

import (
	"time"

	"github.com/yring/yring/internal/store"
)

// EntryModel represents a yank-history entry in the database.
type EntryModel struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"`
	Content     string    `gorm:"type:text;not null"`     // Captured text
	Kind        string    `gorm:"size:16;not null"`       // charwise/linewise/blockwise
	BlockWidth  int       `gorm:"not null;default:0"`     // Rectangle width for blockwise
	Timestamp   int64     `gorm:"not null;index"`         // Capture time, Unix nanoseconds
	Size        int64     `gorm:"not null"`               // Byte length of Content
	Register    string    `gorm:"size:16;index"`          // Source register
	SourceFile  string    `gorm:"size:512"`               // Optional provenance
	SourceLine  int       `gorm:"not null;default:0"`     // Optional provenance
	ContentType string    `gorm:"size:64"`                // Optional filter tag
	CreatedAt   time.Time `gorm:"autoCreateTime"`         // GORM managed timestamp
}

// TableName returns the table name for EntryModel
func (EntryModel) TableName() string {
	return "entries"
}

// ToEntry converts the GORM model to a store.Entry
func (m *EntryModel) ToEntry() *store.Entry {
	return &store.Entry{
		ID:          m.ID,
		Content:     m.Content,
		Kind:        store.EntryKind(m.Kind),
		BlockWidth:  m.BlockWidth,
		Timestamp:   m.Timestamp,
		Size:        m.Size,
		Register:    m.Register,
		SourceFile:  m.SourceFile,
		SourceLine:  m.SourceLine,
		ContentType: m.ContentType,
		CreatedAt:   m.CreatedAt,
	}
}

// SettingModel represents a settings key-value pair
type SettingModel struct {
	Key       string    `gorm:"primaryKey;size:100"`
	Value     string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for SettingModel
func (SettingModel) TableName() string {
	return "settings"
}

// syncStatusRow receives the single-row staleness aggregate.
type syncStatusRow struct {
	LastTimestamp int64
	EntryCount    int64
}
