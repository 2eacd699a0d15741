package memstore

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/yring/yring/internal/store"
)

// TestMemoryStore_Basic tests store creation and interface compliance.
func TestMemoryStore_Basic(t *testing.T) {
	var _ store.Store = (*MemoryStore)(nil)

	s := NewMemoryStore()
	defer s.Close()

	if s.Entries() == nil {
		t.Fatal("Entries() returned nil")
	}
	if s.Settings() == nil {
		t.Fatal("Settings() returned nil")
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
}

// TestEntryStore_AppendAssignsIDAndSize verifies store-assigned fields.
func TestEntryStore_AppendAssignsIDAndSize(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	entry, err := s.Entries().Append(&store.AppendInput{
		Content:  "héllo",
		Kind:     store.KindCharwise,
		Register: `"`,
	})
	if err != nil {
		t.Fatalf("Append() error: %v", err)
	}

	if entry.ID == 0 {
		t.Error("Append() assigned zero ID")
	}
	if entry.Size != int64(len("héllo")) {
		t.Errorf("Size = %d, want UTF-8 byte length %d", entry.Size, len("héllo"))
	}
	if entry.Timestamp == 0 {
		t.Error("Append() left Timestamp zero")
	}
}

// TestEntryStore_AppendRejectsInvalidKind verifies the closed kind set.
func TestEntryStore_AppendRejectsInvalidKind(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	_, err := s.Entries().Append(&store.AppendInput{
		Content: "x",
		Kind:    store.EntryKind("wordwise"),
	})
	if !errors.Is(err, store.ErrInvalidKind) {
		t.Errorf("Append() error = %v, want ErrInvalidKind", err)
	}
}

// TestEntryStore_AppendRejectsOversize verifies the byte ceiling.
func TestEntryStore_AppendRejectsOversize(t *testing.T) {
	s := NewMemoryStoreWithLimits(10, 8)
	defer s.Close()

	_, err := s.Entries().Append(&store.AppendInput{
		Content: strings.Repeat("x", 9),
		Kind:    store.KindCharwise,
	})
	if !errors.Is(err, store.ErrContentTooLarge) {
		t.Fatalf("Append() error = %v, want ErrContentTooLarge", err)
	}

	// The rejected entry must not appear in reads.
	entries, err := s.Entries().Recent(10)
	if err != nil {
		t.Fatalf("Recent() error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Recent() = %d entries after rejected append, want 0", len(entries))
	}
}

// TestEntryStore_RecentOrderAndRetention covers the retention scenario:
// maxEntries=2, three appends with timestamps 1,2,3.
func TestEntryStore_RecentOrderAndRetention(t *testing.T) {
	s := NewMemoryStoreWithLimits(2, 1024)
	defer s.Close()

	for i := int64(1); i <= 3; i++ {
		if _, err := s.Entries().Append(&store.AppendInput{
			Content:   strings.Repeat("x", int(i)),
			Kind:      store.KindCharwise,
			Timestamp: i,
		}); err != nil {
			t.Fatalf("Append(%d) error: %v", i, err)
		}
	}

	entries, err := s.Entries().Recent(10)
	if err != nil {
		t.Fatalf("Recent() error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Recent(10) = %d entries, want 2", len(entries))
	}
	if entries[0].Timestamp != 3 || entries[1].Timestamp != 2 {
		t.Errorf("Recent() timestamps = [%d, %d], want [3, 2]",
			entries[0].Timestamp, entries[1].Timestamp)
	}
}

// TestEntryStore_RecentTieBreakByID verifies ties on timestamp resolve
// to the later insertion.
func TestEntryStore_RecentTieBreakByID(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	first, _ := s.Entries().Append(&store.AppendInput{
		Content: "first", Kind: store.KindCharwise, Timestamp: 5,
	})
	second, _ := s.Entries().Append(&store.AppendInput{
		Content: "second", Kind: store.KindCharwise, Timestamp: 5,
	})

	entries, err := s.Entries().Recent(2)
	if err != nil {
		t.Fatalf("Recent() error: %v", err)
	}
	if entries[0].ID != second.ID || entries[1].ID != first.ID {
		t.Errorf("Recent() IDs = [%d, %d], want [%d, %d]",
			entries[0].ID, entries[1].ID, second.ID, first.ID)
	}
}

// TestEntryStore_RecentLimit verifies limit capping.
func TestEntryStore_RecentLimit(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	for i := int64(1); i <= 5; i++ {
		s.Entries().Append(&store.AppendInput{
			Content: "x", Kind: store.KindCharwise, Timestamp: i,
		})
	}

	entries, err := s.Entries().Recent(3)
	if err != nil {
		t.Fatalf("Recent() error: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("Recent(3) = %d entries, want 3", len(entries))
	}
}

// TestEntryStore_SyncStatus verifies the fingerprint tracks appends and
// clears.
func TestEntryStore_SyncStatus(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	status, err := s.Entries().SyncStatus()
	if err != nil {
		t.Fatalf("SyncStatus() error: %v", err)
	}
	if status != (store.SyncStatus{}) {
		t.Errorf("empty store SyncStatus = %+v, want zero", status)
	}

	s.Entries().Append(&store.AppendInput{
		Content: "a", Kind: store.KindCharwise, Timestamp: 7,
	})

	status, err = s.Entries().SyncStatus()
	if err != nil {
		t.Fatalf("SyncStatus() error: %v", err)
	}
	if status.LastTimestamp != 7 || status.EntryCount != 1 {
		t.Errorf("SyncStatus = %+v, want {7 1}", status)
	}

	if err := s.Entries().Clear(); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	status, _ = s.Entries().SyncStatus()
	if status.EntryCount != 0 {
		t.Errorf("SyncStatus after Clear = %+v, want zero count", status)
	}
}

// TestEntryStore_AppendReturnsCopy verifies mutation of the returned
// entry does not corrupt stored state.
func TestEntryStore_AppendReturnsCopy(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	entry, _ := s.Entries().Append(&store.AppendInput{
		Content: "original", Kind: store.KindCharwise, Timestamp: 1,
	})
	entry.Content = "mutated"

	entries, _ := s.Entries().Recent(1)
	if entries[0].Content != "original" {
		t.Errorf("stored content = %q, want original", entries[0].Content)
	}
}

// TestEntryStore_ConcurrentAppends verifies mutex safety under parallel
// writers.
func TestEntryStore_ConcurrentAppends(t *testing.T) {
	s := NewMemoryStoreWithLimits(100, 1024)
	defer s.Close()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				s.Entries().Append(&store.AppendInput{
					Content: "x", Kind: store.KindCharwise,
				})
			}
		}()
	}
	wg.Wait()

	status, err := s.Entries().SyncStatus()
	if err != nil {
		t.Fatalf("SyncStatus() error: %v", err)
	}
	if status.EntryCount != 100 {
		t.Errorf("EntryCount = %d after 100 concurrent appends, want 100", status.EntryCount)
	}
}

// TestSettingsStore_CRUD tests settings operations.
func TestSettingsStore_CRUD(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	settings := s.Settings()

	if _, err := settings.Get("missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}

	if err := settings.Set("schema_version", "1"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	value, err := settings.Get("schema_version")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if value != "1" {
		t.Errorf("Get() = %q, want 1", value)
	}

	if err := settings.Set("schema_version", "2"); err != nil {
		t.Fatalf("Set() update error: %v", err)
	}
	if value, _ := settings.Get("schema_version"); value != "2" {
		t.Errorf("Get() after update = %q, want 2", value)
	}

	all, err := settings.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(all) != 1 || all["schema_version"] != "2" {
		t.Errorf("List() = %v, want map with schema_version=2", all)
	}

	if err := settings.Delete("schema_version"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if err := settings.Delete("schema_version"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}
