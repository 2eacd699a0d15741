// Package history provides the in-process view of the yank log: a
// bounded, recency-ordered cache of the most recent entries and the
// coordinator that keeps it consistent with the shared durable store.
package history

import (
	"strings"
	"sync"

	"github.com/yring/yring/internal/store"
)

// DefaultMaxSize bounds the cache when no limit is configured.
const DefaultMaxSize = 100

// Cache is a bounded, newest-first mirror of the most recent history
// entries. It serves all hot-path reads. Duplicate contents captured at
// different times are kept as distinct entries; there is no
// content-based deduplication.
type Cache struct {
	mu      sync.RWMutex
	maxSize int
	entries []*store.Entry
}

// NewCache creates a cache holding at most maxSize entries.
func NewCache(maxSize int) *Cache {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Cache{
		maxSize: maxSize,
		entries: make([]*store.Entry, 0, maxSize),
	}
}

// MaxSize returns the configured bound.
func (c *Cache) MaxSize() int {
	return c.maxSize
}

// Len returns the current number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Add inserts an entry at the front unconditionally, truncating beyond
// the bound.
func (c *Cache) Add(entry *store.Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = append([]*store.Entry{entry}, c.entries...)
	if len(c.entries) > c.maxSize {
		c.entries = c.entries[:c.maxSize]
	}
}

// SetAll replaces the entire contents with the first maxSize entries of
// the given sequence. The caller supplies newest-first order.
func (c *Cache) SetAll(entries []*store.Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(entries)
	if n > c.maxSize {
		n = c.maxSize
	}
	c.entries = make([]*store.Entry, n)
	copy(c.entries, entries[:n])
}

// Get returns the entry at index (0 = newest), or false when out of
// range.
func (c *Cache) Get(index int) (*store.Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if index < 0 || index >= len(c.entries) {
		return nil, false
	}
	return c.entries[index], true
}

// GetAll returns a copy of the cached entries, newest first. Callers
// may reorder the returned slice freely.
func (c *Cache) GetAll() []*store.Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]*store.Entry, len(c.entries))
	copy(result, c.entries)
	return result
}

// GetRecent returns at most limit entries, newest first. limit <= 0
// means all cached entries.
func (c *Cache) GetRecent(limit int) []*store.Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n := len(c.entries)
	if limit > 0 && limit < n {
		n = limit
	}
	result := make([]*store.Entry, n)
	copy(result, c.entries[:n])
	return result
}

// MoveToFront relocates the entry with the given id to index 0,
// preserving the relative order of the others. Returns true when the
// entry was found (including when it was already at the front), false
// without mutation otherwise.
func (c *Cache) MoveToFront(id uint) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, entry := range c.entries {
		if entry.ID != id {
			continue
		}
		if i > 0 {
			copy(c.entries[1:i+1], c.entries[:i])
			c.entries[0] = entry
		}
		return true
	}
	return false
}

// Search returns entries whose content contains query, matched
// case-insensitively, newest first, capped at limit (limit <= 0 means
// no cap beyond the cache bound).
func (c *Cache) Search(query string, limit int) []*store.Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	needle := strings.ToLower(query)
	var result []*store.Entry
	for _, entry := range c.entries {
		if !strings.Contains(strings.ToLower(entry.Content), needle) {
			continue
		}
		result = append(result, entry)
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result
}

// FilterByContentType returns entries tagged with the given content
// type, newest first.
func (c *Cache) FilterByContentType(tag string) []*store.Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var result []*store.Entry
	for _, entry := range c.entries {
		if entry.ContentType == tag {
			result = append(result, entry)
		}
	}
	return result
}

// Clear empties the cache without touching the store.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = c.entries[:0]
}
