// Package mockboard provides a mock clipboard implementation for testing.
package mockboard

import "sync"

// MockClipboard implements clipboard.Clipboard in memory.
type MockClipboard struct {
	mu      sync.Mutex
	content string
}

// New creates a new MockClipboard instance
func New() *MockClipboard {
	return &MockClipboard{}
}

// Read implements Clipboard.Read for MockClipboard
func (m *MockClipboard) Read() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.content, nil
}

// Write implements Clipboard.Write for MockClipboard
func (m *MockClipboard) Write(content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.content = content
	return nil
}

// IsSupported always returns true for the mock clipboard
func (m *MockClipboard) IsSupported() bool {
	return true
}

// SetContent sets the mock clipboard content directly (for testing)
func (m *MockClipboard) SetContent(content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.content = content
}
