// Package clipboard defines the system clipboard capability used by the
// CLI and by the clipboard-backed register source.
package clipboard

// Clipboard abstracts system clipboard access.
type Clipboard interface {
	// Read returns the current clipboard text.
	Read() (string, error)

	// Write replaces the clipboard text.
	Write(content string) error

	// IsSupported reports whether clipboard operations work on this
	// system.
	IsSupported() bool
}
