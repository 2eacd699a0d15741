package registers

import (
	"strings"

	"github.com/yring/yring/internal/clipboard"
	"github.com/yring/yring/internal/store"
)

// ClipboardRegister is the conventional name of the OS clipboard
// register.
const ClipboardRegister = "+"

// ClipboardSource exposes the system clipboard as the unnamed and "+"
// registers. It is the source used by the watch command, where the OS
// clipboard stands in for the editor's registers.
type ClipboardSource struct {
	clip clipboard.Clipboard
}

// NewClipboardSource wraps a clipboard as a register source.
func NewClipboardSource(clip clipboard.Clipboard) *ClipboardSource {
	return &ClipboardSource{clip: clip}
}

// Get returns the clipboard text for the unnamed or "+" register.
// Other registers report unavailable.
func (s *ClipboardSource) Get(register string) (Content, bool, error) {
	switch register {
	case UnnamedRegister, ClipboardRegister:
	default:
		return Content{}, false, nil
	}

	text, err := s.clip.Read()
	if err != nil {
		return Content{}, false, err
	}
	if text == "" {
		return Content{}, false, nil
	}

	kind := store.KindCharwise
	if strings.HasSuffix(text, "\n") {
		kind = store.KindLinewise
	}
	return Content{Text: text, Kind: kind}, true, nil
}

// MapSource is a register source backed by a plain map, for tests and
// scripted demos.
type MapSource struct {
	contents map[string]Content
}

// NewMapSource creates an empty map source.
func NewMapSource() *MapSource {
	return &MapSource{contents: make(map[string]Content)}
}

// Set places content in a register.
func (s *MapSource) Set(register string, content Content) {
	s.contents[register] = content
}

// Get returns the register's content.
func (s *MapSource) Get(register string) (Content, bool, error) {
	content, ok := s.contents[register]
	return content, ok, nil
}
