// Package tui implements the interactive history picker.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/yring/yring/internal/store"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))
)

// PickerModel is a single-list history browser. Enter chooses the entry
// under the cursor, q or ctrl+c aborts, / filters.
type PickerModel struct {
	entries  []*store.Entry
	filtered []*store.Entry

	cursor    int
	filter    string
	filtering bool

	width  int
	height int

	// Choice is the selected entry after the program finishes, nil when
	// aborted.
	Choice *store.Entry
}

// NewPicker creates a picker over the given entries (newest first).
func NewPicker(entries []*store.Entry) PickerModel {
	return PickerModel{
		entries:  entries,
		filtered: entries,
	}
}

// Init implements tea.Model
func (m PickerModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			return m.updateFilter(msg)
		}
		return m.updateNormal(msg)
	}

	return m, nil
}

// updateNormal handles keys outside filter-input mode.
func (m PickerModel) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		m.Choice = nil
		return m, tea.Quit

	case "enter":
		if m.cursor < len(m.filtered) {
			m.Choice = m.filtered[m.cursor]
		}
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.filtered)-1 {
			m.cursor++
		}

	case "g":
		m.cursor = 0

	case "G":
		if len(m.filtered) > 0 {
			m.cursor = len(m.filtered) - 1
		}

	case "/":
		m.filtering = true
		m.filter = ""
		m.applyFilter()
	}

	return m, nil
}

// updateFilter handles keys while typing a filter.
func (m PickerModel) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.filtering = false
		m.filter = ""
		m.applyFilter()

	case "enter":
		m.filtering = false

	case "backspace":
		if len(m.filter) > 0 {
			m.filter = m.filter[:len(m.filter)-1]
		}
		m.applyFilter()

	case "ctrl+c":
		m.Choice = nil
		return m, tea.Quit

	default:
		if len(msg.String()) == 1 {
			m.filter += msg.String()
			m.applyFilter()
		}
	}

	return m, nil
}

// applyFilter recomputes the visible list and clamps the cursor.
func (m *PickerModel) applyFilter() {
	if m.filter == "" {
		m.filtered = m.entries
	} else {
		needle := strings.ToLower(m.filter)
		filtered := make([]*store.Entry, 0, len(m.entries))
		for _, entry := range m.entries {
			if strings.Contains(strings.ToLower(entry.Content), needle) {
				filtered = append(filtered, entry)
			}
		}
		m.filtered = filtered
	}

	if m.cursor >= len(m.filtered) {
		m.cursor = 0
	}
}

// View implements tea.Model
func (m PickerModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("yring history"))
	b.WriteString("\n\n")

	visible := m.visibleRows()
	start, end := m.window(visible)

	for i := start; i < end; i++ {
		entry := m.filtered[i]
		line := fmt.Sprintf("%3d  %-9s %s", i, entry.Kind, entryLabel(entry, m.contentWidth()))
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("  ")
		b.WriteString(metaStyle.Render(relativeTime(entry.Timestamp)))
		b.WriteString("\n")
	}

	if len(m.filtered) == 0 {
		b.WriteString(metaStyle.Render("  (no matching entries)"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.statusLine())
	return b.String()
}

// statusLine renders the footer with counts, filter state and key help.
func (m PickerModel) statusLine() string {
	var status string
	if m.filtering {
		status = fmt.Sprintf("/%s▌", m.filter)
	} else if m.filter != "" {
		status = fmt.Sprintf("filter: %s  •  %d/%d entries", m.filter, len(m.filtered), len(m.entries))
	} else {
		status = fmt.Sprintf("%d entries", len(m.entries))
	}
	return statusStyle.Render(status + "  •  enter select  /  filter  q quit")
}

// visibleRows returns how many list rows fit in the window.
func (m PickerModel) visibleRows() int {
	rows := m.height - 5
	if rows < 1 {
		rows = 10
	}
	return rows
}

// window computes the scroll window around the cursor.
func (m PickerModel) window(rows int) (int, int) {
	start := 0
	if m.cursor >= rows {
		start = m.cursor - rows + 1
	}
	end := start + rows
	if end > len(m.filtered) {
		end = len(m.filtered)
	}
	return start, end
}

// contentWidth returns the space available for the content label.
func (m PickerModel) contentWidth() int {
	width := m.width - 30
	if width < 20 {
		width = 60
	}
	return width
}

// entryLabel renders an entry's content as a single trimmed line.
func entryLabel(entry *store.Entry, width int) string {
	label := entry.Content
	if idx := strings.IndexByte(label, '\n'); idx >= 0 {
		label = label[:idx]
	}
	label = strings.Join(strings.Fields(label), " ")
	if label == "" {
		label = fmt.Sprintf("(%d bytes)", entry.Size)
	}
	if len(label) > width {
		label = label[:width-1] + "…"
	}
	return label
}

// relativeTime renders an entry timestamp relative to now.
func relativeTime(timestamp int64) string {
	elapsed := time.Since(time.Unix(0, timestamp))
	switch {
	case elapsed < time.Minute:
		return "just now"
	case elapsed < time.Hour:
		return fmt.Sprintf("%dm ago", int(elapsed.Minutes()))
	case elapsed < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(elapsed.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(elapsed.Hours()/24))
	}
}

// RunPicker runs the picker and returns the chosen entry, nil when the
// user aborted.
func RunPicker(entries []*store.Entry) (*store.Entry, error) {
	program := tea.NewProgram(NewPicker(entries), tea.WithAltScreen())
	final, err := program.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to run picker: %w", err)
	}

	model, ok := final.(PickerModel)
	if !ok {
		return nil, fmt.Errorf("unexpected picker model type")
	}
	return model.Choice, nil
}
