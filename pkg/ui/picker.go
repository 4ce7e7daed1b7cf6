package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/vanderheijden86/aidscope/pkg/model"
)

// PickerEntry is one option of any dimension.
type PickerEntry struct {
	Dim    model.Dimension
	Option model.Option
}

func (e PickerEntry) text() string {
	return e.Dim.Title() + " " + e.Option.Label
}

type pickerSource []PickerEntry

func (s pickerSource) String(i int) string { return s[i].text() }
func (s pickerSource) Len() int            { return len(s) }

// OptionPickerModel is a popup that jumps to any option across dimensions by
// fuzzy search.
type OptionPickerModel struct {
	all           []PickerEntry
	filtered      []PickerEntry
	input         textinput.Model
	selectedIndex int
	width         int
	height        int
	theme         Theme
}

// NewOptionPickerModel creates a picker over entries.
func NewOptionPickerModel(entries []PickerEntry, theme Theme) OptionPickerModel {
	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.CharLimit = 60
	ti.Width = 34
	ti.Focus()

	m := OptionPickerModel{input: ti, theme: theme}
	m.SetEntries(entries)
	return m
}

// SetSize updates the picker dimensions
func (m *OptionPickerModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetEntries replaces the options on offer and re-applies the query.
func (m *OptionPickerModel) SetEntries(entries []PickerEntry) {
	m.all = entries
	m.filter()
}

// MoveUp moves selection up
func (m *OptionPickerModel) MoveUp() {
	if m.selectedIndex > 0 {
		m.selectedIndex--
	}
}

// MoveDown moves selection down
func (m *OptionPickerModel) MoveDown() {
	if m.selectedIndex < len(m.filtered)-1 {
		m.selectedIndex++
	}
}

// Selected returns the highlighted entry.
func (m *OptionPickerModel) Selected() (PickerEntry, bool) {
	if m.selectedIndex < 0 || m.selectedIndex >= len(m.filtered) {
		return PickerEntry{}, false
	}
	return m.filtered[m.selectedIndex], true
}

// UpdateInput processes a key message for the text input
func (m *OptionPickerModel) UpdateInput(msg tea.Msg) {
	m.input, _ = m.input.Update(msg)
	m.filter()
}

// Reset clears the input and resets selection
func (m *OptionPickerModel) Reset() {
	m.input.SetValue("")
	m.selectedIndex = 0
	m.filter()
}

// InputValue returns the current input value
func (m *OptionPickerModel) InputValue() string {
	return m.input.Value()
}

// FilteredCount returns the number of matching entries
func (m *OptionPickerModel) FilteredCount() int {
	return len(m.filtered)
}

// filter ranks entries against the query; an empty query keeps input order.
func (m *OptionPickerModel) filter() {
	query := strings.TrimSpace(m.input.Value())
	if query == "" {
		m.filtered = m.all
	} else {
		matches := fuzzy.FindFrom(query, pickerSource(m.all))
		m.filtered = make([]PickerEntry, len(matches))
		for i, match := range matches {
			m.filtered[i] = m.all[match.Index]
		}
	}
	m.selectedIndex = max(0, min(m.selectedIndex, len(m.filtered)-1))
}

// View renders the picker overlay
func (m *OptionPickerModel) View() string {
	if m.width == 0 {
		m.width = 60
	}
	if m.height == 0 {
		m.height = 20
	}

	t := m.theme

	boxWidth := 48
	if m.width < 58 {
		boxWidth = m.width - 10
	}
	boxWidth = max(boxWidth, 25)

	maxVisible := 10
	if m.height < 15 {
		maxVisible = m.height - 7
	}
	maxVisible = max(maxVisible, 3)

	var lines []string

	titleStyle := t.Renderer.NewStyle().
		Foreground(t.Primary).
		Bold(true).
		MarginBottom(1)
	lines = append(lines, titleStyle.Render("Jump to option"))
	lines = append(lines, "")

	inputStyle := t.Renderer.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(t.Secondary).
		Padding(0, 1).
		Width(boxWidth - 6)
	lines = append(lines, inputStyle.Render(m.input.View()))
	lines = append(lines, "")

	dimStyle := t.Renderer.NewStyle().
		Foreground(t.Secondary).
		Italic(true)

	if len(m.filtered) == 0 {
		lines = append(lines, dimStyle.Render("  No matching options"))
	} else {
		start := 0
		if m.selectedIndex >= maxVisible {
			start = m.selectedIndex - maxVisible + 1
		}
		end := min(start+maxVisible, len(m.filtered))

		for i := start; i < end; i++ {
			e := m.filtered[i]
			isSelected := i == m.selectedIndex

			itemStyle := t.Renderer.NewStyle().Foreground(t.Base.GetForeground())
			prefix := "  "
			if isSelected {
				itemStyle = itemStyle.Foreground(t.Primary).Bold(true)
				prefix = "> "
			}

			dim := t.SecondaryText.Render(padRight(e.Dim.Title(), 9))
			label := truncate(e.Option.Label, boxWidth-19)
			lines = append(lines, prefix+dim+" "+itemStyle.Render(label))
		}

		if len(m.filtered) > maxVisible {
			lines = append(lines, "")
			lines = append(lines, dimStyle.Render(fmt.Sprintf("  (%d/%d)", m.selectedIndex+1, len(m.filtered))))
		}
	}

	lines = append(lines, "")
	lines = append(lines, dimStyle.Render("↑/↓: navigate | enter: toggle | esc: cancel"))

	boxStyle := t.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Primary).
		Padding(1, 2).
		Width(boxWidth)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		boxStyle.Render(strings.Join(lines, "\n")),
	)
}
