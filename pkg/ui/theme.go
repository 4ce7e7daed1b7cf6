package ui

import (
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/aidscope/pkg/hierarchy"
)

// TermProfile is the colour profile of stdout, detected once.
var TermProfile colorprofile.Profile

func init() {
	TermProfile = colorprofile.Detect(os.Stdout, os.Environ())
}

// Theme holds the dashboard colours and the styles built from them once per
// renderer.
type Theme struct {
	Renderer *lipgloss.Renderer

	Primary       lipgloss.AdaptiveColor
	Secondary     lipgloss.AdaptiveColor
	Checked       lipgloss.AdaptiveColor
	Indeterminate lipgloss.AdaptiveColor
	Loading       lipgloss.AdaptiveColor
	Failed        lipgloss.AdaptiveColor
	Highlight     lipgloss.AdaptiveColor

	Base     lipgloss.Style
	Selected lipgloss.Style // table cursor row
	Header   lipgloss.Style // app title
	Tab      lipgloss.Style
	TabOn    lipgloss.Style

	MutedText     lipgloss.Style // branch guides, counts, hints
	SecondaryText lipgloss.Style
	PrimaryBold   lipgloss.Style // headings, tree cursor
	CheckedText   lipgloss.Style
	PartialText   lipgloss.Style
	ErrorText     lipgloss.Style
}

// palette pairs a light and a dark terminal colour.
func palette(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

// DefaultTheme builds the dashboard theme on r.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer:      r,
		Primary:       palette("#6B47D9", "#BD93F9"),
		Secondary:     palette("#555555", "#6272A4"),
		Checked:       palette("#007700", "#50FA7B"),
		Indeterminate: palette("#B06800", "#FFB86C"),
		Loading:       palette("#006080", "#8BE9FD"),
		Failed:        palette("#CC0000", "#FF5555"),
		Highlight:     palette("#E0E0E0", "#44475A"),
	}
	style := r.NewStyle

	t.Base = style().Foreground(palette("#000000", "#F8F8F2"))
	t.Selected = style().Background(t.Highlight).Bold(true)
	t.Header = style().
		Foreground(palette("#FFFFFF", "#282A36")).
		Background(t.Primary).
		Bold(true).
		Padding(0, 1)
	t.Tab = style().Foreground(t.Secondary).Padding(0, 1)
	t.TabOn = t.Tab.Foreground(t.Primary).Bold(true).Underline(true)

	t.MutedText = style().Foreground(ColorMuted)
	t.SecondaryText = style().Foreground(t.Secondary)
	t.PrimaryBold = style().Foreground(t.Primary).Bold(true)
	t.CheckedText = style().Foreground(t.Checked).Bold(true)
	t.PartialText = style().Foreground(t.Indeterminate)
	t.ErrorText = style().Foreground(t.Failed)
	return t
}

// Checkbox renders a tree node's check state.
func (t Theme) Checkbox(s hierarchy.CheckState) string {
	switch s {
	case hierarchy.Checked:
		return t.CheckedText.Render("[x]")
	case hierarchy.Indeterminate:
		return t.PartialText.Render("[-]")
	default:
		return t.MutedText.Render("[ ]")
	}
}

// TestTheme is DefaultTheme on a stdout renderer.
func TestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(os.Stdout))
}
