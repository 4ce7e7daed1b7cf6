package ui

import (
	"strings"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
)

var (
	ColorMuted       = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#6272A4"}
	ColorPrimary     = lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}
	ColorBgHighlight = lipgloss.AdaptiveColor{Light: "#D0D0D0", Dark: "#44475A"}

	// PanelStyle frames the unfocused pane.
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBgHighlight)

	// FocusedPanelStyle frames the pane that receives keys.
	FocusedPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorPrimary)
)

// RenderMiniBar draws share (0..1) of a budget as a bar of width cells,
// coloured by how large the share is.
func RenderMiniBar(share float64, width int, t Theme) string {
	if width <= 0 {
		return ""
	}
	share = max(0, min(share, 1))
	filled := min(int(share*float64(width)), width)

	c := t.Secondary
	switch {
	case share >= 0.75:
		c = t.Checked
	case share >= 0.5:
		c = t.Indeterminate
	case share >= 0.25:
		c = t.Loading
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return t.Renderer.NewStyle().Foreground(c).Render(bar)
}

// RenderSwatch draws a two-cell block in a legend colour. Below 256 colours
// the swatch falls back to white and the legend label carries the meaning.
func RenderSwatch(hex string, t Theme) string {
	return t.Renderer.NewStyle().Foreground(swatchColor(hex)).Render("██")
}

func swatchColor(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.ANSI256 {
		return lipgloss.ANSIColor(7)
	}
	return lipgloss.Color(hex)
}
