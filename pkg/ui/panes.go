package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/glamour"

	"github.com/vanderheijden86/aidscope/pkg/analysis"
	"github.com/vanderheijden86/aidscope/pkg/export"
	"github.com/vanderheijden86/aidscope/pkg/mapstyle"
	"github.com/vanderheijden86/aidscope/pkg/model"
	"github.com/vanderheijden86/aidscope/pkg/table"
)

func (m *Model) renderPane(width, height int) string {
	if m.cat == nil {
		if st := m.catalogs.State(); st.Pending {
			return m.theme.MutedText.Render("Loading option lists…")
		}
		return m.theme.MutedText.Render("No data loaded. Press r to fetch.")
	}
	var out string
	switch m.tab {
	case TabRegions:
		out = m.renderRegions(width, height)
	case TabSankey:
		out = m.renderSankey(width, height)
	case TabSummary:
		m.refreshSummary()
		out = m.summary.View()
	default:
		out = m.renderPrograms(width, height)
	}
	return clipLines(out, height)
}

func (m *Model) renderPrograms(width, height int) string {
	t := m.programTable()
	header, rows := t.Lines()

	title := fmt.Sprintf("%d of %d programs", len(m.result.Applied), len(m.catalog().Programs))
	if m.tableFilter != "" {
		title += fmt.Sprintf(" · %d match %q", len(rows), m.tableFilter)
	}
	if m.sortCol >= 0 && m.sortCol < len(t.Columns) {
		dir := "↑"
		if m.sortDesc {
			dir = "↓"
		}
		title += " · by " + t.Columns[m.sortCol].Title + " " + dir
	}

	lines := []string{m.theme.SecondaryText.Render(title)}
	if m.focus == focusTableFilter {
		lines = append(lines, m.search.View())
	}
	lines = append(lines, m.theme.PrimaryBold.Render(truncate(header, width)))

	visible := max(1, height-len(lines))
	if len(rows) > 0 {
		m.tableCursor = min(m.tableCursor, len(rows)-1)
	}
	start := 0
	if m.tableCursor >= visible {
		start = m.tableCursor - visible + 1
	}
	for i := start; i < min(len(rows), start+visible); i++ {
		row := truncate(rows[i], width)
		if m.focus == focusTable && i == m.tableCursor {
			row = m.theme.Selected.Render(row)
		}
		lines = append(lines, row)
	}
	if len(rows) == 0 {
		lines = append(lines, m.theme.MutedText.Render("no programs match the current filter"))
	}
	return strings.Join(lines, "\n")
}

// renderRegions shows the choropleth legend for the configured indicator and
// budget bars per region of the applied programs.
func (m *Model) renderRegions(width, height int) string {
	var lines []string

	if m.cfg.Map.Indicator != "" {
		lines = append(lines, m.renderLegend()...)
		lines = append(lines, "")
	}

	regions := analysis.BudgetByRegion(m.result.Applied)
	lines = append(lines, m.theme.PrimaryBold.Render("Budget by region"))
	if len(regions) == 0 {
		lines = append(lines, m.theme.MutedText.Render("no regional allocations"))
		return strings.Join(lines, "\n")
	}
	top := regions[0].Value
	labelW := min(20, width/3)
	barW := max(4, width-labelW-18)
	for _, r := range analysis.Top(regions, max(1, height-len(lines)-1)) {
		share := 0.0
		if top > 0 {
			share = r.Value / top
		}
		lines = append(lines, fmt.Sprintf("%s %s %s",
			padRight(truncate(r.Label, labelW), labelW),
			RenderMiniBar(share, barW, m.theme),
			table.Pad(table.Money(r.Value), 14, true)))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderLegend() []string {
	name := m.cfg.Map.Indicator
	if len(m.values) == 0 {
		if st := m.indicators.State(); st.Pending {
			return []string{m.theme.MutedText.Render("loading " + name + "…")}
		}
		return []string{m.theme.MutedText.Render("no values for " + name)}
	}

	opts := mapstyle.DefaultOptions()
	if m.cfg.Map.Classes > 0 {
		opts.Classes = m.cfg.Map.Classes
	}
	if m.cfg.Map.Palette != "" {
		opts.Palette = m.cfg.Map.Palette
	}
	if method, err := mapstyle.ParseMethod(m.cfg.Map.Method); err == nil {
		opts.Method = method
	}
	paint, err := mapstyle.RegionPaint(name, m.values, opts)
	if err != nil {
		return []string{m.theme.ErrorText.Render(err.Error())}
	}

	lines := []string{m.theme.PrimaryBold.Render(fmt.Sprintf("%s (%s)", name, paint.Method))}
	for _, e := range paint.Legend {
		lines = append(lines, fmt.Sprintf("%s %s %s",
			RenderSwatch(e.Color, m.theme),
			padRight(e.Label(), 24),
			m.theme.MutedText.Render(fmt.Sprintf("%d regions", e.Count))))
	}
	return lines
}

// renderSankey lists program → partner → sector flows, largest first.
func (m *Model) renderSankey(width, height int) string {
	cat := m.catalog()
	s, err := analysis.ProgramFlows(m.result.Applied, cat.Partners, cat.Sectors)
	if err != nil {
		return m.theme.ErrorText.Render(err.Error())
	}
	if len(s.Links) == 0 {
		return m.theme.MutedText.Render("no budget flows for the current filter")
	}

	cols := s.Columns()
	heads := []string{"Programs", "Partners", "Sectors"}
	var lines []string
	for i, col := range cols {
		if i < len(heads) {
			lines = append(lines, m.theme.PrimaryBold.Render(heads[i]))
		}
		top := 0.0
		if len(col) > 0 {
			top = col[0].Value
		}
		labelW := min(24, width/3)
		for _, n := range col {
			share := 0.0
			if top > 0 {
				share = n.Value / top
			}
			lines = append(lines, fmt.Sprintf("  %s %s %s",
				padRight(truncate(n.Label, labelW), labelW),
				RenderMiniBar(share, max(4, width-labelW-20), m.theme),
				table.Pad(table.Money(n.Value), 14, true)))
		}
	}
	return clipLines(strings.Join(lines, "\n"), height)
}

// refreshSummary re-renders the markdown summary when the filter or the pane
// size changed since the last render.
func (m *Model) refreshSummary() {
	if m.summaryFor == m.summary.Width {
		return
	}
	cat := m.catalog()
	applied := m.result.Applied
	in := export.SummaryInput{
		Title:     "aidscope summary",
		Context:   m.store.Context(),
		Criteria:  m.store.Snapshot(),
		Labels:    m.optionLabels(),
		Applied:   applied,
		Available: len(cat.Programs),
		Sectors:   analysis.BudgetBySector(applied, cat.Sectors),
		Partners:  analysis.BudgetByPartner(applied, cat.Partners),
		Regions:   analysis.BudgetByRegion(applied),
		Generated: time.Now(),
	}
	m.summaryMD = export.GenerateSummary(in)

	style := glamour.WithAutoStyle()
	if TermProfile <= colorprofile.Ascii {
		style = glamour.WithStandardStyle("notty")
	}
	rendered := m.summaryMD
	if r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(max(20, m.summary.Width-2))); err == nil {
		if out, err := r.Render(m.summaryMD); err == nil {
			rendered = out
		}
	} else {
		rendered = wrap(m.summaryMD, m.summary.Width)
	}
	m.summary.SetContent(rendered)
	m.summaryFor = m.summary.Width
}

// SummaryMarkdown returns the last rendered summary source.
func (m Model) SummaryMarkdown() string { return m.summaryMD }

func (m *Model) optionLabels() map[model.Key]string {
	labels := make(map[model.Key]string)
	for _, opts := range m.result.Options {
		for _, o := range opts {
			labels[o.Key] = o.Label
		}
	}
	return labels
}
