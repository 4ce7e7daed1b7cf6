package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/vanderheijden86/aidscope/pkg/analysis"
	"github.com/vanderheijden86/aidscope/pkg/model"
	"github.com/vanderheijden86/aidscope/pkg/selection"
	"github.com/vanderheijden86/aidscope/pkg/table"
)

// SummaryInput is what GenerateSummary reports on.
type SummaryInput struct {
	Title    string
	Context  model.Context
	Criteria selection.Criteria
	// Labels resolves selected keys to display names; unknown keys print as is.
	Labels    map[model.Key]string
	Applied   []model.Program
	Available int
	Sectors   []analysis.Breakdown
	Partners  []analysis.Breakdown
	Regions   []analysis.Breakdown
	Generated time.Time
}

// GenerateSummary renders the current filter and its results as markdown.
func GenerateSummary(in SummaryInput) string {
	var sb strings.Builder
	title := in.Title
	if title == "" {
		title = "Program summary"
	}
	sb.WriteString(fmt.Sprintf("# %s\n\n", title))
	if !in.Generated.IsZero() {
		sb.WriteString(fmt.Sprintf("*Generated: %s*\n\n", in.Generated.Format(time.RFC1123)))
	}

	sb.WriteString("## Filter\n\n")
	sb.WriteString(fmt.Sprintf("- **Context**: %s\n", in.Context))
	if in.Criteria.IsEmpty() {
		sb.WriteString("- No selections\n")
	}
	for _, dim := range model.Dimensions {
		keys := in.Criteria.Get(dim).Keys()
		if len(keys) == 0 {
			continue
		}
		names := make([]string, len(keys))
		for i, k := range keys {
			names[i] = escapeCell(label(in.Labels, k))
		}
		sb.WriteString(fmt.Sprintf("- **%s** (all of): %s\n", dim.Title(), strings.Join(names, ", ")))
	}
	sb.WriteString("\n")

	s := analysis.Summarize(in.Applied)
	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n|--------|-------|\n")
	if in.Available > 0 {
		sb.WriteString(fmt.Sprintf("| **Programs** | %d of %d |\n", s.Count, in.Available))
	} else {
		sb.WriteString(fmt.Sprintf("| **Programs** | %d |\n", s.Count))
	}
	sb.WriteString(fmt.Sprintf("| Total budget | %s |\n", table.Money(s.Total)))
	sb.WriteString(fmt.Sprintf("| Mean budget | %s |\n", table.Money(s.Mean)))
	sb.WriteString(fmt.Sprintf("| Median budget | %s |\n\n", table.Money(s.Median)))

	writeBreakdown(&sb, "Top sectors", in.Sectors, s.Total)
	writeBreakdown(&sb, "Top partners", in.Partners, s.Total)
	writeBreakdown(&sb, "Regions", in.Regions, s.Total)
	return sb.String()
}

func label(labels map[model.Key]string, k model.Key) string {
	if l, ok := labels[k]; ok && l != "" {
		return l
	}
	return string(k)
}

func writeBreakdown(sb *strings.Builder, heading string, b []analysis.Breakdown, total float64) {
	if len(b) == 0 {
		return
	}
	sb.WriteString(fmt.Sprintf("## %s\n\n", heading))
	sb.WriteString("| Name | Budget | Share |\n|------|--------|-------|\n")
	for _, x := range analysis.Top(b, 8) {
		share := 0.0
		if total > 0 {
			share = x.Value / total
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s %.0f%% |\n",
			escapeCell(x.Label), table.Money(x.Value), barChart(share), share*100))
	}
	sb.WriteString("\n")
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", "")
	return strings.ReplaceAll(s, "|", "\\|")
}

// barChart creates a mini bar for a 0-1 value.
func barChart(value float64) string {
	value = min(max(value, 0), 1)
	filled := int(value * 4)
	return strings.Repeat("█", filled) + strings.Repeat("░", 4-filled)
}
