package table

import (
	"strconv"
	"strings"

	"github.com/vanderheijden86/aidscope/pkg/analysis"
	"github.com/vanderheijden86/aidscope/pkg/model"
)

// Money formats an amount with thousands separators and no decimals.
func Money(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := strconv.FormatFloat(v, 'f', 0, 64)
	var sb strings.Builder
	if neg {
		sb.WriteByte('-')
	}
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func names[T any](items []T, id func(T) int, name func(T) string) map[int]string {
	m := make(map[int]string, len(items))
	for _, it := range items {
		m[id(it)] = name(it)
	}
	return m
}

func joinNames(ids []int, byID map[int]string) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		if n, ok := byID[id]; ok {
			parts = append(parts, n)
		} else {
			parts = append(parts, strconv.Itoa(id))
		}
	}
	return strings.Join(parts, "; ")
}

// Programs builds the program table.
func Programs(programs []model.Program, partners []model.Partner, sectors []model.Sector) Table {
	partnerNames := names(partners, func(p model.Partner) int { return p.ID }, func(p model.Partner) string { return p.Name })
	sectorNames := names(sectors, func(s model.Sector) int { return s.ID }, func(s model.Sector) string { return s.Name })
	t := Table{Columns: []Column{
		{Title: "Code"},
		{Title: "Name", Width: 32},
		{Title: "Budget", Numeric: true},
		{Title: "Start"},
		{Title: "End"},
		{Title: "Partners", Width: 28},
		{Title: "Sectors", Width: 28},
	}}
	for _, p := range programs {
		t.Rows = append(t.Rows, []string{
			p.Code,
			p.Name,
			Money(p.Budget),
			p.StartDate.String(),
			p.EndDate.String(),
			joinNames(p.PartnerIDs, partnerNames),
			joinNames(p.SectorIDs, sectorNames),
		})
	}
	return t
}

// Breakdown builds a two-column table from a budget breakdown plus the share
// of the total each row represents.
func Breakdown(title string, b []analysis.Breakdown) Table {
	var total float64
	for _, x := range b {
		total += x.Value
	}
	t := Table{Columns: []Column{
		{Title: title, Width: 32},
		{Title: "Programs", Numeric: true},
		{Title: "Budget", Numeric: true},
		{Title: "Share", Numeric: true},
	}}
	for _, x := range b {
		share := 0.0
		if total > 0 {
			share = x.Value / total * 100
		}
		t.Rows = append(t.Rows, []string{
			x.Label,
			strconv.Itoa(x.Programs),
			Money(x.Value),
			strconv.FormatFloat(share, 'f', 1, 64) + "%",
		})
	}
	return t
}

// Regions builds the region table from region budgets and, when given,
// indicator values for one indicator.
func Regions(programs []model.Program, indicators []model.RegionIndicator) Table {
	t := Breakdown("Region", analysis.BudgetByRegion(programs))
	if len(indicators) == 0 {
		return t
	}
	byCode := make(map[string]model.RegionIndicator, len(indicators))
	for _, ind := range indicators {
		byCode[ind.Code] = ind
	}
	name := indicators[0].Indicator
	t.Columns = append(t.Columns, Column{Title: name, Numeric: true})
	codes := make(map[string]string)
	for _, p := range programs {
		for _, r := range p.Regions {
			label := r.Name
			if label == "" {
				label = r.Code
			}
			codes[label] = r.Code
		}
	}
	for i, row := range t.Rows {
		v := ""
		if ind, ok := byCode[codes[row[0]]]; ok {
			v = strconv.FormatFloat(ind.Value, 'f', -1, 64)
		}
		t.Rows[i] = append(row, v)
	}
	return t
}
