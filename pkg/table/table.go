// Package table holds tabular views of the applied programs and regions with
// sorting, text filtering and CSV output.
package table

import (
	"cmp"
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Column describes one table column.
type Column struct {
	Title string
	// Numeric columns sort by value and are right-aligned.
	Numeric bool
	// Width caps the rendered cell width; zero means no cap.
	Width int
}

// Table is an ordered set of string rows. Methods return new tables and
// leave the receiver untouched.
type Table struct {
	Columns []Column
	Rows    [][]string
}

// ColumnIndex finds a column by title, case-insensitively.
func (t Table) ColumnIndex(title string) int {
	return slices.IndexFunc(t.Columns, func(c Column) bool {
		return strings.EqualFold(c.Title, title)
	})
}

// SortBy returns the rows ordered by column col. Numeric columns compare by
// parsed value; cells that fail to parse sort after numbers. Ties keep their
// current order.
func (t Table) SortBy(col int, desc bool) Table {
	if col < 0 || col >= len(t.Columns) {
		return t
	}
	numeric := t.Columns[col].Numeric
	rows := slices.Clone(t.Rows)
	slices.SortStableFunc(rows, func(a, b []string) int {
		c := compareCells(cell(a, col), cell(b, col), numeric)
		if desc {
			return -c
		}
		return c
	})
	return Table{Columns: t.Columns, Rows: rows}
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func compareCells(a, b string, numeric bool) int {
	if numeric {
		x, errA := ParseNumber(a)
		y, errB := ParseNumber(b)
		switch {
		case errA == nil && errB == nil:
			return cmp.Compare(x, y)
		case errA == nil:
			return -1
		case errB == nil:
			return 1
		}
	}
	return cmp.Compare(strings.ToLower(a), strings.ToLower(b))
}

// ParseNumber parses a formatted cell such as "1,250,000" or "42.5%".
func ParseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	s = strings.ReplaceAll(s, ",", "")
	return strconv.ParseFloat(s, 64)
}

// Filter keeps rows where any cell contains text, case-insensitively. Blank
// text keeps every row.
func (t Table) Filter(text string) Table {
	q := strings.ToLower(strings.TrimSpace(text))
	if q == "" {
		return t
	}
	var rows [][]string
	for _, r := range t.Rows {
		if slices.ContainsFunc(r, func(c string) bool {
			return strings.Contains(strings.ToLower(c), q)
		}) {
			rows = append(rows, r)
		}
	}
	return Table{Columns: t.Columns, Rows: rows}
}

// Titles returns the column titles.
func (t Table) Titles() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Title
	}
	return out
}

// WriteCSV writes a header row and every row.
func (t Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Titles()); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, r := range t.Rows {
		if err := cw.Write(r); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// CSV returns the table as CSV text.
func (t Table) CSV() (string, error) {
	var sb strings.Builder
	if err := t.WriteCSV(&sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Widths returns the display width of every column, capped by Column.Width.
func (t Table) Widths() []int {
	w := make([]int, len(t.Columns))
	for i, c := range t.Columns {
		w[i] = runewidth.StringWidth(c.Title)
	}
	for _, r := range t.Rows {
		for i := range w {
			w[i] = max(w[i], runewidth.StringWidth(cell(r, i)))
		}
	}
	for i, c := range t.Columns {
		if c.Width > 0 && w[i] > c.Width {
			w[i] = c.Width
		}
	}
	return w
}

// Pad fits s to width, truncating with an ellipsis and aligning right when
// right is set.
func Pad(s string, width int, right bool) string {
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, "…")
	}
	if right {
		return runewidth.FillLeft(s, width)
	}
	return runewidth.FillRight(s, width)
}

// Lines renders the header and rows as aligned plain-text lines.
func (t Table) Lines() (header string, rows []string) {
	w := t.Widths()
	format := func(r []string) string {
		parts := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			parts[i] = Pad(cell(r, i), w[i], c.Numeric)
		}
		return strings.Join(parts, "  ")
	}
	header = format(t.Titles())
	rows = make([]string, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = format(r)
	}
	return header, rows
}
