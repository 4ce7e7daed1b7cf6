package table

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vanderheijden86/aidscope/pkg/model"
)

func sample() Table {
	return Table{
		Columns: []Column{{Title: "Name"}, {Title: "Budget", Numeric: true}},
		Rows: [][]string{
			{"Water", "1,000"},
			{"health", "250"},
			{"Education", "n/a"},
			{"Roads", "12,500"},
		},
	}
}

func firstColumn(t Table) []string {
	out := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r[0]
	}
	return out
}

func TestSortBy(t *testing.T) {
	tests := []struct {
		name string
		col  int
		desc bool
		want []string
	}{
		{"numeric ascending", 1, false, []string{"health", "Water", "Roads", "Education"}},
		{"numeric descending", 1, true, []string{"Education", "Roads", "Water", "health"}},
		{"text ascending ignores case", 0, false, []string{"Education", "health", "Roads", "Water"}},
		{"out of range keeps order", 5, false, []string{"Water", "health", "Education", "Roads"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := firstColumn(sample().SortBy(tt.col, tt.desc))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("order mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSortDoesNotMutate(t *testing.T) {
	orig := sample()
	_ = orig.SortBy(0, false)
	if orig.Rows[0][0] != "Water" {
		t.Error("SortBy mutated the receiver")
	}
}

func TestFilter(t *testing.T) {
	got := firstColumn(sample().Filter("  WAT "))
	if diff := cmp.Diff([]string{"Water"}, got); diff != "" {
		t.Errorf("filter mismatch (-want +got):\n%s", diff)
	}
	if len(sample().Filter("").Rows) != 4 {
		t.Error("blank filter should keep every row")
	}
	if len(sample().Filter("2,5").Rows) != 1 {
		t.Error("filter should match numeric cells")
	}
}

func TestWriteCSV(t *testing.T) {
	var sb strings.Builder
	tbl := Table{Columns: []Column{{Title: "Name"}, {Title: "Note"}}, Rows: [][]string{{"A", "x, y"}}}
	if err := tbl.WriteCSV(&sb); err != nil {
		t.Fatal(err)
	}
	want := "Name,Note\nA,\"x, y\"\n"
	if sb.String() != want {
		t.Errorf("csv = %q, want %q", sb.String(), want)
	}
}

func TestMoney(t *testing.T) {
	for in, want := range map[float64]string{0: "0", 999: "999", 1000: "1,000", 1234567.4: "1,234,567", -5000: "-5,000"} {
		if got := Money(in); got != want {
			t.Errorf("Money(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestLinesTruncate(t *testing.T) {
	tbl := Table{Columns: []Column{{Title: "Name", Width: 6}, {Title: "N", Numeric: true}}, Rows: [][]string{{"Education", "7"}}}
	header, rows := tbl.Lines()
	if header != "Name    N" {
		t.Errorf("header = %q", header)
	}
	if rows[0] != "Educa…  7" {
		t.Errorf("row = %q", rows[0])
	}
}

func TestProgramsAndRegions(t *testing.T) {
	programs := []model.Program{
		{ID: 1, Code: "P1", Name: "Wells", Budget: 1500, PartnerIDs: []int{10}, SectorIDs: []int{1, 9},
			Regions: []model.RegionAllocation{{Code: "R1", Name: "North", Budget: 1500}}},
	}
	pt := Programs(programs, []model.Partner{{ID: 10, Name: "UNICEF"}}, []model.Sector{{ID: 1, Name: "Water"}})
	want := []string{"P1", "Wells", "1,500", "", "", "UNICEF", "Water; 9"}
	if diff := cmp.Diff(want, pt.Rows[0]); diff != "" {
		t.Errorf("program row mismatch (-want +got):\n%s", diff)
	}

	rt := Regions(programs, []model.RegionIndicator{{Code: "R1", Indicator: "poverty", Value: 12.5}})
	if rt.ColumnIndex("poverty") != 4 {
		t.Fatalf("columns = %v", rt.Titles())
	}
	if diff := cmp.Diff([]string{"North", "1", "1,500", "100.0%", "12.5"}, rt.Rows[0]); diff != "" {
		t.Errorf("region row mismatch (-want +got):\n%s", diff)
	}
}
