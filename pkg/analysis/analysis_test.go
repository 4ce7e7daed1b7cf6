package analysis

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"pgregory.net/rapid"

	"github.com/vanderheijden86/aidscope/pkg/model"
	"github.com/vanderheijden86/aidscope/pkg/testutil"
)

func date(s string) model.Date {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return model.Date{Time: t}
}

var (
	partners = []model.Partner{{ID: 10, Name: "UNICEF"}, {ID: 20, Name: "WFP"}}
	sectors  = []model.Sector{{ID: 1, Name: "Health"}, {ID: 2, Name: "Water"}}
	markers  = []model.Marker{{ID: 5, Name: "Gender"}}
	programs = []model.Program{
		{
			ID: 1, Code: "P1", Budget: 100,
			StartDate: date("2020-01-01"), EndDate: date("2020-01-11"),
			PartnerIDs: []int{10}, SectorIDs: []int{1, 2}, MarkerIDs: []int{5},
			Regions: []model.RegionAllocation{{Code: "R1", Name: "North", Budget: 60}, {Code: "R2", Name: "South", Budget: 40}},
		},
		{
			ID: 2, Code: "P2", Budget: 300,
			StartDate: date("2020-01-01"), EndDate: date("2020-01-31"),
			PartnerIDs: []int{10, 20}, SectorIDs: []int{1},
			Regions: []model.RegionAllocation{{Code: "R2", Name: "South", Budget: 300}},
		},
		{ID: 3, Code: "P3", Budget: 50, SectorIDs: []int{2}},
	}
)

func TestBudgetBreakdowns(t *testing.T) {
	approx := cmpopts.EquateApprox(0, 1e-9)

	gotRegion := BudgetByRegion(programs)
	wantRegion := []Breakdown{
		{Key: "R2", Label: "South", Value: 340, Programs: 2},
		{Key: "R1", Label: "North", Value: 60, Programs: 1},
	}
	if diff := cmp.Diff(wantRegion, gotRegion, approx); diff != "" {
		t.Errorf("BudgetByRegion mismatch (-want +got):\n%s", diff)
	}

	gotSector := BudgetBySector(programs, sectors)
	wantSector := []Breakdown{
		{Key: "sector-1", Label: "Health", Value: 350, Programs: 2},
		{Key: "sector-2", Label: "Water", Value: 100, Programs: 2},
	}
	if diff := cmp.Diff(wantSector, gotSector, approx); diff != "" {
		t.Errorf("BudgetBySector mismatch (-want +got):\n%s", diff)
	}

	gotPartner := BudgetByPartner(programs, partners)
	wantPartner := []Breakdown{
		{Key: "partner-10", Label: "UNICEF", Value: 250, Programs: 2},
		{Key: "partner-20", Label: "WFP", Value: 150, Programs: 1},
	}
	if diff := cmp.Diff(wantPartner, gotPartner, approx); diff != "" {
		t.Errorf("BudgetByPartner mismatch (-want +got):\n%s", diff)
	}

	gotMarker := BudgetByMarker(programs, markers)
	if len(gotMarker) != 1 || gotMarker[0].Value != 100 || gotMarker[0].Label != "Gender" {
		t.Errorf("BudgetByMarker = %+v", gotMarker)
	}
}

func TestTop(t *testing.T) {
	b := []Breakdown{{Key: "a", Value: 5}, {Key: "b", Value: 3}, {Key: "c", Value: 2}, {Key: "d", Value: 1}}
	got := Top(b, 2)
	if len(got) != 3 || got[2].Key != "other" || got[2].Value != 3 {
		t.Errorf("Top = %+v", got)
	}
	if len(Top(b, 10)) != 4 {
		t.Error("Top with large n should return input")
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(programs)
	if s.Count != 3 || s.Total != 450 || s.Median != 100 || s.Min != 50 || s.Max != 300 {
		t.Errorf("Summarize = %+v", s)
	}
	if math.Abs(s.Mean-150) > 1e-9 {
		t.Errorf("Mean = %v, want 150", s.Mean)
	}
	if got := Summarize(nil); got != (Summary{}) {
		t.Errorf("Summarize(nil) = %+v", got)
	}
}

func TestHistogram(t *testing.T) {
	bins := Histogram([]float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 10}, 5)
	if len(bins) != 5 {
		t.Fatalf("got %d bins", len(bins))
	}
	want := []int{2, 2, 2, 2, 2}
	for i, b := range bins {
		if b.Count != want[i] {
			t.Errorf("bin %d [%v,%v) count = %d, want %d", i, b.Lo, b.Hi, b.Count, want[i])
		}
	}
	if bins[4].Hi != 10 {
		t.Errorf("last bin upper bound = %v", bins[4].Hi)
	}

	flat := Histogram([]float64{3, 3, 3}, 4)
	if len(flat) != 1 || flat[0].Count != 3 {
		t.Errorf("constant values histogram = %+v", flat)
	}
	if Histogram(nil, 4) != nil {
		t.Error("empty histogram should be nil")
	}
}

func TestHistogramCountsEveryValue(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		xs := rapid.SliceOfN(rapid.Float64Range(0, 1e6), 1, 50).Draw(t, "values")
		n := rapid.IntRange(1, 12).Draw(t, "bins")
		total := 0
		for _, b := range Histogram(xs, n) {
			total += b.Count
		}
		if total != len(xs) {
			t.Fatalf("histogram counted %d of %d values", total, len(xs))
		}
	})
}

func TestDurationVsBudget(t *testing.T) {
	pts := DurationVsBudget(programs)
	want := []Point{{X: 10, Y: 100, Label: "P1"}, {X: 30, Y: 300, Label: "P2"}}
	if diff := cmp.Diff(want, pts); diff != "" {
		t.Errorf("points mismatch (-want +got):\n%s", diff)
	}
	if c := Correlation(pts); math.Abs(c-1) > 1e-9 {
		t.Errorf("Correlation = %v, want 1", c)
	}
	if !math.IsNaN(Correlation(pts[:1])) {
		t.Error("single point correlation should be NaN")
	}
}

func TestProgramFlows(t *testing.T) {
	s, err := ProgramFlows(programs, partners, sectors)
	if err != nil {
		t.Fatal(err)
	}
	cols := s.Columns()
	if len(cols) != 3 {
		t.Fatalf("got %d columns, want 3", len(cols))
	}
	if len(cols[0]) != 3 || len(cols[1]) != 2 || len(cols[2]) != 2 {
		t.Errorf("column sizes = %d/%d/%d", len(cols[0]), len(cols[1]), len(cols[2]))
	}
	// P3 has no partner, so its sector sits in the last column.
	if cols[2][0].Label != "Health" || cols[2][0].Value != 350 {
		t.Errorf("top sector = %+v", cols[2][0])
	}

	var total float64
	for _, n := range cols[0] {
		total += n.Value
	}
	if total != 450 {
		t.Errorf("program column total = %v, want 450", total)
	}
}

func TestProgramFlowsConserveBudget(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := testutil.DefaultConfig()
		cfg.Seed = rapid.Int64().Draw(t, "seed")
		cfg.Programs = rapid.IntRange(1, 20).Draw(t, "programs")
		cat := testutil.New(cfg).Catalog()

		s, err := ProgramFlows(cat.Programs, cat.Partners, cat.Sectors)
		if err != nil {
			t.Fatal(err)
		}
		var want float64
		for _, p := range cat.Programs {
			if len(p.SectorIDs) > 0 {
				want += p.Budget
			}
		}
		cols := s.Columns()
		var got float64
		for _, n := range cols[len(cols)-1] {
			got += n.Value
		}
		if math.Abs(got-want) > 1e-6*math.Max(1, want) {
			t.Fatalf("sector inflow %v, want %v", got, want)
		}
	})
}
