package mapstyle

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"pgregory.net/rapid"

	"github.com/vanderheijden86/aidscope/pkg/model"
)

func TestClassify(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	tests := []struct {
		name    string
		classes int
		method  Method
		want    []float64
	}{
		{"quantile", 5, Quantile, []float64{2, 4, 6, 8}},
		{"equal", 3, EqualInterval, []float64{4, 7}},
		{"single class", 1, Quantile, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(values, tt.classes, tt.method)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("breaks mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if _, err := Classify(values, 0, Quantile); err == nil {
		t.Error("expected error for zero classes")
	}
	if _, err := Classify(values, 3, Method("jenks")); err == nil {
		t.Error("expected error for unknown method")
	}
}

func TestClassifyConstantValues(t *testing.T) {
	got, err := Classify([]float64{5, 5, 5}, 4, Quantile)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("constant values should produce no breaks, got %v", got)
	}
}

func TestBreaksStrictlyIncreasing(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		xs := rapid.SliceOfN(rapid.Float64Range(-1e4, 1e4), 1, 60).Draw(t, "values")
		classes := rapid.IntRange(1, 9).Draw(t, "classes")
		method := rapid.SampledFrom([]Method{Quantile, EqualInterval}).Draw(t, "method")
		breaks, err := Classify(xs, classes, method)
		if err != nil {
			t.Fatal(err)
		}
		if len(breaks) > classes-1 {
			t.Fatalf("%d breaks for %d classes", len(breaks), classes)
		}
		for i := 1; i < len(breaks); i++ {
			if breaks[i] <= breaks[i-1] {
				t.Fatalf("breaks not increasing: %v", breaks)
			}
		}
		for _, v := range xs {
			if c := ClassOf(v, breaks); c < 0 || c > len(breaks) {
				t.Fatalf("class %d out of range for %v", c, v)
			}
		}
	})
}

func TestParseMethod(t *testing.T) {
	if m, _ := ParseMethod("Equal-Interval"); m != EqualInterval {
		t.Errorf("ParseMethod = %q", m)
	}
	if _, err := ParseMethod("natural"); err == nil {
		t.Error("expected error")
	}
}

func TestPaletteColors(t *testing.T) {
	p, err := LookupPalette("Blues")
	if err != nil {
		t.Fatal(err)
	}
	colors, err := p.Colors(5)
	if err != nil {
		t.Fatal(err)
	}
	if len(colors) != 5 || colors[0] != "#eff3ff" || colors[4] != "#08519c" {
		t.Errorf("colors = %v", colors)
	}
	if _, err := LookupPalette("rainbow"); err == nil {
		t.Error("expected error for unknown palette")
	}
}

func TestChoroplethPaint(t *testing.T) {
	expr, err := ChoroplethPaint("value", []float64{10, 20}, []string{"#a", "#b", "#c"})
	if err != nil {
		t.Fatal(err)
	}
	want := Expression{"step", Expression{"get", "value"}, "#a", 10.0, "#b", 20.0, "#c"}
	if diff := cmp.Diff(want, expr); diff != "" {
		t.Errorf("expression mismatch (-want +got):\n%s", diff)
	}
	if _, err := ChoroplethPaint("value", []float64{10}, []string{"#a"}); err == nil {
		t.Error("expected error for colour count mismatch")
	}
}

func TestBubblePaint(t *testing.T) {
	got := BubblePaint("value", 0, 100, 2, 20)
	want := Expression{"interpolate", Expression{"linear"}, Expression{"get", "value"}, 0.0, 2.0, 100.0, 20.0}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("expression mismatch (-want +got):\n%s", diff)
	}
}

func TestRegionPaint(t *testing.T) {
	values := []model.RegionIndicator{
		{Code: "P1", Indicator: "poverty", Value: 10},
		{Code: "P2", Indicator: "poverty", Value: 20},
		{Code: "P3", Indicator: "poverty", Value: 30},
		{Code: "P4", Indicator: "poverty", Value: 40},
		{Code: "P1", Indicator: "literacy", Value: 99},
	}
	opts := DefaultOptions()
	opts.Classes = 2
	p, err := RegionPaint("poverty", values, opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Legend) != 2 || p.Legend[0].Count != 1 || p.Legend[1].Count != 3 {
		t.Errorf("legend = %+v", p.Legend)
	}
	if p.Legend[0].Lo != 10 || p.Legend[1].Hi != 40 {
		t.Errorf("legend bounds = %v..%v", p.Legend[0].Lo, p.Legend[1].Hi)
	}
	if p.Regions["P1"] != 0 || p.Regions["P4"] != 1 {
		t.Errorf("regions = %v", p.Regions)
	}
	if len(p.Regions) != 4 {
		t.Errorf("expected literacy values to be ignored, got %v", p.Regions)
	}
}
