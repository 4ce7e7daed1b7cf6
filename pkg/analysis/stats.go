package analysis

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/vanderheijden86/aidscope/pkg/model"
)

// Summary describes the budgets of a program set.
type Summary struct {
	Count  int
	Total  float64
	Mean   float64
	Median float64
	Min    float64
	Max    float64
	StdDev float64
}

// Budgets returns the programs' budgets.
func Budgets(programs []model.Program) []float64 {
	out := make([]float64, len(programs))
	for i, p := range programs {
		out[i] = p.Budget
	}
	return out
}

// Summarize computes summary statistics of the programs' budgets.
func Summarize(programs []model.Program) Summary {
	xs := Budgets(programs)
	s := Summary{Count: len(xs)}
	if len(xs) == 0 {
		return s
	}
	slices.Sort(xs)
	s.Total = floats.Sum(xs)
	s.Mean = stat.Mean(xs, nil)
	if mid := len(xs) / 2; len(xs)%2 == 1 {
		s.Median = xs[mid]
	} else {
		s.Median = (xs[mid-1] + xs[mid]) / 2
	}
	s.Min, s.Max = xs[0], xs[len(xs)-1]
	if len(xs) > 1 {
		s.StdDev = stat.StdDev(xs, nil)
	}
	return s
}

// Bin is one histogram bucket, [Lo, Hi).
type Bin struct {
	Lo, Hi float64
	Count  int
}

// Histogram buckets values into n equal-width bins spanning their range.
func Histogram(values []float64, n int) []Bin {
	if len(values) == 0 || n <= 0 {
		return nil
	}
	xs := slices.Clone(values)
	slices.Sort(xs)
	lo, hi := xs[0], xs[len(xs)-1]
	if lo == hi {
		return []Bin{{Lo: lo, Hi: hi, Count: len(xs)}}
	}
	dividers := make([]float64, n+1)
	floats.Span(dividers, lo, hi)
	// stat.Histogram needs the last divider strictly above the maximum.
	dividers[n] = math.Nextafter(hi, math.Inf(1))
	counts := stat.Histogram(nil, dividers, xs, nil)
	bins := make([]Bin, n)
	for i := range bins {
		bins[i] = Bin{Lo: dividers[i], Hi: dividers[i+1], Count: int(counts[i])}
	}
	bins[n-1].Hi = hi
	return bins
}

// Point is one scatter point.
type Point struct {
	X, Y  float64
	Label string
}

// DurationVsBudget returns one point per program with known dates: duration
// in days against budget.
func DurationVsBudget(programs []model.Program) []Point {
	var out []Point
	for _, p := range programs {
		d := p.DurationDays()
		if d == 0 {
			continue
		}
		out = append(out, Point{X: d, Y: p.Budget, Label: p.Code})
	}
	return out
}

// Correlation returns the Pearson correlation of the points, or NaN when it
// is undefined.
func Correlation(points []Point) float64 {
	if len(points) < 2 {
		return math.NaN()
	}
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i], ys[i] = p.X, p.Y
	}
	return stat.Correlation(xs, ys, nil)
}
