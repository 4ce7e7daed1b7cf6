package mapstyle

import (
	"fmt"
	"math"

	"github.com/vanderheijden86/aidscope/pkg/model"
)

// Expression is a Mapbox GL style expression.
type Expression []any

// LegendEntry is one class of a choropleth legend. Lo is inclusive and Hi
// exclusive; the outer bounds are the data extremes.
type LegendEntry struct {
	Lo    float64 `json:"lo"`
	Hi    float64 `json:"hi"`
	Color string  `json:"color"`
	Count int     `json:"count"`
}

// Label renders the entry's range.
func (e LegendEntry) Label() string {
	return fmt.Sprintf("%s – %s", formatValue(e.Lo), formatValue(e.Hi))
}

func formatValue(v float64) string {
	switch {
	case math.Abs(v) >= 1e6:
		return fmt.Sprintf("%.1fM", v/1e6)
	case math.Abs(v) >= 1e3:
		return fmt.Sprintf("%.1fk", v/1e3)
	case v == math.Trunc(v):
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

// ChoroplethPaint builds a "step" fill-color expression over property.
// colors must hold len(breaks)+1 entries.
func ChoroplethPaint(property string, breaks []float64, colors []string) (Expression, error) {
	if len(colors) != len(breaks)+1 {
		return nil, fmt.Errorf("need %d colours for %d breaks, got %d", len(breaks)+1, len(breaks), len(colors))
	}
	expr := Expression{"step", Expression{"get", property}, colors[0]}
	for i, b := range breaks {
		expr = append(expr, b, colors[i+1])
	}
	return expr, nil
}

// BubblePaint builds a linear "interpolate" circle-radius expression mapping
// [lo, hi] of property to [minRadius, maxRadius].
func BubblePaint(property string, lo, hi, minRadius, maxRadius float64) Expression {
	if hi <= lo {
		hi = lo + 1
	}
	return Expression{
		"interpolate", Expression{"linear"}, Expression{"get", property},
		lo, minRadius,
		hi, maxRadius,
	}
}

// Legend builds legend entries for values classified by breaks.
func Legend(values []float64, breaks []float64, colors []string) []LegendEntry {
	if len(values) == 0 || len(colors) < len(breaks)+1 {
		return nil
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	if math.IsInf(lo, 1) {
		return nil
	}
	out := make([]LegendEntry, len(breaks)+1)
	for i := range out {
		out[i].Color = colors[i]
		out[i].Lo = lo
		out[i].Hi = hi
		if i > 0 {
			out[i].Lo = breaks[i-1]
		}
		if i < len(breaks) {
			out[i].Hi = breaks[i]
		}
	}
	for _, v := range values {
		if !math.IsNaN(v) {
			out[ClassOf(v, breaks)].Count++
		}
	}
	return out
}

// Options configures RegionPaint.
type Options struct {
	Property  string
	Classes   int
	Method    Method
	Palette   string
	MinRadius float64
	MaxRadius float64
}

// DefaultOptions matches the map section of the default configuration.
func DefaultOptions() Options {
	return Options{Property: "value", Classes: 5, Method: Quantile, Palette: "blues", MinRadius: 4, MaxRadius: 24}
}

// Paint is the full map styling for one indicator.
type Paint struct {
	Indicator    string         `json:"indicator"`
	Method       Method         `json:"method"`
	Breaks       []float64      `json:"breaks"`
	FillColor    Expression     `json:"fill-color"`
	CircleRadius Expression     `json:"circle-radius"`
	Legend       []LegendEntry  `json:"legend"`
	Regions      map[string]int `json:"regions"`
}

// RegionPaint classifies indicator values and builds both paint expressions.
func RegionPaint(indicator string, values []model.RegionIndicator, opts Options) (*Paint, error) {
	if opts.Property == "" {
		opts.Property = "value"
	}
	pal, err := LookupPalette(opts.Palette)
	if err != nil {
		return nil, err
	}
	xs := make([]float64, 0, len(values))
	for _, v := range values {
		if indicator == "" || v.Indicator == indicator {
			xs = append(xs, v.Value)
		}
	}
	breaks, err := Classify(xs, opts.Classes, opts.Method)
	if err != nil {
		return nil, err
	}
	colors, err := pal.Colors(len(breaks) + 1)
	if err != nil {
		return nil, err
	}
	fill, err := ChoroplethPaint(opts.Property, breaks, colors)
	if err != nil {
		return nil, err
	}

	p := &Paint{
		Indicator: indicator,
		Method:    opts.Method,
		Breaks:    breaks,
		FillColor: fill,
		Legend:    Legend(xs, breaks, colors),
		Regions:   make(map[string]int),
	}
	lo, hi := 0.0, 0.0
	if len(p.Legend) > 0 {
		lo, hi = p.Legend[0].Lo, p.Legend[len(p.Legend)-1].Hi
	}
	p.CircleRadius = BubblePaint(opts.Property, lo, hi, opts.MinRadius, opts.MaxRadius)
	for _, v := range values {
		if indicator == "" || v.Indicator == indicator {
			p.Regions[v.Code] = ClassOf(v.Value, breaks)
		}
	}
	return p, nil
}
