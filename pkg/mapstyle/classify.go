// Package mapstyle turns region indicator values into choropleth classes,
// legends and Mapbox GL paint expressions.
package mapstyle

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Method is a classification method.
type Method string

const (
	Quantile      Method = "quantile"
	EqualInterval Method = "equal"
)

// ParseMethod accepts "quantile", "equal" or "equal-interval".
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "quantile", "":
		return Quantile, nil
	case "equal", "equal-interval":
		return EqualInterval, nil
	}
	return "", fmt.Errorf("unknown classification method %q (want quantile or equal)", s)
}

// Classify returns the inner class breaks for values: at most classes-1
// strictly increasing thresholds. A value v belongs to class i when
// breaks[i-1] <= v < breaks[i]. NaN values are ignored.
func Classify(values []float64, classes int, method Method) ([]float64, error) {
	if classes < 1 {
		return nil, fmt.Errorf("classes must be positive, got %d", classes)
	}
	xs := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			xs = append(xs, v)
		}
	}
	if len(xs) == 0 || classes == 1 {
		return nil, nil
	}
	slices.Sort(xs)

	var raw []float64
	switch method {
	case Quantile, "":
		for i := 1; i < classes; i++ {
			raw = append(raw, stat.Quantile(float64(i)/float64(classes), stat.Empirical, xs, nil))
		}
	case EqualInterval:
		span := make([]float64, classes+1)
		floats.Span(span, xs[0], xs[len(xs)-1])
		raw = span[1:classes]
	default:
		return nil, fmt.Errorf("unknown classification method %q", method)
	}

	// Drop thresholds that do not separate anything.
	breaks := make([]float64, 0, len(raw))
	for _, b := range raw {
		if b <= xs[0] {
			continue
		}
		if len(breaks) > 0 && b <= breaks[len(breaks)-1] {
			continue
		}
		breaks = append(breaks, b)
	}
	return breaks, nil
}

// ClassOf returns the class index of v under breaks.
func ClassOf(v float64, breaks []float64) int {
	i, found := slices.BinarySearch(breaks, v)
	if found {
		return i + 1
	}
	return i
}
