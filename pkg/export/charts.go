package export

import (
	"fmt"
	"math"
	"slices"

	"github.com/vanderheijden86/aidscope/pkg/analysis"
)

// compact renders an amount with a k/M/B suffix.
func compact(v float64) string {
	a := math.Abs(v)
	switch {
	case a >= 1e9:
		return fmt.Sprintf("%.1fB", v/1e9)
	case a >= 1e6:
		return fmt.Sprintf("%.1fM", v/1e6)
	case a >= 1e3:
		return fmt.Sprintf("%.1fk", v/1e3)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}

// drawBars draws horizontal bars, one row per breakdown entry.
func drawBars(c canvas, a plotArea, d ChartData) {
	const labelW = 220.0
	maxV := slices.MaxFunc(d.Bars, func(x, y analysis.Breakdown) int {
		return cmpFloat(x.Value, y.Value)
	}).Value
	if maxV <= 0 {
		maxV = 1
	}
	rowH := math.Min(32, a.H/float64(len(d.Bars)))
	barW := a.W - labelW - 80
	for i, b := range d.Bars {
		y := a.Y + float64(i)*rowH
		c.Text(a.X+labelW-8, y+rowH*0.65, truncate(b.Label, 28), colorText, false, 1)
		w := barW * math.Max(0, b.Value) / maxV
		c.Rect(a.X+labelW, y+rowH*0.15, w, rowH*0.7, colorPrimary)
		c.Text(a.X+labelW+w+6, y+rowH*0.65, compact(b.Value), colorSubtle, false, 0)
	}
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// drawPie draws wedges as polygons with a legend on the right.
func drawPie(c canvas, a plotArea, d ChartData) {
	var total float64
	for _, b := range d.Bars {
		total += math.Max(0, b.Value)
	}
	if total == 0 {
		return
	}
	r := math.Min(a.H, a.W*0.55) / 2
	cx, cy := a.X+r, a.Y+a.H/2
	start := -math.Pi / 2
	for i, b := range d.Bars {
		sweep := 2 * math.Pi * math.Max(0, b.Value) / total
		steps := max(2, int(sweep/(math.Pi/60)))
		xs := []float64{cx}
		ys := []float64{cy}
		for s := 0; s <= steps; s++ {
			t := start + sweep*float64(s)/float64(steps)
			xs = append(xs, cx+r*math.Cos(t))
			ys = append(ys, cy+r*math.Sin(t))
		}
		c.Polygon(xs, ys, seriesColor(i), 1)
		start += sweep
	}

	lx := cx + r + 40
	for i, b := range d.Bars {
		y := a.Y + float64(i)*20
		if y > a.Y+a.H {
			break
		}
		c.Rect(lx, y, 12, 12, seriesColor(i))
		label := fmt.Sprintf("%s  %s (%.1f%%)", truncate(b.Label, 28), compact(b.Value), 100*b.Value/total)
		c.Text(lx+18, y+10, label, colorText, false, 0)
	}
}

// drawHistogram draws vertical bins with their lower bounds underneath.
func drawHistogram(c canvas, a plotArea, d ChartData) {
	maxC := 0
	for _, b := range d.Bins {
		maxC = max(maxC, b.Count)
	}
	if maxC == 0 {
		maxC = 1
	}
	plotH := a.H - 24
	c.Line(a.X, a.Y+plotH, a.X+a.W, a.Y+plotH, colorAxis, 1)
	binW := a.W / float64(len(d.Bins))
	for i, b := range d.Bins {
		h := plotH * float64(b.Count) / float64(maxC)
		x := a.X + float64(i)*binW
		c.Rect(x+1, a.Y+plotH-h, binW-2, h, colorPrimary)
		if b.Count > 0 {
			c.Text(x+binW/2, a.Y+plotH-h-4, fmt.Sprint(b.Count), colorSubtle, false, 0.5)
		}
		c.Text(x+binW/2, a.Y+plotH+16, compact(b.Lo), colorSubtle, false, 0.5)
	}
	if d.XLabel != "" {
		c.Text(a.X+a.W, a.Y+a.H+12, d.XLabel, colorSubtle, false, 1)
	}
}

// drawScatter draws points on linear axes spanning the data.
func drawScatter(c canvas, a plotArea, d ChartData) {
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, p := range d.Points {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	if maxX == minX {
		maxX = minX + 1
	}
	if maxY == minY {
		maxY = minY + 1
	}
	const axisPad = 56.0
	plot := plotArea{X: a.X + axisPad, Y: a.Y, W: a.W - axisPad, H: a.H - 24}
	c.Line(plot.X, plot.Y+plot.H, plot.X+plot.W, plot.Y+plot.H, colorAxis, 1)
	c.Line(plot.X, plot.Y, plot.X, plot.Y+plot.H, colorAxis, 1)
	for i := 0; i <= 4; i++ {
		f := float64(i) / 4
		y := plot.Y + plot.H*(1-f)
		c.Line(plot.X, y, plot.X+plot.W, y, colorGrid, 1)
		c.Text(plot.X-6, y+4, compact(minY+f*(maxY-minY)), colorSubtle, false, 1)
		x := plot.X + plot.W*f
		c.Text(x, plot.Y+plot.H+16, compact(minX+f*(maxX-minX)), colorSubtle, false, 0.5)
	}
	for _, p := range d.Points {
		x := plot.X + plot.W*(p.X-minX)/(maxX-minX)
		y := plot.Y + plot.H*(1-(p.Y-minY)/(maxY-minY))
		c.Circle(x, y, 4, colorPrimary)
	}
	if d.XLabel != "" {
		c.Text(plot.X+plot.W, a.Y+a.H+12, d.XLabel, colorSubtle, false, 1)
	}
	if d.YLabel != "" {
		c.Text(a.X, a.Y-8, d.YLabel, colorSubtle, false, 0)
	}
}

// drawSankey lays columns out left to right and draws each link as a band
// whose thickness is proportional to its value.
func drawSankey(c canvas, a plotArea, d ChartData) {
	const (
		nodeW  = 14.0
		gap    = 8.0
		labelW = 150.0
	)
	cols := d.Flows.Columns()
	scale := math.Inf(1)
	for _, col := range cols {
		var sum float64
		for _, n := range col {
			sum += n.Value
		}
		if sum > 0 {
			avail := a.H - gap*float64(len(col)-1)
			scale = math.Min(scale, avail/sum)
		}
	}
	if math.IsInf(scale, 1) || scale <= 0 {
		return
	}

	type box struct{ x, y, h, outY, inY float64 }
	boxes := make(map[int64]*box)
	step := (a.W - labelW - nodeW) / math.Max(1, float64(len(cols)-1))
	for ci, col := range cols {
		x := a.X + float64(ci)*step
		y := a.Y
		for _, n := range col {
			h := math.Max(1, n.Value*scale)
			boxes[n.ID] = &box{x: x, y: y, h: h, outY: y, inY: y}
			y += h + gap
		}
	}

	for i, l := range d.Flows.Links {
		s, t := boxes[l.Source], boxes[l.Target]
		if s == nil || t == nil {
			continue
		}
		h := l.Value * scale
		x1, x2 := s.x+nodeW, t.x
		c.Polygon(
			[]float64{x1, x2, x2, x1},
			[]float64{s.outY, t.inY, t.inY + h, s.outY + h},
			seriesColor(i), 0.35,
		)
		s.outY += h
		t.inY += h
	}

	for ci, col := range cols {
		for _, n := range col {
			b := boxes[n.ID]
			c.Rect(b.x, b.y, nodeW, b.h, colorText)
			label := truncate(n.Label, 20) + " " + compact(n.Value)
			if ci == len(cols)-1 {
				c.Text(b.x-4, b.y+b.h/2+4, label, colorText, false, 1)
			} else {
				c.Text(b.x+nodeW+4, b.y+b.h/2+4, label, colorText, false, 0)
			}
		}
	}
}
