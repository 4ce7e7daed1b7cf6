package export

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"git.sr.ht/~sbinet/gg"
	svg "github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"
)

// canvas is the drawing surface shared by the SVG and PNG renderers.
type canvas interface {
	Rect(x, y, w, h float64, fill color.RGBA)
	Line(x1, y1, x2, y2 float64, stroke color.RGBA, width float64)
	Circle(x, y, r float64, fill color.RGBA)
	Polygon(xs, ys []float64, fill color.RGBA, opacity float64)
	// Text draws s with its anchor point at x,y: 0 aligns left, 0.5 centres
	// and 1 aligns right.
	Text(x, y float64, s string, c color.RGBA, bold bool, anchor float64)
	Finish() error
}

func newCanvas(format string, w io.Writer, width, height int) (canvas, error) {
	switch format {
	case "svg":
		c := svg.New(w)
		c.Start(width, height)
		return &svgCanvas{c: c}, nil
	case "png":
		dc := gg.NewContext(width, height)
		dc.SetFontFace(basicfont.Face7x13)
		return &pngCanvas{dc: dc, w: w}, nil
	}
	return nil, fmt.Errorf("unsupported format %q (want svg or png)", format)
}

type svgCanvas struct {
	c *svg.SVG
}

func (s *svgCanvas) Rect(x, y, w, h float64, fill color.RGBA) {
	s.c.Rect(px(x), px(y), px(w), px(h), "fill:"+css(fill))
}

func (s *svgCanvas) Line(x1, y1, x2, y2 float64, stroke color.RGBA, width float64) {
	s.c.Line(px(x1), px(y1), px(x2), px(y2), fmt.Sprintf("stroke:%s;stroke-width:%g", css(stroke), width))
}

func (s *svgCanvas) Circle(x, y, r float64, fill color.RGBA) {
	s.c.Circle(px(x), px(y), max(1, px(r)), "fill:"+css(fill))
}

func (s *svgCanvas) Polygon(xs, ys []float64, fill color.RGBA, opacity float64) {
	ix := make([]int, len(xs))
	iy := make([]int, len(ys))
	for i := range xs {
		ix[i], iy[i] = px(xs[i]), px(ys[i])
	}
	s.c.Polygon(ix, iy, fmt.Sprintf("fill:%s;fill-opacity:%.2f", css(fill), opacity))
}

func (s *svgCanvas) Text(x, y float64, text string, c color.RGBA, bold bool, anchor float64) {
	style := fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", css(c))
	if bold {
		style += ";font-weight:bold;font-size:15px"
	}
	switch {
	case anchor >= 1:
		style += ";text-anchor:end"
	case anchor > 0:
		style += ";text-anchor:middle"
	}
	s.c.Text(px(x), px(y), text, style)
}

func (s *svgCanvas) Finish() error {
	s.c.End()
	return nil
}

type pngCanvas struct {
	dc *gg.Context
	w  io.Writer
}

func (p *pngCanvas) Rect(x, y, w, h float64, fill color.RGBA) {
	p.dc.SetColor(fill)
	p.dc.DrawRectangle(x, y, w, h)
	p.dc.Fill()
}

func (p *pngCanvas) Line(x1, y1, x2, y2 float64, stroke color.RGBA, width float64) {
	p.dc.SetColor(stroke)
	p.dc.SetLineWidth(width)
	p.dc.DrawLine(x1, y1, x2, y2)
	p.dc.Stroke()
}

func (p *pngCanvas) Circle(x, y, r float64, fill color.RGBA) {
	p.dc.SetColor(fill)
	p.dc.DrawCircle(x, y, math.Max(1, r))
	p.dc.Fill()
}

func (p *pngCanvas) Polygon(xs, ys []float64, fill color.RGBA, opacity float64) {
	if len(xs) == 0 {
		return
	}
	fill.A = uint8(math.Round(255 * opacity))
	p.dc.SetColor(fill)
	p.dc.NewSubPath()
	p.dc.MoveTo(xs[0], ys[0])
	for i := 1; i < len(xs); i++ {
		p.dc.LineTo(xs[i], ys[i])
	}
	p.dc.ClosePath()
	p.dc.Fill()
}

func (p *pngCanvas) Text(x, y float64, s string, c color.RGBA, _ bool, anchor float64) {
	p.dc.SetColor(c)
	// The y coordinate is the text baseline, as in SVG.
	p.dc.DrawStringAnchored(s, x, y, anchor, 0)
}

func (p *pngCanvas) Finish() error {
	return p.dc.EncodePNG(p.w)
}

func px(v float64) int { return int(math.Round(v)) }

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
