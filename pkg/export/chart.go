// Package export writes the applied programs out of the dashboard: charts as
// SVG or PNG, tables as CSV, map paint as JSON, SQLite snapshots and markdown
// summaries.
package export

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vanderheijden86/aidscope/pkg/analysis"
	"github.com/vanderheijden86/aidscope/pkg/metrics"
)

// ChartKind selects a chart type.
type ChartKind string

const (
	ChartBar       ChartKind = "bar"
	ChartPie       ChartKind = "pie"
	ChartHistogram ChartKind = "histogram"
	ChartScatter   ChartKind = "scatter"
	ChartSankey    ChartKind = "sankey"
)

// ChartKinds lists every chart kind.
var ChartKinds = []ChartKind{ChartBar, ChartPie, ChartHistogram, ChartScatter, ChartSankey}

// ParseChartKind accepts a chart kind name case-insensitively.
func ParseChartKind(s string) (ChartKind, error) {
	k := ChartKind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range ChartKinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown chart kind %q (want bar, pie, histogram, scatter or sankey)", s)
}

// ChartData carries the series a chart kind draws. Only the field for the
// requested kind is read.
type ChartData struct {
	Title    string
	Subtitle string
	Bars     []analysis.Breakdown // bar, pie
	Bins     []analysis.Bin       // histogram
	Points   []analysis.Point     // scatter
	Flows    *analysis.Sankey     // sankey
	XLabel   string
	YLabel   string
}

// ChartOptions controls chart export.
type ChartOptions struct {
	Path   string    // Output path; format inferred from extension when Format is empty
	Format string    // "svg" or "png"
	Kind   ChartKind // Chart type
	Width  int
	Height int
}

// Chart size used when ChartOptions leaves it unset.
const (
	DefaultChartWidth  = 960
	DefaultChartHeight = 600
)

// ResolveFormat returns the output format and path, inferring the format from
// the extension and appending ".svg" to extension-less paths.
func ResolveFormat(path, format string) (string, string, error) {
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".svg":
			format = "svg"
		case ".png":
			format = "png"
		case "":
			format = "svg"
			if path != "" {
				path += ".svg"
			}
		default:
			return "", "", fmt.Errorf("cannot infer chart format from %q (want .svg or .png)", path)
		}
	}
	if format != "svg" && format != "png" {
		return "", "", fmt.Errorf("unsupported format %q (want svg or png)", format)
	}
	return format, path, nil
}

// SaveChart renders data to opts.Path.
func SaveChart(opts ChartOptions, data ChartData) error {
	format, path, err := ResolveFormat(opts.Path, opts.Format)
	if err != nil {
		return err
	}
	if path == "" {
		return fmt.Errorf("output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := RenderChart(f, format, opts.Kind, data, opts.Width, opts.Height); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// RenderChart writes one chart in format to w.
func RenderChart(w io.Writer, format string, kind ChartKind, data ChartData, width, height int) error {
	defer metrics.Timer(metrics.ChartRender)()

	if width <= 0 {
		width = DefaultChartWidth
	}
	if height <= 0 {
		height = DefaultChartHeight
	}
	if err := checkData(kind, data); err != nil {
		return err
	}
	c, err := newCanvas(format, w, width, height)
	if err != nil {
		return err
	}

	fw, fh := float64(width), float64(height)
	c.Rect(0, 0, fw, fh, colorBackdrop)
	c.Text(padding, 36, data.Title, colorText, true, 0)
	if data.Subtitle != "" {
		c.Text(padding, 56, data.Subtitle, colorSubtle, false, 0)
	}
	area := plotArea{X: padding, Y: headerHeight, W: fw - 2*padding, H: fh - headerHeight - padding}

	switch kind {
	case ChartBar:
		drawBars(c, area, data)
	case ChartPie:
		drawPie(c, area, data)
	case ChartHistogram:
		drawHistogram(c, area, data)
	case ChartScatter:
		drawScatter(c, area, data)
	case ChartSankey:
		drawSankey(c, area, data)
	}
	return c.Finish()
}

func checkData(kind ChartKind, data ChartData) error {
	empty := false
	switch kind {
	case ChartBar, ChartPie:
		empty = len(data.Bars) == 0
	case ChartHistogram:
		empty = len(data.Bins) == 0
	case ChartScatter:
		empty = len(data.Points) == 0
	case ChartSankey:
		empty = data.Flows == nil || len(data.Flows.Links) == 0
	default:
		return fmt.Errorf("unknown chart kind %q", kind)
	}
	if empty {
		return fmt.Errorf("no data for %s chart", kind)
	}
	return nil
}

const (
	padding      = 36.0
	headerHeight = 84.0
)

type plotArea struct {
	X, Y, W, H float64
}

var (
	colorBackdrop = color.RGBA{0xf9, 0xfa, 0xfb, 0xff}
	colorAxis     = color.RGBA{0x99, 0x99, 0x99, 0xff}
	colorGrid     = color.RGBA{0xe5, 0xe7, 0xeb, 0xff}
	colorText     = color.RGBA{0x11, 0x11, 0x11, 0xff}
	colorSubtle   = color.RGBA{0x66, 0x66, 0x66, 0xff}
	colorPrimary  = color.RGBA{0x31, 0x82, 0xbd, 0xff}

	series = []color.RGBA{
		{0x31, 0x82, 0xbd, 0xff},
		{0xe6, 0x55, 0x0d, 0xff},
		{0x31, 0xa3, 0x54, 0xff},
		{0x75, 0x6b, 0xb1, 0xff},
		{0xd6, 0x27, 0x28, 0xff},
		{0x63, 0x63, 0x63, 0xff},
		{0xbc, 0xbd, 0x22, 0xff},
		{0x17, 0xbe, 0xcf, 0xff},
	}
)

func seriesColor(i int) color.RGBA { return series[i%len(series)] }
