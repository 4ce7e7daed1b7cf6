package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/aidscope/pkg/analysis"
	"github.com/vanderheijden86/aidscope/pkg/export"
	"github.com/vanderheijden86/aidscope/pkg/loader"
	"github.com/vanderheijden86/aidscope/pkg/model"
)

type chartOptions struct {
	filterOptions
	kind   string
	output string
	format string
	width  int
	height int
	by     string
	bins   int
	top    int
}

func addChart(topLevel *cobra.Command, g *globalOptions) {
	o := &chartOptions{}
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Render a chart of the selected programs as SVG or PNG",
		Example: `  aidscope chart --kind bar --by sector -o sectors.svg
  aidscope chart --kind sankey --partner 3 -o flows.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChart(cmd, g, o)
		},
	}
	addFilterFlags(cmd, &o.filterOptions)
	f := cmd.Flags()
	f.StringVar(&o.kind, "kind", "bar", "Chart kind: bar, pie, histogram, scatter or sankey")
	f.StringVarP(&o.output, "output", "o", "", "Output file (.svg or .png)")
	f.StringVar(&o.format, "format", "", "svg or png; inferred from the output name when empty")
	f.IntVar(&o.width, "width", export.DefaultChartWidth, "Width in pixels")
	f.IntVar(&o.height, "height", export.DefaultChartHeight, "Height in pixels")
	f.StringVar(&o.by, "by", "sector", "Bar and pie grouping: sector, partner, marker or region")
	f.IntVar(&o.bins, "bins", 10, "Histogram bins")
	f.IntVar(&o.top, "top", 12, "Bar and pie slices to keep; the rest become one Other slice")
	_ = cmd.MarkFlagRequired("output")
	topLevel.AddCommand(cmd)
}

func runChart(cmd *cobra.Command, g *globalOptions, o *chartOptions) error {
	kind, err := export.ParseChartKind(o.kind)
	if err != nil {
		return err
	}
	s, cat, _, res, err := compose(cmd, g, &o.filterOptions)
	if err != nil {
		return err
	}
	defer s.Close()

	data, err := chartData(kind, o, res.Applied, cat)
	if err != nil {
		return err
	}
	data.Subtitle = fmt.Sprintf("%d of %d programs", len(res.Applied), len(cat.Programs))
	if ctx := s.cfg.Context.String(); ctx != "" {
		data.Subtitle += " · " + ctx
	}

	err = export.SaveChart(export.ChartOptions{
		Path:   o.output,
		Format: o.format,
		Kind:   kind,
		Width:  o.width,
		Height: o.height,
	}, data)
	if err != nil {
		return err
	}
	_, path, _ := export.ResolveFormat(o.output, o.format)
	fmt.Fprintf(cmd.OutOrStdout(), "%s wrote %s\n", color.GreenString("✓"), path)
	return nil
}

func chartData(kind export.ChartKind, o *chartOptions, programs []model.Program, cat *loader.Catalog) (export.ChartData, error) {
	switch kind {
	case export.ChartBar, export.ChartPie:
		title, b, err := breakdownBy(o.by, programs, cat)
		if err != nil {
			return export.ChartData{}, err
		}
		return export.ChartData{
			Title:  "Budget by " + strings.ToLower(title),
			Bars:   analysis.Top(b, o.top),
			XLabel: title,
			YLabel: "Budget",
		}, nil
	case export.ChartHistogram:
		return export.ChartData{
			Title:  "Program budgets",
			Bins:   analysis.Histogram(analysis.Budgets(programs), o.bins),
			XLabel: "Budget",
			YLabel: "Programs",
		}, nil
	case export.ChartScatter:
		return export.ChartData{
			Title:  "Duration against budget",
			Points: analysis.DurationVsBudget(programs),
			XLabel: "Duration (days)",
			YLabel: "Budget",
		}, nil
	case export.ChartSankey:
		flows, err := analysis.ProgramFlows(programs, cat.Partners, cat.Sectors)
		if err != nil {
			return export.ChartData{}, err
		}
		return export.ChartData{Title: "Budget flows", Flows: flows}, nil
	}
	return export.ChartData{}, fmt.Errorf("unsupported chart kind %q", kind)
}

// breakdownBy totals programs along one grouping and returns its title.
func breakdownBy(by string, programs []model.Program, cat *loader.Catalog) (string, []analysis.Breakdown, error) {
	switch strings.ToLower(strings.TrimSpace(by)) {
	case "sector", "sectors":
		return "Sector", analysis.BudgetBySector(programs, cat.Sectors), nil
	case "partner", "partners":
		return "Partner", analysis.BudgetByPartner(programs, cat.Partners), nil
	case "marker", "markers":
		return "Marker", analysis.BudgetByMarker(programs, cat.Markers), nil
	case "region", "regions":
		return "Region", analysis.BudgetByRegion(programs), nil
	}
	return "", nil, fmt.Errorf("--by %q: want sector, partner, marker or region", by)
}
