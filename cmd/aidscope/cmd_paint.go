package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/aidscope/pkg/export"
	"github.com/vanderheijden86/aidscope/pkg/loader"
	"github.com/vanderheijden86/aidscope/pkg/mapstyle"
)

type paintOptions struct {
	indicator string
	classes   int
	method    string
	palette   string
	output    string
}

func addPaint(topLevel *cobra.Command, g *globalOptions) {
	o := &paintOptions{}
	cmd := &cobra.Command{
		Use:   "paint",
		Short: "Print map paint expressions for a region indicator",
		Long: `Classify one region indicator and print the fill-color and
circle-radius expressions, the class breaks and a legend as JSON.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPaint(cmd, g, o)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.indicator, "indicator", "", "Indicator name (default from config)")
	f.IntVar(&o.classes, "classes", 0, "Number of classes (default from config)")
	f.StringVar(&o.method, "method", "", "quantile or equal (default from config)")
	f.StringVar(&o.palette, "palette", "", "Palette name (default from config)")
	f.StringVarP(&o.output, "output", "o", "-", "Output file, - for stdout")
	topLevel.AddCommand(cmd)
}

func runPaint(cmd *cobra.Command, g *globalOptions, o *paintOptions) error {
	s, err := g.open()
	if err != nil {
		return err
	}
	defer s.Close()

	m := s.cfg.Map
	indicator := firstNonEmpty(o.indicator, m.Indicator)
	if indicator == "" {
		return errors.New("no indicator; pass --indicator or set map.indicator")
	}
	opts := mapstyle.DefaultOptions()
	if c := firstPositive(o.classes, m.Classes); c > 0 {
		opts.Classes = c
	}
	if p := firstNonEmpty(o.palette, m.Palette); p != "" {
		opts.Palette = p
	}
	if name := firstNonEmpty(o.method, m.Method); name != "" {
		method, err := mapstyle.ParseMethod(name)
		if err != nil {
			return err
		}
		opts.Method = method
	}

	values, err := loader.LoadIndicators(cmd.Context(), s.client, s.cfg.Context, indicator)
	if err != nil {
		return err
	}
	paint, err := mapstyle.RegionPaint(indicator, values, opts)
	if err != nil {
		return err
	}
	if o.output != "-" {
		return export.SavePaintJSON(o.output, paint)
	}
	return export.WritePaintJSON(cmd.OutOrStdout(), paint)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstPositive(vals ...int) int {
	for _, v := range vals {
		if v > 0 {
			return v
		}
	}
	return 0
}
