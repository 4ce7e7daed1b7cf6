package main

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/aidscope/pkg/analysis"
	"github.com/vanderheijden86/aidscope/pkg/export"
	"github.com/vanderheijden86/aidscope/pkg/filter"
	"github.com/vanderheijden86/aidscope/pkg/loader"
	"github.com/vanderheijden86/aidscope/pkg/model"
	"github.com/vanderheijden86/aidscope/pkg/selection"
	"github.com/vanderheijden86/aidscope/pkg/table"
	"github.com/vanderheijden86/aidscope/pkg/version"
)

type exportOptions struct {
	filterOptions
	output string
	title  string
}

func addExport(topLevel *cobra.Command, g *globalOptions) {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the selected programs to a file",
	}
	cmd.AddCommand(
		exportCmd(g, "sqlite", "Write a standalone SQLite database", true, runExportSQLite),
		exportCmd(g, "csv", "Write the program table as CSV", false, runExportCSV),
		exportCmd(g, "summary", "Write a markdown summary of the selection", false, runExportSummary),
	)
	topLevel.AddCommand(cmd)
}

type exportRunner func(cmd *cobra.Command, s *session, cat *loader.Catalog, crit selection.Criteria, res filter.Result, o *exportOptions) error

func exportCmd(g *globalOptions, use, short string, needsFile bool, run exportRunner) *cobra.Command {
	o := &exportOptions{}
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, cat, crit, res, err := compose(cmd, g, &o.filterOptions)
			if err != nil {
				return err
			}
			defer s.Close()
			return run(cmd, s, cat, crit, res, o)
		},
	}
	addFilterFlags(cmd, &o.filterOptions)
	if needsFile {
		cmd.Flags().StringVarP(&o.output, "output", "o", "", "Output file")
		_ = cmd.MarkFlagRequired("output")
	} else {
		cmd.Flags().StringVarP(&o.output, "output", "o", "-", "Output file, - for stdout")
	}
	cmd.Flags().StringVar(&o.title, "title", "", "Title recorded in the output")
	return cmd
}

func runExportSQLite(cmd *cobra.Command, s *session, cat *loader.Catalog, crit selection.Criteria, res filter.Result, o *exportOptions) error {
	e := export.NewSQLiteExporter(res.Applied, cat.Partners, cat.Sectors)
	e.Context = s.cfg.Context
	e.Criteria = crit
	e.Title = o.title
	e.Version = version.String()
	if err := e.Export(o.output); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s wrote %d programs to %s\n", color.GreenString("✓"), len(res.Applied), o.output)
	return nil
}

func runExportCSV(cmd *cobra.Command, s *session, cat *loader.Catalog, crit selection.Criteria, res filter.Result, o *exportOptions) error {
	t := table.Programs(res.Applied, cat.Partners, cat.Sectors)
	if o.output == "-" {
		return t.WriteCSV(cmd.OutOrStdout())
	}
	return export.SaveCSV(o.output, t)
}

func runExportSummary(cmd *cobra.Command, s *session, cat *loader.Catalog, crit selection.Criteria, res filter.Result, o *exportOptions) error {
	in := export.SummaryInput{
		Title:     o.title,
		Context:   s.cfg.Context,
		Criteria:  crit,
		Labels:    optionLabels(res),
		Applied:   res.Applied,
		Available: len(cat.Programs),
		Sectors:   analysis.BudgetBySector(res.Applied, cat.Sectors),
		Partners:  analysis.BudgetByPartner(res.Applied, cat.Partners),
		Regions:   analysis.BudgetByRegion(res.Applied),
		Generated: time.Now(),
	}
	w, done, err := writeTo(o.output, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, export.GenerateSummary(in)); err != nil {
		done()
		return err
	}
	return done()
}

func optionLabels(res filter.Result) map[model.Key]string {
	labels := make(map[model.Key]string)
	for _, opts := range res.Options {
		for _, o := range opts {
			labels[o.Key] = o.Label
		}
	}
	return labels
}
