package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	json "github.com/goccy/go-json"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/aidscope/pkg/analysis"
	"github.com/vanderheijden86/aidscope/pkg/table"
)

type programsOptions struct {
	filterOptions
	json bool
	csv  bool
	sort string
	desc bool
}

func addPrograms(topLevel *cobra.Command, g *globalOptions) {
	o := &programsOptions{}
	cmd := &cobra.Command{
		Use:   "programs",
		Short: "List the programs that pass the selection",
		Example: `  aidscope programs --partner 3 --sector subsector-12
  aidscope programs --marker 2 --sort budget --desc --csv > programs.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrograms(cmd, g, o)
		},
	}
	addFilterFlags(cmd, &o.filterOptions)
	cmd.Flags().BoolVar(&o.json, "json", false, "Print the programs as JSON")
	cmd.Flags().BoolVar(&o.csv, "csv", false, "Print the table as CSV")
	cmd.Flags().StringVar(&o.sort, "sort", "", "Sort by column title")
	cmd.Flags().BoolVar(&o.desc, "desc", false, "Sort descending")
	cmd.MarkFlagsMutuallyExclusive("json", "csv")
	topLevel.AddCommand(cmd)

	b := &breakdownOptions{}
	bcmd := &cobra.Command{
		Use:   "breakdown",
		Short: "Total the selected programs' budgets by sector, partner, marker or region",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBreakdown(cmd, g, b)
		},
	}
	addFilterFlags(bcmd, &b.filterOptions)
	bcmd.Flags().StringVar(&b.by, "by", "sector", "Dimension to total by: sector, partner, marker or region")
	bcmd.Flags().IntVar(&b.top, "top", 0, "Keep the N largest rows and total the rest as Other")
	topLevel.AddCommand(bcmd)
}

func runPrograms(cmd *cobra.Command, g *globalOptions, o *programsOptions) error {
	s, cat, _, res, err := compose(cmd, g, &o.filterOptions)
	if err != nil {
		return err
	}
	defer s.Close()

	out := cmd.OutOrStdout()
	if o.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res.Applied)
	}

	t := table.Programs(res.Applied, cat.Partners, cat.Sectors)
	if o.sort != "" {
		col := t.ColumnIndex(o.sort)
		if col < 0 {
			return fmt.Errorf("--sort %q: no such column (have %v)", o.sort, t.Titles())
		}
		t = t.SortBy(col, o.desc)
	}
	if o.csv {
		return t.WriteCSV(out)
	}

	fmt.Fprintf(out, "%s of %d programs\n\n", color.New(color.Bold).Sprint(len(res.Applied)), len(cat.Programs))
	printTable(out, t)
	if len(res.Applied) > 0 {
		sum := analysis.Summarize(res.Applied)
		fmt.Fprintf(out, "\ntotal %s  mean %s  median %s\n",
			table.Money(sum.Total), table.Money(sum.Mean), table.Money(sum.Median))
	}
	return nil
}

type breakdownOptions struct {
	filterOptions
	by  string
	top int
}

func runBreakdown(cmd *cobra.Command, g *globalOptions, o *breakdownOptions) error {
	s, cat, _, res, err := compose(cmd, g, &o.filterOptions)
	if err != nil {
		return err
	}
	defer s.Close()

	title, b, err := breakdownBy(o.by, res.Applied, cat)
	if err != nil {
		return err
	}
	if o.top > 0 {
		b = analysis.Top(b, o.top)
	}
	printTable(cmd.OutOrStdout(), table.Breakdown(title, b))
	return nil
}

// printTable writes t as aligned columns with a bold header.
func printTable(w io.Writer, t table.Table) {
	bold := color.New(color.Bold).SprintFunc()
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 40
	header := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = bold(c.Title)
	}
	tbl.AddRow(header...)
	for _, r := range t.Rows {
		row := make([]any, len(r))
		for i, c := range r {
			row[i] = c
		}
		tbl.AddRow(row...)
	}
	for i, c := range t.Columns {
		if c.Numeric {
			tbl.RightAlign(i)
		}
	}
	fmt.Fprintln(w, tbl)
}
