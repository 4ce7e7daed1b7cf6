package main

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/aidscope/pkg/hierarchy"
	"github.com/vanderheijden86/aidscope/pkg/model"
	"github.com/vanderheijden86/aidscope/pkg/ui"
)

type optionsOptions struct {
	filterOptions
	dimension string
	search    string
	json      bool
}

// optionJSON is one offered option in --json output.
type optionJSON struct {
	Key    model.Key `json:"key"`
	Parent model.Key `json:"parent,omitempty"`
	Label  string    `json:"label"`
	State  string    `json:"state"`
}

func addOptions(topLevel *cobra.Command, g *globalOptions) {
	o := &optionsOptions{}
	cmd := &cobra.Command{
		Use:   "options",
		Short: "Show the options one dimension still offers under the selection",
		Example: `  aidscope options --dimension sectors --partner 3
  aidscope options --dimension markers --search gender --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOptions(cmd, g, o)
		},
	}
	addFilterFlags(cmd, &o.filterOptions)
	cmd.Flags().StringVarP(&o.dimension, "dimension", "d", "", "programs, partners, sectors or markers")
	cmd.Flags().StringVar(&o.search, "search", "", "Only options matching this text, with their ancestors")
	cmd.Flags().BoolVar(&o.json, "json", false, "Print the options as JSON")
	_ = cmd.MarkFlagRequired("dimension")
	topLevel.AddCommand(cmd)
}

func runOptions(cmd *cobra.Command, g *globalOptions, o *optionsOptions) error {
	dim, err := model.ParseDimension(o.dimension)
	if err != nil {
		return err
	}
	s, _, crit, res, err := compose(cmd, g, &o.filterOptions)
	if err != nil {
		return err
	}
	defer s.Close()

	opts := res.Options[dim]
	rel := hierarchy.BuildRelations(opts, model.OptionKey, model.OptionParent)
	tree := hierarchy.NewTree(rel, func(o model.Option) string { return o.Label },
		hierarchy.TreeOptions{Sync: s.cfg.UI.SyncMode, DefaultCollapseLevel: -1})
	match := hierarchy.SubstringMatcher(o.search)
	if s.cfg.UI.FuzzySearch {
		match = ui.FuzzyMatcher(o.search)
	}
	rows := tree.Visible(match)
	sel := crit.Get(dim)

	out := cmd.OutOrStdout()
	if o.json {
		items := make([]optionJSON, 0, len(rows))
		for _, r := range rows {
			item := optionJSON{Key: r.Key, Label: r.Label, State: tree.State(sel, r.Key).String()}
			if n, ok := rel.Get(r.Key); ok && n.Item != nil {
				item.Parent = n.Item.ParentKey
			}
			items = append(items, item)
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	}

	fmt.Fprintf(out, "%s: %d offered\n", dim.Title(), len(opts))
	for _, r := range rows {
		mark := " "
		switch tree.State(sel, r.Key) {
		case hierarchy.Checked:
			mark = "*"
		case hierarchy.Indeterminate:
			mark = "-"
		}
		fmt.Fprintf(out, "%s %s%s  %s\n", mark, r.Prefix(), r.Label, r.Key)
	}
	return nil
}
