package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/aidscope/pkg/filter"
	"github.com/vanderheijden86/aidscope/pkg/loader"
	"github.com/vanderheijden86/aidscope/pkg/model"
	"github.com/vanderheijden86/aidscope/pkg/selection"
)

// filterOptions holds the selection flags of the non-interactive commands.
type filterOptions struct {
	programs []string
	partners []string
	sectors  []string
	markers  []string
}

func addFilterFlags(cmd *cobra.Command, o *filterOptions) {
	f := cmd.Flags()
	f.StringSliceVar(&o.programs, "program", nil, "Select programs or components (id, program-N or component-N)")
	f.StringSliceVar(&o.partners, "partner", nil, "Select partners (id or partner-N)")
	f.StringSliceVar(&o.sectors, "sector", nil, "Select sectors or sub-sectors (id, sector-N or subsector-N)")
	f.StringSliceVar(&o.markers, "marker", nil, "Select markers or sub-markers (id, marker-N or submarker-N)")
}

// criteria parses the flags. A bare integer is the dimension's top-level
// kind; a composite key must belong to the flag's dimension.
func (o *filterOptions) criteria() (selection.Criteria, error) {
	var c selection.Criteria
	for _, f := range []struct {
		dim  model.Dimension
		top  model.KeyKind
		vals []string
	}{
		{model.DimPrograms, model.KindProgram, o.programs},
		{model.DimPartners, model.KindPartner, o.partners},
		{model.DimSectors, model.KindSector, o.sectors},
		{model.DimMarkers, model.KindMarker, o.markers},
	} {
		for _, raw := range f.vals {
			k, err := parseSelectKey(f.dim, f.top, raw)
			if err != nil {
				return c, err
			}
			c = c.With(f.dim, c.Get(f.dim).With(k))
		}
	}
	return c, nil
}

func parseSelectKey(dim model.Dimension, top model.KeyKind, raw string) (model.Key, error) {
	raw = strings.TrimSpace(raw)
	if id, err := strconv.Atoi(raw); err == nil {
		return model.NewKey(top, id), nil
	}
	kind, id, err := model.ParseKey(raw)
	if err != nil {
		return "", fmt.Errorf("--%s %q: %w", flagName(dim), raw, err)
	}
	if kind.Dimension() != dim {
		return "", fmt.Errorf("--%s %q: a %s key belongs to --%s", flagName(dim), raw, kind, flagName(kind.Dimension()))
	}
	return model.NewKey(kind, id), nil
}

// compose loads the catalog and applies the filter flags to it.
func compose(cmd *cobra.Command, g *globalOptions, o *filterOptions) (*session, *loader.Catalog, selection.Criteria, filter.Result, error) {
	crit, err := o.criteria()
	if err != nil {
		return nil, nil, crit, filter.Result{}, err
	}
	s, err := g.open()
	if err != nil {
		return nil, nil, crit, filter.Result{}, err
	}
	cat, err := s.catalog(cmd.Context(), cmd.ErrOrStderr())
	if err != nil {
		s.Close()
		return nil, nil, crit, filter.Result{}, err
	}
	return s, cat, crit, filter.Compose(cat.Catalog, crit), nil
}

// flagName is the selection flag for dim.
func flagName(dim model.Dimension) string {
	return strings.TrimSuffix(string(dim), "s")
}
