// Package filter composes the four selection dimensions into the set of
// applicable programs and the options still on offer in every dimension.
//
// Within and across dimensions the semantics are AND: a program passes a
// dimension only when its membership ids contain every selected id of that
// dimension. Directly selected programs then restrict the result by id. The
// options offered in a dimension are those referenced by programs that pass
// every other dimension, so a dimension never filters itself.
package filter

import (
	"github.com/vanderheijden86/aidscope/pkg/metrics"
	"github.com/vanderheijden86/aidscope/pkg/model"
	"github.com/vanderheijden86/aidscope/pkg/selection"
)

// Catalog holds the raw option lists. A nil list is undefined (not fetched or
// failed): it offers no options and disables the filter it backs.
type Catalog struct {
	Programs   []model.Program
	Partners   []model.Partner
	Sectors    []model.Sector
	SubSectors []model.SubSector
	Markers    []model.Marker
	SubMarkers []model.SubMarker
}

// Result is the outcome of one composition.
type Result struct {
	// Applicable programs pass the partner, sector, marker and component
	// filters.
	Applicable []model.Program
	// Applied is Applicable further restricted to directly selected programs.
	Applied []model.Program
	// Options on offer per dimension, in catalog order.
	Options map[model.Dimension][]model.Option
}

// Split separates a dimension's selected keys into top-level and sub-level
// ids by their prefix. Keys of other dimensions and malformed keys are
// ignored.
func Split(dim model.Dimension, sel selection.Set[model.Key]) (top, sub selection.Set[int]) {
	var topIDs, subIDs []int
	for _, k := range sel.Keys() {
		kind, id, err := model.ParseKey(string(k))
		if err != nil || kind.Dimension() != dim {
			continue
		}
		if kind.IsSubLevel() {
			subIDs = append(subIDs, id)
		} else {
			topIDs = append(topIDs, id)
		}
	}
	return selection.NewSet(topIDs...), selection.NewSet(subIDs...)
}

// requirements is the criteria resolved to ids.
type requirements struct {
	programs   selection.Set[int] // OR: program id must be one of these
	components selection.Set[int]
	partners   selection.Set[int]
	sectors    selection.Set[int]
	subSectors selection.Set[int]
	markers    selection.Set[int]
	subMarkers selection.Set[int]
}

func resolve(cat Catalog, c selection.Criteria) requirements {
	var r requirements
	r.programs, r.components = Split(model.DimPrograms, c.Programs)
	r.partners, _ = Split(model.DimPartners, c.Partners)
	r.sectors, r.subSectors = Split(model.DimSectors, c.Sectors)
	r.markers, r.subMarkers = Split(model.DimMarkers, c.Markers)

	// Undefined lists disable their part of the filter.
	if cat.Partners == nil {
		r.partners = selection.Set[int]{}
	}
	if cat.Sectors == nil {
		r.sectors = selection.Set[int]{}
	}
	if cat.SubSectors == nil {
		r.subSectors = selection.Set[int]{}
	}
	if cat.Markers == nil {
		r.markers = selection.Set[int]{}
	}
	if cat.SubMarkers == nil {
		r.subMarkers = selection.Set[int]{}
	}
	return r
}

// membership is a program's id sets, built once per composition.
type membership struct {
	components selection.Set[int]
	partners   selection.Set[int]
	sectors    selection.Set[int]
	subSectors selection.Set[int]
	markers    selection.Set[int]
	subMarkers selection.Set[int]
}

func membershipOf(p model.Program) membership {
	comps := make([]int, len(p.Components))
	for i, c := range p.Components {
		comps[i] = c.ID
	}
	return membership{
		components: selection.NewSet(comps...),
		partners:   selection.NewSet(p.PartnerIDs...),
		sectors:    selection.NewSet(p.SectorIDs...),
		subSectors: selection.NewSet(p.SubSectorIDs...),
		markers:    selection.NewSet(p.MarkerIDs...),
		subMarkers: selection.NewSet(p.SubMarkerIDs...),
	}
}

// passes reports whether a program satisfies dim's requirements. The programs
// dimension includes the direct program-id restriction.
func (r requirements) passes(p model.Program, m membership, dim model.Dimension) bool {
	switch dim {
	case model.DimPrograms:
		if !r.programs.IsEmpty() && !r.programs.Has(p.ID) {
			return false
		}
		return m.components.ContainsAll(r.components)
	case model.DimPartners:
		return m.partners.ContainsAll(r.partners)
	case model.DimSectors:
		return m.sectors.ContainsAll(r.sectors) && m.subSectors.ContainsAll(r.subSectors)
	case model.DimMarkers:
		return m.markers.ContainsAll(r.markers) && m.subMarkers.ContainsAll(r.subMarkers)
	}
	return true
}

// passesExcept reports whether a program passes every dimension but skip.
func (r requirements) passesExcept(p model.Program, m membership, skip model.Dimension) bool {
	for _, dim := range model.Dimensions {
		if dim != skip && !r.passes(p, m, dim) {
			return false
		}
	}
	return true
}

// Compose applies c to cat.
func Compose(cat Catalog, c selection.Criteria) Result {
	defer metrics.Timer(metrics.FilterCompose)()

	req := resolve(cat, c)
	members := make([]membership, len(cat.Programs))
	for i, p := range cat.Programs {
		members[i] = membershipOf(p)
	}

	res := Result{Options: make(map[model.Dimension][]model.Option, len(model.Dimensions))}
	if c.IsEmpty() && cat.Programs != nil {
		res.Applicable = cat.Programs
		res.Applied = cat.Programs
	} else {
		for i, p := range cat.Programs {
			if !req.passesExcept(p, members[i], model.DimPrograms) || !members[i].components.ContainsAll(req.components) {
				continue
			}
			res.Applicable = append(res.Applicable, p)
			if req.programs.IsEmpty() || req.programs.Has(p.ID) {
				res.Applied = append(res.Applied, p)
			}
		}
	}

	survivors := func(dim model.Dimension) []int {
		var idx []int
		for i, p := range cat.Programs {
			if req.passesExcept(p, members[i], dim) {
				idx = append(idx, i)
			}
		}
		return idx
	}

	res.Options[model.DimPrograms] = programOptions(cat, survivors(model.DimPrograms), c.Programs)
	res.Options[model.DimPartners] = partnerOptions(cat, survivors(model.DimPartners), c.Partners)
	res.Options[model.DimSectors] = sectorOptions(cat, survivors(model.DimSectors), req.components, c.Sectors)
	res.Options[model.DimMarkers] = markerOptions(cat, survivors(model.DimMarkers), c.Markers)
	return res
}

// Apply is Compose for callers that only need the applied programs.
func Apply(cat Catalog, c selection.Criteria) []model.Program {
	return Compose(cat, c).Applied
}
