package filter

import (
	"github.com/vanderheijden86/aidscope/pkg/model"
	"github.com/vanderheijden86/aidscope/pkg/selection"
)

// keep returns the options whose key is offered or selected. Selected keys
// stay on offer so they can always be deselected.
func keep(opts []model.Option, offered map[model.Key]bool, selected selection.Set[model.Key]) []model.Option {
	out := make([]model.Option, 0, len(opts))
	for _, o := range opts {
		if offered[o.Key] || selected.Has(o.Key) {
			out = append(out, o)
		}
	}
	return out
}

func programOptions(cat Catalog, survivors []int, selected selection.Set[model.Key]) []model.Option {
	offered := make(map[model.Key]bool)
	for _, i := range survivors {
		p := cat.Programs[i]
		offered[p.Key()] = true
		// A component is on offer exactly when its program is.
		for _, c := range p.Components {
			offered[c.Key()] = true
		}
	}
	return keep(model.ProgramOptions(cat.Programs), offered, selected)
}

func partnerOptions(cat Catalog, survivors []int, selected selection.Set[model.Key]) []model.Option {
	offered := make(map[model.Key]bool)
	for _, i := range survivors {
		for _, id := range cat.Programs[i].PartnerIDs {
			offered[model.NewKey(model.KindPartner, id)] = true
		}
	}
	return keep(model.PartnerOptions(cat.Partners), offered, selected)
}

// sectorOptions offers the sectors referenced by surviving programs. While
// components are selected, the selected components' own sector ids are used
// instead, taken only from components of surviving programs.
func sectorOptions(cat Catalog, survivors []int, components selection.Set[int], selected selection.Set[model.Key]) []model.Option {
	offered := make(map[model.Key]bool)
	add := func(sectors, subSectors []int) {
		for _, id := range sectors {
			offered[model.NewKey(model.KindSector, id)] = true
		}
		for _, id := range subSectors {
			offered[model.NewKey(model.KindSubSector, id)] = true
		}
	}
	for _, i := range survivors {
		p := cat.Programs[i]
		if components.IsEmpty() {
			add(p.SectorIDs, p.SubSectorIDs)
			continue
		}
		for _, c := range p.Components {
			if components.Has(c.ID) {
				add(c.SectorIDs, c.SubSectorIDs)
			}
		}
	}
	return keep(model.SectorOptions(cat.Sectors, cat.SubSectors), offered, selected)
}

func markerOptions(cat Catalog, survivors []int, selected selection.Set[model.Key]) []model.Option {
	offered := make(map[model.Key]bool)
	for _, i := range survivors {
		p := cat.Programs[i]
		for _, id := range p.MarkerIDs {
			offered[model.NewKey(model.KindMarker, id)] = true
		}
		for _, id := range p.SubMarkerIDs {
			offered[model.NewKey(model.KindSubMarker, id)] = true
		}
	}
	return keep(model.MarkerOptions(cat.Markers, cat.SubMarkers), offered, selected)
}

// Keys returns the keys of opts, convenient for comparisons.
func Keys(opts []model.Option) []model.Key {
	out := make([]model.Key, len(opts))
	for i, o := range opts {
		out[i] = o.Key
	}
	return out
}
