package model

// Option is one item of a hierarchical or flat taxonomy as shown in a
// selector. ParentKey is empty for roots.
type Option struct {
	Key       Key
	ParentKey Key
	Label     string
}

// OptionKey and OptionParent are the projections used to build relations over
// option lists.
func OptionKey(o Option) Key { return o.Key }

// OptionParent returns the parent key and whether one is set.
func OptionParent(o Option) (Key, bool) { return o.ParentKey, o.ParentKey != "" }

// ProgramOptions projects programs and their components into one flat list.
func ProgramOptions(programs []Program) []Option {
	out := make([]Option, 0, len(programs))
	for _, p := range programs {
		out = append(out, Option{Key: p.Key(), Label: programLabel(p)})
		for _, c := range p.Components {
			out = append(out, Option{
				Key:       c.Key(),
				ParentKey: p.Key(),
				Label:     c.Name,
			})
		}
	}
	return out
}

func programLabel(p Program) string {
	if p.Code == "" {
		return p.Name
	}
	return p.Code + " " + p.Name
}

// PartnerOptions projects partners into a flat list.
func PartnerOptions(partners []Partner) []Option {
	out := make([]Option, 0, len(partners))
	for _, p := range partners {
		out = append(out, Option{Key: NewKey(KindPartner, p.ID), Label: p.Name})
	}
	return out
}

// SectorOptions projects sectors and sub-sectors into one flat list.
func SectorOptions(sectors []Sector, subSectors []SubSector) []Option {
	out := make([]Option, 0, len(sectors)+len(subSectors))
	for _, s := range sectors {
		out = append(out, Option{Key: NewKey(KindSector, s.ID), Label: s.Name})
	}
	for _, s := range subSectors {
		out = append(out, Option{
			Key:       NewKey(KindSubSector, s.ID),
			ParentKey: NewKey(KindSector, s.SectorID),
			Label:     s.Name,
		})
	}
	return out
}

// MarkerOptions projects markers and sub-markers into one flat list.
func MarkerOptions(markers []Marker, subMarkers []SubMarker) []Option {
	out := make([]Option, 0, len(markers)+len(subMarkers))
	for _, m := range markers {
		out = append(out, Option{Key: NewKey(KindMarker, m.ID), Label: m.Name})
	}
	for _, m := range subMarkers {
		out = append(out, Option{
			Key:       NewKey(KindSubMarker, m.ID),
			ParentKey: NewKey(KindMarker, m.MarkerID),
			Label:     m.Name,
		})
	}
	return out
}
