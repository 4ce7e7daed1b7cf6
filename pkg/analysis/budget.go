// Package analysis derives the dashboard's figures from the applied programs:
// budget breakdowns, summary statistics, histogram bins, scatter points and
// Sankey flows.
package analysis

import (
	"cmp"
	"slices"

	"github.com/vanderheijden86/aidscope/pkg/model"
)

// Breakdown is the budget attributed to one category.
type Breakdown struct {
	Key      string
	Label    string
	Value    float64
	Programs int
}

// sortBreakdowns orders by value descending, then key.
func sortBreakdowns(b []Breakdown) []Breakdown {
	slices.SortFunc(b, func(x, y Breakdown) int {
		if c := cmp.Compare(y.Value, x.Value); c != 0 {
			return c
		}
		return cmp.Compare(x.Key, y.Key)
	})
	return b
}

type accumulator struct {
	order []string
	byKey map[string]*Breakdown
}

func newAccumulator() *accumulator {
	return &accumulator{byKey: make(map[string]*Breakdown)}
}

func (a *accumulator) add(key, label string, value float64) {
	b, ok := a.byKey[key]
	if !ok {
		b = &Breakdown{Key: key, Label: label}
		a.byKey[key] = b
		a.order = append(a.order, key)
	}
	b.Value += value
	b.Programs++
}

func (a *accumulator) result() []Breakdown {
	out := make([]Breakdown, 0, len(a.order))
	for _, k := range a.order {
		out = append(out, *a.byKey[k])
	}
	return sortBreakdowns(out)
}

// BudgetByRegion sums region allocations.
func BudgetByRegion(programs []model.Program) []Breakdown {
	acc := newAccumulator()
	for _, p := range programs {
		for _, r := range p.Regions {
			label := r.Name
			if label == "" {
				label = r.Code
			}
			acc.add(r.Code, label, r.Budget)
		}
	}
	return acc.result()
}

// splitEvenly attributes budget in equal shares to ids.
func splitEvenly(acc *accumulator, budget float64, ids []int, kind model.KeyKind, labels map[int]string) {
	if len(ids) == 0 {
		return
	}
	share := budget / float64(len(ids))
	for _, id := range ids {
		key := string(model.NewKey(kind, id))
		label, ok := labels[id]
		if !ok {
			label = key
		}
		acc.add(key, label, share)
	}
}

// BudgetBySector splits each program's budget evenly across its sectors.
func BudgetBySector(programs []model.Program, sectors []model.Sector) []Breakdown {
	labels := make(map[int]string, len(sectors))
	for _, s := range sectors {
		labels[s.ID] = s.Name
	}
	acc := newAccumulator()
	for _, p := range programs {
		splitEvenly(acc, p.Budget, p.SectorIDs, model.KindSector, labels)
	}
	return acc.result()
}

// BudgetByPartner splits each program's budget evenly across its partners.
func BudgetByPartner(programs []model.Program, partners []model.Partner) []Breakdown {
	labels := make(map[int]string, len(partners))
	for _, p := range partners {
		labels[p.ID] = p.Name
	}
	acc := newAccumulator()
	for _, p := range programs {
		splitEvenly(acc, p.Budget, p.PartnerIDs, model.KindPartner, labels)
	}
	return acc.result()
}

// BudgetByMarker attributes each program's full budget to every marker it
// carries, since markers are tags rather than a partition.
func BudgetByMarker(programs []model.Program, markers []model.Marker) []Breakdown {
	labels := make(map[int]string, len(markers))
	for _, m := range markers {
		labels[m.ID] = m.Name
	}
	acc := newAccumulator()
	for _, p := range programs {
		for _, id := range p.MarkerIDs {
			key := string(model.NewKey(model.KindMarker, id))
			label, ok := labels[id]
			if !ok {
				label = key
			}
			acc.add(key, label, p.Budget)
		}
	}
	return acc.result()
}

// Values returns the Value column of b.
func Values(b []Breakdown) []float64 {
	out := make([]float64, len(b))
	for i, x := range b {
		out[i] = x.Value
	}
	return out
}

// Top keeps the n largest entries and folds the rest into an "Other" entry.
func Top(b []Breakdown, n int) []Breakdown {
	if n <= 0 || len(b) <= n {
		return b
	}
	out := slices.Clone(b[:n])
	other := Breakdown{Key: "other", Label: "Other"}
	for _, x := range b[n:] {
		other.Value += x.Value
		other.Programs += x.Programs
	}
	return append(out, other)
}
