package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/aidscope/pkg/config"
	"github.com/vanderheijden86/aidscope/pkg/filter"
	"github.com/vanderheijden86/aidscope/pkg/loader"
	"github.com/vanderheijden86/aidscope/pkg/model"
)

// fixtureCatalog is two programs over two partners and two sectors. P1 has a
// component and a sub-sector.
func fixtureCatalog() *loader.Catalog {
	return &loader.Catalog{Catalog: filter.Catalog{
		Programs: []model.Program{
			{
				ID: 1, Code: "P1", Name: "Wells", Budget: 100,
				PartnerIDs: []int{10}, SectorIDs: []int{1}, SubSectorIDs: []int{11},
				Components: []model.Component{{ID: 7, ProgramID: 1, Name: "Drilling", SectorIDs: []int{1}}},
				Regions:    []model.RegionAllocation{{Code: "R1", Name: "North", Budget: 100}},
			},
			{
				ID: 2, Code: "P2", Name: "Clinics", Budget: 300,
				PartnerIDs: []int{10, 20}, SectorIDs: []int{2},
				Regions: []model.RegionAllocation{{Code: "R2", Name: "South", Budget: 300}},
			},
		},
		Partners:   []model.Partner{{ID: 10, Name: "Oxfam"}, {ID: 20, Name: "UNICEF"}},
		Sectors:    []model.Sector{{ID: 1, Name: "Water"}, {ID: 2, Name: "Health"}},
		SubSectors: []model.SubSector{{ID: 11, SectorID: 1, Name: "Sanitation"}},
		Markers:    []model.Marker{},
		SubMarkers: []model.SubMarker{},
	}}
}

func newTestModel(t *testing.T) Model {
	t.Helper()
	m := NewModel(Options{Config: config.DefaultConfig(), ExportDir: t.TempDir()})
	m.SetCatalog(fixtureCatalog())
	t.Cleanup(m.Close)
	return m
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// press sends keys one at a time and returns the resulting model.
func press(m Model, keys ...string) Model {
	for _, k := range keys {
		next, _ := m.Update(keyMsg(k))
		m = next.(Model)
	}
	return m
}

// typeText sends every rune of s as its own key press.
func typeText(m Model, s string) Model {
	for _, r := range s {
		m = press(m, string(r))
	}
	return m
}

func appliedIDs(m Model) []int {
	var ids []int
	for _, p := range m.Result().Applied {
		ids = append(ids, p.ID)
	}
	return ids
}
