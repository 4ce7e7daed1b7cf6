package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/aidscope/pkg/model"
)

func pickerEntries() []PickerEntry {
	return []PickerEntry{
		{Dim: model.DimPartners, Option: model.Option{Key: "partner-1", Label: "Oxfam"}},
		{Dim: model.DimSectors, Option: model.Option{Key: "sector-1", Label: "Water"}},
		{Dim: model.DimSectors, Option: model.Option{Key: "subsector-11", ParentKey: "sector-1", Label: "Wastewater"}},
		{Dim: model.DimMarkers, Option: model.Option{Key: "marker-3", Label: "Gender"}},
	}
}

func typeInto(p *OptionPickerModel, s string) {
	for _, r := range s {
		p.UpdateInput(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestOptionPickerEmptyQueryKeepsOrder(t *testing.T) {
	p := NewOptionPickerModel(pickerEntries(), TestTheme())
	if p.FilteredCount() != 4 {
		t.Fatalf("count = %d", p.FilteredCount())
	}
	e, ok := p.Selected()
	if !ok || e.Option.Key != "partner-1" {
		t.Errorf("selected = %+v", e)
	}
}

func TestOptionPickerRanksMatches(t *testing.T) {
	p := NewOptionPickerModel(pickerEntries(), TestTheme())
	typeInto(&p, "water")

	if p.InputValue() != "water" {
		t.Fatalf("input = %q", p.InputValue())
	}
	if p.FilteredCount() != 2 {
		t.Fatalf("count = %d", p.FilteredCount())
	}
	e, _ := p.Selected()
	if e.Option.Key != "sector-1" {
		t.Errorf("best match = %s, want sector-1", e.Option.Key)
	}

	p.MoveDown()
	p.MoveDown()
	if e, _ := p.Selected(); e.Option.Key != "subsector-11" {
		t.Errorf("after moving = %s", e.Option.Key)
	}
	p.MoveUp()
	p.MoveUp()
	if e, _ := p.Selected(); e.Option.Key != "sector-1" {
		t.Errorf("after moving back = %s", e.Option.Key)
	}
}

func TestOptionPickerNoMatch(t *testing.T) {
	p := NewOptionPickerModel(pickerEntries(), TestTheme())
	typeInto(&p, "zzz")
	if p.FilteredCount() != 0 {
		t.Errorf("count = %d", p.FilteredCount())
	}
	if _, ok := p.Selected(); ok {
		t.Error("nothing should be selected")
	}
	p.SetSize(80, 24)
	if v := p.View(); v == "" {
		t.Error("empty view")
	}
	p.Reset()
	if p.FilteredCount() != 4 {
		t.Errorf("after reset = %d", p.FilteredCount())
	}
}

func TestOptionPickerTruncatesLongLabels(t *testing.T) {
	long := "Integrated water resources management and climate adaptation"
	p := NewOptionPickerModel([]PickerEntry{
		{Dim: model.DimSectors, Option: model.Option{Key: "sector-7", Label: long}},
	}, TestTheme())
	p.SetSize(80, 30)

	v := p.View()
	if strings.Contains(v, long) {
		t.Errorf("label not truncated:\n%s", v)
	}
	if !strings.Contains(v, "Integrated water") || !strings.Contains(v, "…") {
		t.Errorf("want a cut label ending in …:\n%s", v)
	}
}
