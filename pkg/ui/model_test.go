package ui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vanderheijden86/aidscope/internal/datasource"
	"github.com/vanderheijden86/aidscope/pkg/api"
	"github.com/vanderheijden86/aidscope/pkg/config"
	"github.com/vanderheijden86/aidscope/pkg/filter"
	"github.com/vanderheijden86/aidscope/pkg/hierarchy"
	"github.com/vanderheijden86/aidscope/pkg/loader"
	"github.com/vanderheijden86/aidscope/pkg/model"
	"github.com/vanderheijden86/aidscope/pkg/selection"
	"github.com/vanderheijden86/aidscope/pkg/testutil"
	"github.com/vanderheijden86/aidscope/pkg/watcher"
)

func TestParseTab(t *testing.T) {
	tests := []struct {
		in   string
		want Tab
	}{
		{"programs", TabPrograms},
		{" Sankey ", TabSankey},
		{"SUMMARY", TabSummary},
		{"regions", TabRegions},
		{"", TabPrograms},
		{"bogus", TabPrograms},
	}
	for _, tt := range tests {
		if got := ParseTab(tt.in); got != tt.want {
			t.Errorf("ParseTab(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSelectPartnerNarrowsOtherDimensions(t *testing.T) {
	m := newTestModel(t)
	m = press(m, "tab")
	if m.ActiveDimension() != model.DimPartners {
		t.Fatalf("active = %s", m.ActiveDimension())
	}
	// First space expands the collapsed selector, the second toggles.
	m = press(m, " ", "j", " ")

	if got := m.Store().Selection(model.DimPartners).Keys(); !cmp.Equal(got, []model.Key{"partner-20"}) {
		t.Fatalf("partners = %v", got)
	}
	if diff := cmp.Diff([]int{2}, appliedIDs(m)); diff != "" {
		t.Errorf("applied (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]model.Key{"sector-2"}, filter.Keys(m.Result().Options[model.DimSectors])); diff != "" {
		t.Errorf("sector options (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]model.Key{"program-2"}, filter.Keys(m.Result().Options[model.DimPrograms])); diff != "" {
		t.Errorf("program options (-want +got):\n%s", diff)
	}
	// The partners dimension never filters itself.
	if n := len(m.Result().Options[model.DimPartners]); n != 2 {
		t.Errorf("partner options = %d, want 2", n)
	}
	if !strings.Contains(m.View(), "[x]") {
		t.Error("view should show a checked box")
	}
}

func TestSyncToggleCascadesAndRestores(t *testing.T) {
	m := newTestModel(t)
	m = press(m, " ")

	sel := m.Store().Selection(model.DimPrograms)
	if diff := cmp.Diff([]model.Key{"component-7", "program-1"}, sel.Keys()); diff != "" {
		t.Fatalf("programs (-want +got):\n%s", diff)
	}
	s := m.Selector(model.DimPrograms)
	if st := s.Tree.State(sel, "component-7"); st != hierarchy.Checked {
		t.Errorf("component state = %v", st)
	}
	if diff := cmp.Diff([]int{1}, appliedIDs(m)); diff != "" {
		t.Errorf("applied (-want +got):\n%s", diff)
	}

	m = press(m, " ")
	if !m.Store().Selection(model.DimPrograms).IsEmpty() {
		t.Errorf("toggle off should restore the empty selection, got %v", m.Store().Selection(model.DimPrograms))
	}
	if diff := cmp.Diff([]int{1, 2}, appliedIDs(m)); diff != "" {
		t.Errorf("applied (-want +got):\n%s", diff)
	}
}

func TestSearchFiltersRowsOnly(t *testing.T) {
	m := newTestModel(t)
	m = press(m, "/")
	m = typeText(m, "clin")

	s := m.Selector(model.DimPrograms)
	rows := s.Rows()
	if len(rows) != 1 || rows[0].Key != "program-2" {
		t.Fatalf("rows = %+v", rows)
	}
	if !m.Store().Snapshot().IsEmpty() {
		t.Error("search must not change the selection")
	}

	m = press(m, "esc")
	if s.Search() != "" || len(s.Rows()) != 3 {
		t.Errorf("after esc: search %q, %d rows", s.Search(), len(s.Rows()))
	}
}

func TestClearAll(t *testing.T) {
	m := newTestModel(t)
	m = press(m, " ", "tab", " ", "j", " ")
	if m.Store().Snapshot().IsEmpty() {
		t.Fatal("expected a selection")
	}
	m = press(m, "c")
	if !m.Store().Snapshot().IsEmpty() {
		t.Errorf("selection after clear = %+v", m.Store().Snapshot())
	}
	if diff := cmp.Diff([]int{1, 2}, appliedIDs(m)); diff != "" {
		t.Errorf("applied (-want +got):\n%s", diff)
	}
}

func TestStaleCatalogIsDropped(t *testing.T) {
	m := NewModel(Options{Config: config.DefaultConfig()})
	defer m.Close()

	older := m.catalogs.Begin(context.Background())
	newer := m.catalogs.Begin(context.Background())
	if older.Ctx.Err() == nil {
		t.Error("older request should be cancelled")
	}

	next, _ := m.Update(CatalogLoadedMsg{Ticket: newer, Catalog: fixtureCatalog()})
	m = next.(Model)
	next, _ = m.Update(CatalogLoadedMsg{Ticket: older, Catalog: &loader.Catalog{}})
	m = next.(Model)

	if diff := cmp.Diff([]int{1, 2}, appliedIDs(m)); diff != "" {
		t.Errorf("late stale result replaced the catalog (-want +got):\n%s", diff)
	}
}

func TestCatalogLoadError(t *testing.T) {
	m := NewModel(Options{Config: config.DefaultConfig()})
	defer m.Close()
	ticket := m.catalogs.Begin(context.Background())
	next, _ := m.Update(CatalogLoadedMsg{Ticket: ticket, Err: errors.New("boom")})
	m = next.(Model)
	if !strings.Contains(m.Status(), "boom") {
		t.Errorf("status = %q", m.Status())
	}
	if st := m.catalogs.State(); st.Err == nil || st.Value != nil {
		t.Errorf("tracker state = %+v", st)
	}
}

func TestConfigReloadResetsSelection(t *testing.T) {
	m := newTestModel(t)
	m.Store().SetSelection(model.DimSectors, selection.NewSet[model.Key]("sector-1"))
	inFlight := m.catalogs.Begin(context.Background())

	cfg := config.DefaultConfig()
	cfg.Context = model.Context{Region: "P2"}
	next, _ := m.Update(ConfigReloadMsg{Reload: watcher.Reload{Config: cfg, ContextChanged: true}})
	m = next.(Model)

	if m.Store().Context().Region != "P2" {
		t.Errorf("context = %+v", m.Store().Context())
	}
	if !m.Store().Snapshot().IsEmpty() {
		t.Error("a new context must clear every selection")
	}
	if m.cat != nil || len(m.Result().Applied) != 0 {
		t.Errorf("old catalog still shown: %d programs", len(m.Result().Applied))
	}
	for _, dim := range model.Dimensions {
		if n := m.Selector(dim).Len(); n != 0 {
			t.Errorf("%s still offers %d options from the old context", dim, n)
		}
	}

	// A load started for the old context is dropped when it lands.
	next, _ = m.Update(CatalogLoadedMsg{Ticket: inFlight, Catalog: fixtureCatalog()})
	m = next.(Model)
	if m.cat != nil {
		t.Error("stale catalog load was applied")
	}

	next, _ = m.Update(ConfigReloadMsg{Reload: watcher.Reload{Err: errors.New("bad yaml")}})
	m = next.(Model)
	if !strings.Contains(m.Status(), "bad yaml") {
		t.Errorf("status = %q", m.Status())
	}
}

func TestPickerTogglesAnyDimension(t *testing.T) {
	m := newTestModel(t)
	m = press(m, "p")
	m = typeText(m, "Health")
	m = press(m, "enter")

	if m.ActiveDimension() != model.DimSectors {
		t.Errorf("active = %s, want sectors", m.ActiveDimension())
	}
	if !m.Store().Selection(model.DimSectors).Has("sector-2") {
		t.Errorf("sectors = %v", m.Store().Selection(model.DimSectors))
	}
	if diff := cmp.Diff([]int{2}, appliedIDs(m)); diff != "" {
		t.Errorf("applied (-want +got):\n%s", diff)
	}
}

func TestExportCSV(t *testing.T) {
	m := newTestModel(t)
	m = press(m, "e")

	files, err := filepath.Glob(filepath.Join(m.exportDir, "*.csv"))
	if err != nil || len(files) != 1 {
		t.Fatalf("exports = %v (%v)", files, err)
	}
	data, err := os.ReadFile(files[0])
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "Code,Name,Budget") {
		t.Errorf("csv = %q", data)
	}
	if !strings.Contains(m.Status(), "exported") {
		t.Errorf("status = %q", m.Status())
	}
}

func TestSortAndTableFilter(t *testing.T) {
	m := newTestModel(t)
	m = press(m, "s", "s", "s", "S")
	tbl := m.programTable()
	if tbl.Columns[m.sortCol].Title != "Budget" || tbl.Rows[0][0] != "P2" {
		t.Errorf("sorted by %q, first row %v", tbl.Columns[m.sortCol].Title, tbl.Rows[0])
	}

	m = press(m, "t", "/")
	m = typeText(m, "wells")
	m = press(m, "enter")
	tbl = m.programTable()
	if len(tbl.Rows) != 1 || tbl.Rows[0][0] != "P1" {
		t.Errorf("filtered rows = %v", tbl.Rows)
	}
	m = press(m, "esc")
	if m.focus != focusSelectors {
		t.Errorf("focus = %v", m.focus)
	}
}

func TestTabsRender(t *testing.T) {
	m := newTestModel(t)

	m = press(m, "3")
	if m.Tab() != TabSankey {
		t.Fatalf("tab = %v", m.Tab())
	}
	if v := m.View(); !strings.Contains(v, "Sectors") || !strings.Contains(v, "Health") {
		t.Errorf("sankey view missing flows:\n%s", v)
	}

	m = press(m, "2")
	if v := m.View(); !strings.Contains(v, "Budget by region") || !strings.Contains(v, "South") {
		t.Errorf("regions view:\n%s", v)
	}

	m = press(m, "4")
	if md := m.SummaryMarkdown(); !strings.Contains(md, "## Filter") {
		t.Errorf("summary markdown:\n%s", md)
	}

	m = press(m, "[", "[", "[")
	if m.Tab() != TabPrograms {
		t.Errorf("tab after cycling back = %v", m.Tab())
	}
}

func TestHelpOverlay(t *testing.T) {
	m := newTestModel(t)
	m = press(m, "?")
	if !strings.Contains(m.View(), "jump to any option") {
		t.Error("help overlay not shown")
	}
	m = press(m, "x")
	if m.focus != focusSelectors {
		t.Error("any key should close help")
	}
}

func TestLoadCatalogCmdFromFixtures(t *testing.T) {
	const base = "http://fixtures/api"
	dir := t.TempDir()
	g := testutil.NewDefault()
	if err := testutil.WriteFixtures(dir, base, 10, g.Catalog(), g.Indicators("poverty")); err != nil {
		t.Fatal(err)
	}
	client := api.NewClient(base, datasource.NewDirSource(dir))

	cfg := config.DefaultConfig()
	cfg.Map.Indicator = "poverty"
	m := NewModel(Options{Config: cfg, Client: client})
	defer m.Close()

	for _, cmd := range m.loadCmds() {
		next, _ := m.Update(cmd())
		m = next.(Model)
	}
	want := testutil.ProgramIDs(g.Catalog().Programs)
	if diff := cmp.Diff(want, appliedIDs(m)); diff != "" {
		t.Errorf("applied (-want +got):\n%s", diff)
	}
	if len(m.values) == 0 {
		t.Error("indicator values not installed")
	}
	m = press(m, "2")
	if v := m.View(); !strings.Contains(v, "poverty") {
		t.Errorf("regions view should show the legend:\n%s", v)
	}
}
