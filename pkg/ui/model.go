// Package ui is the aidscope terminal dashboard: four hierarchical selectors
// on the left and program, region, flow and summary views of the filtered
// result on the right.
package ui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/vanderheijden86/aidscope/pkg/api"
	"github.com/vanderheijden86/aidscope/pkg/config"
	"github.com/vanderheijden86/aidscope/pkg/debug"
	"github.com/vanderheijden86/aidscope/pkg/export"
	"github.com/vanderheijden86/aidscope/pkg/fetch"
	"github.com/vanderheijden86/aidscope/pkg/filter"
	"github.com/vanderheijden86/aidscope/pkg/hierarchy"
	"github.com/vanderheijden86/aidscope/pkg/loader"
	"github.com/vanderheijden86/aidscope/pkg/metrics"
	"github.com/vanderheijden86/aidscope/pkg/model"
	"github.com/vanderheijden86/aidscope/pkg/selection"
	"github.com/vanderheijden86/aidscope/pkg/table"
	"github.com/vanderheijden86/aidscope/pkg/watcher"
)

// Tab is one right-hand view.
type Tab int

const (
	TabPrograms Tab = iota
	TabRegions
	TabSankey
	TabSummary
)

var tabNames = []string{"programs", "regions", "sankey", "summary"}

func (t Tab) String() string {
	if t < 0 || int(t) >= len(tabNames) {
		return "unknown"
	}
	return tabNames[t]
}

// ParseTab maps a config name to a tab; unknown names give TabPrograms.
func ParseTab(s string) Tab {
	for i, n := range tabNames {
		if strings.EqualFold(strings.TrimSpace(s), n) {
			return Tab(i)
		}
	}
	return TabPrograms
}

type focus int

const (
	focusSelectors focus = iota
	focusSearch
	focusTable
	focusTableFilter
	focusPicker
	focusHelp
)

const statusTTL = 4 * time.Second

// Options wires a Model to its collaborators. Client may be nil when the
// catalog is supplied with SetCatalog.
type Options struct {
	Config config.Config
	Client *api.Client
	// Store defaults to a fresh store scoped to Config.Context.
	Store   *selection.Store
	Watcher *watcher.ConfigWatcher
	// ExportDir receives CSV exports; defaults to the current directory.
	ExportDir string
	Theme     *Theme
}

// Model is the dashboard state.
type Model struct {
	cfg       config.Config
	client    *api.Client
	store     *selection.Store
	watcher   *watcher.ConfigWatcher
	exportDir string
	theme     Theme
	log       *zap.Logger

	catalogs   *fetch.Tracker[*loader.Catalog]
	indicators *fetch.Tracker[[]model.RegionIndicator]
	cat        *loader.Catalog
	loadedAt   time.Time
	values     []model.RegionIndicator
	result     filter.Result

	expanded  *hierarchy.ExpandedFilters
	selectors []*SelectorItem
	active    int

	search textinput.Model
	picker OptionPickerModel
	focus  focus

	tab         Tab
	sortCol     int
	sortDesc    bool
	tableFilter string
	tableCursor int

	summary    viewport.Model
	summaryMD  string
	summaryFor int

	width, height int
	status        string
	statusErr     bool
	statusSeq     int
}

// NewModel builds a dashboard. Nothing is fetched until Init runs.
func NewModel(opts Options) Model {
	cfg := opts.Config
	store := opts.Store
	if store == nil {
		store = selection.NewStore(cfg.Context)
	}
	theme := TestTheme()
	if opts.Theme != nil {
		theme = *opts.Theme
	}
	exportDir := opts.ExportDir
	if exportDir == "" {
		exportDir = "."
	}

	expanded := &hierarchy.ExpandedFilters{}
	treeOpts := hierarchy.TreeOptions{
		Sync:                 cfg.UI.SyncMode,
		DefaultCollapseLevel: cfg.UI.DefaultCollapseLevel,
	}
	selectors := make([]*SelectorItem, len(model.Dimensions))
	for i, dim := range model.Dimensions {
		selectors[i] = NewSelectorItem(dim, treeOpts, expanded, cfg.UI.FuzzySearch)
	}
	expanded.Set(string(model.Dimensions[0]), true)

	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "search"
	ti.CharLimit = 80

	m := Model{
		cfg:        cfg,
		client:     opts.Client,
		store:      store,
		watcher:    opts.Watcher,
		exportDir:  exportDir,
		theme:      theme,
		log:        debug.Named("ui"),
		catalogs:   fetch.NewTracker[*loader.Catalog](context.Background(), "catalog"),
		indicators: fetch.NewTracker[[]model.RegionIndicator](context.Background(), "indicators"),
		expanded:   expanded,
		selectors:  selectors,
		search:     ti,
		picker:     NewOptionPickerModel(nil, theme),
		tab:        ParseTab(cfg.UI.DefaultTab),
		sortCol:    -1,
		summary:    viewport.New(60, 20),
		summaryFor: -1,
		width:      100,
		height:     30,
	}
	m.result = filter.Compose(filter.Catalog{}, store.Snapshot())
	return m
}

// Init starts the first loads and the config watch.
func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.client != nil {
		cmds = append(cmds, m.loadCmds()...)
	}
	if m.watcher != nil {
		cmds = append(cmds, WatchConfigCmd(m.watcher))
	}
	return tea.Batch(cmds...)
}

func (m *Model) loadCmds() []tea.Cmd {
	if m.client == nil {
		return nil
	}
	scope := m.store.Context()
	cmds := []tea.Cmd{LoadCatalogCmd(m.catalogs, m.client, scope, loader.Options{Concurrency: m.cfg.Fetch.Concurrency})}
	if m.cfg.Map.Indicator != "" {
		cmds = append(cmds, LoadIndicatorsCmd(m.indicators, m.client, scope, m.cfg.Map.Indicator))
	}
	return cmds
}

// Close cancels in-flight loads and stops the config watcher.
func (m Model) Close() {
	m.catalogs.Close()
	m.indicators.Close()
	if m.watcher != nil {
		m.watcher.Stop()
	}
}

// SetCatalog installs a loaded catalog and recomposes every view.
func (m *Model) SetCatalog(cat *loader.Catalog) {
	m.cat = cat
	m.loadedAt = time.Now()
	m.recompose()
}

// SetIndicators installs region indicator values.
func (m *Model) SetIndicators(values []model.RegionIndicator) {
	m.values = values
}

// Result returns the last composition.
func (m Model) Result() filter.Result { return m.result }

// Store returns the shared selection store.
func (m Model) Store() *selection.Store { return m.store }

// ActiveDimension returns the focused selector's dimension.
func (m Model) ActiveDimension() model.Dimension { return m.selectors[m.active].Dim }

// Selector returns the selector for dim.
func (m Model) Selector(dim model.Dimension) *SelectorItem {
	for _, s := range m.selectors {
		if s.Dim == dim {
			return s
		}
	}
	return nil
}

// Tab returns the active right-hand view.
func (m Model) Tab() Tab { return m.tab }

// Status returns the status line text.
func (m Model) Status() string { return m.status }

func (m *Model) catalog() filter.Catalog {
	if m.cat == nil {
		return filter.Catalog{}
	}
	return m.cat.Catalog
}

// recompose reruns the filter composer against the store and pushes the new
// option lists into the selectors.
func (m *Model) recompose() {
	m.result = filter.Compose(m.catalog(), m.store.Snapshot())
	for _, s := range m.selectors {
		s.SetOptions(m.result.Options[s.Dim])
	}
	m.picker.SetEntries(m.pickerEntries())
	m.tableCursor = 0
	m.summaryFor = -1
	if m.tab == TabSummary {
		m.refreshSummary()
	}
}

func (m *Model) pickerEntries() []PickerEntry {
	var out []PickerEntry
	for _, dim := range model.Dimensions {
		for _, o := range m.result.Options[dim] {
			out = append(out, PickerEntry{Dim: dim, Option: o})
		}
	}
	return out
}

func (m *Model) setStatus(msg string, isErr bool) tea.Cmd {
	m.status = msg
	m.statusErr = isErr
	m.statusSeq++
	seq := m.statusSeq
	return tea.Tick(statusTTL, func(time.Time) tea.Msg { return statusClearMsg{seq: seq} })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.summary.Width = m.rightWidth()
		m.summary.Height = m.bodyHeight() - 1
		m.summaryFor = -1
		if m.tab == TabSummary {
			m.refreshSummary()
		}
		return m, nil

	case statusClearMsg:
		if msg.seq == m.statusSeq {
			m.status = ""
			m.statusErr = false
		}
		return m, nil

	case CatalogLoadedMsg:
		if !m.catalogs.Complete(msg.Ticket, msg.Catalog, msg.Err) {
			return m, nil
		}
		if msg.Err != nil {
			return m, m.setStatus("loading failed: "+msg.Err.Error(), true)
		}
		m.SetCatalog(msg.Catalog)
		if failed := msg.Catalog.Failed(); len(failed) > 0 {
			names := make([]string, len(failed))
			for i, f := range failed {
				names[i] = f.Endpoint
			}
			return m, m.setStatus("unavailable: "+strings.Join(names, ", "), true)
		}
		return m, m.setStatus(msg.Catalog.Summary(), false)

	case IndicatorsLoadedMsg:
		if !m.indicators.Complete(msg.Ticket, msg.Values, msg.Err) {
			return m, nil
		}
		if msg.Err != nil {
			m.values = nil
			return m, m.setStatus(msg.Err.Error(), true)
		}
		m.values = msg.Values
		return m, nil

	case ConfigReloadMsg:
		return m.applyReload(msg.Reload)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// applyReload adopts a changed config. A new region/date context clears the
// selections, drops the loaded lists and refetches them.
func (m Model) applyReload(r watcher.Reload) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	if m.watcher != nil {
		cmds = append(cmds, WatchConfigCmd(m.watcher))
	}
	if r.Err != nil {
		m.log.Warn("config reload failed", zap.Error(r.Err))
		cmds = append(cmds, m.setStatus("config: "+r.Err.Error(), true))
		return m, tea.Batch(cmds...)
	}
	m.cfg.Map = r.Config.Map
	if r.ContextChanged && m.store.SetContext(r.Config.Context) {
		m.cfg.Context = r.Config.Context
		m.catalogs.Invalidate()
		m.indicators.Invalidate()
		m.cat = nil
		m.values = nil
		m.recompose()
		cmds = append(cmds, m.loadCmds()...)
		cmds = append(cmds, m.setStatus("context "+r.Config.Context.String()+", reloading", false))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	defer metrics.Timer(metrics.UIRender)()

	switch m.focus {
	case focusHelp:
		m.focus = focusSelectors
		return m, nil
	case focusSearch:
		return m.handleSearchKey(msg)
	case focusTableFilter:
		return m.handleTableFilterKey(msg)
	case focusPicker:
		return m.handlePickerKey(msg)
	case focusTable:
		if cmd, ok := m.handleTableKey(msg); ok {
			return m, cmd
		}
	}

	s := m.selectors[m.active]
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "tab":
		m.active = (m.active + 1) % len(m.selectors)
	case "shift+tab":
		m.active = (m.active + len(m.selectors) - 1) % len(m.selectors)
	case "j", "down":
		s.Move(1)
	case "k", "up":
		s.Move(-1)
	case " ", "space":
		if !s.Expanded() {
			s.ToggleExpanded()
			break
		}
		m.toggle(s)
	case "enter":
		if !s.Expanded() {
			s.ToggleExpanded()
			break
		}
		s.CollapseCurrent()
	case "x":
		s.ToggleExpanded()
	case "/":
		if !s.Expanded() {
			s.ToggleExpanded()
		}
		m.focus = focusSearch
		m.search.SetValue(s.Search())
		m.search.CursorEnd()
		return m, m.search.Focus()
	case "c":
		m.store.ClearAll()
		m.recompose()
		return m, m.setStatus("selection cleared", false)
	case "p":
		m.picker.Reset()
		m.picker.SetSize(m.width, m.height-1)
		m.focus = focusPicker
	case "t":
		m.tab = TabPrograms
		m.focus = focusTable
	case "s":
		m.cycleSort()
	case "S":
		m.sortDesc = !m.sortDesc
	case "1", "2", "3", "4":
		m.setTab(Tab(msg.String()[0] - '1'))
	case "]":
		m.setTab((m.tab + 1) % Tab(len(tabNames)))
	case "[":
		m.setTab((m.tab + Tab(len(tabNames)) - 1) % Tab(len(tabNames)))
	case "e":
		return m, m.exportCSV()
	case "y":
		return m, m.copyCSV()
	case "r":
		if m.client == nil {
			return m, m.setStatus("no data source to refetch from", true)
		}
		cmds := m.loadCmds()
		cmds = append(cmds, m.setStatus("reloading...", false))
		return m, tea.Batch(cmds...)
	case "ctrl+d", "pgdown":
		m.summary.LineDown(m.summary.Height / 2)
	case "ctrl+u", "pgup":
		m.summary.LineUp(m.summary.Height / 2)
	case "?":
		m.focus = focusHelp
	}
	return m, nil
}

// toggle flips the highlighted option of s and recomposes.
func (m *Model) toggle(s *SelectorItem) {
	sel := m.store.Selection(s.Dim)
	m.store.SetSelection(s.Dim, s.ToggleCurrent(sel))
	m.recompose()
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.selectors[m.active]
	switch msg.String() {
	case "esc":
		m.search.SetValue("")
		s.SetSearch("")
		m.search.Blur()
		m.focus = focusSelectors
		return m, nil
	case "enter", "down", "up":
		m.search.Blur()
		m.focus = focusSelectors
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	s.SetSearch(m.search.Value())
	return m, cmd
}

func (m Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.focus = focusSelectors
		return m, nil
	case "up", "ctrl+p", "ctrl+k":
		m.picker.MoveUp()
		return m, nil
	case "down", "ctrl+n", "ctrl+j":
		m.picker.MoveDown()
		return m, nil
	case "enter":
		e, ok := m.picker.Selected()
		m.focus = focusSelectors
		if !ok {
			return m, nil
		}
		s := m.Selector(e.Dim)
		sel := m.store.Selection(e.Dim)
		m.store.SetSelection(e.Dim, s.Tree.ToggleChecked(sel, e.Option.Key, !sel.Has(e.Option.Key)))
		m.recompose()
		for i, other := range m.selectors {
			if other == s {
				m.active = i
			}
		}
		m.expanded.Set(string(e.Dim), true)
		return m, nil
	}
	m.picker.UpdateInput(msg)
	return m, nil
}

func (m *Model) handleTableKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "esc", "t":
		m.focus = focusSelectors
	case "j", "down":
		m.tableCursor++
	case "k", "up":
		m.tableCursor = max(0, m.tableCursor-1)
	case "g", "home":
		m.tableCursor = 0
	case "/":
		m.focus = focusTableFilter
		m.search.SetValue(m.tableFilter)
		m.search.CursorEnd()
		return m.search.Focus(), true
	default:
		return nil, false
	}
	return nil, true
}

func (m Model) handleTableFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.tableFilter = ""
		m.search.SetValue("")
		m.search.Blur()
		m.focus = focusTable
		return m, nil
	case "enter":
		m.search.Blur()
		m.focus = focusTable
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.tableFilter = m.search.Value()
	m.tableCursor = 0
	return m, cmd
}

func (m *Model) setTab(t Tab) {
	if t < 0 || int(t) >= len(tabNames) {
		return
	}
	m.tab = t
	if t != TabPrograms && m.focus == focusTable {
		m.focus = focusSelectors
	}
	if t == TabSummary {
		m.refreshSummary()
	}
}

// cycleSort moves the sort to the next column of the programs table; after
// the last column the table returns to catalog order.
func (m *Model) cycleSort() {
	n := len(m.programTable().Columns)
	m.sortCol++
	if m.sortCol >= n {
		m.sortCol = -1
	}
}

// programTable is the applied programs as currently sorted and filtered.
func (m *Model) programTable() table.Table {
	cat := m.catalog()
	t := table.Programs(m.result.Applied, cat.Partners, cat.Sectors)
	if m.tableFilter != "" {
		t = t.Filter(m.tableFilter)
	}
	if m.sortCol >= 0 && m.sortCol < len(t.Columns) {
		t = t.SortBy(m.sortCol, m.sortDesc)
	}
	return t
}

// currentTable is the table behind the active tab, for export and copy.
func (m *Model) currentTable() table.Table {
	switch m.tab {
	case TabRegions:
		return table.Regions(m.result.Applied, m.values)
	default:
		return m.programTable()
	}
}

func (m *Model) exportCSV() tea.Cmd {
	name := fmt.Sprintf("aidscope-%s-%s.csv", m.tab, time.Now().Format("20060102-150405"))
	path := filepath.Join(m.exportDir, name)
	if err := export.SaveCSV(path, m.currentTable()); err != nil {
		return m.setStatus("export failed: "+err.Error(), true)
	}
	return m.setStatus("exported "+path, false)
}

func (m *Model) copyCSV() tea.Cmd {
	s, err := m.currentTable().CSV()
	if err == nil {
		err = clipboard.WriteAll(s)
	}
	if err != nil {
		return m.setStatus("copy failed: "+err.Error(), true)
	}
	return m.setStatus(fmt.Sprintf("copied %d rows", len(m.currentTable().Rows)), false)
}

func (m Model) leftWidth() int {
	return max(24, min(44, m.width/3))
}

func (m Model) rightWidth() int {
	return max(20, m.width-m.leftWidth()-4)
}

func (m Model) bodyHeight() int {
	// header, tab bar and status line
	return max(5, m.height-3)
}

// View renders the dashboard.
func (m Model) View() string {
	defer metrics.Timer(metrics.UIRender)()

	switch m.focus {
	case focusPicker:
		return m.picker.View()
	case focusHelp:
		return m.renderHelp()
	}

	header := m.theme.Header.Render("aidscope") + " " +
		m.theme.SecondaryText.Render(m.store.Context().String())
	if st := m.catalogs.State(); st.Pending {
		header += " " + m.theme.Renderer.NewStyle().Foreground(m.theme.Loading).Render("loading…")
	} else if m.cat != nil {
		header += " " + m.theme.MutedText.Render("loaded "+loadedAgo(m.loadedAt, time.Now()))
	}

	left := m.renderSelectors(m.leftWidth(), m.bodyHeight())
	right := m.renderTabs() + "\n" + m.renderPane(m.rightWidth(), m.bodyHeight()-1)

	leftStyle, rightStyle := FocusedPanelStyle, PanelStyle
	if m.focus == focusTable || m.focus == focusTableFilter {
		leftStyle, rightStyle = PanelStyle, FocusedPanelStyle
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		leftStyle.Width(m.leftWidth()).Height(m.bodyHeight()).Render(left),
		rightStyle.Width(m.rightWidth()).Height(m.bodyHeight()).Render(right),
	)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, m.renderStatus())
}

func (m Model) renderSelectors(width, height int) string {
	var parts []string
	if m.focus == focusSearch {
		parts = append(parts, m.search.View())
		height--
	}
	// Expanded selectors share the rows left over after every header.
	open := 0
	for _, s := range m.selectors {
		if s.Expanded() {
			open++
		}
	}
	per := height - len(m.selectors)
	if open > 0 {
		per = max(3, per/open+1)
	}
	for i, s := range m.selectors {
		sel := m.store.Selection(s.Dim)
		parts = append(parts, s.View(sel, width, per, i == m.active && m.focus != focusTable, m.theme))
	}
	return clipLines(strings.Join(parts, "\n"), m.bodyHeight())
}

func (m Model) renderTabs() string {
	tabs := make([]string, len(tabNames))
	for i, n := range tabNames {
		label := fmt.Sprintf("%d %s", i+1, strings.ToUpper(n[:1])+n[1:])
		if Tab(i) == m.tab {
			tabs[i] = m.theme.TabOn.Render(label)
		} else {
			tabs[i] = m.theme.Tab.Render(label)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) renderStatus() string {
	keys := "tab dim · j/k move · space toggle · / search · p jump · c clear · e export · ? help · q quit"
	if m.status == "" {
		return m.theme.MutedText.Render(truncate(keys, m.width))
	}
	if m.statusErr {
		return m.theme.ErrorText.Render(truncate(m.status, m.width))
	}
	return m.theme.SecondaryText.Render(truncate(m.status, m.width))
}

func (m Model) renderHelp() string {
	lines := []string{
		m.theme.PrimaryBold.Render("Keys"),
		"",
		"tab / shift+tab   next / previous dimension",
		"j / k             move in the tree",
		"space             check or uncheck option",
		"enter             collapse or expand node",
		"x                 show or hide dimension",
		"/                 search in dimension (table: filter rows)",
		"p                 jump to any option",
		"c                 clear every selection",
		"1-4, [ ]          switch view",
		"ctrl+d / ctrl+u   scroll summary",
		"t                 focus programs table",
		"s / S             sort column / reverse",
		"e / y             export CSV / copy CSV",
		"r                 refetch",
		"q                 quit",
		"",
		m.theme.MutedText.Render("press any key to close"),
	}
	box := m.theme.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.Primary).
		Padding(1, 2).
		Render(strings.Join(lines, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
