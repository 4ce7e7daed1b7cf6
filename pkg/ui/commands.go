package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/aidscope/pkg/api"
	"github.com/vanderheijden86/aidscope/pkg/fetch"
	"github.com/vanderheijden86/aidscope/pkg/loader"
	"github.com/vanderheijden86/aidscope/pkg/model"
	"github.com/vanderheijden86/aidscope/pkg/watcher"
)

// CatalogLoadedMsg carries a finished catalog load. Ticket identifies the
// request so superseded loads can be dropped.
type CatalogLoadedMsg struct {
	Ticket  fetch.Ticket
	Catalog *loader.Catalog
	Err     error
}

// IndicatorsLoadedMsg carries finished region indicator values.
type IndicatorsLoadedMsg struct {
	Ticket fetch.Ticket
	Values []model.RegionIndicator
	Err    error
}

// ConfigReloadMsg is sent after the config file changed on disk.
type ConfigReloadMsg struct {
	Reload watcher.Reload
}

// statusClearMsg expires a status message; seq guards against clearing a
// newer one.
type statusClearMsg struct{ seq int }

// LoadCatalogCmd starts a catalog request on tracker and returns the command
// that performs it. The ticket is taken when the command is created, so a
// later call supersedes this one even if this one finishes last.
func LoadCatalogCmd(tracker *fetch.Tracker[*loader.Catalog], client *api.Client, scope model.Context, opts loader.Options) tea.Cmd {
	ticket := tracker.Begin(context.Background())
	return func() tea.Msg {
		cat, err := loader.LoadCatalog(ticket.Ctx, client, scope, opts)
		return CatalogLoadedMsg{Ticket: ticket, Catalog: cat, Err: err}
	}
}

// LoadIndicatorsCmd starts an indicator request on tracker.
func LoadIndicatorsCmd(tracker *fetch.Tracker[[]model.RegionIndicator], client *api.Client, scope model.Context, indicator string) tea.Cmd {
	ticket := tracker.Begin(context.Background())
	return func() tea.Msg {
		v, err := loader.LoadIndicators(ticket.Ctx, client, scope, indicator)
		return IndicatorsLoadedMsg{Ticket: ticket, Values: v, Err: err}
	}
}

// WatchConfigCmd waits for the next config reload.
func WatchConfigCmd(w *watcher.ConfigWatcher) tea.Cmd {
	return func() tea.Msg {
		r, ok := <-w.Updates()
		if !ok {
			return nil
		}
		return ConfigReloadMsg{Reload: r}
	}
}
