package main

import (
	"errors"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vanderheijden86/aidscope/pkg/config"
	"github.com/vanderheijden86/aidscope/pkg/debug"
	"github.com/vanderheijden86/aidscope/pkg/ui"
	"github.com/vanderheijden86/aidscope/pkg/watcher"
)

func addTUI(topLevel *cobra.Command, g *globalOptions) {
	topLevel.AddCommand(&cobra.Command{
		Use:   "tui",
		Short: "Start the terminal dashboard (the default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, g)
		},
	})
}

func runTUI(cmd *cobra.Command, g *globalOptions) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("the dashboard needs a terminal; try `aidscope programs` for plain output")
	}
	s, err := g.open()
	if err != nil {
		return err
	}
	defer s.Close()

	// A config file created while the dashboard runs is picked up too.
	var w *watcher.ConfigWatcher
	if path := g.path(); path != "" {
		if w, err = watcher.WatchConfig(path, s.cfg.Context, g.applyOverrides); err != nil {
			debug.Log("config watch disabled: %v", err)
			w = nil
		}
	}

	theme := ui.DefaultTheme(lipgloss.DefaultRenderer())
	m := ui.NewModel(ui.Options{
		Config:    s.cfg,
		Client:    s.client,
		Watcher:   w,
		ExportDir: config.DataDir(),
		Theme:     &theme,
	})
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	_, err = p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && cmd.Context().Err() != nil {
		return nil
	}
	return err
}
