package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vanderheijden86/aidscope/pkg/config"
	"github.com/vanderheijden86/aidscope/pkg/mapstyle"
)

type initOptions struct {
	defaults bool
	force    bool
}

func addInit(topLevel *cobra.Command, g *globalOptions) {
	o := &initOptions{}
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file",
		Long:  "Write a config file, asking for the API URL, region and display preferences.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, g, o)
		},
	}
	cmd.Flags().BoolVar(&o.defaults, "defaults", false, "Write the defaults without asking")
	cmd.Flags().BoolVar(&o.force, "force", false, "Overwrite an existing config file")
	topLevel.AddCommand(cmd)
}

func runInit(cmd *cobra.Command, g *globalOptions, o *initOptions) error {
	path := g.path()
	if path == "" {
		return errors.New("no config path; pass --config")
	}
	if _, err := os.Stat(path); err == nil && !o.force {
		return fmt.Errorf("%s exists; pass --force to overwrite", path)
	}

	cfg := config.DefaultConfig()
	if g.baseURL != "" {
		cfg.API.BaseURL = g.baseURL
	}
	cfg.Context.Region = g.region
	cfg.Context.Level = g.level

	if !o.defaults {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return errors.New("not a terminal; pass --defaults")
		}
		if err := askConfig(&cfg); err != nil {
			return err
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.SaveTo(cfg, path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s wrote %s\n", color.GreenString("✓"), path)
	return nil
}

func askConfig(cfg *config.Config) error {
	var palettes []huh.Option[string]
	for _, name := range mapstyle.PaletteNames() {
		palettes = append(palettes, huh.NewOption(name, name))
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("API base URL").
				Value(&cfg.API.BaseURL).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Region code").
				Description("Leave empty for the whole country").
				Value(&cfg.Context.Region),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Sync parent and child checkboxes?").
				Value(&cfg.UI.SyncMode),
			huh.NewSelect[string]().
				Title("Start on tab").
				Options(
					huh.NewOption("Programs", "programs"),
					huh.NewOption("Regions", "regions"),
					huh.NewOption("Flows", "sankey"),
					huh.NewOption("Summary", "summary"),
				).
				Value(&cfg.UI.DefaultTab),
			huh.NewSelect[string]().
				Title("Map palette").
				Options(palettes...).
				Value(&cfg.Map.Palette),
		),
	).Run()
}
