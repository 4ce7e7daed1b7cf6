package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/aidscope/internal/datasource"
	"github.com/vanderheijden86/aidscope/pkg/api"
	"github.com/vanderheijden86/aidscope/pkg/config"
	"github.com/vanderheijden86/aidscope/pkg/debug"
	"github.com/vanderheijden86/aidscope/pkg/loader"
	"github.com/vanderheijden86/aidscope/pkg/metrics"
)

// globalOptions are the persistent flags every command shares.
type globalOptions struct {
	configPath string
	baseURL    string
	fixtures   string
	offline    bool
	noCache    bool
	region     string
	level      string
	from       string
	to         string
	timings    bool
}

func newRootCmd() *cobra.Command {
	g := &globalOptions{}
	cmd := &cobra.Command{
		Use:   "aidscope",
		Short: "Explore aid programs by partner, sector and policy marker.",
		Long: `aidscope loads programs, partners, sectors and policy markers from an
aid-tracking API and lets you narrow them down along all four dimensions at
once. Without a subcommand it starts the terminal dashboard.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, g)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if g.timings {
				printTimings(cmd.ErrOrStderr())
			}
		},
	}

	f := cmd.PersistentFlags()
	f.StringVar(&g.configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/aidscope/config.yaml)")
	f.StringVar(&g.baseURL, "base-url", "", "API base URL, overrides the config file")
	f.StringVar(&g.fixtures, "fixtures", "", "Serve API pages from a directory instead of the network")
	f.BoolVar(&g.offline, "offline", false, "Serve only from the page cache")
	f.BoolVar(&g.noCache, "no-cache", false, "Bypass the page cache")
	f.StringVar(&g.region, "region", "", "Region code to scope every list to")
	f.StringVar(&g.level, "level", "", "Administrative level of --region")
	f.StringVar(&g.from, "from", "", "Only programs active on or after this date (YYYY-MM-DD)")
	f.StringVar(&g.to, "to", "", "Only programs active on or before this date (YYYY-MM-DD)")
	f.BoolVar(&g.timings, "timings", false, "Print timing metrics to stderr on exit")

	addTUI(cmd, g)
	addInit(cmd, g)
	addPrograms(cmd, g)
	addOptions(cmd, g)
	addChart(cmd, g)
	addPaint(cmd, g)
	addExport(cmd, g)
	addFixtures(cmd)
	addVersion(cmd)
	return cmd
}

// path is the config file in effect.
func (g *globalOptions) path() string {
	if g.configPath != "" {
		return g.configPath
	}
	return config.ConfigPath()
}

// loadConfig reads the config file and applies flag overrides.
func (g *globalOptions) loadConfig() (config.Config, error) {
	cfg := config.DefaultConfig()
	if p := g.path(); p != "" {
		var err error
		if cfg, err = config.LoadFrom(p); err != nil {
			return cfg, err
		}
	}
	g.applyOverrides(&cfg)
	return cfg, cfg.Validate()
}

// applyOverrides lays the command-line flags over cfg. The dashboard reapplies
// them to every reloaded config file.
func (g *globalOptions) applyOverrides(cfg *config.Config) {
	if g.baseURL != "" {
		cfg.API.BaseURL = g.baseURL
	}
	if g.offline {
		cfg.Cache.Offline = true
	}
	if g.noCache {
		cfg.Cache.Enabled = false
	}
	overrides := []struct {
		flag string
		dst  *string
	}{
		{g.region, &cfg.Context.Region},
		{g.level, &cfg.Context.Level},
		{g.from, &cfg.Context.From},
		{g.to, &cfg.Context.To},
	}
	for _, o := range overrides {
		if o.flag != "" {
			*o.dst = o.flag
		}
	}
}

// session is an API client over the configured transport chain.
type session struct {
	cfg    config.Config
	client *api.Client
	closer io.Closer
}

func (g *globalOptions) open() (*session, error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return nil, err
	}
	opts := datasource.Options{
		FixturesDir: g.fixtures,
		Timeout:     cfg.API.Timeout,
		UserAgent:   cfg.API.UserAgent,
		Offline:     cfg.Cache.Offline,
		MaxAge:      cfg.Cache.MaxAge,
	}
	if cfg.Cache.Enabled {
		opts.CachePath = cfg.CachePath()
	}
	getter, closer, err := datasource.Open(opts)
	if err != nil {
		return nil, err
	}
	schemas, err := api.NewDefaultSchemaRegistry(cfg.Schemas)
	if err != nil {
		_ = closer.Close()
		return nil, err
	}

	client := api.NewClient(cfg.API.BaseURL, getter)
	client.PageSize = cfg.API.PageSize
	client.Schemas = schemas
	client.Logger = debug.Named("api")
	return &session{cfg: cfg, client: client, closer: closer}, nil
}

func (s *session) Close() error { return s.closer.Close() }

// catalog loads every option list, warning about lists that failed.
func (s *session) catalog(ctx context.Context, warn io.Writer) (*loader.Catalog, error) {
	cat, err := loader.LoadCatalog(ctx, s.client, s.cfg.Context, loader.Options{Concurrency: s.cfg.Fetch.Concurrency})
	if err != nil {
		return nil, err
	}
	for _, f := range cat.Failed() {
		fmt.Fprintf(warn, "%s %s unavailable: %v\n", color.YellowString("warning:"), f.Endpoint, f.Err)
	}
	if cat.Programs == nil {
		return cat, errors.New("program list unavailable")
	}
	return cat, nil
}

func printTimings(w io.Writer) {
	for _, st := range metrics.AllTimingStats() {
		if st.Count == 0 {
			continue
		}
		fmt.Fprintf(w, "%-16s n=%-5d avg=%.2fms max=%.2fms\n", st.Name, st.Count, st.AvgMs, st.MaxMs)
	}
	var counters []string
	for _, c := range metrics.AllCounters() {
		if v := c.Value(); v > 0 {
			counters = append(counters, fmt.Sprintf("%s=%d", c.Name(), v))
		}
	}
	if len(counters) > 0 {
		fmt.Fprintln(w, strings.Join(counters, " "))
	}
}

// writeTo opens path for writing; "" and "-" mean out.
func writeTo(path string, out io.Writer) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return out, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
