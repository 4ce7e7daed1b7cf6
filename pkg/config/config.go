// Package config handles loading and saving aidscope configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config: ~/.config/aidscope/config.yaml
//   - Data:   ~/.local/share/aidscope/ (exports)
//   - Cache:  ~/.cache/aidscope/pages.sqlite3 (API page cache)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/aidscope/pkg/model"
)

const appName = "aidscope"

// APIConfig points at the REST API.
type APIConfig struct {
	BaseURL   string        `yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout,omitempty"`
	PageSize  int           `yaml:"page_size,omitempty"`
	UserAgent string        `yaml:"user_agent,omitempty"`
}

// UIConfig holds terminal UI preferences.
type UIConfig struct {
	DefaultCollapseLevel int    `yaml:"default_collapse_level"`
	SyncMode             bool   `yaml:"sync_mode"`
	FuzzySearch          bool   `yaml:"fuzzy_search,omitempty"`
	DefaultTab           string `yaml:"default_tab,omitempty"` // programs, regions, sankey, summary
}

// CacheConfig controls the SQLite page cache.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path,omitempty"`
	Offline bool   `yaml:"offline,omitempty"` // serve only from cache
	// MaxAge is how long a cached page is served without asking the API.
	// Zero always refetches and keeps the cache as an offline fallback.
	MaxAge time.Duration `yaml:"max_age,omitempty"`
}

// FetchConfig tunes catalog loading.
type FetchConfig struct {
	Concurrency int `yaml:"concurrency,omitempty"`
}

// MapConfig holds choropleth defaults.
type MapConfig struct {
	Indicator string `yaml:"indicator,omitempty"`
	Classes   int    `yaml:"classes,omitempty"`
	Method    string `yaml:"method,omitempty"` // quantile, equal
	Palette   string `yaml:"palette,omitempty"`
}

// Config is the top-level configuration.
type Config struct {
	API     APIConfig           `yaml:"api"`
	Context model.Context       `yaml:"context,omitempty"`
	UI      UIConfig            `yaml:"ui,omitempty"`
	Cache   CacheConfig         `yaml:"cache,omitempty"`
	Fetch   FetchConfig         `yaml:"fetch,omitempty"`
	Map     MapConfig           `yaml:"map,omitempty"`
	Schemas map[string][]string `yaml:"schemas,omitempty"` // schema name -> expr rules
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL:   "http://localhost:8000/api/",
			Timeout:   30 * time.Second,
			PageSize:  100,
			UserAgent: appName,
		},
		UI: UIConfig{
			DefaultCollapseLevel: 1,
			SyncMode:             true,
			DefaultTab:           "programs",
		},
		Cache: CacheConfig{
			Enabled: true,
			MaxAge:  15 * time.Minute,
		},
		Fetch: FetchConfig{
			Concurrency: 4,
		},
		Map: MapConfig{
			Classes: 5,
			Method:  "quantile",
			Palette: "blues",
		},
	}
}

// ConfigDir returns the XDG config directory.
func ConfigDir() string {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// DataDir returns the XDG data directory.
func DataDir() string {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

// CacheDir returns the XDG cache directory.
func CacheDir() string {
	return xdgDir("XDG_CACHE_HOME", ".cache")
}

func xdgDir(env, fallback string) string {
	if dir := os.Getenv(env); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := homedir.Dir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, fallback, appName)
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// CachePath returns the configured cache path or the XDG default.
func (c Config) CachePath() string {
	if c.Cache.Path != "" {
		return c.Cache.Path
	}
	dir := CacheDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "pages.sqlite3")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path and applies environment
// overrides. Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return DefaultConfig(), fmt.Errorf("reading config: %w", err)
	}
	return Parse(data)
}

// Parse decodes config file content over the defaults, expands the cache
// path, applies environment overrides and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}
	if cfg.Cache.Path != "" {
		expanded, err := homedir.Expand(cfg.Cache.Path)
		if err != nil {
			return cfg, fmt.Errorf("cache.path: %w", err)
		}
		cfg.Cache.Path = expanded
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("AIDSCOPE_BASE_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("AIDSCOPE_OFFLINE"); v != "" {
		off, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("AIDSCOPE_OFFLINE: %w", err)
		}
		c.Cache.Offline = off
	}
	return nil
}

// Validate rejects settings that cannot work.
func (c Config) Validate() error {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return fmt.Errorf("api.base_url must be set")
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative")
	}
	if c.Cache.MaxAge < 0 {
		return fmt.Errorf("cache.max_age must not be negative")
	}
	if c.Fetch.Concurrency < 0 {
		return fmt.Errorf("fetch.concurrency must not be negative")
	}
	switch c.Map.Method {
	case "", "quantile", "equal":
	default:
		return fmt.Errorf("map.method %q: want quantile or equal", c.Map.Method)
	}
	switch c.UI.DefaultTab {
	case "", "programs", "regions", "sankey", "summary":
	default:
		return fmt.Errorf("ui.default_tab %q: want programs, regions, sankey or summary", c.UI.DefaultTab)
	}
	return nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}
