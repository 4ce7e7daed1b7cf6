package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vanderheijden86/aidscope/pkg/model"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.API.Timeout != 30*time.Second {
		t.Errorf("expected 30s timeout, got %v", cfg.API.Timeout)
	}
	if !cfg.UI.SyncMode {
		t.Error("expected sync mode on by default")
	}
	if cfg.Fetch.Concurrency != 4 {
		t.Errorf("expected concurrency 4, got %d", cfg.Fetch.Concurrency)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadFrom_NonExistent(t *testing.T) {
	t.Setenv("AIDSCOPE_BASE_URL", "")
	t.Setenv("AIDSCOPE_OFFLINE", "")
	cfg, err := LoadFrom("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if cfg.Map.Method != "quantile" {
		t.Errorf("expected default config, got method %q", cfg.Map.Method)
	}
}

func TestLoadFrom_ValidConfig(t *testing.T) {
	t.Setenv("AIDSCOPE_BASE_URL", "")
	t.Setenv("AIDSCOPE_OFFLINE", "")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
api:
  base_url: https://aid.example.org/api/
  timeout: 5s
context:
  region: P1
  level: province
  from: "2020-01-01"
ui:
  default_collapse_level: 0
  sync_mode: false
cache:
  enabled: true
  path: ~/aid/cache.sqlite3
schemas:
  programs:
    - "id > 0"
    - "len(code) > 0"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.API.BaseURL != "https://aid.example.org/api/" || cfg.API.Timeout != 5*time.Second {
		t.Errorf("api = %+v", cfg.API)
	}
	// Unset keys keep their defaults.
	if cfg.API.PageSize != 100 {
		t.Errorf("expected default page size, got %d", cfg.API.PageSize)
	}
	want := model.Context{Region: "P1", Level: "province", From: "2020-01-01"}
	if cfg.Context != want {
		t.Errorf("context = %+v, want %+v", cfg.Context, want)
	}
	if cfg.UI.SyncMode || cfg.UI.DefaultCollapseLevel != 0 {
		t.Errorf("ui = %+v", cfg.UI)
	}
	home, _ := os.UserHomeDir()
	if cfg.CachePath() != filepath.Join(home, "aid/cache.sqlite3") {
		t.Errorf("cache path = %q", cfg.CachePath())
	}
	if len(cfg.Schemas["programs"]) != 2 {
		t.Errorf("schemas = %v", cfg.Schemas)
	}
}

func TestLoadFrom_EnvOverrides(t *testing.T) {
	t.Setenv("AIDSCOPE_BASE_URL", "http://override/")
	t.Setenv("AIDSCOPE_OFFLINE", "true")
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.API.BaseURL != "http://override/" || !cfg.Cache.Offline {
		t.Errorf("env overrides not applied: %+v %+v", cfg.API, cfg.Cache)
	}

	t.Setenv("AIDSCOPE_OFFLINE", "maybe")
	if _, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for malformed AIDSCOPE_OFFLINE")
	}
}

func TestLoadFrom_Invalid(t *testing.T) {
	t.Setenv("AIDSCOPE_BASE_URL", "")
	t.Setenv("AIDSCOPE_OFFLINE", "")
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad yaml", "api: [unclosed", "parsing config"},
		{"bad method", "map:\n  method: jenks\n", "map.method"},
		{"bad tab", "ui:\n  default_tab: board\n", "ui.default_tab"},
		{"empty base url", "api:\n  base_url: \"\"\n", "api.base_url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := LoadFrom(path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	t.Setenv("AIDSCOPE_BASE_URL", "")
	t.Setenv("AIDSCOPE_OFFLINE", "")
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Context = model.Context{Region: "D4", To: "2024-12-31"}
	cfg.Map.Palette = "greens"
	if err := SaveTo(cfg, path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "timeout: 30s") {
		t.Errorf("timeout not written as a duration string:\n%s", data)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Context != cfg.Context || loaded.Map.Palette != "greens" {
		t.Errorf("round trip mismatch: %+v", loaded)
	}
}

func TestXDGDirs(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-config")
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")
	if got := ConfigPath(); got != "/tmp/xdg-config/aidscope/config.yaml" {
		t.Errorf("ConfigPath = %q", got)
	}
	if got := DefaultConfig().CachePath(); got != "/tmp/xdg-cache/aidscope/pages.sqlite3" {
		t.Errorf("CachePath = %q", got)
	}
}

func TestParse(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.API.BaseURL != DefaultConfig().API.BaseURL {
		t.Errorf("empty content should give defaults, got %q", cfg.API.BaseURL)
	}

	cfg, err = Parse([]byte("context:\n  region: KE\nui:\n  sync_mode: false\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Context.Region != "KE" || cfg.UI.SyncMode {
		t.Errorf("parsed %+v", cfg)
	}
	if cfg.Map.Classes != DefaultConfig().Map.Classes {
		t.Error("unset keys should keep their defaults")
	}

	if _, err := Parse([]byte("api:\n  base_url: \"\"\n")); err == nil {
		t.Error("empty base_url should fail validation")
	}

	cfg, err = Parse([]byte("cache:\n  enabled: true\n  max_age: 5m\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Cache.MaxAge != 5*time.Minute {
		t.Errorf("cache.max_age = %v, want 5m", cfg.Cache.MaxAge)
	}
	if DefaultConfig().Cache.MaxAge <= 0 {
		t.Error("default cache.max_age should be positive")
	}
	if _, err := Parse([]byte("cache:\n  max_age: -1m\n")); err == nil {
		t.Error("negative cache.max_age should fail validation")
	}
}
