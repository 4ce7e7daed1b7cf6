package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vanderheijden86/aidscope/pkg/config"
	"github.com/vanderheijden86/aidscope/pkg/model"
)

func TestDebouncer_CoalescesRapidTriggers(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var callCount atomic.Int32
	for i := 0; i < 10; i++ {
		d.Trigger(func() { callCount.Add(1) })
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(150 * time.Millisecond)

	if count := callCount.Load(); count != 1 {
		t.Errorf("expected 1 callback invocation, got %d", count)
	}
}

func TestDebouncer_Cancel(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var called atomic.Bool
	d.Trigger(func() { called.Store(true) })
	d.Cancel()
	time.Sleep(100 * time.Millisecond)

	if called.Load() {
		t.Error("callback should not have been invoked after cancel")
	}
}

func TestDebouncer_DefaultDuration(t *testing.T) {
	if d := NewDebouncer(0); d.Duration() != DefaultDebounceDuration {
		t.Errorf("expected default duration %v, got %v", DefaultDebounceDuration, d.Duration())
	}
}

func TestFileWatcher_ReportsContentChanges(t *testing.T) {
	for _, poll := range []bool{false, true} {
		name := "fsnotify"
		if poll {
			name = "polling"
		}
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte("a: 1\n"), 0o644); err != nil {
				t.Fatal(err)
			}
			changes := make(chan string, 4)
			w, err := NewFileWatcher(path,
				WithDebounce(20*time.Millisecond),
				WithPollInterval(20*time.Millisecond),
				WithPolling(poll),
				WithOnChange(func(b []byte) { changes <- string(b) }),
			)
			if err != nil {
				t.Fatal(err)
			}
			if err := w.Start(); err != nil {
				t.Fatal(err)
			}
			defer w.Stop()
			if w.Polling() != poll {
				t.Fatalf("Polling = %v, want %v", w.Polling(), poll)
			}

			// Rewriting identical bytes is not a change.
			if err := os.WriteFile(path, []byte("a: 1\n"), 0o644); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(path, []byte("a: 2\n"), 0o644); err != nil {
				t.Fatal(err)
			}
			select {
			case got := <-changes:
				if got != "a: 2\n" {
					t.Errorf("content = %q", got)
				}
			case <-time.After(3 * time.Second):
				t.Fatal("timed out waiting for change")
			}
		})
	}
}

func TestFileWatcher_ReportsRemoval(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("a: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	errs := make(chan error, 4)
	w, err := NewFileWatcher(path,
		WithPolling(true),
		WithPollInterval(20*time.Millisecond),
		WithOnError(func(err error) { errs <- err }),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	select {
	case err := <-errs:
		if !errors.Is(err, ErrFileRemoved) {
			t.Errorf("err = %v, want ErrFileRemoved", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for removal")
	}
}

func TestFileWatcher_EnvForcesPolling(t *testing.T) {
	t.Setenv("AIDSCOPE_FORCE_POLL", "yes")
	w, err := NewFileWatcher(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()
	if !w.Polling() {
		t.Fatal("expected polling mode when AIDSCOPE_FORCE_POLL is set")
	}
}

func TestFileWatcher_StartStop(t *testing.T) {
	w, err := NewFileWatcher(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Start = %v, want ErrAlreadyStarted", err)
	}
	w.Stop()
	w.Stop()
	if !filepath.IsAbs(w.Path()) {
		t.Errorf("Path = %q, want absolute", w.Path())
	}
}

func TestEnvBool(t *testing.T) {
	for v, want := range map[string]bool{"1": true, "TRUE": true, " on ": true, "0": false, "nope": false, "": false} {
		t.Setenv("AIDSCOPE_TEST_BOOL", v)
		if got := envBool("AIDSCOPE_TEST_BOOL"); got != want {
			t.Errorf("envBool(%q) = %v, want %v", v, got, want)
		}
	}
}

func TestWatchConfig_ReportsContextChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := config.DefaultConfig()
	cfg.Context = model.Context{Region: "P1"}
	if err := config.SaveTo(cfg, path); err != nil {
		t.Fatal(err)
	}

	cw, err := WatchConfig(path, cfg.Context, nil,
		WithPolling(true),
		WithPollInterval(20*time.Millisecond),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer cw.Stop()

	next := func() Reload {
		t.Helper()
		select {
		case r := <-cw.Updates():
			return r
		case <-time.After(3 * time.Second):
			t.Fatal("timed out waiting for reload")
			return Reload{}
		}
	}

	time.Sleep(30 * time.Millisecond)
	cfg.UI.SyncMode = false
	if err := config.SaveTo(cfg, path); err != nil {
		t.Fatal(err)
	}
	r := next()
	if r.Err != nil || r.ContextChanged || r.Config.UI.SyncMode {
		t.Fatalf("reload after UI edit = %+v", r)
	}

	time.Sleep(30 * time.Millisecond)
	cfg.Context.Region = "P2"
	cfg.Context.From = "2021-01-01"
	if err := config.SaveTo(cfg, path); err != nil {
		t.Fatal(err)
	}
	r = next()
	if r.Err != nil || !r.ContextChanged || r.Config.Context.Region != "P2" {
		t.Fatalf("reload after context edit = %+v", r)
	}
}

func TestWatchConfig_ReportsParseErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := config.SaveTo(config.DefaultConfig(), path); err != nil {
		t.Fatal(err)
	}
	cw, err := WatchConfig(path, model.Context{}, nil, WithPolling(true), WithPollInterval(20*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	defer cw.Stop()

	if err := os.WriteFile(path, []byte("api: [unterminated\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case r := <-cw.Updates():
		if r.Err == nil {
			t.Fatalf("reload = %+v, want a parse error", r)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}

func TestWatchConfig_KeepsOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := config.DefaultConfig()
	cfg.Context = model.Context{Region: "P1"}
	if err := config.SaveTo(cfg, path); err != nil {
		t.Fatal(err)
	}

	pinRegion := func(c *config.Config) { c.Context.Region = "KE" }
	cw, err := WatchConfig(path, model.Context{Region: "KE"}, pinRegion,
		WithPolling(true),
		WithPollInterval(20*time.Millisecond),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer cw.Stop()

	next := func() Reload {
		t.Helper()
		select {
		case r := <-cw.Updates():
			return r
		case <-time.After(3 * time.Second):
			t.Fatal("timed out waiting for reload")
			return Reload{}
		}
	}

	time.Sleep(30 * time.Millisecond)
	cfg.Map.Palette = "greens"
	if err := config.SaveTo(cfg, path); err != nil {
		t.Fatal(err)
	}
	r := next()
	if r.Err != nil || r.ContextChanged || r.Config.Context.Region != "KE" {
		t.Fatalf("reload after palette edit = %+v", r)
	}

	time.Sleep(30 * time.Millisecond)
	cfg.Context.From = "2022-01-01"
	if err := config.SaveTo(cfg, path); err != nil {
		t.Fatal(err)
	}
	r = next()
	if r.Err != nil || !r.ContextChanged {
		t.Fatalf("reload after date edit = %+v", r)
	}
	if want := (model.Context{Region: "KE", From: "2022-01-01"}); r.Config.Context != want {
		t.Errorf("context = %+v, want %+v", r.Config.Context, want)
	}
}
