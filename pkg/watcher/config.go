package watcher

import (
	"sync"

	"github.com/vanderheijden86/aidscope/pkg/config"
	"github.com/vanderheijden86/aidscope/pkg/model"
)

// Reload is the outcome of re-reading a changed config file.
type Reload struct {
	Config config.Config
	// ContextChanged is set when the region/date context differs from the
	// previous successful load.
	ContextChanged bool
	Err            error
}

// ConfigWatcher re-reads a config file after every debounced change.
type ConfigWatcher struct {
	w       *FileWatcher
	adjust  func(*config.Config)
	mu      sync.Mutex
	last    model.Context
	updates chan Reload
}

// WatchConfig starts watching path. current is the context the caller is
// already using, so only real context edits are reported as changes. adjust,
// if not nil, is applied to every parsed config before it is compared and
// delivered, so command-line overrides outlive file edits.
func WatchConfig(path string, current model.Context, adjust func(*config.Config), opts ...Option) (*ConfigWatcher, error) {
	cw := &ConfigWatcher{adjust: adjust, last: current, updates: make(chan Reload, 1)}
	opts = append(opts,
		WithOnChange(cw.reload),
		WithOnError(func(err error) { cw.send(Reload{Err: err}) }),
	)
	w, err := NewFileWatcher(path, opts...)
	if err != nil {
		return nil, err
	}
	cw.w = w
	if err := w.Start(); err != nil {
		return nil, err
	}
	return cw, nil
}

func (c *ConfigWatcher) reload(content []byte) {
	cfg, err := config.Parse(content)
	if err == nil && c.adjust != nil {
		c.adjust(&cfg)
		err = cfg.Validate()
	}
	if err != nil {
		c.send(Reload{Err: err})
		return
	}
	c.mu.Lock()
	changed := cfg.Context != c.last
	c.last = cfg.Context
	c.mu.Unlock()
	c.send(Reload{Config: cfg, ContextChanged: changed})
}

// send replaces an unread update with the newer one.
func (c *ConfigWatcher) send(r Reload) {
	for {
		select {
		case c.updates <- r:
			return
		default:
		}
		select {
		case <-c.updates:
		default:
		}
	}
}

// Updates delivers reload results. Only the latest unread result is kept.
func (c *ConfigWatcher) Updates() <-chan Reload { return c.updates }

// Path returns the watched file.
func (c *ConfigWatcher) Path() string { return c.w.Path() }

// Stop stops watching.
func (c *ConfigWatcher) Stop() { c.w.Stop() }
