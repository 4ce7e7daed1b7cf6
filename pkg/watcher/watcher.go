// Package watcher reloads the configuration file while the dashboard runs.
//
// A FileWatcher reports content changes of one file. It listens on the
// file's directory with fsnotify, since editors save by writing a temp file
// and renaming it over the original, and falls back to stat polling where
// fsnotify is unavailable or AIDSCOPE_FORCE_POLL is set. Saves that leave
// the bytes unchanged are not reported.
package watcher

import (
	"context"
	"crypto/sha256"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultPollInterval is the stat interval in polling mode.
const DefaultPollInterval = 2 * time.Second

var (
	ErrFileRemoved    = errors.New("config file was removed")
	ErrAlreadyStarted = errors.New("watcher already started")
)

// Option configures a FileWatcher.
type Option func(*FileWatcher)

// WithDebounce sets how long a burst of events must be quiet before the
// file is re-read.
func WithDebounce(d time.Duration) Option {
	return func(w *FileWatcher) { w.debounce = d }
}

// WithPollInterval sets the stat interval used in polling mode.
func WithPollInterval(d time.Duration) Option {
	return func(w *FileWatcher) { w.pollInterval = d }
}

// WithPolling forces polling mode.
func WithPolling(poll bool) Option {
	return func(w *FileWatcher) { w.poll = poll }
}

// WithOnChange is called with the new file content after each change.
func WithOnChange(fn func(content []byte)) Option {
	return func(w *FileWatcher) { w.onChange = fn }
}

// WithOnError is called when the file cannot be read or disappears.
func WithOnError(fn func(error)) Option {
	return func(w *FileWatcher) { w.onError = fn }
}

// FileWatcher reports content changes of a single file.
type FileWatcher struct {
	path         string
	debounce     time.Duration
	pollInterval time.Duration
	poll         bool
	onChange     func([]byte)
	onError      func(error)

	debouncer *Debouncer

	mu      sync.Mutex
	digest  [sha256.Size]byte
	exists  bool
	polling bool
	cancel  context.CancelFunc
	fsw     *fsnotify.Watcher
	done    sync.WaitGroup
}

// NewFileWatcher creates a watcher for path. Call Start to begin.
func NewFileWatcher(path string, opts ...Option) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w := &FileWatcher{
		path:         abs,
		pollInterval: DefaultPollInterval,
		onChange:     func([]byte) {},
		onError:      func(error) {},
	}
	for _, opt := range opts {
		opt(w)
	}
	w.debouncer = NewDebouncer(w.debounce)
	return w, nil
}

// Start records the current content and begins watching. A missing file is
// fine; its creation is reported as a change.
func (w *FileWatcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		return ErrAlreadyStarted
	}

	if content, err := os.ReadFile(w.path); err == nil {
		w.digest, w.exists = sha256.Sum256(content), true
	} else if !os.IsNotExist(err) {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.polling = w.poll || envBool("AIDSCOPE_FORCE_POLL")
	if !w.polling {
		fsw, err := fsnotify.NewWatcher()
		if err == nil {
			err = fsw.Add(filepath.Dir(w.path))
			if err != nil {
				fsw.Close()
			}
		}
		if err != nil {
			w.polling = true
		} else {
			w.fsw = fsw
		}
	}

	w.done.Add(1)
	if w.polling {
		go w.pollLoop(ctx)
	} else {
		go w.eventLoop(ctx, w.fsw)
	}
	return nil
}

// Stop ends watching and waits for the watch goroutine. It is safe to call
// more than once.
func (w *FileWatcher) Stop() {
	w.mu.Lock()
	cancel, fsw := w.cancel, w.fsw
	w.cancel, w.fsw = nil, nil
	w.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	if fsw != nil {
		fsw.Close()
	}
	w.debouncer.Cancel()
	w.done.Wait()
}

// Polling reports whether the watcher fell back to stat polling.
func (w *FileWatcher) Polling() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.polling
}

// Path returns the absolute path being watched.
func (w *FileWatcher) Path() string { return w.path }

func (w *FileWatcher) eventLoop(ctx context.Context, fsw *fsnotify.Watcher) {
	defer w.done.Done()
	name := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != name {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				w.debouncer.Trigger(w.check)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.onError(err)
		}
	}
}

func (w *FileWatcher) pollLoop(ctx context.Context) {
	defer w.done.Done()
	t := time.NewTicker(w.pollInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			w.check()
		}
	}
}

// check re-reads the file and reports a change when its content differs
// from the last seen content.
func (w *FileWatcher) check() {
	content, err := os.ReadFile(w.path)

	w.mu.Lock()
	if w.cancel == nil {
		w.mu.Unlock()
		return
	}
	switch {
	case os.IsNotExist(err):
		had := w.exists
		w.exists = false
		w.mu.Unlock()
		if had {
			w.onError(ErrFileRemoved)
		}
		return
	case err != nil:
		w.mu.Unlock()
		w.onError(err)
		return
	}
	sum := sha256.Sum256(content)
	changed := !w.exists || sum != w.digest
	w.digest, w.exists = sum, true
	w.mu.Unlock()

	if changed {
		w.onChange(content)
	}
}

func envBool(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}
