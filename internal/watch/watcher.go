// Package watch re-runs a callback when raw source files change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrAlreadyRunning is returned when Watch is called twice.
var ErrAlreadyRunning = errors.New("watcher already running")

// Config contains configuration for the watcher.
type Config struct {
	// Dirs are the directories to watch, including subdirectories.
	Dirs []string

	// DebounceInterval is the quiet period after the last event before
	// the callback runs.
	DebounceInterval time.Duration

	// Extensions lists the file extensions that trigger a run.
	Extensions []string
}

// DefaultConfig returns the default watcher configuration.
func DefaultConfig() Config {
	return Config{
		DebounceInterval: 500 * time.Millisecond,
		Extensions:       []string{".txt"},
	}
}

// Watcher watches source directories and triggers a callback after
// changes settle.
type Watcher struct {
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	config   Config
	debounce *Debouncer

	mu      sync.Mutex
	running bool

	// runMu serializes callbacks and guards closed.
	runMu  sync.Mutex
	closed bool
}

// New creates a Watcher. If logger is nil, slog.Default() is used.
func New(config Config, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if config.DebounceInterval <= 0 {
		config.DebounceInterval = DefaultConfig().DebounceInterval
	}
	if len(config.Extensions) == 0 {
		config.Extensions = DefaultConfig().Extensions
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		watcher:  w,
		logger:   logger,
		config:   config,
		debounce: NewDebouncer(config.DebounceInterval),
	}, nil
}

// Watch blocks until ctx is cancelled, calling onChange after each burst
// of relevant file events. Callback errors are logged, not returned.
// The watcher is closed when Watch returns, and Watch waits for a
// callback that is already running.
func (w *Watcher) Watch(ctx context.Context, onChange func(context.Context) error) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return ErrAlreadyRunning
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.debounce.Stop()
		w.runMu.Lock()
		w.closed = true
		w.runMu.Unlock()
		_ = w.watcher.Close()
	}()

	for _, dir := range w.config.Dirs {
		if err := w.addDirectory(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	w.logger.Info("watching sources",
		"dirs", w.config.Dirs,
		"debounce_ms", w.config.DebounceInterval.Milliseconds(),
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}

			if event.Has(fsnotify.Create) && isDir(event.Name) {
				if err := w.addDirectory(event.Name); err != nil {
					w.logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
				}
				continue
			}

			if !w.shouldProcessEvent(event) {
				continue
			}

			w.logger.Debug("source event", "path", event.Name, "op", event.Op.String())

			w.debounce.Trigger(func() {
				w.runMu.Lock()
				defer w.runMu.Unlock()
				if w.closed {
					return
				}
				w.logger.Info("sources changed, running", "path", event.Name)
				if err := onChange(ctx); err != nil {
					w.logger.Error("run failed", "error", err)
				}
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

// addDirectory adds a directory and all subdirectories to the watcher.
func (w *Watcher) addDirectory(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch directory %q: %w", path, err)
		}
		w.logger.Debug("watching directory", "path", path)
		return nil
	})
}

// shouldProcessEvent determines if an event should trigger a run.
func (w *Watcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(base))
	return slices.ContainsFunc(w.config.Extensions, func(e string) bool {
		return strings.ToLower(e) == ext
	})
}
