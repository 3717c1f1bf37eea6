// Package watch re-runs a check whenever a watched file changes.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// DefaultDebounce is the quiet period after the last event before a check.
const DefaultDebounce = 100 * time.Millisecond

// CheckFunc checks the file at path.
type CheckFunc func(ctx context.Context, path string) error

// Config configures a Watcher.
type Config struct {
	Path     string
	Debounce time.Duration
	Check    CheckFunc
	Logger   *slog.Logger
}

// Watcher watches one file through its directory, since editors often
// replace files instead of writing them in place.
type Watcher struct {
	path     string
	debounce time.Duration
	check    CheckFunc
	logger   *slog.Logger

	group singleflight.Group

	mu    sync.Mutex
	timer *time.Timer
}

// New creates a watcher.
func New(cfg Config) (*Watcher, error) {
	if cfg.Check == nil {
		return nil, fmt.Errorf("watch: check function is required")
	}
	path, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return &Watcher{
		path:     path,
		debounce: cfg.Debounce,
		check:    cfg.Check,
		logger:   cfg.Logger,
	}, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Run checks the file once, then again after every change, until ctx is
// cancelled. Check failures are logged and do not stop the loop.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.path), err)
	}

	_ = w.Trigger(ctx)

	eg, egctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		for {
			select {
			case <-egctx.Done():
				w.stopTimer()
				return nil
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if !w.relevant(event) {
					continue
				}
				w.logger.Debug("file changed", "file", event.Name, "op", event.Op.String())
				w.schedule(egctx)
			}
		}
	})

	eg.Go(func() error {
		for {
			select {
			case <-egctx.Done():
				return nil
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				w.logger.Error("watcher error", "error", err)
			}
		}
	})

	return eg.Wait()
}

// Trigger runs the check now. Calls made while a check is in flight share
// its result instead of starting another one.
func (w *Watcher) Trigger(ctx context.Context) error {
	_, err, _ := w.group.Do(w.path, func() (any, error) {
		err := w.check(ctx, w.path)
		if err != nil {
			w.logger.Error("check failed", "file", w.path, "error", err)
		}
		return nil, err
	})
	return err
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return false
	}
	name, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return name == w.path
}

// schedule restarts the debounce timer.
func (w *Watcher) schedule(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		if ctx.Err() != nil {
			return
		}
		_ = w.Trigger(ctx)
	})
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
}
