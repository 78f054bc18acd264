package data

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 500 * time.Millisecond

// Watcher reloads a database file into a Store whenever it changes on
// disk. A failed reload is logged and the previous database stays active.
type Watcher struct {
	path     string
	store    *Store
	fsw      *fsnotify.Watcher
	debounce time.Duration
}

// NewWatcher watches the directory containing path so that atomic
// replacements (write to temp file, then rename) are seen too.
func NewWatcher(path string, store *Store) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to resolve MMDB path: %w", err)
	}

	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	return &Watcher{
		path:     abs,
		store:    store,
		fsw:      fsw,
		debounce: defaultDebounce,
	}, nil
}

// Run processes file events until ctx is cancelled. Bursts of events are
// collapsed into a single reload after the debounce interval.
func (w *Watcher) Run(ctx context.Context) {
	var (
		timer  *time.Timer
		reload <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			slog.Debug("MMDB file changed", "path", w.path, "op", ev.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			reload = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Error("file watcher error", "path", w.path, "error", err)

		case <-reload:
			reload = nil
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	r, err := LoadFile(w.path)
	if err != nil {
		slog.Error("MMDB reload failed, keeping previous database", "path", w.path, "error", err)
		return
	}
	w.store.Swap(r)

	info := r.Info()
	slog.Info("MMDB reloaded", "path", w.path, "type", info.Type, "build_time", info.BuildTime)
}

// Close stops watching the file system.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
