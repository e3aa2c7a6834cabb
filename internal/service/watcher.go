package service

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 200 * time.Millisecond

// ChangeDetector reports whether the watched file holds content the
// process did not write itself. storage.FileStore implements it.
type ChangeDetector interface {
	Changed() (bool, error)
}

// SnapshotWatcher watches the snapshot file and requests a reload when
// it is edited by something other than our own autosave. Requests are
// coalesced: at most one is pending at a time.
type SnapshotWatcher struct {
	path     string
	detector ChangeDetector
	log      *slog.Logger

	watcher  *fsnotify.Watcher
	requests chan struct{}

	mu     sync.Mutex
	timer  *time.Timer
	cancel context.CancelFunc
}

func NewSnapshotWatcher(path string, detector ChangeDetector, log *slog.Logger) (*SnapshotWatcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	// Watch the directory: atomic saves replace the file, which would
	// drop a watch placed on the file itself.
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(absPath), err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &SnapshotWatcher{
		path:     absPath,
		detector: detector,
		log:      log,
		watcher:  watcher,
		requests: make(chan struct{}, 1),
	}, nil
}

// Reloads delivers one value per detected external edit.
func (w *SnapshotWatcher) Reloads() <-chan struct{} {
	return w.requests
}

// Start runs the watch loop until ctx is cancelled or Close is called.
func (w *SnapshotWatcher) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	w.mu.Lock()
	w.cancel = cancel
	w.mu.Unlock()
	go w.loop(ctx)
	w.log.Info("snapshot watcher: watching", "path", w.path)
}

// Close stops the watcher.
func (w *SnapshotWatcher) Close() error {
	w.mu.Lock()
	if w.cancel != nil {
		w.cancel()
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.watcher.Close()
}

func (w *SnapshotWatcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			absPath, _ := filepath.Abs(event.Name)
			if absPath != w.path {
				continue
			}
			w.schedule()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("snapshot watcher: error", "err", err)
		}
	}
}

// schedule coalesces a burst of events into a single check.
func (w *SnapshotWatcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(watchDebounce, w.check)
}

func (w *SnapshotWatcher) check() {
	changed, err := w.detector.Changed()
	if err != nil {
		w.log.Warn("snapshot watcher: read failed", "path", w.path, "err", err)
		return
	}
	if !changed {
		return
	}
	w.log.Info("snapshot watcher: external edit detected", "path", w.path)
	select {
	case w.requests <- struct{}{}:
	default:
	}
}
