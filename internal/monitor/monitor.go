// Package monitor watches configured media directories for filesystem
// changes and triggers a rescan when something moves, following the same
// watch-then-rescan shape as minidlna's inotify monitor but tracking
// watched directories in a map instead of a hand-rolled linked list.
package monitor

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Rescanner is the collaborator a Monitor notifies when it believes the
// catalog is stale. internal/scanner.Scanner satisfies this.
type Rescanner interface {
	Run(ctx context.Context) error
}

// Monitor watches a set of root directories (recursively) and triggers a
// debounced rescan after any fsnotify event underneath them (create,
// remove, rename, write or chmod).
type Monitor struct {
	watcher  *fsnotify.Watcher
	rescan   Rescanner
	log      *slog.Logger
	debounce time.Duration

	mu      sync.Mutex
	watched map[string]struct{} // directories currently under watch
}

// New builds a Monitor watching roots recursively. debounce controls how
// long the monitor waits after the last observed event before triggering a
// rescan, coalescing bursts of events (e.g. a multi-file copy) into one
// pass.
func New(roots []string, rescan Rescanner, debounce time.Duration, log *slog.Logger) (*Monitor, error) {
	if log == nil {
		log = slog.Default()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	m := &Monitor{
		watcher:  w,
		rescan:   rescan,
		log:      log,
		debounce: debounce,
		watched:  make(map[string]struct{}),
	}
	for _, root := range roots {
		if err := m.addTree(root); err != nil {
			log.Warn("monitor: add watch tree failed", "root", root, "err", err)
		}
	}
	return m, nil
}

// addTree adds a watch on root and every directory beneath it.
func (m *Monitor) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable subtree, keep walking siblings
		}
		if !d.IsDir() {
			return nil
		}
		return m.addDir(path)
	})
}

func (m *Monitor) addDir(path string) error {
	if err := m.watcher.Add(path); err != nil {
		return err
	}
	m.mu.Lock()
	m.watched[path] = struct{}{}
	m.mu.Unlock()
	return nil
}

func (m *Monitor) removeDir(path string) {
	m.mu.Lock()
	_, ok := m.watched[path]
	delete(m.watched, path)
	m.mu.Unlock()
	if ok {
		m.watcher.Remove(path)
	}
}

// Run blocks processing events until ctx is canceled, triggering a
// debounced rescan on every event it receives. Run closes the
// underlying fsnotify watcher before returning.
func (m *Monitor) Run(ctx context.Context) {
	defer m.watcher.Close()

	var pending *time.Timer
	var pendingC <-chan time.Time
	stopPending := func() {
		if pending != nil {
			pending.Stop()
		}
	}
	defer stopPending()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			m.handleEvent(ev)

			stopPending()
			pending = time.NewTimer(m.debounce)
			pendingC = pending.C

		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			m.log.Error("monitor: watcher error", "err", err)

		case <-pendingC:
			pendingC = nil
			if err := m.rescan.Run(ctx); err != nil {
				m.log.Error("monitor: triggered rescan failed", "err", err)
			}
		}
	}
}

func (m *Monitor) handleEvent(ev fsnotify.Event) {
	m.log.Debug("monitor: event", "name", ev.Name, "op", ev.Op.String())

	switch {
	case ev.Op.Has(fsnotify.Remove), ev.Op.Has(fsnotify.Rename):
		m.removeDir(ev.Name)

	case ev.Op.Has(fsnotify.Create):
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			if err := m.addTree(ev.Name); err != nil {
				m.log.Warn("monitor: watch new directory failed", "path", ev.Name, "err", err)
			}
		}
	}
}
