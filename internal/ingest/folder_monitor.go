package ingest

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/ArcCdr/AutomatedFanfic/internal/logging"
)

// FolderMonitor listens for filesystem events on the watch directory and
// nudges the watcher when a url file appears, cutting the latency between
// a drop and its pickup. The poll loop stays correct without it, so every
// failure here is non-fatal.
type FolderMonitor struct {
	dir    string
	logger *slog.Logger
	nudge  func()

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	quit    chan struct{}
	running bool
}

// NewFolderMonitor creates a monitor over dir that invokes nudge on
// relevant events. Returns nil when dir is empty.
func NewFolderMonitor(dir string, nudge func(), logger *slog.Logger) *FolderMonitor {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil
	}
	return &FolderMonitor{
		dir:    dir,
		logger: logging.NewComponentLogger(logger, "folder-monitor"),
		nudge:  nudge,
	}
}

// Start begins listening for filesystem events. Failure to set up the
// watch degrades to polling only and is reported, not returned.
func (m *FolderMonitor) Start(ctx context.Context) error {
	if m == nil {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		m.logger.Warn("filesystem watch unavailable; relying on polling alone",
			logging.Error(err),
			logging.String(logging.FieldEventType, "folder_monitor_unavailable"),
			logging.String(logging.FieldImpact, "new files are picked up on the next poll"),
		)
		return nil
	}
	if err := watcher.Add(m.dir); err != nil {
		_ = watcher.Close()
		m.logger.Warn("cannot watch directory; relying on polling alone",
			logging.Error(err),
			logging.String(logging.FieldEventType, "folder_monitor_unavailable"),
			logging.String(logging.FieldErrorHint, "check watch directory permissions"),
			logging.String(logging.FieldImpact, "new files are picked up on the next poll"),
		)
		return nil
	}

	m.watcher = watcher
	m.quit = make(chan struct{})
	m.running = true

	quit := m.quit
	go m.monitorLoop(ctx, watcher, quit)

	m.logger.Info("folder monitor started",
		logging.String(logging.FieldEventType, "folder_monitor_started"),
		logging.String("dir", m.dir),
	)
	return nil
}

// Stop shuts down the filesystem watch.
func (m *FolderMonitor) Stop() {
	if m == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	if m.quit != nil {
		close(m.quit)
		m.quit = nil
	}
	if m.watcher != nil {
		_ = m.watcher.Close()
		m.watcher = nil
	}
	m.running = false

	m.logger.Info("folder monitor stopped",
		logging.String(logging.FieldEventType, "folder_monitor_stopped"),
	)
}

// Running reports whether the filesystem watch is active.
func (m *FolderMonitor) Running() bool {
	if m == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *FolderMonitor) monitorLoop(ctx context.Context, watcher *fsnotify.Watcher, quit <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-quit:
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			m.handleEvent(event)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			m.logger.Warn("folder monitor error",
				logging.Error(err),
				logging.String(logging.FieldEventType, "folder_monitor_error"),
				logging.String(logging.FieldImpact, "event delivery may be incomplete; polling continues"),
			)
		}
	}
}

func (m *FolderMonitor) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
		return
	}
	if filepath.Ext(event.Name) != URLFileExt {
		return
	}

	m.logger.Debug("url file event; nudging watcher",
		logging.String(logging.FieldSourceFile, filepath.Base(event.Name)),
		logging.String("op", event.Op.String()),
	)
	if m.nudge != nil {
		m.nudge()
	}
}
