package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"

	"github.com/ArcCdr/AutomatedFanfic/internal/config"
	"github.com/ArcCdr/AutomatedFanfic/internal/ingest"
	"github.com/ArcCdr/AutomatedFanfic/internal/logging"
	"github.com/ArcCdr/AutomatedFanfic/internal/notifications"
	"github.com/ArcCdr/AutomatedFanfic/internal/queue"
	"github.com/ArcCdr/AutomatedFanfic/internal/sites"
	"github.com/ArcCdr/AutomatedFanfic/internal/workflow"
)

// LockFileName is the single-instance lock created under the log directory.
const LockFileName = "autofanfic.lock"

// Daemon owns the watch-folder pipeline and enforces single-instance execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *queue.Store
	notifier notifications.Service
	manager  *workflow.Manager
	watcher  *ingest.Watcher
	monitor  *ingest.FolderMonitor
	logPath  string

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	WatchDir     string
	SpoolDBPath  string
	LockFilePath string
	Watcher      ingest.WatcherStatus
	MonitorAlive bool
	Manager      workflow.StatusSummary
	SpoolStats   map[queue.Status]int
	SpoolBySite  map[string]int
}

// New constructs a daemon and assembles the full pipeline behind it.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger, notifier notifications.Service) (*Daemon, error) {
	if cfg == nil || store == nil {
		return nil, errors.New("daemon requires config and store")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}

	manager, err := workflow.NewManager(cfg, store, logger)
	if err != nil {
		return nil, fmt.Errorf("build handoff manager: %w", err)
	}
	extractor, err := ingest.NewExtractor(cfg.Paths.WatchDir, logger)
	if err != nil {
		return nil, fmt.Errorf("build extractor: %w", err)
	}
	dispatcher := ingest.NewDispatcher(
		ingest.ClassifierFunc(sites.Classify),
		manager.Destinations(),
		notifier,
		cfg.Watcher.DisableFanfictionNet,
		logger,
	)
	watcher := ingest.NewWatcher(extractor, dispatcher, cfg.PollInterval(), logger)
	monitor := ingest.NewFolderMonitor(cfg.Paths.WatchDir, watcher.Nudge, logger)

	lockPath := filepath.Join(cfg.Paths.LogDir, LockFileName)
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		notifier: notifier,
		manager:  manager,
		watcher:  watcher,
		monitor:  monitor,
		logPath:  filepath.Join(cfg.Paths.LogDir, logging.LogFileName),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock and launches the pipeline. Lane goroutines
// come up before the watcher so the first poll cycle has somewhere to route.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another autofanfic daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.manager.Start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return fmt.Errorf("start handoff manager: %w", err)
	}
	if err := d.watcher.Start(runCtx); err != nil {
		d.manager.Stop()
		cancel()
		_ = d.lock.Unlock()
		return fmt.Errorf("start watcher: %w", err)
	}
	// Monitor startup degrades to polling on failure, never fatal.
	_ = d.monitor.Start(runCtx)

	d.cancel = cancel
	d.running.Store(true)
	d.logger.Info("daemon started",
		logging.String("watch_dir", d.cfg.Paths.WatchDir),
		logging.String("lock", d.lockPath),
	)
	return nil
}

// Stop halts the pipeline in reverse order and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	d.monitor.Stop()
	d.watcher.Stop()
	d.manager.Stop()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("daemon stopped")
}

// Close stops the daemon and releases the spool store.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	status := Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		WatchDir:     d.cfg.Paths.WatchDir,
		SpoolDBPath:  d.cfg.SpoolDatabasePath(),
		LockFilePath: d.lockPath,
		Watcher:      d.watcher.Status(),
		MonitorAlive: d.monitor.Running(),
		Manager:      d.manager.Status(),
	}
	stats, err := d.store.Stats(ctx)
	if err != nil {
		d.logger.Warn("failed to read spool stats", logging.Error(err))
	} else {
		status.SpoolStats = stats
	}
	bySite, err := d.store.BySite(ctx)
	if err != nil {
		d.logger.Warn("failed to read spool site counts", logging.Error(err))
	} else {
		status.SpoolBySite = bySite
	}
	return status
}
