package ingest

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ArcCdr/AutomatedFanfic/internal/logging"
	"github.com/ArcCdr/AutomatedFanfic/internal/services"
)

type itemExtractor interface {
	Extract(ctx context.Context) ([]Item, error)
}

type itemDispatcher interface {
	Dispatch(ctx context.Context, item Item)
}

// Watcher drives the poll loop: every interval (or sooner when nudged) it
// extracts a batch and dispatches each item. The loop has no terminal
// state; it runs until its context is cancelled.
type Watcher struct {
	extractor  itemExtractor
	dispatcher itemDispatcher
	interval   time.Duration
	logger     *slog.Logger
	nudge      chan struct{}

	mu            sync.Mutex
	running       bool
	cycleCount    int64
	lastCycleAt   time.Time
	lastBatchSize int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// WatcherStatus is a point-in-time snapshot of loop activity.
type WatcherStatus struct {
	Running       bool
	CycleCount    int64
	LastCycleAt   time.Time
	LastBatchSize int
}

// NewWatcher builds a watcher polling at the given interval. A
// non-positive interval falls back to one minute.
func NewWatcher(extractor itemExtractor, dispatcher itemDispatcher, interval time.Duration, logger *slog.Logger) *Watcher {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Watcher{
		extractor:  extractor,
		dispatcher: dispatcher,
		interval:   interval,
		logger:     logging.NewComponentLogger(logger, "watcher"),
		nudge:      make(chan struct{}, 1),
	}
}

// Start spawns the loop goroutine. The first poll runs immediately rather
// than waiting out the first tick.
func (w *Watcher) Start(ctx context.Context) error {
	if w == nil {
		return errors.New("watcher unavailable")
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return errors.New("watcher already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.ctx = runCtx
	w.cancel = cancel
	w.running = true

	w.wg.Add(1)
	go w.loop()
	return nil
}

// Stop cancels the loop and waits for the in-flight cycle to finish.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	cancel := w.cancel
	w.running = false
	w.cancel = nil
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	w.wg.Wait()
}

// Nudge requests an immediate poll without waiting for the ticker. Extra
// nudges while one is pending coalesce.
func (w *Watcher) Nudge() {
	select {
	case w.nudge <- struct{}{}:
	default:
	}
}

// Status reports loop activity for the daemon status surface.
func (w *Watcher) Status() WatcherStatus {
	if w == nil {
		return WatcherStatus{}
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return WatcherStatus{
		Running:       w.running,
		CycleCount:    w.cycleCount,
		LastCycleAt:   w.lastCycleAt,
		LastBatchSize: w.lastBatchSize,
	}
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	w.runCycle()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.runCycle()
		case <-w.nudge:
			w.runCycle()
		}
	}
}

func (w *Watcher) runCycle() {
	ctx := w.ctx
	if ctx == nil || ctx.Err() != nil {
		return
	}

	cycleCtx := services.WithCycleID(ctx, uuid.NewString())
	logger := logging.WithContext(cycleCtx, w.logger)

	items, err := w.extractor.Extract(cycleCtx)
	if err != nil {
		logger.Warn("watch directory scan failed; treating as empty batch",
			logging.Error(err),
			logging.String(logging.FieldEventType, "scan_failed"),
			logging.String(logging.FieldErrorHint, "check watch directory permissions and mount state"),
		)
		items = nil
	}

	for _, item := range items {
		w.dispatcher.Dispatch(cycleCtx, item)
	}

	w.mu.Lock()
	w.cycleCount++
	w.lastCycleAt = time.Now().UTC()
	w.lastBatchSize = len(items)
	w.mu.Unlock()

	if len(items) > 0 {
		logger.Info("cycle complete",
			logging.String(logging.FieldEventType, "cycle_complete"),
			logging.Int("item_count", len(items)),
		)
	} else {
		logger.Debug("cycle complete; nothing to ingest",
			logging.String(logging.FieldEventType, "cycle_complete"),
		)
	}
}
