package workflow

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ArcCdr/AutomatedFanfic/internal/ingest"
	"github.com/ArcCdr/AutomatedFanfic/internal/logging"
	"github.com/ArcCdr/AutomatedFanfic/internal/queue"
	"github.com/ArcCdr/AutomatedFanfic/internal/services"
)

// Start launches one lane goroutine per queue.
func (m *Manager) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("handoff manager already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(len(m.order))
	lanes := make([]*SiteQueue, 0, len(m.order))
	for _, site := range m.order {
		lanes = append(lanes, m.queues[site])
	}
	m.mu.Unlock()

	for _, lane := range lanes {
		go m.runLane(runCtx, lane)
	}

	m.logger.Info("handoff lanes started", logging.Int("lanes", len(lanes)))
	return nil
}

// Stop cancels the lanes and waits for them to exit. Buffered items that
// were not yet handed to the spool are discarded with the queues.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
	m.logger.Info("handoff lanes stopped")
}

func (m *Manager) runLane(ctx context.Context, lane *SiteQueue) {
	defer m.wg.Done()
	logger := m.logger.With(logging.String(logging.FieldSite, lane.Site()))
	for {
		item, err := lane.Next(ctx)
		if err != nil {
			return
		}
		m.handOff(ctx, logger, item)
	}
}

// handOff inserts one item into the spool as pending. Failures drop the item:
// its URL file is already consumed, so there is nothing left to retry from.
func (m *Manager) handOff(ctx context.Context, laneLogger *slog.Logger, item ingest.Item) {
	requestID := uuid.NewString()
	reqCtx := services.WithRequestID(ctx, requestID)
	logger := laneLogger.With(logging.String(logging.FieldRequestID, requestID))

	url := item.NormalizedURL
	if url == "" {
		url = item.RawURL
	}
	stored, err := m.store.Insert(reqCtx, queue.Item{
		URL:        url,
		Site:       item.Site,
		SourceFile: item.SourceFile,
	})
	if err != nil {
		m.noteDropped()
		logger.Warn("spool insert failed; dropping item",
			logging.Error(err),
			logging.String("url", url),
			logging.String(logging.FieldSourceFile, item.SourceFile),
			logging.String(logging.FieldEventType, "spool_insert_failed"),
			logging.String(logging.FieldErrorHint, "check spool database access"),
		)
		return
	}

	m.noteSpooled()
	logger.Info("story spooled",
		logging.Int64(logging.FieldItemID, stored.ID),
		logging.String("url", stored.URL),
		logging.String(logging.FieldSourceFile, item.SourceFile),
		logging.String(logging.FieldEventType, "story_spooled"),
	)
}
