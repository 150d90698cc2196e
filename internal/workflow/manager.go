package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ArcCdr/AutomatedFanfic/internal/config"
	"github.com/ArcCdr/AutomatedFanfic/internal/ingest"
	"github.com/ArcCdr/AutomatedFanfic/internal/logging"
	"github.com/ArcCdr/AutomatedFanfic/internal/queue"
	"github.com/ArcCdr/AutomatedFanfic/internal/services"
	"github.com/ArcCdr/AutomatedFanfic/internal/sites"
)

// Manager owns the per-site queues and the lane goroutines that drain them
// into the spool.
type Manager struct {
	store  *queue.Store
	logger *slog.Logger

	queues       map[string]*SiteQueue
	destinations map[string]ingest.Sink
	order        []string

	mu      sync.RWMutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	spooled int64
	dropped int64
}

// NewManager builds one queue per configured site plus the catch-all and
// wires each into the destination map the dispatcher routes against. Site
// names the classifier does not recognize are configuration errors.
func NewManager(cfg *config.Config, store *queue.Store, logger *slog.Logger) (*Manager, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "workflow", "new", "configuration required", nil)
	}
	if store == nil {
		return nil, services.Wrap(services.ErrConfiguration, "workflow", "new", "spool store required", nil)
	}

	m := &Manager{
		store:        store,
		logger:       logging.NewComponentLogger(logger, "workflow"),
		queues:       make(map[string]*SiteQueue),
		destinations: make(map[string]ingest.Sink),
	}

	add := func(site string) {
		if _, exists := m.queues[site]; exists {
			return
		}
		q := NewSiteQueue(site, cfg.Queues.Capacity)
		m.queues[site] = q
		m.destinations[site] = countedSink{lane: q, mgr: m}
		m.order = append(m.order, site)
	}
	configured := cfg.Queues.Sites
	if len(configured) == 0 {
		// An empty list means every known site gets its own queue.
		configured = sites.Known()
	}
	for _, site := range configured {
		if !sites.IsKnown(site) {
			return nil, services.Wrap(services.ErrConfiguration, "workflow", "new",
				fmt.Sprintf("queues.sites contains unrecognized site %q", site), nil)
		}
		add(site)
	}
	// The catch-all queue always exists so the dispatcher's fallback route
	// has somewhere to land.
	add(sites.Other)

	return m, nil
}

// countedSink fronts a lane in the destination map so rejected offers land
// in the manager's drop counter without the dispatcher knowing about the
// manager.
type countedSink struct {
	lane *SiteQueue
	mgr  *Manager
}

func (s countedSink) Offer(item ingest.Item) error {
	if err := s.lane.Offer(item); err != nil {
		s.mgr.noteDropped()
		return err
	}
	return nil
}

// Destinations exposes the routing table for the dispatcher. The map is
// built once at construction and must not be mutated.
func (m *Manager) Destinations() map[string]ingest.Sink {
	return m.destinations
}

// Queue returns the queue for a site, or nil when none is configured.
func (m *Manager) Queue(site string) *SiteQueue {
	return m.queues[site]
}

// QueueStatus describes one queue's occupancy for status reporting.
type QueueStatus struct {
	Site     string `json:"site"`
	Length   int    `json:"length"`
	Capacity int    `json:"capacity"`
}

// StatusSummary captures lightweight manager diagnostics.
type StatusSummary struct {
	Running bool          `json:"running"`
	Queues  []QueueStatus `json:"queues"`
	Spooled int64         `json:"spooled"`
	Dropped int64         `json:"dropped"`
}

// Status reports queue occupancy and lifetime handoff counters.
func (m *Manager) Status() StatusSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()
	summary := StatusSummary{
		Running: m.running,
		Queues:  make([]QueueStatus, 0, len(m.order)),
		Spooled: m.spooled,
		Dropped: m.dropped,
	}
	for _, site := range m.order {
		q := m.queues[site]
		summary.Queues = append(summary.Queues, QueueStatus{
			Site:     q.Site(),
			Length:   q.Len(),
			Capacity: q.Capacity(),
		})
	}
	return summary
}

// Running reports whether the lanes are active.
func (m *Manager) Running() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

func (m *Manager) noteSpooled() {
	m.mu.Lock()
	m.spooled++
	m.mu.Unlock()
}

func (m *Manager) noteDropped() {
	m.mu.Lock()
	m.dropped++
	m.mu.Unlock()
}
