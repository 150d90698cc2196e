package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/ArcCdr/AutomatedFanfic/internal/ingest"
)

// ErrQueueFull signals that a destination queue rejected an item because its
// buffer is at capacity.
var ErrQueueFull = errors.New("site queue full")

// SiteQueue is a bounded in-memory buffer of classified stories awaiting
// handoff to the spool. It satisfies ingest.Sink so the dispatcher can route
// into it directly.
type SiteQueue struct {
	site  string
	items chan ingest.Item
}

// NewSiteQueue builds a queue for one site. Capacities below one are raised
// to one so the queue can always hold at least a single item.
func NewSiteQueue(site string, capacity int) *SiteQueue {
	if capacity < 1 {
		capacity = 1
	}
	return &SiteQueue{site: site, items: make(chan ingest.Item, capacity)}
}

// Site returns the site identifier this queue serves.
func (q *SiteQueue) Site() string {
	return q.site
}

// Capacity reports the fixed buffer size.
func (q *SiteQueue) Capacity() int {
	return cap(q.items)
}

// Len reports how many items are currently buffered.
func (q *SiteQueue) Len() int {
	return len(q.items)
}

// Offer enqueues the item without blocking. Full queues return ErrQueueFull.
func (q *SiteQueue) Offer(item ingest.Item) error {
	select {
	case q.items <- item:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrQueueFull, q.site)
	}
}

// Next blocks until an item arrives or the context is cancelled.
func (q *SiteQueue) Next(ctx context.Context) (ingest.Item, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case <-ctx.Done():
		return ingest.Item{}, ctx.Err()
	case item := <-q.items:
		return item, nil
	}
}
