package api

import (
	"context"

	"github.com/ArcCdr/AutomatedFanfic/internal/queue"
	"github.com/ArcCdr/AutomatedFanfic/internal/services"
)

// SpoolReader abstracts spool persistence interactions needed for API queries.
type SpoolReader interface {
	List(ctx context.Context, statuses ...queue.Status) ([]*queue.Item, error)
	Stats(ctx context.Context) (map[queue.Status]int, error)
	BySite(ctx context.Context) (map[string]int, error)
	GetByID(ctx context.Context, id int64) (*queue.Item, error)
}

// SpoolService exposes read-only spool operations returning API DTOs.
type SpoolService struct {
	store SpoolReader
}

// NewSpoolService constructs a SpoolService around the provided reader.
func NewSpoolService(store SpoolReader) *SpoolService {
	if store == nil {
		return nil
	}
	return &SpoolService{store: store}
}

// List returns spool entries filtered by status.
func (s *SpoolService) List(ctx context.Context, statuses ...queue.Status) ([]SpoolEntry, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	items, err := s.store.List(ctx, statuses...)
	if err != nil {
		return nil, err
	}
	return FromSpoolItems(items), nil
}

// Stats returns spool summary counts keyed by status string.
func (s *SpoolService) Stats(ctx context.Context) (map[string]int, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return MergeSpoolStats(stats), nil
}

// BySite returns spool counts keyed by site identifier.
func (s *SpoolService) BySite(ctx context.Context) (map[string]int, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	return s.store.BySite(ctx)
}

// Describe fetches a single spool entry.
func (s *SpoolService) Describe(ctx context.Context, id int64) (*SpoolEntry, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	item, err := s.store.GetByID(services.WithItemID(ctx, id), id)
	if err != nil || item == nil {
		return nil, err
	}
	entry := FromSpoolItem(item)
	return &entry, nil
}
