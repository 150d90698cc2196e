package api

import (
	"context"

	"github.com/ArcCdr/AutomatedFanfic/internal/queue"
)

// SpoolActionService captures the spool operations needed by per-item retry workflows.
type SpoolActionService interface {
	Describe(ctx context.Context, id int64) (*SpoolEntry, error)
	Retry(ctx context.Context, ids []int64) (int64, error)
}

type RetryOutcome string

const (
	RetryUpdated   RetryOutcome = "retried"
	RetryNotFound  RetryOutcome = "not_found"
	RetryNotFailed RetryOutcome = "not_failed"
)

type RetryEntryResult struct {
	ID      int64        `json:"id"`
	Outcome RetryOutcome `json:"outcome"`
}

type RetryResult struct {
	UpdatedCount int64              `json:"updated_count"`
	Entries      []RetryEntryResult `json:"entries"`
}

// RetryFailedByID validates IDs and retries only failed spool entries.
func RetryFailedByID(ctx context.Context, service SpoolActionService, ids []int64) (RetryResult, error) {
	result := RetryResult{Entries: make([]RetryEntryResult, 0, len(ids))}
	for _, id := range ids {
		entry, err := service.Describe(ctx, id)
		if err != nil {
			return RetryResult{}, err
		}
		if entry == nil {
			result.Entries = append(result.Entries, RetryEntryResult{ID: id, Outcome: RetryNotFound})
			continue
		}
		status, ok := queue.ParseStatus(entry.Status)
		if !ok || status != queue.StatusFailed {
			result.Entries = append(result.Entries, RetryEntryResult{ID: id, Outcome: RetryNotFailed})
			continue
		}
		updated, err := service.Retry(ctx, []int64{id})
		if err != nil {
			return RetryResult{}, err
		}
		if updated > 0 {
			result.UpdatedCount += updated
			result.Entries = append(result.Entries, RetryEntryResult{ID: id, Outcome: RetryUpdated})
			continue
		}
		result.Entries = append(result.Entries, RetryEntryResult{ID: id, Outcome: RetryNotFailed})
	}
	return result, nil
}
