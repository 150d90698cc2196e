package api

import (
	"context"
	"errors"
	"testing"
)

type spoolActionStub struct {
	entries map[int64]*SpoolEntry
	retried []int64
}

func (s *spoolActionStub) Describe(_ context.Context, id int64) (*SpoolEntry, error) {
	if entry, ok := s.entries[id]; ok {
		return entry, nil
	}
	return nil, nil
}

func (s *spoolActionStub) Retry(_ context.Context, ids []int64) (int64, error) {
	if len(ids) != 1 {
		return 0, errors.New("expected one id")
	}
	s.retried = append(s.retried, ids[0])
	return 1, nil
}

func TestRetryFailedByIDMixedOutcomes(t *testing.T) {
	stub := &spoolActionStub{
		entries: map[int64]*SpoolEntry{
			1: {ID: 1, Status: "failed"},
			2: {ID: 2, Status: "pending"},
		},
	}

	result, err := RetryFailedByID(context.Background(), stub, []int64{1, 2, 3})
	if err != nil {
		t.Fatalf("RetryFailedByID: %v", err)
	}
	if result.UpdatedCount != 1 {
		t.Fatalf("UpdatedCount = %d, want 1", result.UpdatedCount)
	}
	if len(result.Entries) != 3 {
		t.Fatalf("len(Entries) = %d, want 3", len(result.Entries))
	}
	if result.Entries[0].Outcome != RetryUpdated {
		t.Fatalf("entry 1 outcome = %s, want %s", result.Entries[0].Outcome, RetryUpdated)
	}
	if result.Entries[1].Outcome != RetryNotFailed {
		t.Fatalf("entry 2 outcome = %s, want %s", result.Entries[1].Outcome, RetryNotFailed)
	}
	if result.Entries[2].Outcome != RetryNotFound {
		t.Fatalf("entry 3 outcome = %s, want %s", result.Entries[2].Outcome, RetryNotFound)
	}
	if len(stub.retried) != 1 || stub.retried[0] != 1 {
		t.Fatalf("retried ids = %v, want [1]", stub.retried)
	}
}

func TestRetryFailedByIDRejectsBogusStatus(t *testing.T) {
	stub := &spoolActionStub{
		entries: map[int64]*SpoolEntry{
			9: {ID: 9, Status: "garbled"},
		},
	}

	result, err := RetryFailedByID(context.Background(), stub, []int64{9})
	if err != nil {
		t.Fatalf("RetryFailedByID: %v", err)
	}
	if result.Entries[0].Outcome != RetryNotFailed {
		t.Fatalf("outcome = %s, want %s", result.Entries[0].Outcome, RetryNotFailed)
	}
	if len(stub.retried) != 0 {
		t.Fatalf("retried ids = %v, want none", stub.retried)
	}
}
