package queue

import (
	"strings"
	"time"
)

// Status is the lifecycle state of a spool item. Items enter as pending;
// external fetchers mark them completed or failed.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Item is one dispatched story URL persisted in SQLite.
type Item struct {
	ID           int64
	URL          string
	Site         string
	SourceFile   string
	Status       Status
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HealthSummary aggregates spool counts per lifecycle state.
type HealthSummary struct {
	Total     int
	Pending   int
	Completed int
	Failed    int
}

// DatabaseHealth captures diagnostic information about the spool database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	TableExists      bool
	ColumnsPresent   []string
	MissingColumns   []string
	IntegrityCheck   bool
	TotalItems       int
	Error            string
}

// AllStatuses lists every status in lifecycle order.
func AllStatuses() []Status {
	return []Status{StatusPending, StatusCompleted, StatusFailed}
}

// ParseStatus normalizes user input to a known Status.
func ParseStatus(value string) (Status, bool) {
	switch status := Status(strings.ToLower(strings.TrimSpace(value))); status {
	case StatusPending, StatusCompleted, StatusFailed:
		return status, true
	}
	return "", false
}
