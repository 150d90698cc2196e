package api

import (
	"sort"
	"time"

	"github.com/ArcCdr/AutomatedFanfic/internal/queue"
)

// FromSpoolItem converts a queue item into its transport representation.
func FromSpoolItem(item *queue.Item) SpoolEntry {
	if item == nil {
		return SpoolEntry{}
	}
	entry := SpoolEntry{
		ID:           item.ID,
		URL:          item.URL,
		Site:         item.Site,
		SourceFile:   item.SourceFile,
		Status:       string(item.Status),
		ErrorMessage: item.ErrorMessage,
	}
	if !item.CreatedAt.IsZero() {
		entry.CreatedAt = item.CreatedAt.UTC().Format(time.RFC3339)
	}
	if !item.UpdatedAt.IsZero() {
		entry.UpdatedAt = item.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return entry
}

// FromSpoolItems converts a slice of queue items, skipping nil entries.
func FromSpoolItems(items []*queue.Item) []SpoolEntry {
	if len(items) == 0 {
		return nil
	}
	entries := make([]SpoolEntry, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		entries = append(entries, FromSpoolItem(item))
	}
	return entries
}

// MergeSpoolStats converts status-keyed counts into plain string keys.
func MergeSpoolStats(stats map[queue.Status]int) map[string]int {
	merged := make(map[string]int, len(stats))
	for status, count := range stats {
		merged[string(status)] = count
	}
	return merged
}

// SortSpoolEntriesNewestFirst orders entries by CreatedAt descending,
// breaking ties by ID descending.
func SortSpoolEntriesNewestFirst(entries []SpoolEntry) []SpoolEntry {
	if len(entries) == 0 {
		return nil
	}
	sorted := make([]SpoolEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		ti := ParseSpoolTime(sorted[i].CreatedAt)
		tj := ParseSpoolTime(sorted[j].CreatedAt)
		if ti.Equal(tj) {
			return sorted[i].ID > sorted[j].ID
		}
		return ti.After(tj)
	})
	return sorted
}

// ParseSpoolTime parses a spool timestamp for display formatting. Invalid
// or empty values yield the zero time.
func ParseSpoolTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t
	}
	return time.Time{}
}
