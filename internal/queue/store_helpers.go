package queue

import (
	"database/sql"
	"strings"
	"time"
)

const itemColumns = "id, url, site, source_file, status, error_message, created_at, updated_at"

// scanItem reads one spool row. The column order must match itemColumns.
func scanItem(scanner interface{ Scan(dest ...any) error }) (*Item, error) {
	var (
		item       Item
		status     string
		sourceFile sql.NullString
		errMsg     sql.NullString
		created    sql.NullString
		updated    sql.NullString
	)
	if err := scanner.Scan(&item.ID, &item.URL, &item.Site, &sourceFile, &status, &errMsg, &created, &updated); err != nil {
		return nil, err
	}

	item.Status = Status(status)
	item.SourceFile = sourceFile.String
	item.ErrorMessage = errMsg.String
	item.CreatedAt = parseStoredTime(created.String)
	item.UpdatedAt = parseStoredTime(updated.String)
	return &item, nil
}

// parseStoredTime accepts the RFC3339Nano values this code writes and the
// bare datetime format SQLite produces for CURRENT_TIMESTAMP defaults.
// Unparseable input yields the zero time.
func parseStoredTime(value string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

// nullableString maps "" to SQL NULL so optional columns stay NULL instead
// of holding empty text.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// makePlaceholders renders the "?,?,..." list for an IN clause with count values.
func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", count), ",")
}
