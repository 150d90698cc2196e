package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

// countBy runs a two-column GROUP BY count query, handing each pair to
// collect.
func (s *Store) countBy(ctx context.Context, query string, collect func(key string, n int)) error {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return err
		}
		collect(key, n)
	}
	return rows.Err()
}

// Stats counts spool items per status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	stats := make(map[Status]int)
	err := s.countBy(ctx, `SELECT status, COUNT(1) FROM spool_items GROUP BY status`, func(key string, n int) {
		stats[Status(key)] = n
	})
	if err != nil {
		return nil, fmt.Errorf("spool stats: %w", err)
	}
	return stats, nil
}

// BySite counts spool items per site.
func (s *Store) BySite(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	err := s.countBy(ctx, `SELECT site, COUNT(1) FROM spool_items GROUP BY site`, func(key string, n int) {
		counts[key] = n
	})
	if err != nil {
		return nil, fmt.Errorf("spool by site: %w", err)
	}
	return counts, nil
}

// RetryFailed moves failed items back to pending so external fetchers pick
// them up again. With no ids every failed item is reset; ids that are not in
// failed state are left alone.
func (s *Store) RetryFailed(ctx context.Context, ids ...int64) (int64, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	query := `UPDATE spool_items SET status = ?, error_message = NULL, updated_at = ? WHERE status = ?`
	args := []any{StatusPending, timestamp, StatusFailed}
	if len(ids) > 0 {
		query = fmt.Sprintf(
			`UPDATE spool_items SET status = ?, error_message = NULL, updated_at = ? WHERE id IN (%s) AND status = ?`,
			makePlaceholders(len(ids)),
		)
		args = args[:2]
		for _, id := range ids {
			args = append(args, id)
		}
		args = append(args, StatusFailed)
	}

	res, err := s.exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("retry failed items: %w", err)
	}
	return res.RowsAffected()
}

// Health summarizes spool counts for diagnostic output. Total includes
// statuses the summary does not break out.
func (s *Store) Health(ctx context.Context) (HealthSummary, error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return HealthSummary{}, err
	}

	summary := HealthSummary{
		Pending:   stats[StatusPending],
		Completed: stats[StatusCompleted],
		Failed:    stats[StatusFailed],
	}
	for _, count := range stats {
		summary.Total += count
	}
	return summary, nil
}

// CheckHealth inspects the spool database file, schema, and integrity.
func (s *Store) CheckHealth(ctx context.Context) (DatabaseHealth, error) {
	health := DatabaseHealth{DBPath: s.path}

	if s.path == "" {
		return health, errors.New("spool database path is unknown")
	}
	info, err := os.Stat(s.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return health, nil
	case err != nil:
		return health, fmt.Errorf("stat spool database: %w", err)
	case info.IsDir():
		return health, fmt.Errorf("spool database path %q is a directory", s.path)
	}
	health.DatabaseExists = true

	if s.db == nil {
		return health, errors.New("spool database connection unavailable")
	}
	connCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(connCtx); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("ping spool database: %w", err)
	}
	health.DatabaseReadable = true

	health.TableExists, err = s.spoolTableExists(connCtx)
	if err != nil {
		health.Error = err.Error()
		return health, err
	}

	if health.TableExists {
		columns, err := s.spoolColumns(connCtx)
		if err != nil {
			health.Error = err.Error()
			return health, err
		}
		health.ColumnsPresent = columns
		health.MissingColumns = missingColumns(columns)

		if err := s.db.QueryRowContext(connCtx, "SELECT COUNT(*) FROM spool_items").Scan(&health.TotalItems); err != nil {
			health.Error = err.Error()
			return health, fmt.Errorf("count spool items: %w", err)
		}
	}

	var verdict string
	if err := s.db.QueryRowContext(connCtx, "PRAGMA integrity_check").Scan(&verdict); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("integrity check: %w", err)
	}
	health.IntegrityCheck = strings.EqualFold(verdict, "ok")

	return health, nil
}

func (s *Store) spoolTableExists(ctx context.Context) (bool, error) {
	var name string
	err := s.db.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'spool_items'",
	).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query table info: %w", err)
	}
	return true, nil
}

// spoolColumns lists the column names PRAGMA table_info reports.
func (s *Store) spoolColumns(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "PRAGMA table_info(spool_items)")
	if err != nil {
		return nil, fmt.Errorf("table info: %w", err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var (
			cid, notNull, pk int
			name, colType    string
			dflt             any
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("scan table info: %w", err)
		}
		columns = append(columns, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate table info: %w", err)
	}
	return columns, nil
}

// missingColumns reports which itemColumns entries are absent, sorted for
// stable CLI output.
func missingColumns(present []string) []string {
	have := make(map[string]bool, len(present))
	for _, col := range present {
		have[col] = true
	}

	var missing []string
	for _, col := range strings.Split(itemColumns, ", ") {
		if !have[col] {
			missing = append(missing, col)
		}
	}
	sort.Strings(missing)
	return missing
}
