package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Insert adds a dispatched story URL to the spool as pending and returns
// the stored row.
func (s *Store) Insert(ctx context.Context, item Item) (*Item, error) {
	url := strings.TrimSpace(item.URL)
	site := strings.TrimSpace(item.Site)
	switch {
	case url == "":
		return nil, errors.New("spool item URL is empty")
	case site == "":
		return nil, errors.New("spool item site is empty")
	}

	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.exec(
		ctx,
		`INSERT INTO spool_items (
            url, site, source_file, status, error_message, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		url,
		site,
		nullableString(item.SourceFile),
		StatusPending,
		nil,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert spool item: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("resolve inserted id: %w", err)
	}
	return s.GetByID(ctx, id)
}

// GetByID fetches a spool item by identifier. A missing row is not an
// error; both return values are nil.
func (s *Store) GetByID(ctx context.Context, id int64) (*Item, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM spool_items WHERE id = ?`, id)
	it, err := scanItem(row)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("get spool item: %w", err)
	}
	return it, nil
}

// List returns spool items filtered by status set (or all items when no
// status is provided), oldest first.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Item, error) {
	query := `SELECT ` + itemColumns + ` FROM spool_items`
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		query += ` WHERE status IN (` + makePlaceholders(len(statuses)) + `)`
		for _, status := range statuses {
			args = append(args, status)
		}
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list spool items: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// ClearCompleted removes only completed items from the spool.
func (s *Store) ClearCompleted(ctx context.Context) (int64, error) {
	return s.removeByStatus(ctx, StatusCompleted)
}

// ClearFailed removes only failed items from the spool.
func (s *Store) ClearFailed(ctx context.Context) (int64, error) {
	return s.removeByStatus(ctx, StatusFailed)
}

// Clear removes all items from the spool.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.exec(ctx, `DELETE FROM spool_items`)
	if err != nil {
		return 0, fmt.Errorf("clear spool: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) removeByStatus(ctx context.Context, status Status) (int64, error) {
	res, err := s.exec(ctx, `DELETE FROM spool_items WHERE status = ?`, status)
	if err != nil {
		return 0, fmt.Errorf("clear %s items: %w", status, err)
	}
	return res.RowsAffected()
}
