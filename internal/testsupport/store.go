package testsupport

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/ArcCdr/AutomatedFanfic/internal/config"
	"github.com/ArcCdr/AutomatedFanfic/internal/queue"
)

// MustOpenStore opens the spool store for cfg and closes it when the test ends.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("open spool store: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// InsertItem spools a story URL for tests using the provided store.
func InsertItem(t testing.TB, store *queue.Store, url, site, sourceFile string) *queue.Item {
	t.Helper()

	item, err := store.Insert(context.Background(), queue.Item{URL: url, Site: site, SourceFile: sourceFile})
	if err != nil {
		t.Fatalf("store.Insert: %v", err)
	}
	return item
}

// MarkItemStatus flips a spooled item's status over a separate connection,
// the way an external fetcher process would.
func MarkItemStatus(t testing.TB, store *queue.Store, id int64, status queue.Status, errorMessage string) {
	t.Helper()

	db, err := sql.Open("sqlite", store.Path())
	if err != nil {
		t.Fatalf("open spool database: %v", err)
	}
	defer db.Close()

	_, err = db.Exec(
		`UPDATE spool_items SET status = ?, error_message = ?, updated_at = ? WHERE id = ?`,
		string(status), errorMessage, time.Now().UTC().Format(time.RFC3339Nano), id,
	)
	if err != nil {
		t.Fatalf("update spool item: %v", err)
	}
}
