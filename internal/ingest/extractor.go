package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ArcCdr/AutomatedFanfic/internal/logging"
	"github.com/ArcCdr/AutomatedFanfic/internal/services"
)

// URLFileExt is the extension marking files the extractor consumes.
const URLFileExt = ".url"

// Extractor drains story URL files from a single watch directory.
type Extractor struct {
	dir    string
	logger *slog.Logger
}

// NewExtractor validates the watch directory, creating it when absent.
// A path that can neither be found nor created is the one fatal condition
// in the pipeline.
func NewExtractor(dir string, logger *slog.Logger) (*Extractor, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, services.Wrap(services.ErrConfiguration, "extractor", "new", "watch directory is empty", nil)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "extractor", "new",
			fmt.Sprintf("create watch directory %s", dir), err)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Extractor{
		dir:    dir,
		logger: logging.NewComponentLogger(logger, "extractor"),
	}, nil
}

// Dir returns the watched directory.
func (e *Extractor) Dir() string { return e.dir }

// Extract scans the watch directory once and returns the items it could
// consume. A file yields an item only after its content was read, trimmed
// non-empty, and the file removed; any per-file failure keeps the file for
// the next cycle. Extract errors only when the directory listing itself
// fails.
func (e *Extractor) Extract(ctx context.Context) ([]Item, error) {
	entries, err := os.ReadDir(e.dir)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "extractor", "scan", "read watch directory", err)
	}

	logger := logging.WithContext(ctx, e.logger)
	var items []Item
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != URLFileExt {
			continue
		}

		path := filepath.Join(e.dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Debug("url file unreadable; keeping for next cycle",
				logging.Error(err),
				logging.String(logging.FieldSourceFile, entry.Name()),
			)
			continue
		}

		content := strings.TrimSpace(string(data))
		if content == "" {
			logger.Debug("url file empty; keeping for next cycle",
				logging.String(logging.FieldSourceFile, entry.Name()),
			)
			continue
		}

		if err := os.Remove(path); err != nil {
			logger.Debug("url file delete failed; keeping for next cycle",
				logging.Error(err),
				logging.String(logging.FieldSourceFile, entry.Name()),
			)
			continue
		}

		items = append(items, Item{RawURL: content, SourceFile: entry.Name()})
		logger.Debug("url file consumed",
			logging.String(logging.FieldSourceFile, entry.Name()),
		)
	}
	return items, nil
}
