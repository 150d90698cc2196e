package logging_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ArcCdr/AutomatedFanfic/internal/config"
	"github.com/ArcCdr/AutomatedFanfic/internal/logging"
	"github.com/ArcCdr/AutomatedFanfic/internal/services"
)

func newFileLogger(t *testing.T, path, level string) *slog.Logger {
	t.Helper()
	logger, err := logging.New(logging.Options{
		Format:       "console",
		Level:        level,
		Outputs:      []string{path},
		ErrorOutputs: []string{path},
	})
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}
	return logger
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(content)
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	logger.Info("daemon booted")

	out := readLog(t, filepath.Join(cfg.Paths.LogDir, logging.LogFileName))
	if !strings.Contains(out, "daemon booted") {
		t.Fatalf("log file missing message: %q", out)
	}
}

func TestConsoleCallerByLevel(t *testing.T) {
	tests := []struct {
		name       string
		level      string
		wantCaller bool
	}{
		{"debug level annotates call sites", "debug", true},
		{"info level stays clean", "info", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out.log")
			newFileLogger(t, path, tc.level).Info("caller probe")
			got := strings.Contains(readLog(t, path), ".go:")
			if got != tc.wantCaller {
				t.Fatalf("caller annotation = %v, want %v at level %s", got, tc.wantCaller, tc.level)
			}
		})
	}
}

func TestConsoleLoggerPrefixesComponent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "component.log")
	logger := newFileLogger(t, path, "info")

	logging.NewComponentLogger(logger, "watcher").Info("cycle complete")

	if out := readLog(t, path); !strings.Contains(out, "watcher: cycle complete") {
		t.Fatalf("expected component prefix, got %q", out)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestUnknownLevelFallsBackToInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "level.log")
	logger := newFileLogger(t, path, "chatty")

	logger.Debug("hidden detail")
	logger.Info("visible line")

	out := readLog(t, path)
	if strings.Contains(out, "hidden detail") {
		t.Fatalf("debug output leaked: %q", out)
	}
	if !strings.Contains(out, "visible line") {
		t.Fatalf("info output missing: %q", out)
	}
}

func TestWithContextAnnotatesRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "context.log")
	logger := newFileLogger(t, path, "info")

	ctx := services.WithItemID(context.Background(), 123)
	ctx = services.WithSite(ctx, "archiveofourown.org")
	ctx = services.WithCycleID(ctx, "cycle-xyz")
	logging.WithContext(ctx, logger).Info("annotated")

	out := readLog(t, path)
	for _, want := range []string{
		logging.FieldItemID + "=123",
		logging.FieldSite + "=archiveofourown.org",
		logging.FieldCycleID + "=cycle-xyz",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %q", want, out)
		}
	}
}
