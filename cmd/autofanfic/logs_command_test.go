package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ArcCdr/AutomatedFanfic/internal/logging"
)

func TestLogsShowsLastLines(t *testing.T) {
	cfg, configPath, socketPath := offlineFixture(t)

	logPath := filepath.Join(cfg.Paths.LogDir, logging.LogFileName)
	content := "first line\nsecond line\nthird line\n"
	if err := os.WriteFile(logPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	out, _, err := runCommand(t, []string{"logs", "--lines", "2"}, socketPath, configPath)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if strings.Contains(out, "first line") {
		t.Fatalf("expected first line to be trimmed, got %q", out)
	}
	mustContain(t, out, "second line")
	mustContain(t, out, "third line")
}

func TestLogsMissingFile(t *testing.T) {
	_, configPath, socketPath := offlineFixture(t)

	out, _, err := runCommand(t, []string{"logs"}, socketPath, configPath)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	mustContain(t, out, "No log output yet")
}
