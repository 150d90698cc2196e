package daemonctl

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ArcCdr/AutomatedFanfic/internal/api"
	"github.com/ArcCdr/AutomatedFanfic/internal/queue"
	"github.com/ArcCdr/AutomatedFanfic/internal/sites"
	"github.com/ArcCdr/AutomatedFanfic/internal/testsupport"
)

func TestDeriveLogDir(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	if got := DeriveLogDir("/var/log/autofanfic/autofanfic.lock", nil); got != "/var/log/autofanfic" {
		t.Fatalf("DeriveLogDir lock path = %q", got)
	}
	if got := DeriveLogDir("", cfg); got != cfg.Paths.LogDir {
		t.Fatalf("DeriveLogDir config fallback = %q, want %q", got, cfg.Paths.LogDir)
	}
	if got := DeriveLogDir("", nil); got != "" {
		t.Fatalf("DeriveLogDir empty = %q, want empty", got)
	}
}

func TestForceKillProcessRefusesSelf(t *testing.T) {
	dir := t.TempDir()
	pidPath := filepath.Join(dir, "autofanfic.pid")
	if err := os.WriteFile(pidPath, []byte(strconv.Itoa(os.Getpid())+"\n"), 0o644); err != nil {
		t.Fatalf("write pid file: %v", err)
	}

	if _, err := ForceKillProcess(pidPath, "", 0); err == nil {
		t.Fatal("expected refusal for current process pid")
	} else if !strings.Contains(err.Error(), "refusing") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestForceKillProcessRequiresPID(t *testing.T) {
	dir := t.TempDir()
	pidPath := filepath.Join(dir, "autofanfic.pid")

	if _, err := ForceKillProcess(pidPath, "", 0); err == nil {
		t.Fatal("expected error when pid cannot be determined")
	}
}

func TestProcessInfoOffline(t *testing.T) {
	alive, pid, err := ProcessInfo(filepath.Join(t.TempDir(), "missing.sock"))
	if err != nil {
		t.Fatalf("ProcessInfo: %v", err)
	}
	if alive || pid != 0 {
		t.Fatalf("ProcessInfo = (%v, %d), want (false, 0)", alive, pid)
	}
}

func TestWaitForShutdownImmediateWhenSocketMissing(t *testing.T) {
	start := time.Now()
	if err := WaitForShutdown(filepath.Join(t.TempDir(), "missing.sock"), 2*time.Second); err != nil {
		t.Fatalf("WaitForShutdown: %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("WaitForShutdown took %s, want immediate return", elapsed)
	}
}

func TestStopAndTerminateReportsNotRunning(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	_, err := StopAndTerminate(filepath.Join(t.TempDir(), "missing.sock"), cfg, time.Second)
	if err != ErrDaemonNotRunning {
		t.Fatalf("StopAndTerminate error = %v, want ErrDaemonNotRunning", err)
	}
}

func TestBuildStatusSnapshotOffline(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if _, err := store.Insert(context.Background(), queue.Item{
		URL:  "archiveofourown.org/works/99",
		Site: "archiveofourown.org",
	}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	snapshot, err := BuildStatusSnapshot(context.Background(), filepath.Join(t.TempDir(), "missing.sock"), cfg)
	if err != nil {
		t.Fatalf("BuildStatusSnapshot: %v", err)
	}
	if snapshot.Running {
		t.Fatal("snapshot should report daemon offline")
	}
	if snapshot.WatchDir != cfg.Paths.WatchDir {
		t.Fatalf("WatchDir = %q, want %q", snapshot.WatchDir, cfg.Paths.WatchDir)
	}
	if snapshot.SpoolDBPath != cfg.SpoolDatabasePath() {
		t.Fatalf("SpoolDBPath = %q", snapshot.SpoolDBPath)
	}
	if snapshot.SpoolStats[string(queue.StatusPending)] != 1 {
		t.Fatalf("SpoolStats = %v, want one pending item", snapshot.SpoolStats)
	}
	if snapshot.SpoolBySite["archiveofourown.org"] != 1 {
		t.Fatalf("SpoolBySite = %v", snapshot.SpoolBySite)
	}
	if len(snapshot.SystemChecks) == 0 || len(snapshot.PathChecks) != 3 {
		t.Fatalf("checks missing: system=%d path=%d", len(snapshot.SystemChecks), len(snapshot.PathChecks))
	}
	if snapshot.SystemChecks[0].Label != "Daemon" || snapshot.SystemChecks[0].Severity != api.SeverityWarn {
		t.Fatalf("unexpected daemon line: %+v", snapshot.SystemChecks[0])
	}
}

func TestBuildSystemChecksDiversionLine(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithFanfictionNetDisabled())

	lines := BuildSystemChecks(cfg, nil)
	found := false
	for _, line := range lines {
		if line.Label == sites.FanFictionNet {
			found = true
			if line.Severity != api.SeverityInfo {
				t.Fatalf("diversion severity = %q, want info", line.Severity)
			}
		}
	}
	if !found {
		t.Fatal("expected a fanfiction.net status line")
	}
}
