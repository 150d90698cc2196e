package daemon_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/ArcCdr/AutomatedFanfic/internal/daemon"
	"github.com/ArcCdr/AutomatedFanfic/internal/logging"
	"github.com/ArcCdr/AutomatedFanfic/internal/queue"
	"github.com/ArcCdr/AutomatedFanfic/internal/sites"
	"github.com/ArcCdr/AutomatedFanfic/internal/testsupport"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestDaemonStartStop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	d, err := daemon.New(cfg, store, logging.NewNop(), nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	status := d.Status(ctx)
	if !status.Running {
		t.Fatal("expected daemon to report running")
	}
	if !status.Watcher.Running {
		t.Fatal("expected watcher to report running")
	}
	if status.PID != os.Getpid() {
		t.Fatalf("unexpected pid: %d", status.PID)
	}

	if err := d.Start(ctx); err == nil {
		t.Fatal("expected second start to fail")
	}

	d.Stop()
	status = d.Status(ctx)
	if status.Running {
		t.Fatal("expected daemon to be stopped")
	}
}

func TestDaemonSingleInstanceLock(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	first, err := daemon.New(cfg, store, logging.NewNop(), nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(first.Stop)

	ctx := context.Background()
	if err := first.Start(ctx); err != nil {
		t.Fatalf("Start first: %v", err)
	}

	second, err := daemon.New(cfg, store, logging.NewNop(), nil)
	if err != nil {
		t.Fatalf("daemon.New second: %v", err)
	}
	if err := second.Start(ctx); err == nil {
		second.Stop()
		t.Fatal("expected second instance to fail on the lock")
	}
}

func TestDaemonSpoolsURLFiles(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithSites(sites.ArchiveOfOurOwn),
		testsupport.WithPollInterval(3600),
	)
	store := testsupport.MustOpenStore(t, cfg)

	testsupport.WriteURLFile(t, cfg.Paths.WatchDir, "story", "https://archiveofourown.org/works/123")

	d, err := daemon.New(cfg, store, logging.NewNop(), nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	ctx := context.Background()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	waitFor(t, "url file to reach the spool", func() bool {
		items, err := store.List(ctx)
		return err == nil && len(items) == 1
	})

	items, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	got := items[0]
	if got.Site != sites.ArchiveOfOurOwn {
		t.Fatalf("unexpected site: %q", got.Site)
	}
	if got.URL != "archiveofourown.org/works/123" {
		t.Fatalf("unexpected url: %q", got.URL)
	}
	if got.Status != queue.StatusPending {
		t.Fatalf("unexpected status: %q", got.Status)
	}
	if got.SourceFile != "story.url" {
		t.Fatalf("unexpected source file: %q", got.SourceFile)
	}
}

func TestDaemonScanNow(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithPollInterval(3600))
	store := testsupport.MustOpenStore(t, cfg)

	d, err := daemon.New(cfg, store, logging.NewNop(), nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	if err := d.ScanNow(); err == nil {
		t.Fatal("expected ScanNow to fail before Start")
	}

	ctx := context.Background()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	waitFor(t, "first cycle", func() bool {
		return d.Status(ctx).Watcher.CycleCount >= 1
	})

	testsupport.WriteURLFile(t, cfg.Paths.WatchDir, "late", "https://example.com/story")
	if err := d.ScanNow(); err != nil {
		t.Fatalf("ScanNow: %v", err)
	}

	waitFor(t, "nudged cycle to spool the item", func() bool {
		items, err := store.List(ctx)
		return err == nil && len(items) == 1
	})
}

func TestDaemonTestNotificationUnconfigured(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	d, err := daemon.New(cfg, store, logging.NewNop(), nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	sent, message, err := d.TestNotification(context.Background())
	if err != nil {
		t.Fatalf("TestNotification: %v", err)
	}
	if sent {
		t.Fatal("expected no send without configured backends")
	}
	if message == "" {
		t.Fatal("expected explanatory message")
	}
}
