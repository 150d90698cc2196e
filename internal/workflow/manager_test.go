package workflow_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ArcCdr/AutomatedFanfic/internal/ingest"
	"github.com/ArcCdr/AutomatedFanfic/internal/logging"
	"github.com/ArcCdr/AutomatedFanfic/internal/queue"
	"github.com/ArcCdr/AutomatedFanfic/internal/services"
	"github.com/ArcCdr/AutomatedFanfic/internal/sites"
	"github.com/ArcCdr/AutomatedFanfic/internal/testsupport"
	"github.com/ArcCdr/AutomatedFanfic/internal/workflow"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestNewManagerBuildsDestinations(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithSites(sites.ArchiveOfOurOwn, sites.RoyalRoad))
	store := testsupport.MustOpenStore(t, cfg)

	mgr, err := workflow.NewManager(cfg, store, logging.NewNop())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	destinations := mgr.Destinations()
	for _, site := range []string{sites.ArchiveOfOurOwn, sites.RoyalRoad, sites.Other} {
		if destinations[site] == nil {
			t.Fatalf("expected destination for %q", site)
		}
		if mgr.Queue(site) == nil {
			t.Fatalf("expected queue for %q", site)
		}
	}
	if len(destinations) != 3 {
		t.Fatalf("expected 3 destinations, got %d", len(destinations))
	}

	status := mgr.Status()
	if status.Running {
		t.Fatal("manager should not report running before Start")
	}
	if len(status.Queues) != 3 {
		t.Fatalf("expected 3 queue summaries, got %d", len(status.Queues))
	}
	if last := status.Queues[len(status.Queues)-1]; last.Site != sites.Other {
		t.Fatalf("expected catch-all queue last, got %q", last.Site)
	}
}

func TestNewManagerRejectsUnknownSite(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithSites("wattpad.com"))
	store := testsupport.MustOpenStore(t, cfg)

	if _, err := workflow.NewManager(cfg, store, logging.NewNop()); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestManagerSpoolsOfferedItems(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithSites(sites.ArchiveOfOurOwn))
	store := testsupport.MustOpenStore(t, cfg)

	mgr, err := workflow.NewManager(cfg, store, logging.NewNop())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if err := mgr.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(mgr.Stop)

	sink := mgr.Destinations()[sites.ArchiveOfOurOwn]
	item := ingest.Item{
		RawURL:        "https://archiveofourown.org/works/777/chapters/1",
		Site:          sites.ArchiveOfOurOwn,
		NormalizedURL: "archiveofourown.org/works/777",
		SourceFile:    "story.url",
	}
	if err := sink.Offer(item); err != nil {
		t.Fatalf("Offer: %v", err)
	}

	waitFor(t, "item to reach the spool", func() bool {
		return mgr.Status().Spooled == 1
	})

	records, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 spooled record, got %d", len(records))
	}
	got := records[0]
	if got.URL != item.NormalizedURL {
		t.Fatalf("expected normalized URL, got %q", got.URL)
	}
	if got.Site != sites.ArchiveOfOurOwn || got.SourceFile != "story.url" {
		t.Fatalf("unexpected record fields: %+v", got)
	}
	if got.Status != queue.StatusPending {
		t.Fatalf("expected pending status, got %q", got.Status)
	}
}

func TestManagerFallsBackToRawURL(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	mgr, err := workflow.NewManager(cfg, store, logging.NewNop())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if err := mgr.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(mgr.Stop)

	sink := mgr.Destinations()[sites.Other]
	if err := sink.Offer(ingest.Item{RawURL: "https://example.com/story", Site: sites.Other}); err != nil {
		t.Fatalf("Offer: %v", err)
	}

	waitFor(t, "item to reach the spool", func() bool {
		return mgr.Status().Spooled == 1
	})

	records, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 1 || records[0].URL != "https://example.com/story" {
		t.Fatalf("expected raw URL fallback, got %+v", records)
	}
}

func TestManagerDropsWhenSpoolUnavailable(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	mgr, err := workflow.NewManager(cfg, store, logging.NewNop())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if err := mgr.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(mgr.Stop)

	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	sink := mgr.Destinations()[sites.Other]
	if err := sink.Offer(ingest.Item{RawURL: "https://example.com/story", Site: sites.Other}); err != nil {
		t.Fatalf("Offer: %v", err)
	}

	waitFor(t, "drop counter to advance", func() bool {
		return mgr.Status().Dropped == 1
	})
	if spooled := mgr.Status().Spooled; spooled != 0 {
		t.Fatalf("expected no spooled items, got %d", spooled)
	}
}

func TestManagerCountsRejectedOffers(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithQueueCapacity(1))
	store := testsupport.MustOpenStore(t, cfg)

	mgr, err := workflow.NewManager(cfg, store, logging.NewNop())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	// Lanes are never started, so the first item stays buffered and the
	// second offer must bounce off the full queue.
	sink := mgr.Destinations()[sites.Other]
	if err := sink.Offer(ingest.Item{RawURL: "https://example.com/a", Site: sites.Other}); err != nil {
		t.Fatalf("first Offer: %v", err)
	}
	err = sink.Offer(ingest.Item{RawURL: "https://example.com/b", Site: sites.Other})
	if !errors.Is(err, workflow.ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	if dropped := mgr.Status().Dropped; dropped != 1 {
		t.Fatalf("expected 1 dropped offer, got %d", dropped)
	}
}

func TestManagerDoubleStartFails(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	mgr, err := workflow.NewManager(cfg, store, logging.NewNop())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if err := mgr.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(mgr.Stop)

	if err := mgr.Start(context.Background()); err == nil {
		t.Fatal("expected second Start to fail")
	}
	if !mgr.Running() {
		t.Fatal("manager should still be running after rejected Start")
	}
}

func TestManagerStopWithoutStart(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	mgr, err := workflow.NewManager(cfg, store, logging.NewNop())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	mgr.Stop()
	mgr.Stop()
	if mgr.Running() {
		t.Fatal("manager should not report running")
	}
}
