package notifications_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/ArcCdr/AutomatedFanfic/internal/config"
	"github.com/ArcCdr/AutomatedFanfic/internal/notifications"
)

func TestNewServiceReturnsNoopWhenUnconfigured(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	cfg.Notifications.PushbulletToken = ""
	svc := notifications.NewService(&cfg)
	if err := svc.Notify(context.Background(), "title", "body", "tag"); err != nil {
		t.Fatalf("expected noop service to return nil, got %v", err)
	}
	if err := svc.TestNotification(context.Background()); err != nil {
		t.Fatalf("expected noop test notification to return nil, got %v", err)
	}
}

func TestNtfyDelivery(t *testing.T) {
	var captured struct {
		title    string
		tags     string
		agent    string
		priority string
		body     string
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("method = %s, want POST", r.Method)
		}
		captured.title = r.Header.Get("Title")
		captured.tags = r.Header.Get("Tags")
		captured.agent = r.Header.Get("User-Agent")
		captured.priority = r.Header.Get("Priority")
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read request body: %v", err)
		}
		captured.body = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.RequestTimeout = 5

	svc := notifications.NewService(&cfg)
	err := svc.Notify(context.Background(), notifications.DiversionTitle, "www.fanfiction.net/s/456", "diverted")
	if err != nil {
		t.Fatalf("Notify returned error: %v", err)
	}

	if captured.title != "New Fanfiction Download" {
		t.Fatalf("title = %q", captured.title)
	}
	if captured.body != "www.fanfiction.net/s/456" {
		t.Fatalf("body = %q", captured.body)
	}
	if captured.tags != "diverted" {
		t.Fatalf("tags = %q", captured.tags)
	}
	if captured.agent == "" {
		t.Fatal("expected User-Agent header")
	}
	if captured.priority != "default" {
		t.Fatalf("priority = %q", captured.priority)
	}
}

func TestNotifyRetriesUntilSuccess(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.RetryAttempts = 3
	cfg.Notifications.RetryDelaySeconds = 0

	svc := notifications.NewService(&cfg)
	if err := svc.Notify(context.Background(), "title", "body", ""); err != nil {
		t.Fatalf("Notify returned error after retries: %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("server saw %d calls, want 3", got)
	}
}

func TestNotifyReportsExhaustedRetries(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.RetryAttempts = 3
	cfg.Notifications.RetryDelaySeconds = 0

	svc := notifications.NewService(&cfg)
	err := svc.Notify(context.Background(), "title", "body", "")
	if err == nil {
		t.Fatal("expected error after exhausted retries")
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("server saw %d calls, want 3", got)
	}
}

func TestNotifySkipsRetriesForRejectedCredentials(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.RetryAttempts = 3
	cfg.Notifications.RetryDelaySeconds = 0

	svc := notifications.NewService(&cfg)
	if err := svc.Notify(context.Background(), "title", "body", ""); err == nil {
		t.Fatal("expected error for rejected credentials")
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("server saw %d calls, want 1 (auth failures should not retry)", got)
	}
}
