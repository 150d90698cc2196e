package services_test

import (
	"context"
	"testing"

	"github.com/ArcCdr/AutomatedFanfic/internal/services"
)

func TestCorrelationRoundTrip(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithItemID(ctx, 7001)
	ctx = services.WithSite(ctx, "archiveofourown.org")
	ctx = services.WithCycleID(ctx, "cycle-af19")
	ctx = services.WithRequestID(ctx, "req-0042")

	if id, ok := services.ItemIDFromContext(ctx); !ok || id != 7001 {
		t.Fatalf("item id = %d (ok=%t), want 7001", id, ok)
	}

	probes := []struct {
		name string
		got  func(context.Context) (string, bool)
		want string
	}{
		{"site", services.SiteFromContext, "archiveofourown.org"},
		{"cycle", services.CycleIDFromContext, "cycle-af19"},
		{"request", services.RequestIDFromContext, "req-0042"},
	}
	for _, probe := range probes {
		value, ok := probe.got(ctx)
		if !ok || value != probe.want {
			t.Fatalf("%s = %q (ok=%t), want %q", probe.name, value, ok, probe.want)
		}
	}
}

func TestLookupsOnBareContext(t *testing.T) {
	ctx := context.Background()
	if id, ok := services.ItemIDFromContext(ctx); ok {
		t.Fatalf("bare context yielded item id %d", id)
	}
	if _, ok := services.SiteFromContext(ctx); ok {
		t.Fatal("bare context yielded a site")
	}
	if _, ok := services.RequestIDFromContext(ctx); ok {
		t.Fatal("bare context yielded a request id")
	}
}

func TestBlankValuesAreNotStored(t *testing.T) {
	ctx := services.WithSite(context.Background(), "")
	if _, ok := services.SiteFromContext(ctx); ok {
		t.Fatal("blank site should not round-trip")
	}
	ctx = services.WithCycleID(ctx, "")
	if _, ok := services.CycleIDFromContext(ctx); ok {
		t.Fatal("blank cycle id should not round-trip")
	}
}
