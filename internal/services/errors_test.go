package services_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/ArcCdr/AutomatedFanfic/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	cause := errors.New("boom")
	err := services.Wrap(services.ErrTransient, "spool", "insert", "failed", cause)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("marker lost in wrap: %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("cause lost in wrap: %v", err)
	}
	for _, fragment := range []string{"spool", "insert", "failed"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Fatalf("wrapped message %q missing %q", err.Error(), fragment)
		}
	}
}

func TestWrapNilMarkerDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "watcher", "scan", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("nil marker should default to transient, got %v", err)
	}
}

func TestMarkerTaxonomy(t *testing.T) {
	cases := []struct {
		marker error
		fatal  bool
	}{
		{services.ErrValidation, true},
		{services.ErrConfiguration, true},
		{services.ErrNotFound, false},
		{services.ErrTimeout, false},
		{services.ErrTransient, false},
	}
	for _, tc := range cases {
		err := services.Wrap(tc.marker, "extractor", "scan", "", nil)
		if !errors.Is(err, tc.marker) {
			t.Fatalf("marker %v lost in wrap: %v", tc.marker, err)
		}
		if got := services.IsFatal(err); got != tc.fatal {
			t.Fatalf("IsFatal(%v) = %v, want %v", tc.marker, got, tc.fatal)
		}
	}
}

func TestIsFatalNil(t *testing.T) {
	if services.IsFatal(nil) {
		t.Fatal("nil error should not be fatal")
	}
}
