package logging

import (
	"context"
	"log/slog"

	"github.com/ArcCdr/AutomatedFanfic/internal/services"
)

const (
	// FieldComponent names the subsystem that emitted a record.
	FieldComponent = "component"
	// FieldItemID is the standardized structured logging key for spool item identifiers.
	FieldItemID = "item_id"
	// FieldSite is the standardized structured logging key for site identifiers.
	FieldSite = "site"
	// FieldSourceFile is the standardized structured logging key for the URL file a record originated from.
	FieldSourceFile = "source_file"
	// FieldCycleID is the standardized structured logging key for poll-cycle correlation identifiers.
	FieldCycleID = "cycle_id"
	// FieldRequestID is the standardized structured logging key for handoff correlation identifiers.
	FieldRequestID = "request_id"
	// FieldSessionID is the standardized structured logging key for daemon session identifiers.
	FieldSessionID = "session_id"
	// FieldEventType is the standardized structured logging key for machine-readable event names.
	FieldEventType = "event_type"
	// FieldErrorHint is the standardized structured logging key for operator next steps.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized structured logging key for the user-visible consequence of a failure.
	FieldImpact = "impact"
)

// ContextFields collects the correlation attributes carried by ctx.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	var fields []slog.Attr
	if itemID, ok := services.ItemIDFromContext(ctx); ok {
		fields = append(fields, slog.Int64(FieldItemID, itemID))
	}
	if site, ok := services.SiteFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldSite, site))
	}
	if cycle, ok := services.CycleIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCycleID, cycle))
	}
	if request, ok := services.RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRequestID, request))
	}
	return fields
}

// WithContext returns logger extended with every correlation attribute
// present in ctx. A nil logger gets the no-op logger.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	attrs := ContextFields(ctx)
	if len(attrs) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(attrs)...)
}

func attrsToArgs(attrs []slog.Attr) []any {
	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}
	return args
}
