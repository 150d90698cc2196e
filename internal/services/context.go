package services

import "context"

type contextKey int

const (
	itemKey contextKey = iota
	siteKey
	cycleKey
	requestKey
)

// WithItemID annotates context with the spool item identifier.
func WithItemID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, itemKey, id)
}

// ItemIDFromContext extracts the spool item identifier if present.
func ItemIDFromContext(ctx context.Context) (int64, bool) {
	switch val := ctx.Value(itemKey).(type) {
	case int64:
		return val, true
	case int:
		return int64(val), true
	}
	return 0, false
}

// WithSite annotates context with the site identifier an item was classified as.
func WithSite(ctx context.Context, site string) context.Context {
	return withString(ctx, siteKey, site)
}

// SiteFromContext returns the site identifier if present.
func SiteFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, siteKey)
}

// WithCycleID annotates context with the poll-cycle correlation identifier.
func WithCycleID(ctx context.Context, id string) context.Context {
	return withString(ctx, cycleKey, id)
}

// CycleIDFromContext returns the poll-cycle correlation identifier if present.
func CycleIDFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, cycleKey)
}

// WithRequestID annotates context with a per-item handoff correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	return withString(ctx, requestKey, id)
}

// RequestIDFromContext returns the handoff correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, requestKey)
}

func withString(ctx context.Context, key contextKey, value string) context.Context {
	if value == "" {
		return ctx
	}
	return context.WithValue(ctx, key, value)
}

func stringFrom(ctx context.Context, key contextKey) (string, bool) {
	value, ok := ctx.Value(key).(string)
	return value, ok && value != ""
}
