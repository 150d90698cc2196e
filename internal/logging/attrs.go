package logging

import (
	"context"
	"log/slog"
)

// Thin wrappers so callers build attrs without importing slog next to this
// package everywhere.

func String(key, value string) slog.Attr { return slog.String(key, value) }

func Int(key string, value int) slog.Attr { return slog.Int(key, value) }

func Int64(key string, value int64) slog.Attr { return slog.Int64(key, value) }

func Bool(key string, value bool) slog.Attr { return slog.Bool(key, value) }

// Error tags err under the shared "error" key. A nil err still emits the
// key so log greps stay uniform.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

// NewNop returns a logger that drops everything, the default for
// constructors that accept an optional logger.
func NewNop() *slog.Logger {
	return slog.New(discardHandler{})
}

// discardHandler matches Go 1.24's slog.DiscardHandler, which is not
// available on the Go 1.21 toolchain this module builds with.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return discardHandler{} }
func (discardHandler) WithGroup(string) slog.Handler             { return discardHandler{} }

// NewComponentLogger tags every record with the component field the console
// handler turns into a message prefix.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}
