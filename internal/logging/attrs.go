package logging

import (
	"context"
	"log/slog"
	"time"
)

// Attr aliases slog.Attr so call sites avoid a second logging import.
type Attr = slog.Attr

// Bool builds a boolean attribute.
func Bool(key string, value bool) Attr { return slog.Bool(key, value) }

// Int builds an integer attribute.
func Int(key string, value int) Attr { return slog.Int(key, value) }

// Int64 builds a 64-bit integer attribute.
func Int64(key string, value int64) Attr { return slog.Int64(key, value) }

// String builds a string attribute.
func String(key, value string) Attr { return slog.String(key, value) }

// Duration builds a duration attribute.
func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }

// Error builds the conventional error attribute; nil errors render empty.
func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.Any("error", err)
}

// WithComponent tags a logger so console output prefixes each line with the
// subsystem name.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		return NewNop()
	}
	return logger.With(String("component", component))
}

// NewNop returns a logger that discards everything.
func NewNop() *slog.Logger {
	return slog.New(nopHandler{})
}

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }
