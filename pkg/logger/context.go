package logger

import (
	"context"
	"log/slog"
)

type contextKey struct{}

// With attaches fields to the logger carried by ctx and returns a
// context holding the enriched logger. Handlers and middleware use it
// to thread trace and user identifiers through a request.
func With(ctx context.Context, fields ...any) context.Context {
	return context.WithValue(ctx, contextKey{}, From(ctx).With(fields...))
}

// From extracts the request-scoped logger, or the shared one when the
// context carries none.
func From(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(contextKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return LoggerWrapper()
}
