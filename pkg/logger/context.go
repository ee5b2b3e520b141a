package logger

import (
	"context"
	"log/slog"
)

type ctxKey string

const loggerKey ctxKey = "logger"

// With returns a context whose logger carries the extra fields, for
// request-scoped attributes like user_id or plan_id.
func With(ctx context.Context, fields ...any) context.Context {
	l := From(ctx).With(fields...)
	return context.WithValue(ctx, loggerKey, l)
}

// From returns the logger stored in the context, falling back to the
// process logger when the request carried none.
func From(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return l
	}
	return LoggerWrapper()
}
