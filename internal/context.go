package internal

import (
	"context"
	"time"
)

type ctxKey string

// ContextUserKey carries the account id the JWT middleware resolved
// for the request.
const ContextUserKey ctxKey = "userID"

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if userID, ok := ctx.Value(ContextUserKey).(string); ok {
		return userID
	}
	return ""
}

func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ContextUserKey, userID)
}

// WithTimeout bounds a storage call. A zero or negative duration falls
// back to 5 seconds.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
