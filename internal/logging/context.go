package logging

import "context"

type contextKey string

const ctxKeySessionID contextKey = "session_id"

// WithSessionID stores the editing session ID in ctx.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeySessionID, id)
}

// SessionID returns the editing session ID stored in ctx, if any.
func SessionID(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeySessionID).(string); ok {
		return v
	}
	return ""
}
