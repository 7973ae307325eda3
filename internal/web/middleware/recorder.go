package middleware

import (
	"context"
	"net/http"
)

type recorderKey struct{}

func withRecorder(ctx context.Context, w *responseWriter) context.Context {
	return context.WithValue(ctx, recorderKey{}, w)
}

// RecordSession tells the access log which editing session served r.
// It is a no-op outside Logger.
func RecordSession(r *http.Request, id string) {
	if w, ok := r.Context().Value(recorderKey{}).(*responseWriter); ok {
		w.sessionID = id
	}
}
