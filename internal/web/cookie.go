package web

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/JonMunkholm/exposure/internal/logging"
	"github.com/JonMunkholm/exposure/internal/web/middleware"
)

// sessionCookie makes sure every request carries an editing session ID. A
// missing or malformed cookie gets a fresh random ID. The ID is stored in
// the request context for handlers and log lines.
func (s *Server) sessionCookie(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if c, err := r.Cookie(s.cfg.Session.CookieName); err == nil {
			if parsed, err := uuid.Parse(c.Value); err == nil {
				id = parsed.String()
			}
		}

		if id == "" {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     s.cfg.Session.CookieName,
				Value:    id,
				Path:     "/",
				MaxAge:   int(s.cfg.Session.TTL.Seconds()),
				HttpOnly: true,
				Secure:   s.cfg.Session.SecureCookie,
				SameSite: http.SameSiteLaxMode,
			})
		}

		middleware.RecordSession(r, id)
		ctx := logging.WithSessionID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// sessionID returns the editing session ID set by sessionCookie.
func sessionID(r *http.Request) string {
	return logging.SessionID(r.Context())
}
