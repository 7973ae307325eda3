package web

import (
	"errors"
	"net/http"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/exposure/internal/logging"
	"github.com/JonMunkholm/exposure/internal/results"
	"github.com/JonMunkholm/exposure/internal/session"
	"github.com/JonMunkholm/exposure/internal/web/views"
)

// handleDataEntry renders the data entry page, building the table on the
// session's first visit.
func (s *Server) handleDataEntry(w http.ResponseWriter, r *http.Request) {
	snap, err := s.sessions.Open(r.Context(), sessionID(r))
	if err != nil {
		fail(w, r, err)
		return
	}

	body := views.DataEntry(snap.Table, snap.CanCalculate)
	s.renderPage(w, r, views.Layout("Data entry", views.TabDataEntry, snap.HasExposureInput, body))
}

// handleResults renders the results stage. Without a pane in the URL the
// summary pane is shown. HTMX requests get only the pane.
func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "pane")
	if slug == "" {
		slug = results.DefaultPane
	}

	pane, err := results.Lookup(slug)
	if err != nil {
		fail(w, r, err)
		return
	}

	entries, err := s.sessions.ExposureInput(r.Context(), sessionID(r))
	if err != nil {
		if wantsHTMLPage(r) && (errors.Is(err, session.ErrNoExposureInput) || errors.Is(err, session.ErrSessionNotFound)) {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		fail(w, r, err)
		return
	}

	summary := results.Summarize(entries)
	if isHTMX(r) {
		s.renderPage(w, r, views.ResultsPane(pane, summary, entries))
		return
	}

	body := views.Results(results.Panes(), pane, summary, entries)
	s.renderPage(w, r, views.Layout("Results", views.TabResults, true, body))
}

// renderPage writes an HTML component with a 200 status.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render page", "path", r.URL.Path, "error", err)
	}
}
