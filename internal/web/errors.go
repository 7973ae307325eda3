package web

// errors.go turns handler errors into responses. The technical error is
// logged with the request and session IDs; the client gets the mapped
// user message as JSON, an HTML fragment for HTMX-style requests, or plain
// text.

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/exposure/internal/category"
	"github.com/JonMunkholm/exposure/internal/logging"
	"github.com/JonMunkholm/exposure/internal/results"
	"github.com/JonMunkholm/exposure/internal/session"
	"github.com/JonMunkholm/exposure/internal/web/views"
)

// ErrorResponse is the JSON body of API error responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

var errFileTooLarge = errors.New("file too large")

// statusFor picks the HTTP status for an error returned by the domain.
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes), errors.Is(err, errFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, category.ErrUnknownCode),
		errors.Is(err, results.ErrUnknownPane):
		return http.StatusNotFound
	case errors.Is(err, session.ErrNoExposureInput),
		errors.Is(err, session.ErrNothingToCalculate),
		errors.Is(err, session.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, category.ErrInvalidNumber),
		errors.Is(err, category.ErrInvalidFlag),
		errors.Is(err, category.ErrNotEditable):
		return http.StatusBadRequest
	case errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// fail responds with the status statusFor picks for err.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	respondError(w, r, err, statusFor(err))
}

// respondError logs err and writes the user-facing message in the format
// the client asked for.
func respondError(w http.ResponseWriter, r *http.Request, err error, status int) {
	msg := category.MapError(err)

	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request error", attrs...)
	} else {
		logger.Warn("request rejected", attrs...)
	}

	switch {
	case isHTMX(r):
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("HX-Retarget", "#alerts")
		w.WriteHeader(status)
		if err := views.ErrorAlert(msg.Message, msg.Action, msg.Code).Render(r.Context(), w); err != nil {
			logger.Error("render error alert", "error", err)
		}
	case wantsJSON(r):
		writeJSONStatus(w, r, status, ErrorResponse{
			Error:   msg.Message,
			Message: msg.Message,
			Action:  msg.Action,
			Code:    msg.Code,
		})
	default:
		http.Error(w, msg.Message+" ("+msg.Code+")", status)
	}
}

// writeJSON encodes v as a 200 response.
func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	writeJSONStatus(w, r, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("json encode error", "error", err)
	}
}

// isHTMX reports whether the request came from the page script and expects
// an HTML fragment back.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON reports whether the client prefers a JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Accept"), "text/html") {
		return false
	}
	return strings.HasPrefix(r.URL.Path, "/api/")
}

// wantsHTMLPage reports whether the request is a plain browser navigation or
// form post, which should be answered with a redirect.
func wantsHTMLPage(r *http.Request) bool {
	return !isHTMX(r) && !wantsJSON(r)
}
