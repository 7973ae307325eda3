package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/JonMunkholm/exposure/internal/category"
	"github.com/JonMunkholm/exposure/internal/session"
	"github.com/JonMunkholm/exposure/internal/web/views"
)

const importIgnored = "The file could not be read as exposure input. The table was reset to its defaults."

// errInvalidSnapshot is returned for table bodies that are not JSON rows.
var errInvalidSnapshot = errors.New("invalid table snapshot")

// TableResponse is the JSON form of an editor snapshot.
type TableResponse struct {
	State            string         `json:"state"`
	CanCalculate     bool           `json:"can_calculate"`
	HasExposureInput bool           `json:"has_exposure_input"`
	Applied          *bool          `json:"applied,omitempty"`
	Table            []category.Row `json:"table"`
}

// CellEdit is the body of a single cell edit.
type CellEdit struct {
	GroupCode string `json:"group_code"`
	Field     string `json:"field"`
	Value     string `json:"value"`
}

// handleGetTable returns the session's table, building it on first use.
func (s *Server) handleGetTable(w http.ResponseWriter, r *http.Request) {
	snap, err := s.sessions.Open(r.Context(), sessionID(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	s.respondTable(w, r, snap, nil)
}

// handlePutTable replaces the table with a full snapshot from the client.
func (s *Server) handlePutTable(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Import.MaxFileSize)

	var rows []category.Row
	if err := json.NewDecoder(r.Body).Decode(&rows); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			fail(w, r, fmt.Errorf("%w: %w", errFileTooLarge, err))
			return
		}
		respondError(w, r, fmt.Errorf("%w: %v", errInvalidSnapshot, err), http.StatusBadRequest)
		return
	}

	snap, err := s.sessions.EditTable(r.Context(), sessionID(r), rows)
	if err != nil {
		fail(w, r, err)
		return
	}
	s.respondTable(w, r, snap, nil)
}

// handleEditCell applies one cell edit. The edit comes as a form post from
// the page script or as a JSON body.
func (s *Server) handleEditCell(w http.ResponseWriter, r *http.Request) {
	var edit CellEdit
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&edit); err != nil {
			respondError(w, r, fmt.Errorf("%w: %v", errInvalidSnapshot, err), http.StatusBadRequest)
			return
		}
	} else {
		edit = CellEdit{
			GroupCode: r.FormValue("group_code"),
			Field:     r.FormValue("field"),
			Value:     r.FormValue("value"),
		}
	}

	snap, err := s.sessions.EditCell(r.Context(), sessionID(r), edit.GroupCode, edit.Field, edit.Value)
	if err != nil {
		fail(w, r, err)
		return
	}
	s.respondTable(w, r, snap, nil)
}

// handleReset discards all edits.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	if _, err := s.sessions.Open(r.Context(), id); err != nil {
		fail(w, r, err)
		return
	}

	snap, err := s.sessions.Reset(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	s.respondTable(w, r, snap, nil)
}

// handleImport restores the table from an uploaded file. The file may be a
// multipart "file" field or the raw request body, holding either the JSON
// export or a data URL of it. Unreadable contents reset the table.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	contents, err := s.readImport(w, r)
	if err != nil {
		fail(w, r, err)
		return
	}

	id := sessionID(r)
	if _, err := s.sessions.Open(r.Context(), id); err != nil {
		fail(w, r, err)
		return
	}

	snap, applied, err := s.sessions.Import(r.Context(), id, contents)
	if err != nil {
		fail(w, r, err)
		return
	}
	s.respondTable(w, r, snap, &applied)
}

func (s *Server) readImport(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	var src io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxSize); err != nil {
			return nil, tooLarge(err)
		}
		file, _, err := r.FormFile("file")
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		defer file.Close()
		src = file
	}

	contents, err := io.ReadAll(io.LimitReader(src, maxSize+1))
	if err != nil {
		return nil, tooLarge(err)
	}
	if int64(len(contents)) > maxSize {
		return nil, errFileTooLarge
	}
	return contents, nil
}

func tooLarge(err error) error {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return fmt.Errorf("%w: %w", errFileTooLarge, err)
	}
	return err
}

// handleExport downloads the compacted table as exposure_input.json.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	if _, err := s.sessions.Open(r.Context(), id); err != nil {
		fail(w, r, err)
		return
	}

	data, err := s.sessions.Export(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, category.ExportFileName))
	w.Write(data)
}

// handleCalculate stores the exposure input and sends the client to the
// results stage.
func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	entries, err := s.sessions.Calculate(r.Context(), sessionID(r))
	if err != nil {
		fail(w, r, err)
		return
	}

	switch {
	case isHTMX(r):
		w.Header().Set("HX-Redirect", "/results")
		w.WriteHeader(http.StatusNoContent)
	case wantsJSON(r):
		writeJSON(w, r, map[string]any{"exposure_input": entries})
	default:
		http.Redirect(w, r, "/results", http.StatusSeeOther)
	}
}

// handleExposureInput returns the entries stored by the last calculate.
func (s *Server) handleExposureInput(w http.ResponseWriter, r *http.Request) {
	entries, err := s.sessions.ExposureInput(r.Context(), sessionID(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, r, map[string]any{"exposure_input": entries})
}

// respondTable answers a table action with the table fragment, a redirect
// back to the page for plain form posts, or JSON.
func (s *Server) respondTable(w http.ResponseWriter, r *http.Request, snap session.Snapshot, applied *bool) {
	switch {
	case isHTMX(r):
		section := views.TableSection(snap.Table, snap.CanCalculate)
		if applied != nil && !*applied {
			section = views.WithNotice(importIgnored, section)
		}
		s.renderPage(w, r, section)
	case wantsHTMLPage(r):
		http.Redirect(w, r, "/", http.StatusSeeOther)
	default:
		writeJSON(w, r, TableResponse{
			State:            snap.State.String(),
			CanCalculate:     snap.CanCalculate,
			HasExposureInput: snap.HasExposureInput,
			Applied:          applied,
			Table:            snap.Table,
		})
	}
}
