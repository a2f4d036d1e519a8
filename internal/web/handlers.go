package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/datamanager/internal/core"
	"github.com/JonMunkholm/datamanager/internal/logging"
	"github.com/JonMunkholm/datamanager/internal/session"
	"github.com/JonMunkholm/datamanager/internal/web/templates"
)

// multipartOverhead is the request body allowance on top of the file size
// for boundaries and the other form fields.
const multipartOverhead = 1 << 20

// tableResponse is the JSON shape of every table-returning endpoint.
type tableResponse struct {
	session.View
	Changed *bool  `json:"changed,omitempty"`
	Notice  string `json:"notice,omitempty"`
}

// respondTable writes the workspace's table as the swappable fragment for
// HTMX requests and as JSON otherwise.
func respondTable(w http.ResponseWriter, r *http.Request, ws *session.Workspace, out *session.Outcome, notice string) {
	if out != nil && out.Info != "" {
		notice = out.Info
	}
	view := ws.View()

	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := templates.TableView(templates.TableData{View: view, Notice: notice}).Render(r.Context(), w); err != nil {
			logging.FromContext(r.Context()).Error("render table failed", "error", err)
		}
		return
	}

	resp := tableResponse{View: view, Notice: notice}
	if out != nil {
		resp.Changed = &out.Changed
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// decodeBody fills v from a JSON body or, for form posts, from the form
// fields named by the json tags.
func decodeBody(r *http.Request, v any) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(v); err != nil {
			return invalidRequest("malformed JSON body")
		}
		return nil
	}
	if err := r.ParseForm(); err != nil {
		return invalidRequest("malformed form body")
	}

	fields := make(map[string]any, len(r.PostForm))
	for k := range r.PostForm {
		val := r.PostForm.Get(k)
		if k == "targetIndex" {
			if n, err := strconv.Atoi(val); err == nil {
				fields[k] = n
				continue
			}
		}
		fields[k] = val
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return invalidRequest("malformed form body")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return invalidRequest("malformed form body")
	}
	return nil
}

// columnParam returns the decoded {columnID} path segment. Ids may hold
// any character, so clients percent-encode them.
func columnParam(r *http.Request) (string, error) {
	id := chi.URLParam(r, "columnID")
	if r.URL.RawPath != "" {
		unescaped, err := url.PathUnescape(id)
		if err != nil {
			return "", invalidRequest("malformed column id")
		}
		id = unescaped
	}
	if id == "" {
		return "", invalidRequest("missing column id")
	}
	return id, nil
}

// handleIndex renders the editor page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	mode, _ := core.ParseHeaderMode(s.cfg.Import.HeaderMode)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := templates.Page(templates.PageData{
		View:          ws.View(),
		AcceptedTypes: core.AcceptedTypes,
		HeaderMode:    mode,
		MaxFileSize:   s.cfg.Import.MaxFileSize,
	}).Render(r.Context(), w)
	if err != nil {
		logging.FromContext(r.Context()).Error("render page failed", "error", err)
	}
}

// handleHealth reports storage reachability and load.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status, code := "ok", http.StatusOK
	storage := "ok"
	if err := s.store.Ping(ctx); err != nil {
		logging.FromContext(ctx).Error("health: storage ping failed", "error", err)
		status, code, storage = "degraded", http.StatusServiceUnavailable, "unreachable"
	}

	writeJSON(w, r, code, map[string]any{
		"status":   status,
		"storage":  storage,
		"sessions": s.sessions.Count(),
		"imports":  s.sessions.Limiter().Status(),
	})
}

// handleTable returns the current table.
func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	respondTable(w, r, workspaceFrom(r.Context()), nil, "")
}

// handleImport decodes an uploaded file into the session's table.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())

	maxSize := s.cfg.Import.MaxFileSize
	if maxSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			respondError(w, r, core.ErrFileTooLarge, http.StatusRequestEntityTooLarge)
			return
		}
		respondError(w, r, invalidRequest("malformed upload form"), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, errNoFile, http.StatusBadRequest)
		return
	}
	defer file.Close()

	mode := core.HeaderMode(s.cfg.Import.HeaderMode)
	if raw := r.FormValue("headers"); raw != "" {
		m, ok := core.ParseHeaderMode(raw)
		if !ok {
			respondError(w, r, invalidRequest(fmt.Sprintf("header mode %q", raw)), http.StatusBadRequest)
			return
		}
		mode = m
	}

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, r, fmt.Errorf("read upload: %w", err), http.StatusBadRequest)
		return
	}

	info, err := ws.Import(r.Context(), data, header.Filename, mode)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	notice := fmt.Sprintf("Imported %d rows and %d columns from %s", info.Rows, info.Columns, info.FileName)
	if !info.HasHeaders {
		notice += "; no header row was detected"
	}
	respondTable(w, r, ws, nil, notice)
}

// handleSort sorts rows by the posted column.
func (s *Server) handleSort(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())

	var req struct {
		ColumnID string `json:"columnId"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}
	if req.ColumnID == "" {
		respondError(w, r, invalidRequest("missing columnId"), http.StatusBadRequest)
		return
	}

	if err := ws.Sort(req.ColumnID); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	respondTable(w, r, ws, nil, "")
}

// handleRename relabels a column.
func (s *Server) handleRename(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())

	id, err := columnParam(r)
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}
	var req struct {
		Label string `json:"label"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	out := ws.Rename(r.Context(), id, req.Label)
	respondTable(w, r, ws, &out, "")
}

// handleMove reorders a column, either to an index or onto another column.
func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())

	id, err := columnParam(r)
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}
	var req struct {
		TargetIndex *int   `json:"targetIndex"`
		OverID      string `json:"overId"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	var out session.Outcome
	switch {
	case req.OverID != "":
		out = ws.MoveOnto(r.Context(), id, req.OverID)
	case req.TargetIndex != nil:
		out = ws.Reorder(r.Context(), id, *req.TargetIndex)
	default:
		respondError(w, r, invalidRequest("move needs targetIndex or overId"), http.StatusBadRequest)
		return
	}
	respondTable(w, r, ws, &out, "")
}

// handlePromote turns the first row into headers.
func (s *Server) handlePromote(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	out := ws.Promote(r.Context())
	respondTable(w, r, ws, &out, "")
}

// handleDemote moves the headers into the first row.
func (s *Server) handleDemote(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	out := ws.Demote(r.Context())
	respondTable(w, r, ws, &out, "")
}

// handleReset restores the imported table.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	out := ws.Reset(r.Context())
	respondTable(w, r, ws, &out, "")
}

// handleExport downloads the table as CSV or XLSX.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())

	format, err := core.ParseExportFormat(chi.URLParam(r, "format"))
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	data, err := ws.Export(format)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	w.Header().Set("Content-Type", core.ContentType(format))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", core.ExportFileName(format)))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if _, err := w.Write(data); err != nil {
		logging.FromContext(r.Context()).Warn("export write failed", "error", err)
	}
}
