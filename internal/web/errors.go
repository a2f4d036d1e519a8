package web

// errors.go renders every failure the same way: the technical error is
// logged with the request id, and the client gets the mapped user message
// as an HTML fragment for HTMX requests, JSON for API callers, or plain text.

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/datamanager/internal/core"
	"github.com/JonMunkholm/datamanager/internal/logging"
	"github.com/JonMunkholm/datamanager/internal/session"
	"github.com/JonMunkholm/datamanager/internal/web/templates"
)

// ErrorResponse is the JSON body of a failed API call.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

var errNoFile = errors.New("no file provided")

// invalidRequest builds an error that maps to REQ001.
func invalidRequest(detail string) error {
	return errors.New("invalid request: " + detail)
}

// statusFor picks the HTTP status for an operation error.
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.Is(err, core.ErrFileTooLarge), errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrTooManyImports):
		return http.StatusServiceUnavailable
	case errors.Is(err, session.ErrTooManySessions), errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, core.ErrImportSuperseded):
		return http.StatusConflict
	case errors.Is(err, core.ErrUnknownColumn):
		return http.StatusNotFound
	case errors.Is(err, core.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, core.ErrParse),
		errors.Is(err, core.ErrEmptyFile),
		errors.Is(err, core.ErrNoColumnsInferred),
		errors.Is(err, core.ErrNothingToExport):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, errNoFile), strings.HasPrefix(err.Error(), "invalid request"):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes the user-facing message. Errors with no
// specific message are logged at error level whatever the status.
func respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userErr := core.NewUserError(err)
	userMsg := userErr.User

	level := logging.FromContext(r.Context()).Warn
	if statusCode >= http.StatusInternalServerError || !core.IsUserFacing(err) {
		level = logging.FromContext(r.Context()).Error
	}
	level("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", userErr.Technical.Error(),
		"code", userMsg.Code,
	)

	switch {
	case isHTMX(r):
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(statusCode)
		templates.ErrorAlert(userMsg.Message, userMsg.Action, userMsg.Code).Render(r.Context(), w)
	case wantsJSON(r):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		json.NewEncoder(w).Encode(ErrorResponse{
			Error:   userErr.Error(),
			Message: userMsg.Message,
			Action:  userMsg.Action,
			Code:    userMsg.Code,
		})
	default:
		http.Error(w, userErr.Error()+" ("+userMsg.Code+")", statusCode)
	}
}

// isHTMX reports whether the request came from the page script.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON reports whether the client should get JSON back.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	return strings.HasPrefix(r.URL.Path, "/api/")
}

// writeJSON encodes v as JSON. Encoding errors are logged since the header
// is already sent.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("json encode failed", "error", err)
	}
}
