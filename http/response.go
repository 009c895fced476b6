package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sagarc03/conduit"
)

// ErrorResponse represents a JSON error response
type ErrorResponse struct {
	Error  string `json:"error"`
	Method string `json:"method,omitempty"`
	Path   string `json:"path,omitempty"`
}

// WriteError writes a JSON error response. Encoding failures go to logger,
// or to slog.Default when it is nil.
func WriteError(logger *slog.Logger, w http.ResponseWriter, code int, body ErrorResponse) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := WriteJSON(w, code, body); err != nil {
		logger.Error("failed to encode error response", "error", err)
	}
}

// HandleError writes the response matching err's kind. Server-side failures
// get a generic body; the detail is logged to logger only.
func HandleError(logger *slog.Logger, w http.ResponseWriter, err error) {
	if logger == nil {
		logger = slog.Default()
	}

	var perr *conduit.PipelineError
	errors.As(err, &perr)

	switch {
	case errors.Is(err, conduit.ErrOversizedBody):
		WriteError(logger, w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: ReasonRequestTooLarge})
	case errors.Is(err, conduit.ErrMalformedBody):
		WriteError(logger, w, http.StatusBadRequest, ErrorResponse{Error: ReasonInvalidJSON})
	case errors.Is(err, conduit.ErrRouteNotFound):
		body := ErrorResponse{Error: ReasonRouteNotFound}
		if perr != nil {
			body.Method = perr.Method
			body.Path = perr.Path
		}
		WriteError(logger, w, http.StatusNotFound, body)
	case errors.Is(err, conduit.ErrUserFieldsRequired):
		WriteError(logger, w, http.StatusBadRequest, ErrorResponse{Error: ReasonUserFields})
	case errors.Is(err, conduit.ErrInvalidInput):
		WriteError(logger, w, http.StatusBadRequest, ErrorResponse{Error: ReasonInvalidInput})
	case errors.Is(err, conduit.ErrNotFound):
		WriteError(logger, w, http.StatusNotFound, ErrorResponse{Error: ReasonNotFound})
	default:
		logger.Error("request error", "error", err)
		WriteError(logger, w, http.StatusInternalServerError, ErrorResponse{Error: ReasonInternal})
	}
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, code int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(data)
}

// WriteHTML writes an HTML document.
func WriteHTML(w http.ResponseWriter, code int, html string) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	_, err := w.Write([]byte(html))
	return err
}
