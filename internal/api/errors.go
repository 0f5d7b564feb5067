package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tanglisha/text-pair/internal/alignments"
	"github.com/tanglisha/text-pair/internal/introspection"
	"github.com/tanglisha/text-pair/internal/logging"
	"github.com/tanglisha/text-pair/internal/planner"
)

// errorResponse is the JSON body of every failed API request.
type errorResponse struct {
	Error string `json:"error"`
}

// statusForError maps the error taxonomy to HTTP status codes. Schema and
// filter problems are the client's fault; a missing group is a 404; anything
// touching the store after a valid request is a server error.
func statusForError(err error) int {
	var schemaErr *introspection.SchemaLookupError
	if errors.As(err, &schemaErr) {
		return http.StatusBadRequest
	}
	var parseErr *planner.FilterParseError
	if errors.As(err, &parseErr) {
		return http.StatusBadRequest
	}
	var notFound *alignments.NotFoundError
	if errors.As(err, &notFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// clientMessage returns the response body text for an error. Client errors
// carry the real message so the caller can fix the request; server errors
// return a generic message to avoid leaking internal details.
func clientMessage(err error, status int) string {
	if status < http.StatusInternalServerError {
		return err.Error()
	}
	return "query execution failed"
}

// writeError logs the failure and writes its JSON response. Server errors
// log at error level, client errors at warn.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)

	reqLogger := logging.FromContext(r.Context())
	attrs := []any{
		slog.String("path", r.URL.Path),
		slog.Int("status", status),
		slog.String("error", err.Error()),
	}
	if status >= http.StatusInternalServerError {
		reqLogger.Error("request failed", attrs...)
	} else {
		reqLogger.Warn("request rejected", attrs...)
	}

	writeJSON(w, status, errorResponse{Error: clientMessage(err, status)})
}

// writeJSON writes one JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// Headers are already sent; nothing to do but log.
		slog.Debug("failed to encode response", slog.String("error", err.Error()))
	}
}
