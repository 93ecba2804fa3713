package shared

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ErrorResponse defines the standard error response structure.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"-"` // Not serialized to JSON, used for logging
	TraceID string `json:"trace_id,omitempty"`
}

// RespondWithJSON writes a JSON response with the given status code and data.
func RespondWithJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// RespondWithError writes a JSON error response with the given status code
// and message. It also sets the TraceID from the request context if
// available. The message must already be safe to expose; raw errors are
// never serialized.
func RespondWithError(w http.ResponseWriter, r *http.Request, status int, message string) {
	traceID := GetTraceID(r.Context())

	errorResponse := ErrorResponse{
		Error:   message,
		Code:    status,
		TraceID: traceID,
	}

	if status >= http.StatusInternalServerError {
		slog.Error("sending error response",
			"status_code", status,
			"message", message,
			"trace_id", traceID,
			"path", r.URL.Path,
			"method", r.Method)
	} else {
		slog.Debug("sending error response",
			"status_code", status,
			"message", message,
			"trace_id", traceID,
			"path", r.URL.Path,
			"method", r.Method)
	}

	RespondWithJSON(w, r, status, errorResponse)
}
