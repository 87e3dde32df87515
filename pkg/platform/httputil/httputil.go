// Package httputil centralizes JSON response writing and domain error
// translation so every handler emits the same envelope.
package httputil

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	dErrors "daystack/pkg/domain-errors"
)

// errorResponse is the envelope for failed requests. Status is "fail" for
// client errors and "error" for server-side failures.
type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// successResponse is the envelope for successful requests.
type successResponse struct {
	Status string `json:"status"`
	Data   any    `json:"data,omitempty"`
}

// WriteSuccess writes data in the success envelope.
func WriteSuccess(w http.ResponseWriter, status int, data any) {
	WriteJSON(w, status, successResponse{Status: "success", Data: data})
}

// WriteError translates a domain error into the HTTP envelope. Internal
// errors get a generic message; the full error is the caller's to log.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status := dErrors.ToHTTPStatus(code)

	envelope := "fail"
	if status >= http.StatusInternalServerError {
		envelope = "error"
	}

	WriteJSON(w, status, errorResponse{
		Status:  envelope,
		Message: dErrors.MessageOf(err),
	})
}

// DecodeJSON decodes the request body into T, writing a bad-request response
// and returning ok=false on malformed input.
func DecodeJSON[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context) (T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if logger != nil {
			logger.WarnContext(ctx, "malformed request body", "error", err)
		}
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return req, false
	}
	return req, true
}
