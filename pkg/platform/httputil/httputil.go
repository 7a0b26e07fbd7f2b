// Package httputil centralizes JSON response writing so handlers stay small
// and error bodies keep a single shape across endpoints.
package httputil

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// WriteJSON serializes v with the given status code. Serialization failures
// degrade to a 500 with an empty body; the handler has already committed to a
// response at that point.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// WriteError writes a JSON error body. Internal errors omit the description
// so storage details never leak to callers.
func WriteError(w http.ResponseWriter, status int, code, description string) {
	body := map[string]string{"error": code}
	if status < http.StatusInternalServerError && description != "" {
		body["error_description"] = description
	}
	WriteJSON(w, status, body)
}

// BadRequest is shorthand for a 400 with a described error.
func BadRequest(w http.ResponseWriter, description string) {
	WriteError(w, http.StatusBadRequest, "bad_request", description)
}

// Internal is shorthand for an undisclosed 500.
func Internal(w http.ResponseWriter) {
	WriteError(w, http.StatusInternalServerError, "internal_error", "")
}
