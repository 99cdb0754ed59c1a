package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Error codes surfaced to clients. The refresh coordinator keys off
// these, so they are part of the API contract.
const (
	CodeAuthRequired            = "AUTH_REQUIRED"
	CodeAuthInvalid             = "AUTH_INVALID"
	CodeRefreshFailed           = "REFRESH_FAILED"
	CodeWorkspaceContextMissing = "WORKSPACE_CONTEXT_MISSING"
)

// ErrorBody is the JSON error envelope.
type ErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// JSON writes v as a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorBody{Error: message})
}

// ErrorCode writes a JSON error response carrying a taxonomy code.
func ErrorCode(w http.ResponseWriter, status int, code, message string) {
	JSON(w, status, ErrorBody{Error: message, Code: code})
}

// DecodeError writes the response for a request body decode failure.
// A body that exceeded the MaxBytesReader cap is 413; anything else is
// a plain 400.
func DecodeError(w http.ResponseWriter, err error) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		Error(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	Error(w, http.StatusBadRequest, "invalid request body")
}
