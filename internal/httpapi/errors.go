package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"adapterd/internal/generation"
	"adapterd/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// statusFor maps generation errors onto HTTP status codes.
func statusFor(err error) int {
	var he HTTPError
	switch {
	case generation.IsUnsupportedAdapter(err):
		return http.StatusBadRequest
	case generation.IsTooBusy(err):
		return http.StatusTooManyRequests
	case generation.IsDependencyUnavailable(err), generation.IsModelLoad(err):
		return http.StatusServiceUnavailable
	case generation.IsAdapterLoad(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, generation.ErrAdapterNotLoaded):
		return http.StatusNotFound
	case errors.As(err, &he):
		return he.StatusCode()
	default:
		return http.StatusInternalServerError
	}
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, kind, msg string) {
	writeJSON(w, status, types.ErrorResponse{Error: msg, Kind: kind, Code: status})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
