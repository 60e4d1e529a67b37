package httpapi

import (
	"encoding/json"
	"net/http"

	"inferd/internal/manager"
	"inferd/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}

// writeError maps manager errors to HTTP status codes. Anything untyped is a
// 500.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case manager.IsInvalidArgument(err):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	case manager.IsModelNotFound(err) || manager.IsSessionNotFound(err):
		writeJSONError(w, http.StatusNotFound, err.Error())
	case manager.IsNoCapacity(err):
		IncrementBackpressure("no_idle_context")
		writeJSONError(w, http.StatusTooManyRequests, err.Error())
	case manager.IsModelDraining(err) || manager.IsDrainTimeout(err):
		writeJSONError(w, http.StatusConflict, err.Error())
	case manager.IsDependencyUnavailable(err):
		writeJSONError(w, http.StatusServiceUnavailable, err.Error())
	case manager.IsMemoryLimit(err):
		writeJSONError(w, http.StatusInsufficientStorage, err.Error())
	default:
		if he, ok := err.(HTTPError); ok {
			writeJSONError(w, he.StatusCode(), he.Error())
			return
		}
		writeJSONError(w, http.StatusInternalServerError, err.Error())
	}
}
