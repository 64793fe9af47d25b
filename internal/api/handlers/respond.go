package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nidohq/nido-api/internal/models"
	"github.com/nidohq/nido-api/internal/repository"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps service errors onto status codes: validation failures are
// 422, missing rows 404, anything else 500. The error text is always
// forwarded so callers see more than a generic failure.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var verr models.ValidationError
	switch {
	case errors.As(err, &verr):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, repository.ErrNotFound):
		status = http.StatusNotFound
	}

	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body: " + err.Error()})
		return false
	}
	return true
}
