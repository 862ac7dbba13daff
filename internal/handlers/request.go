package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/nkiryanov/fideliza/internal/handlers/principalctx"
	"github.com/nkiryanov/fideliza/internal/handlers/render"
	"github.com/nkiryanov/fideliza/internal/models"
)

// Get principal set by auth middleware
// Writes error response if there is none
func principal(w http.ResponseWriter, r *http.Request) (models.Principal, bool) {
	p, ok := principalctx.FromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
	}
	return p, ok
}

// Parse path value as UUID
// Writes error response if it is malformed
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		render.ServiceError(w, fmt.Sprintf("Invalid %s: must be a UUID", name), http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

// Parse optional query value as UUID, nil if not set
func queryUUID(w http.ResponseWriter, r *http.Request, name string) (*uuid.UUID, bool) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return nil, true
	}

	id, err := uuid.Parse(value)
	if err != nil {
		render.ServiceError(w, fmt.Sprintf("Invalid %s: must be a UUID", name), http.StatusBadRequest)
		return nil, false
	}
	return &id, true
}

// Parse optional non negative limit, zero if not set
func queryLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	value := r.URL.Query().Get("limit")
	if value == "" {
		return 0, true
	}

	limit, err := strconv.Atoi(value)
	if err != nil || limit < 0 {
		render.ServiceError(w, "Invalid limit: must be a non negative integer", http.StatusBadRequest)
		return 0, false
	}
	return limit, true
}
