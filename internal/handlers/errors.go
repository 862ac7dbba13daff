package handlers

import (
	"errors"
	"net/http"

	"github.com/nkiryanov/fideliza/internal/apperrors"
	"github.com/nkiryanov/fideliza/internal/handlers/render"
	"github.com/nkiryanov/fideliza/internal/logger"
)

type insufficientPointsResponse struct {
	Error    string `json:"error"`
	Message  string `json:"message"`
	Current  int64  `json:"current"`
	Required int64  `json:"required"`
}

// Known not found errors with messages safe to show
var notFoundErrors = []error{
	apperrors.ErrRewardNotFound,
	apperrors.ErrClientNotFound,
	apperrors.ErrAccountNotFound,
	apperrors.ErrCompanyNotFound,
}

// Map service error to response
// Business rejections are rendered with the offending values, faults are logged
func renderServiceError(w http.ResponseWriter, l logger.Logger, err error) {
	var insufficient *apperrors.InsufficientPointsError

	switch {
	case errors.As(err, &insufficient):
		render.JSONWithStatus(w, insufficientPointsResponse{
			Error:    "insufficient_points",
			Message:  insufficient.Error(),
			Current:  insufficient.Current,
			Required: insufficient.Required,
		}, http.StatusBadRequest)

	case errors.Is(err, apperrors.ErrNotFound):
		render.ServiceError(w, notFoundMessage(err), http.StatusNotFound)

	case errors.Is(err, apperrors.ErrInvalidInput):
		render.ServiceError(w, err.Error(), http.StatusUnprocessableEntity)

	case errors.Is(err, apperrors.ErrForbidden):
		render.ServiceError(w, err.Error(), http.StatusForbidden)

	case errors.Is(err, apperrors.ErrUnauthorized):
		render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)

	case errors.Is(err, apperrors.ErrStorageFault):
		l.Error("Storage fault", "error", err)
		render.ServiceError(w, "Service temporarily unavailable, retry later", http.StatusServiceUnavailable)

	default:
		l.Error("Unexpected service error", "error", err)
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
	}
}

func notFoundMessage(err error) string {
	for _, known := range notFoundErrors {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return apperrors.ErrNotFound.Error()
}
