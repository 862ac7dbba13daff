package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/nkiryanov/fideliza/internal/handlers/render"
	"github.com/nkiryanov/fideliza/internal/logger"
)

func handleRedeemReward(redemptionService redemptionService, l logger.Logger) http.Handler {
	type request struct {
		RewardID string `json:"reward_id" validate:"required,uuid"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := principal(w, r)
		if !ok {
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		redemption, err := redemptionService.Redeem(r.Context(), p, uuid.MustParse(data.RewardID))
		if err != nil {
			renderServiceError(w, l, err)
			return
		}

		render.JSONWithStatus(w, newRedemptionResponse(redemption), http.StatusCreated)
	})
}

func handleListRedemptions(redemptionService redemptionService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := principal(w, r)
		if !ok {
			return
		}
		limit, ok := queryLimit(w, r)
		if !ok {
			return
		}

		redemptions, err := redemptionService.ListRedemptions(r.Context(), p, limit)
		if err != nil {
			renderServiceError(w, l, err)
			return
		}

		res := make([]redemptionResponse, 0, len(redemptions))
		for _, rd := range redemptions {
			res = append(res, newRedemptionResponse(rd))
		}
		render.JSON(w, res)
	})
}
