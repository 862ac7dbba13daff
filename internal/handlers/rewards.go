package handlers

import (
	"net/http"

	"github.com/nkiryanov/fideliza/internal/handlers/render"
	"github.com/nkiryanov/fideliza/internal/logger"
	"github.com/nkiryanov/fideliza/internal/models"
	"github.com/nkiryanov/fideliza/internal/repository"
)

// Staff get own company catalog by default, clients have to pass company_id
func handleListRewards(rewardService rewardService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := principal(w, r)
		if !ok {
			return
		}

		companyID, ok := queryUUID(w, r, "company_id")
		if !ok {
			return
		}
		if companyID == nil {
			if p.CompanyID == nil {
				render.ServiceError(w, "company_id is required", http.StatusBadRequest)
				return
			}
			companyID = p.CompanyID
		}

		rewards, err := rewardService.ListByCompany(r.Context(), *companyID)
		if err != nil {
			renderServiceError(w, l, err)
			return
		}

		res := make([]rewardResponse, 0, len(rewards))
		for _, rw := range rewards {
			res = append(res, newRewardResponse(rw))
		}
		render.JSON(w, res)
	})
}

func handleGetReward(rewardService rewardService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathUUID(w, r, "id")
		if !ok {
			return
		}

		reward, err := rewardService.Get(r.Context(), id)
		if err != nil {
			renderServiceError(w, l, err)
			return
		}

		render.JSON(w, newRewardResponse(reward))
	})
}

func handleCreateReward(rewardService rewardService, l logger.Logger) http.Handler {
	type request struct {
		Name           string  `json:"name" validate:"required"`
		Description    *string `json:"description"`
		PointsRequired int64   `json:"points_required"`
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

		reward, err := rewardService.Create(r.Context(), p, models.Reward{
			Name:           data.Name,
			Description:    data.Description,
			PointsRequired: data.PointsRequired,
		})
		if err != nil {
			renderServiceError(w, l, err)
			return
		}

		render.JSONWithStatus(w, newRewardResponse(reward), http.StatusCreated)
	})
}

func handleUpdateReward(rewardService rewardService, l logger.Logger) http.Handler {
	type request struct {
		Name *string `json:"name"`
		// Empty string clears the description
		Description    *string `json:"description"`
		PointsRequired *int64  `json:"points_required"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := principal(w, r)
		if !ok {
			return
		}
		id, ok := pathUUID(w, r, "id")
		if !ok {
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		reward, err := rewardService.Update(r.Context(), p, id, repository.RewardUpdate{
			Name:           data.Name,
			Description:    data.Description,
			PointsRequired: data.PointsRequired,
		})
		if err != nil {
			renderServiceError(w, l, err)
			return
		}

		render.JSON(w, newRewardResponse(reward))
	})
}

func handleDeleteReward(rewardService rewardService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := principal(w, r)
		if !ok {
			return
		}
		id, ok := pathUUID(w, r, "id")
		if !ok {
			return
		}

		reward, err := rewardService.Delete(r.Context(), p, id)
		if err != nil {
			renderServiceError(w, l, err)
			return
		}

		render.JSON(w, newRewardResponse(reward))
	})
}

func handleRewardStatus(rewardService rewardService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := principal(w, r)
		if !ok {
			return
		}

		statuses, err := rewardService.Status(r.Context(), p)
		if err != nil {
			renderServiceError(w, l, err)
			return
		}

		res := make([]rewardStatusResponse, 0, len(statuses))
		for _, st := range statuses {
			res = append(res, rewardStatusResponse{
				Reward:         newRewardResponse(st.Reward),
				Redeemable:     st.Redeemable,
				PointsToRedeem: st.PointsToRedeem,
			})
		}
		render.JSON(w, res)
	})
}
