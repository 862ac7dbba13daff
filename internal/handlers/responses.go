package handlers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nkiryanov/fideliza/internal/models"
)

// Responses are built field by field from models

type entryResponse struct {
	ID          uuid.UUID `json:"id"`
	ClientID    uuid.UUID `json:"client_id"`
	CompanyID   uuid.UUID `json:"company_id"`
	AwardedByID uuid.UUID `json:"awarded_by_id"`
	Points      int64     `json:"points"`
	CreatedAt   time.Time `json:"created_at"`
}

func newEntryResponse(e models.LedgerEntry) entryResponse {
	return entryResponse{
		ID:          e.ID,
		ClientID:    e.ClientID,
		CompanyID:   e.CompanyID,
		AwardedByID: e.AwardedByID,
		Points:      e.Points,
		CreatedAt:   e.CreatedAt,
	}
}

type accountInfoResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type transactionResponse struct {
	entryResponse
	Client    accountInfoResponse `json:"client"`
	AwardedBy accountInfoResponse `json:"awarded_by"`
}

func newTransactionsResponse(transactions []models.Transaction) []transactionResponse {
	res := make([]transactionResponse, 0, len(transactions))
	for _, t := range transactions {
		res = append(res, transactionResponse{
			entryResponse: newEntryResponse(t.LedgerEntry),
			Client:        accountInfoResponse{ID: t.Client.ID, Name: t.Client.Name},
			AwardedBy:     accountInfoResponse{ID: t.AwardedBy.ID, Name: t.AwardedBy.Name},
		})
	}
	return res
}

type companyBalanceResponse struct {
	CompanyID   uuid.UUID `json:"company_id"`
	CompanyName string    `json:"company_name"`
	Total       int64     `json:"total"`
}

type dashboardResponse struct {
	TotalPoints  int64          `json:"total_points"`
	LastActivity *entryResponse `json:"last_activity"`
}

type rewardResponse struct {
	ID             uuid.UUID `json:"id"`
	CompanyID      uuid.UUID `json:"company_id"`
	Name           string    `json:"name"`
	Description    *string   `json:"description"`
	PointsRequired int64     `json:"points_required"`
	CreatedAt      time.Time `json:"created_at"`
}

func newRewardResponse(r models.Reward) rewardResponse {
	return rewardResponse{
		ID:             r.ID,
		CompanyID:      r.CompanyID,
		Name:           r.Name,
		Description:    r.Description,
		PointsRequired: r.PointsRequired,
		CreatedAt:      r.CreatedAt,
	}
}

type rewardStatusResponse struct {
	Reward         rewardResponse `json:"reward"`
	Redeemable     bool           `json:"redeemable"`
	PointsToRedeem int64          `json:"points_to_redeem"`
}

type redemptionResponse struct {
	ID          uuid.UUID `json:"id"`
	RewardID    uuid.UUID `json:"reward_id"`
	ClientID    uuid.UUID `json:"client_id"`
	CompanyID   uuid.UUID `json:"company_id"`
	EntryID     uuid.UUID `json:"entry_id"`
	PointsSpent int64     `json:"points_spent"`
	RedeemedAt  time.Time `json:"redeemed_at"`
}

func newRedemptionResponse(r models.Redemption) redemptionResponse {
	return redemptionResponse{
		ID:          r.ID,
		RewardID:    r.RewardID,
		ClientID:    r.ClientID,
		CompanyID:   r.CompanyID,
		EntryID:     r.EntryID,
		PointsSpent: r.PointsSpent,
		RedeemedAt:  r.RedeemedAt,
	}
}

type reportResponse struct {
	CompanyID                uuid.UUID       `json:"company_id"`
	TotalPointsAwarded       int64           `json:"total_points_awarded"`
	UniqueCustomers          int64           `json:"unique_customers"`
	TotalRewardsRedeemed     int64           `json:"total_rewards_redeemed"`
	AveragePointsPerCustomer decimal.Decimal `json:"average_points_per_customer"`
}
