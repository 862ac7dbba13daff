package models

import (
	"time"

	"github.com/google/uuid"
)

type Reward struct {
	ID             uuid.UUID
	CompanyID      uuid.UUID
	Name           string
	Description    *string
	PointsRequired int64
	CreatedAt      time.Time
}

// RewardStatus describes whether the client can redeem the reward right now
type RewardStatus struct {
	Reward         Reward
	Redeemable     bool
	PointsToRedeem int64
}

// Redemption is paired 1:1 with a debit ledger entry
// PointsSpent is the reward cost snapshotted at redemption time
type Redemption struct {
	ID          uuid.UUID
	RewardID    uuid.UUID
	ClientID    uuid.UUID
	CompanyID   uuid.UUID
	EntryID     uuid.UUID
	PointsSpent int64
	RedeemedAt  time.Time
}
