package models

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/fideliza/internal/apperrors"
)

// Upper bound of a single award and of a reward cost
// Keeps per-pair sums far below the bigint range
const MaxPoints int64 = math.MaxInt32

// Award amounts and reward costs are in [1, MaxPoints]
func ValidatePoints(points int64) error {
	if points <= 0 || points > MaxPoints {
		return fmt.Errorf("%w, got %d", apperrors.ErrPointsInvalid, points)
	}
	return nil
}

// LedgerEntry is an immutable signed point fact
// Positive points credit the client, negative points are redemption spends
type LedgerEntry struct {
	ID          uuid.UUID
	ClientID    uuid.UUID
	CompanyID   uuid.UUID
	AwardedByID uuid.UUID
	Points      int64
	CreatedAt   time.Time
}

func (e LedgerEntry) IsCredit() bool { return e.Points > 0 }

// AccountInfo is the public part of an account shown next to entries
type AccountInfo struct {
	ID   uuid.UUID
	Name string
}

// Transaction is a ledger entry with the client and issuer it refers to
type Transaction struct {
	LedgerEntry
	Client    AccountInfo
	AwardedBy AccountInfo
}

// CompanyBalance is a derived per-company aggregate, never stored
type CompanyBalance struct {
	CompanyID   uuid.UUID
	CompanyName string
	Total       int64
}

type Dashboard struct {
	TotalPoints  int64
	LastActivity *LedgerEntry
}
