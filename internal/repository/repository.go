package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/nkiryanov/fideliza/internal/models"
)

type SortOrder string

const (
	OrderNewestFirst SortOrder = "desc"
	OrderOldestFirst SortOrder = "asc"
)

type ListEntriesOpts struct {
	ClientID  *uuid.UUID
	CompanyID *uuid.UUID
	Order     SortOrder // newest first if empty
	Limit     int       // no limit if zero
}

type ListRedemptionsOpts struct {
	ClientID  *uuid.UUID
	CompanyID *uuid.UUID
	Limit     int
}

// Partial reward update; nil fields are left untouched
// Empty Description clears it
type RewardUpdate struct {
	Name           *string
	Description    *string
	PointsRequired *int64
}

// Ledger store: append-only, there is no update or delete
type LedgerRepo interface {
	// Append one immutable entry
	// Unknown client, company or issuer must return apperrors.ErrNotFound family error
	Append(ctx context.Context, entry models.LedgerEntry) (models.LedgerEntry, error)

	// Sum of all committed entries for the pair, zero if there are none
	SumPoints(ctx context.Context, clientID uuid.UUID, companyID uuid.UUID) (int64, error)

	// Client totals grouped by company
	SumByCompany(ctx context.Context, clientID uuid.UUID) ([]models.CompanyBalance, error)

	// Entries with client and issuer names
	ListEntries(ctx context.Context, opts ListEntriesOpts) ([]models.Transaction, error)

	// Serialize check-then-spend sequences on the (client, company) balance
	// Lock is held until the surrounding transaction ends, so it has to be called inside InTx
	LockBalance(ctx context.Context, clientID uuid.UUID, companyID uuid.UUID) error
}

type RewardRepo interface {
	CreateReward(ctx context.Context, reward models.Reward) (models.Reward, error)

	// Deleted rewards are not returned: apperrors.ErrRewardNotFound
	GetReward(ctx context.Context, rewardID uuid.UUID) (models.Reward, error)

	// Update reward owned by the company
	// If reward does not exist or owned by another company must return apperrors.ErrRewardNotFound
	UpdateReward(ctx context.Context, rewardID uuid.UUID, companyID uuid.UUID, upd RewardUpdate) (models.Reward, error)

	// Soft delete, past redemptions keep referencing the reward
	DeleteReward(ctx context.Context, rewardID uuid.UUID, companyID uuid.UUID) (models.Reward, error)

	ListRewards(ctx context.Context, companyIDs ...uuid.UUID) ([]models.Reward, error)
}

type RedemptionRepo interface {
	CreateRedemption(ctx context.Context, r models.Redemption) (models.Redemption, error)
	ListRedemptions(ctx context.Context, opts ListRedemptionsOpts) ([]models.Redemption, error)
}

type AccountRepo interface {
	// Has to return apperrors.ErrAccountAlreadyExists if email is taken
	CreateAccount(ctx context.Context, account models.Account) (models.Account, error)
	// Has to return apperrors.ErrAccountNotFound if account does not exist
	GetAccount(ctx context.Context, accountID uuid.UUID) (models.Account, error)
}

type CompanyRepo interface {
	CreateCompany(ctx context.Context, name string) (models.Company, error)
	GetCompany(ctx context.Context, companyID uuid.UUID) (models.Company, error)
}

// Read-only rollups over the ledger
type ReportRepo interface {
	PointsAwarded(ctx context.Context, companyID uuid.UUID) (int64, error)
	UniqueCustomers(ctx context.Context, companyID uuid.UUID) (int64, error)
	RedemptionsCount(ctx context.Context, companyID uuid.UUID) (int64, error)
}

type Storage interface {
	Ledger() LedgerRepo
	Reward() RewardRepo
	Redemption() RedemptionRepo
	Account() AccountRepo
	Company() CompanyRepo
	Report() ReportRepo

	// Run fn in transaction
	// Commit if fn returns nil, rollback otherwise
	InTx(ctx context.Context, fn func(Storage) error) error
}
