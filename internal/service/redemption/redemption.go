package redemption

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/nkiryanov/fideliza/internal/apperrors"
	"github.com/nkiryanov/fideliza/internal/logger"
	"github.com/nkiryanov/fideliza/internal/models"
	"github.com/nkiryanov/fideliza/internal/repository"
)

// Conflicting attempts retried before giving up with apperrors.ErrStorageFault
const DefaultRetries = 3

type Config struct {
	// Retries after the first attempt failed with apperrors.ErrConflict
	// Negative means no retries; zero means DefaultRetries
	Retries int
}

// Coordinator runs check-then-spend: the reward cost is checked against the balance
// and the debit with its redemption record are written in one transaction
type Coordinator struct {
	storage repository.Storage
	retries int
	logger  logger.Logger
}

func NewCoordinator(cfg Config, storage repository.Storage, l logger.Logger) *Coordinator {
	retries := cfg.Retries
	switch {
	case retries == 0:
		retries = DefaultRetries
	case retries < 0:
		retries = 0
	}

	return &Coordinator{
		storage: storage,
		retries: retries,
		logger:  l,
	}
}

// Redeem reward for the client principal
// Fails with apperrors.ErrRewardNotFound, *apperrors.InsufficientPointsError or apperrors.ErrStorageFault
// Nothing is written unless both debit entry and redemption are committed
func (c *Coordinator) Redeem(ctx context.Context, p models.Principal, rewardID uuid.UUID) (models.Redemption, error) {
	if !p.Role.CanRedeem() {
		return models.Redemption{}, fmt.Errorf("%w: %s can't redeem rewards", apperrors.ErrForbidden, p.Role)
	}

	l := c.logger.With("client_id", p.UserID, "reward_id", rewardID)

	var err error
	for attempt := 0; attempt <= c.retries; attempt++ {
		var redemption models.Redemption
		redemption, err = c.redeemOnce(ctx, p.UserID, rewardID)

		switch {
		case err == nil:
			l.Info("Reward redeemed", "redemption_id", redemption.ID, "points_spent", redemption.PointsSpent)
			return redemption, nil

		case errors.Is(err, apperrors.ErrInsufficientPoints), errors.Is(err, apperrors.ErrNotFound), errors.Is(err, apperrors.ErrInvalidInput):
			l.Info("Redemption rejected", "error", err)
			return models.Redemption{}, err

		case errors.Is(err, apperrors.ErrConflict) && ctx.Err() == nil:
			l.Warn("Redemption conflicted with concurrent transaction", "attempt", attempt+1, "error", err)
			continue

		default:
			l.Error("Redemption failed", "error", err)
			return models.Redemption{}, fmt.Errorf("%w: %w", apperrors.ErrStorageFault, err)
		}
	}

	l.Error("Redemption retries exhausted", "retries", c.retries, "error", err)
	return models.Redemption{}, fmt.Errorf("%w: retries exhausted: %w", apperrors.ErrStorageFault, err)
}

func (c *Coordinator) redeemOnce(ctx context.Context, clientID uuid.UUID, rewardID uuid.UUID) (models.Redemption, error) {
	var redemption models.Redemption

	err := c.storage.InTx(ctx, func(s repository.Storage) error {
		reward, err := s.Reward().GetReward(ctx, rewardID)
		if err != nil {
			return err
		}

		// Cost is read once and used for both the check and the debit
		cost := reward.PointsRequired

		// Held until commit: concurrent redemptions on this balance queue here
		// and read the balance only after the previous one committed
		if err := s.Ledger().LockBalance(ctx, clientID, reward.CompanyID); err != nil {
			return err
		}

		balance, err := s.Ledger().SumPoints(ctx, clientID, reward.CompanyID)
		if err != nil {
			return err
		}
		if balance < cost {
			return &apperrors.InsufficientPointsError{Current: balance, Required: cost}
		}

		entry, err := s.Ledger().Append(ctx, models.LedgerEntry{
			ClientID:    clientID,
			CompanyID:   reward.CompanyID,
			AwardedByID: clientID,
			Points:      -cost,
		})
		if err != nil {
			return err
		}

		redemption, err = s.Redemption().CreateRedemption(ctx, models.Redemption{
			RewardID:    reward.ID,
			ClientID:    clientID,
			CompanyID:   reward.CompanyID,
			EntryID:     entry.ID,
			PointsSpent: cost,
			RedeemedAt:  entry.CreatedAt,
		})
		return err
	})

	return redemption, err
}

// Clients list their own redemptions, staff list redemptions made in their company
func (c *Coordinator) ListRedemptions(ctx context.Context, p models.Principal, limit int) ([]models.Redemption, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative", apperrors.ErrInvalidInput)
	}

	opts := repository.ListRedemptionsOpts{Limit: limit}

	switch {
	case p.Role == models.RoleClient:
		opts.ClientID = &p.UserID
	case p.Role.CanListCompanyData() && p.CompanyID != nil:
		opts.CompanyID = p.CompanyID
	default:
		return nil, fmt.Errorf("%w: %s can't list redemptions", apperrors.ErrForbidden, p.Role)
	}

	return c.storage.Redemption().ListRedemptions(ctx, opts)
}
