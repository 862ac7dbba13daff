package reward

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nkiryanov/fideliza/internal/apperrors"
	"github.com/nkiryanov/fideliza/internal/logger"
	"github.com/nkiryanov/fideliza/internal/models"
	"github.com/nkiryanov/fideliza/internal/repository"
)

type RewardService struct {
	storage repository.Storage
	logger  logger.Logger
}

func NewService(storage repository.Storage, l logger.Logger) *RewardService {
	return &RewardService{
		storage: storage,
		logger:  l,
	}
}

// Create reward in the admin's company
func (s *RewardService) Create(ctx context.Context, p models.Principal, r models.Reward) (models.Reward, error) {
	if err := canManage(p); err != nil {
		return models.Reward{}, err
	}

	r.Name = strings.TrimSpace(r.Name)
	if err := validateName(r.Name); err != nil {
		return models.Reward{}, err
	}
	if err := validateCost(r.PointsRequired); err != nil {
		return models.Reward{}, err
	}

	if r.Description != nil && strings.TrimSpace(*r.Description) == "" {
		r.Description = nil
	}

	r.ID = uuid.Nil
	r.CompanyID = *p.CompanyID

	created, err := s.storage.Reward().CreateReward(ctx, r)
	if err != nil {
		return created, fmt.Errorf("can't create reward. Err: %w", err)
	}

	s.logger.Info("Reward created", "reward_id", created.ID, "company_id", created.CompanyID, "points_required", created.PointsRequired)
	return created, nil
}

// Partial update, every present field is validated again
func (s *RewardService) Update(ctx context.Context, p models.Principal, rewardID uuid.UUID, upd repository.RewardUpdate) (models.Reward, error) {
	if err := canManage(p); err != nil {
		return models.Reward{}, err
	}

	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if err := validateName(name); err != nil {
			return models.Reward{}, err
		}
		upd.Name = &name
	}
	if upd.Description != nil {
		description := strings.TrimSpace(*upd.Description)
		upd.Description = &description
	}
	if upd.PointsRequired != nil {
		if err := validateCost(*upd.PointsRequired); err != nil {
			return models.Reward{}, err
		}
	}

	updated, err := s.storage.Reward().UpdateReward(ctx, rewardID, *p.CompanyID, upd)
	if err != nil {
		return updated, err
	}

	s.logger.Info("Reward updated", "reward_id", updated.ID, "points_required", updated.PointsRequired)
	return updated, nil
}

// Soft delete; past redemptions keep pointing to the reward
func (s *RewardService) Delete(ctx context.Context, p models.Principal, rewardID uuid.UUID) (models.Reward, error) {
	if err := canManage(p); err != nil {
		return models.Reward{}, err
	}

	deleted, err := s.storage.Reward().DeleteReward(ctx, rewardID, *p.CompanyID)
	if err != nil {
		return deleted, err
	}

	s.logger.Info("Reward deleted", "reward_id", deleted.ID, "company_id", deleted.CompanyID)
	return deleted, nil
}

func (s *RewardService) Get(ctx context.Context, rewardID uuid.UUID) (models.Reward, error) {
	return s.storage.Reward().GetReward(ctx, rewardID)
}

// Active catalog of the company, cheapest first
func (s *RewardService) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.Reward, error) {
	return s.storage.Reward().ListRewards(ctx, companyID)
}

// Every reward of every company the client holds entries in,
// joined with the client balance in that company
func (s *RewardService) Status(ctx context.Context, p models.Principal) ([]models.RewardStatus, error) {
	if p.Role != models.RoleClient {
		return nil, fmt.Errorf("%w: reward status is for clients only", apperrors.ErrForbidden)
	}

	balances, err := s.storage.Ledger().SumByCompany(ctx, p.UserID)
	if err != nil {
		return nil, err
	}

	byCompany := make(map[uuid.UUID]int64, len(balances))
	companyIDs := make([]uuid.UUID, 0, len(balances))
	for _, b := range balances {
		byCompany[b.CompanyID] = b.Total
		companyIDs = append(companyIDs, b.CompanyID)
	}

	rewards, err := s.storage.Reward().ListRewards(ctx, companyIDs...)
	if err != nil {
		return nil, err
	}

	statuses := make([]models.RewardStatus, 0, len(rewards))
	for _, r := range rewards {
		statuses = append(statuses, status(r, byCompany[r.CompanyID]))
	}

	return statuses, nil
}

func status(r models.Reward, balance int64) models.RewardStatus {
	return models.RewardStatus{
		Reward:         r,
		Redeemable:     balance >= r.PointsRequired,
		PointsToRedeem: max(0, r.PointsRequired-balance),
	}
}

func canManage(p models.Principal) error {
	if !p.Role.CanManageRewards() || p.CompanyID == nil {
		return fmt.Errorf("%w: %s can't manage rewards", apperrors.ErrForbidden, p.Role)
	}
	return nil
}

func validateName(name string) error {
	if name == "" {
		return apperrors.ErrRewardNameEmpty
	}
	return nil
}

func validateCost(points int64) error {
	return models.ValidatePoints(points)
}
