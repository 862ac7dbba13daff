package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"

	"github.com/nkiryanov/fideliza/internal/apperrors"
	"github.com/nkiryanov/fideliza/internal/models"
	"github.com/nkiryanov/fideliza/internal/repository"
)

type RewardRepo struct {
	DB DBTX
}

const rewardColumns = `id, company_id, name, description, points_required, created_at`

const createReward = `-- name: CreateReward
INSERT INTO rewards (id, company_id, name, description, points_required, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + rewardColumns

func (r *RewardRepo) CreateReward(ctx context.Context, rw models.Reward) (models.Reward, error) {
	if rw.ID == uuid.Nil {
		rw.ID = uuid.New()
	}
	if rw.CreatedAt.IsZero() {
		rw.CreatedAt = time.Now()
	}
	rows, _ := r.DB.Query(ctx, createReward, rw.ID, rw.CompanyID, rw.Name, rw.Description, rw.PointsRequired, rw.CreatedAt)
	reward, err := pgx.CollectOneRow(rows, rowToReward)

	switch {
	case err == nil:
		return reward, nil
	case isViolation(err, pgerrcode.ForeignKeyViolation):
		return reward, fmt.Errorf("repo error: %w", apperrors.ErrCompanyNotFound)
	case isViolation(err, pgerrcode.CheckViolation):
		return reward, fmt.Errorf("repo error: %w", apperrors.ErrInvalidInput)
	default:
		return reward, dbError(err)
	}
}

const getReward = `-- name: GetReward
SELECT ` + rewardColumns + `
FROM rewards
WHERE id = $1 AND deleted_at IS NULL
`

func (r *RewardRepo) GetReward(ctx context.Context, rewardID uuid.UUID) (models.Reward, error) {
	rows, _ := r.DB.Query(ctx, getReward, rewardID)
	return collectReward(rows)
}

const updateReward = `-- name: UpdateReward
UPDATE rewards
SET name = COALESCE($3, name),
    description = CASE WHEN $4::text IS NULL THEN description ELSE NULLIF($4::text, '') END,
    points_required = COALESCE($5, points_required)
WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL
RETURNING ` + rewardColumns

func (r *RewardRepo) UpdateReward(ctx context.Context, rewardID uuid.UUID, companyID uuid.UUID, upd repository.RewardUpdate) (models.Reward, error) {
	rows, _ := r.DB.Query(ctx, updateReward, rewardID, companyID, upd.Name, upd.Description, upd.PointsRequired)
	reward, err := collectReward(rows)
	if isViolation(err, pgerrcode.CheckViolation) {
		return reward, fmt.Errorf("repo error: %w", apperrors.ErrInvalidInput)
	}
	return reward, err
}

const deleteReward = `-- name: DeleteReward
UPDATE rewards
SET deleted_at = $3
WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL
RETURNING ` + rewardColumns

func (r *RewardRepo) DeleteReward(ctx context.Context, rewardID uuid.UUID, companyID uuid.UUID) (models.Reward, error) {
	rows, _ := r.DB.Query(ctx, deleteReward, rewardID, companyID, time.Now())
	return collectReward(rows)
}

const listRewards = `-- name: ListRewards
SELECT ` + rewardColumns + `
FROM rewards
WHERE company_id = ANY($1::uuid[]) AND deleted_at IS NULL
ORDER BY points_required ASC, name ASC
`

func (r *RewardRepo) ListRewards(ctx context.Context, companyIDs ...uuid.UUID) ([]models.Reward, error) {
	if len(companyIDs) == 0 {
		return []models.Reward{}, nil
	}

	rows, _ := r.DB.Query(ctx, listRewards, companyIDs)
	rewards, err := pgx.CollectRows(rows, rowToReward)
	if err != nil {
		return nil, dbError(err)
	}
	return rewards, nil
}

func collectReward(rows pgx.Rows) (models.Reward, error) {
	reward, err := pgx.CollectOneRow(rows, rowToReward)

	switch {
	case err == nil:
		return reward, nil
	case errors.Is(err, pgx.ErrNoRows):
		return reward, fmt.Errorf("repo error: %w", apperrors.ErrRewardNotFound)
	default:
		return reward, dbError(err)
	}
}

func rowToReward(row pgx.CollectableRow) (models.Reward, error) {
	var rw models.Reward
	err := row.Scan(&rw.ID, &rw.CompanyID, &rw.Name, &rw.Description, &rw.PointsRequired, &rw.CreatedAt)
	return rw, err
}
