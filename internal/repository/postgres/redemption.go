package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"

	"github.com/nkiryanov/fideliza/internal/apperrors"
	"github.com/nkiryanov/fideliza/internal/models"
	"github.com/nkiryanov/fideliza/internal/repository"
)

type RedemptionRepo struct {
	DB DBTX
}

const redemptionColumns = `id, reward_id, client_id, company_id, entry_id, points_spent, redeemed_at`

const createRedemption = `-- name: CreateRedemption
INSERT INTO redemptions (id, reward_id, client_id, company_id, entry_id, points_spent, redeemed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + redemptionColumns

func (r *RedemptionRepo) CreateRedemption(ctx context.Context, rd models.Redemption) (models.Redemption, error) {
	if rd.ID == uuid.Nil {
		rd.ID = uuid.New()
	}
	if rd.RedeemedAt.IsZero() {
		rd.RedeemedAt = time.Now()
	}
	rows, _ := r.DB.Query(ctx, createRedemption, rd.ID, rd.RewardID, rd.ClientID, rd.CompanyID, rd.EntryID, rd.PointsSpent, rd.RedeemedAt)
	redemption, err := pgx.CollectOneRow(rows, rowToRedemption)

	if err == nil {
		return redemption, nil
	}

	if constraint, ok := violation(err, pgerrcode.ForeignKeyViolation); ok {
		switch constraint {
		case "redemptions_reward_id_fkey":
			return redemption, fmt.Errorf("repo error: %w", apperrors.ErrRewardNotFound)
		case "redemptions_company_id_fkey":
			return redemption, fmt.Errorf("repo error: %w", apperrors.ErrCompanyNotFound)
		default:
			return redemption, fmt.Errorf("repo error: %w", apperrors.ErrAccountNotFound)
		}
	}
	if isViolation(err, pgerrcode.CheckViolation) {
		return redemption, fmt.Errorf("repo error: %w", apperrors.ErrPointsInvalid)
	}

	return redemption, dbError(err)
}

func (r *RedemptionRepo) ListRedemptions(ctx context.Context, opts repository.ListRedemptionsOpts) ([]models.Redemption, error) {
	var (
		query strings.Builder
		where []string
		args  []any
	)

	query.WriteString(`SELECT ` + redemptionColumns + ` FROM redemptions`)

	if opts.ClientID != nil {
		args = append(args, *opts.ClientID)
		where = append(where, fmt.Sprintf("client_id = $%d", len(args)))
	}
	if opts.CompanyID != nil {
		args = append(args, *opts.CompanyID)
		where = append(where, fmt.Sprintf("company_id = $%d", len(args)))
	}
	if len(where) > 0 {
		query.WriteString(" WHERE " + strings.Join(where, " AND "))
	}

	query.WriteString(" ORDER BY redeemed_at DESC, id DESC")

	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		fmt.Fprintf(&query, " LIMIT $%d", len(args))
	}

	rows, _ := r.DB.Query(ctx, query.String(), args...)
	redemptions, err := pgx.CollectRows(rows, rowToRedemption)
	if err != nil {
		return nil, dbError(err)
	}
	return redemptions, nil
}

func rowToRedemption(row pgx.CollectableRow) (models.Redemption, error) {
	var rd models.Redemption
	err := row.Scan(&rd.ID, &rd.RewardID, &rd.ClientID, &rd.CompanyID, &rd.EntryID, &rd.PointsSpent, &rd.RedeemedAt)
	return rd, err
}
