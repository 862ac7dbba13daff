package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ReportRepo struct {
	DB DBTX
}

const pointsAwarded = `-- name: PointsAwarded
SELECT COALESCE(SUM(points), 0)::bigint
FROM ledger_entries
WHERE company_id = $1 AND points > 0
`

func (r *ReportRepo) PointsAwarded(ctx context.Context, companyID uuid.UUID) (int64, error) {
	return r.scalar(ctx, pointsAwarded, companyID)
}

const uniqueCustomers = `-- name: UniqueCustomers
SELECT COUNT(DISTINCT client_id)
FROM ledger_entries
WHERE company_id = $1
`

func (r *ReportRepo) UniqueCustomers(ctx context.Context, companyID uuid.UUID) (int64, error) {
	return r.scalar(ctx, uniqueCustomers, companyID)
}

const redemptionsCount = `-- name: RedemptionsCount
SELECT COUNT(*)
FROM redemptions
WHERE company_id = $1
`

func (r *ReportRepo) RedemptionsCount(ctx context.Context, companyID uuid.UUID) (int64, error) {
	return r.scalar(ctx, redemptionsCount, companyID)
}

func (r *ReportRepo) scalar(ctx context.Context, query string, companyID uuid.UUID) (int64, error) {
	rows, _ := r.DB.Query(ctx, query, companyID)
	v, err := pgx.CollectOneRow(rows, pgx.RowTo[int64])
	if err != nil {
		return 0, dbError(err)
	}
	return v, nil
}
