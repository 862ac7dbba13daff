package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"

	"github.com/nkiryanov/fideliza/internal/apperrors"
	"github.com/nkiryanov/fideliza/internal/models"
)

type CompanyRepo struct {
	DB DBTX
}

const createCompany = `-- name: CreateCompany
INSERT INTO companies (id, created_at, name)
VALUES ($1, $2, $3)
RETURNING id, created_at, name
`

func (r *CompanyRepo) CreateCompany(ctx context.Context, name string) (models.Company, error) {
	rows, _ := r.DB.Query(ctx, createCompany, uuid.New(), time.Now(), name)
	company, err := pgx.CollectOneRow(rows, rowToCompany)

	switch {
	case err == nil:
		return company, nil
	case isViolation(err, pgerrcode.UniqueViolation):
		return company, apperrors.ErrCompanyAlreadyExists
	default:
		return company, dbError(err)
	}
}

const getCompany = `-- name: GetCompany
SELECT id, created_at, name FROM companies
WHERE id = $1
`

func (r *CompanyRepo) GetCompany(ctx context.Context, companyID uuid.UUID) (models.Company, error) {
	rows, _ := r.DB.Query(ctx, getCompany, companyID)
	company, err := pgx.CollectOneRow(rows, rowToCompany)

	switch {
	case err == nil:
		return company, nil
	case errors.Is(err, pgx.ErrNoRows):
		return company, apperrors.ErrCompanyNotFound
	default:
		return company, dbError(err)
	}
}

func rowToCompany(row pgx.CollectableRow) (models.Company, error) {
	var c models.Company
	err := row.Scan(&c.ID, &c.CreatedAt, &c.Name)
	return c, err
}
