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
)

type AccountRepo struct {
	DB DBTX
}

const createAccount = `-- name: CreateAccount
INSERT INTO accounts (id, created_at, email, name, role, company_id)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, created_at, email, name, role, company_id
`

func (r *AccountRepo) CreateAccount(ctx context.Context, a models.Account) (models.Account, error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	rows, _ := r.DB.Query(ctx, createAccount, a.ID, a.CreatedAt, a.Email, a.Name, string(a.Role), a.CompanyID)
	account, err := pgx.CollectOneRow(rows, rowToAccount)

	switch {
	case err == nil:
		return account, nil
	case isViolation(err, pgerrcode.UniqueViolation):
		return account, apperrors.ErrAccountAlreadyExists
	case isViolation(err, pgerrcode.ForeignKeyViolation):
		return account, fmt.Errorf("repo error: %w", apperrors.ErrCompanyNotFound)
	case isViolation(err, pgerrcode.CheckViolation):
		return account, fmt.Errorf("repo error: %w: role and company do not match", apperrors.ErrInvalidInput)
	default:
		return account, dbError(err)
	}
}

const getAccount = `-- name: GetAccount
SELECT id, created_at, email, name, role, company_id
FROM accounts
WHERE id = $1
`

func (r *AccountRepo) GetAccount(ctx context.Context, accountID uuid.UUID) (models.Account, error) {
	rows, _ := r.DB.Query(ctx, getAccount, accountID)
	account, err := pgx.CollectOneRow(rows, rowToAccount)

	switch {
	case err == nil:
		return account, nil
	case errors.Is(err, pgx.ErrNoRows):
		return account, apperrors.ErrAccountNotFound
	default:
		return account, dbError(err)
	}
}

func rowToAccount(row pgx.CollectableRow) (models.Account, error) {
	var (
		a    models.Account
		role string
	)
	err := row.Scan(&a.ID, &a.CreatedAt, &a.Email, &a.Name, &role, &a.CompanyID)
	if err != nil {
		return a, err
	}

	a.Role, err = models.ParseRole(role)
	return a, err
}
