package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nkiryanov/fideliza/internal/apperrors"
	"github.com/nkiryanov/fideliza/internal/repository"
)

// Implemented by *pgxpool.Pool, *pgx.Conn and pgx.Tx
// Begin on pgx.Tx creates a savepoint, so InTx may be nested
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type Storage struct {
	db DBTX
}

func NewStorage(db DBTX) repository.Storage {
	return &Storage{db: db}
}

func (s *Storage) Ledger() repository.LedgerRepo {
	return &LedgerRepo{DB: s.db}
}

func (s *Storage) Reward() repository.RewardRepo {
	return &RewardRepo{DB: s.db}
}

func (s *Storage) Redemption() repository.RedemptionRepo {
	return &RedemptionRepo{DB: s.db}
}

func (s *Storage) Account() repository.AccountRepo {
	return &AccountRepo{DB: s.db}
}

func (s *Storage) Company() repository.CompanyRepo {
	return &CompanyRepo{DB: s.db}
}

func (s *Storage) Report() repository.ReportRepo {
	return &ReportRepo{DB: s.db}
}

func (s *Storage) InTx(ctx context.Context, fn func(repository.Storage) error) (err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return dbError(err)
	}

	// Nothing is committed when fn panics
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}

		switch err {
		case nil:
			if cerr := tx.Commit(ctx); cerr != nil {
				err = dbError(cerr)
			}
		default:
			_ = tx.Rollback(ctx)
		}
	}()

	err = fn(NewStorage(tx))

	return err
}

// Wrap driver error
// Errors that a retry of the whole transaction may resolve are marked as apperrors.ErrConflict
func dbError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected, pgerrcode.LockNotAvailable:
			return fmt.Errorf("db error: %w: %w", apperrors.ErrConflict, err)
		}
	}

	return fmt.Errorf("db error: %w", err)
}

// Return constraint name if err is a violation of the given class
func violation(err error, code string) (constraint string, ok bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == code {
		return pgErr.ConstraintName, true
	}
	return "", false
}

func isViolation(err error, code string) bool {
	_, ok := violation(err, code)
	return ok
}
