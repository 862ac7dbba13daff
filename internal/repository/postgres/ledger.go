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

type LedgerRepo struct {
	DB DBTX
}

const ledgerEntryColumns = `id, client_id, company_id, awarded_by_id, points, created_at`

const appendEntry = `-- name: AppendEntry
INSERT INTO ledger_entries (id, client_id, company_id, awarded_by_id, points, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + ledgerEntryColumns

func (r *LedgerRepo) Append(ctx context.Context, e models.LedgerEntry) (models.LedgerEntry, error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	rows, _ := r.DB.Query(ctx, appendEntry, e.ID, e.ClientID, e.CompanyID, e.AwardedByID, e.Points, e.CreatedAt)
	entry, err := pgx.CollectOneRow(rows, rowToLedgerEntry)

	if err == nil {
		return entry, nil
	}

	if constraint, ok := violation(err, pgerrcode.ForeignKeyViolation); ok {
		switch constraint {
		case "ledger_entries_company_id_fkey":
			return entry, fmt.Errorf("repo error: %w", apperrors.ErrCompanyNotFound)
		default:
			return entry, fmt.Errorf("repo error: %w", apperrors.ErrAccountNotFound)
		}
	}
	if _, ok := violation(err, pgerrcode.CheckViolation); ok {
		return entry, fmt.Errorf("repo error: %w", apperrors.ErrPointsInvalid)
	}

	return entry, dbError(err)
}

const sumPoints = `-- name: SumPoints
SELECT COALESCE(SUM(points), 0)::bigint
FROM ledger_entries
WHERE client_id = $1 AND company_id = $2
`

func (r *LedgerRepo) SumPoints(ctx context.Context, clientID uuid.UUID, companyID uuid.UUID) (int64, error) {
	rows, _ := r.DB.Query(ctx, sumPoints, clientID, companyID)
	sum, err := pgx.CollectOneRow(rows, pgx.RowTo[int64])
	if err != nil {
		return 0, dbError(err)
	}
	return sum, nil
}

const sumByCompany = `-- name: SumByCompany
SELECT e.company_id, c.name, SUM(e.points)::bigint AS total
FROM ledger_entries e
JOIN companies c ON c.id = e.company_id
WHERE e.client_id = $1
GROUP BY e.company_id, c.name
ORDER BY c.name
`

func (r *LedgerRepo) SumByCompany(ctx context.Context, clientID uuid.UUID) ([]models.CompanyBalance, error) {
	rows, _ := r.DB.Query(ctx, sumByCompany, clientID)
	balances, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.CompanyBalance, error) {
		var b models.CompanyBalance
		err := row.Scan(&b.CompanyID, &b.CompanyName, &b.Total)
		return b, err
	})
	if err != nil {
		return nil, dbError(err)
	}
	return balances, nil
}

const listEntries = `-- name: ListEntries
SELECT e.id, e.client_id, e.company_id, e.awarded_by_id, e.points, e.created_at, c.name, a.name
FROM ledger_entries e
JOIN accounts c ON c.id = e.client_id
JOIN accounts a ON a.id = e.awarded_by_id`

func (r *LedgerRepo) ListEntries(ctx context.Context, opts repository.ListEntriesOpts) ([]models.Transaction, error) {
	var (
		query strings.Builder
		where []string
		args  []any
	)

	query.WriteString(listEntries)

	if opts.ClientID != nil {
		args = append(args, *opts.ClientID)
		where = append(where, fmt.Sprintf("e.client_id = $%d", len(args)))
	}
	if opts.CompanyID != nil {
		args = append(args, *opts.CompanyID)
		where = append(where, fmt.Sprintf("e.company_id = $%d", len(args)))
	}
	if len(where) > 0 {
		query.WriteString(" WHERE " + strings.Join(where, " AND "))
	}

	switch opts.Order {
	case repository.OrderOldestFirst:
		query.WriteString(" ORDER BY e.created_at ASC, e.id ASC")
	default:
		query.WriteString(" ORDER BY e.created_at DESC, e.id DESC")
	}

	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		fmt.Fprintf(&query, " LIMIT $%d", len(args))
	}

	rows, _ := r.DB.Query(ctx, query.String(), args...)
	entries, err := pgx.CollectRows(rows, rowToTransaction)
	if err != nil {
		return nil, dbError(err)
	}
	return entries, nil
}

// Transaction scoped advisory lock keyed by the pair
// Hash collisions only serialize unrelated pairs, they never skip a lock
const lockBalance = `-- name: LockBalance
SELECT pg_advisory_xact_lock(hashtextextended($1, 0))
`

func (r *LedgerRepo) LockBalance(ctx context.Context, clientID uuid.UUID, companyID uuid.UUID) error {
	_, err := r.DB.Exec(ctx, lockBalance, balanceLockKey(clientID, companyID))
	if err != nil {
		return dbError(err)
	}
	return nil
}

func balanceLockKey(clientID uuid.UUID, companyID uuid.UUID) string {
	return "balance:" + clientID.String() + ":" + companyID.String()
}

func rowToTransaction(row pgx.CollectableRow) (models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(
		&t.ID, &t.ClientID, &t.CompanyID, &t.AwardedByID, &t.Points, &t.CreatedAt,
		&t.Client.Name, &t.AwardedBy.Name,
	)
	t.Client.ID = t.ClientID
	t.AwardedBy.ID = t.AwardedByID
	return t, err
}

func rowToLedgerEntry(row pgx.CollectableRow) (models.LedgerEntry, error) {
	var e models.LedgerEntry
	err := row.Scan(&e.ID, &e.ClientID, &e.CompanyID, &e.AwardedByID, &e.Points, &e.CreatedAt)
	return e, err
}
