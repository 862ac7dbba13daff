package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/nkiryanov/fideliza/internal/apperrors"
	"github.com/nkiryanov/fideliza/internal/logger"
	"github.com/nkiryanov/fideliza/internal/models"
	"github.com/nkiryanov/fideliza/internal/repository"
)

// Points awarded when caller does not pass an amount
const DefaultAward int64 = 1

type TransactionFilter struct {
	// Staff may narrow company history to one client
	// Clients always see their own entries only
	ClientID *uuid.UUID

	// Clients may narrow history to one company
	// Staff always see their own company only
	CompanyID *uuid.UUID

	Order repository.SortOrder
	Limit int
}

type LedgerService struct {
	storage repository.Storage
	logger  logger.Logger
}

func NewService(storage repository.Storage, l logger.Logger) *LedgerService {
	return &LedgerService{
		storage: storage,
		logger:  l,
	}
}

// Append credit entry attributed to the issuer in the issuer's company
// Nil amount means DefaultAward
func (s *LedgerService) AwardPoints(ctx context.Context, issuer models.Principal, clientID uuid.UUID, amount *int64) (models.LedgerEntry, error) {
	var entry models.LedgerEntry

	if !issuer.Role.CanAward() || issuer.CompanyID == nil {
		return entry, fmt.Errorf("%w: %s can't award points", apperrors.ErrForbidden, issuer.Role)
	}

	points := DefaultAward
	if amount != nil {
		points = *amount
	}
	if err := models.ValidatePoints(points); err != nil {
		return entry, err
	}

	client, err := s.storage.Account().GetAccount(ctx, clientID)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return entry, apperrors.ErrClientNotFound
	case err != nil:
		return entry, err
	case client.Role != models.RoleClient:
		return entry, fmt.Errorf("%w: account %s is %s", apperrors.ErrClientNotFound, clientID, client.Role)
	}

	entry, err = s.storage.Ledger().Append(ctx, models.LedgerEntry{
		ClientID:    client.ID,
		CompanyID:   *issuer.CompanyID,
		AwardedByID: issuer.UserID,
		Points:      points,
	})
	if err != nil {
		return entry, fmt.Errorf("can't award points. Err: %w", err)
	}

	s.logger.Info("Points awarded", "client_id", entry.ClientID, "company_id", entry.CompanyID, "issuer_id", entry.AwardedByID, "points", entry.Points)
	return entry, nil
}

// Balance of a client in a company
// Clients read their own balance, staff read balances of their company only
func (s *LedgerService) GetBalance(ctx context.Context, p models.Principal, clientID uuid.UUID, companyID uuid.UUID) (int64, error) {
	switch {
	case p.Role == models.RoleClient && p.UserID != clientID:
		return 0, fmt.Errorf("%w: client can't read balance of another client", apperrors.ErrForbidden)
	case p.Role.IsStaff() && p.Company() != companyID:
		return 0, fmt.Errorf("%w: staff can't read balance in another company", apperrors.ErrForbidden)
	}

	return s.storage.Ledger().SumPoints(ctx, clientID, companyID)
}

// Client totals for every company they have entries in
func (s *LedgerService) GetBalancesByCompany(ctx context.Context, p models.Principal) ([]models.CompanyBalance, error) {
	if p.Role != models.RoleClient {
		return nil, fmt.Errorf("%w: only clients have balances", apperrors.ErrForbidden)
	}

	return s.storage.Ledger().SumByCompany(ctx, p.UserID)
}

func (s *LedgerService) ListTransactions(ctx context.Context, p models.Principal, f TransactionFilter) ([]models.Transaction, error) {
	if f.Limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative", apperrors.ErrInvalidInput)
	}

	opts := repository.ListEntriesOpts{Order: f.Order, Limit: f.Limit}

	switch {
	case p.Role == models.RoleClient:
		if f.ClientID != nil && *f.ClientID != p.UserID {
			return nil, fmt.Errorf("%w: client can't list entries of another client", apperrors.ErrForbidden)
		}
		opts.ClientID = &p.UserID
		opts.CompanyID = f.CompanyID

	case p.Role.CanListCompanyData() && p.CompanyID != nil:
		if f.CompanyID != nil && *f.CompanyID != *p.CompanyID {
			return nil, fmt.Errorf("%w: staff can't list entries of another company", apperrors.ErrForbidden)
		}
		opts.CompanyID = p.CompanyID
		opts.ClientID = f.ClientID

	default:
		return nil, fmt.Errorf("%w: %s can't list entries", apperrors.ErrForbidden, p.Role)
	}

	return s.storage.Ledger().ListEntries(ctx, opts)
}

// Total points over all companies and the latest entry, if any
func (s *LedgerService) Dashboard(ctx context.Context, p models.Principal) (models.Dashboard, error) {
	var d models.Dashboard

	if p.Role != models.RoleClient {
		return d, fmt.Errorf("%w: dashboard is for clients only", apperrors.ErrForbidden)
	}

	balances, err := s.storage.Ledger().SumByCompany(ctx, p.UserID)
	if err != nil {
		return d, err
	}
	for _, b := range balances {
		if b.Total > 0 && d.TotalPoints > math.MaxInt64-b.Total {
			return d, fmt.Errorf("points total of client %s overflows int64", p.UserID)
		}
		d.TotalPoints += b.Total
	}

	last, err := s.storage.Ledger().ListEntries(ctx, repository.ListEntriesOpts{ClientID: &p.UserID, Limit: 1})
	if err != nil {
		return d, err
	}
	if len(last) > 0 {
		d.LastActivity = &last[0].LedgerEntry
	}

	return d, nil
}
