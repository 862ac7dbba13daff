package report

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/nkiryanov/fideliza/internal/apperrors"
	"github.com/nkiryanov/fideliza/internal/models"
	"github.com/nkiryanov/fideliza/internal/repository"
)

// Decimal places of average points per customer
const averagePlaces = 2

// Aggregator builds informational rollups over the ledger
// Queries run concurrently, so storage must not be bound to a single transaction
type Aggregator struct {
	storage repository.Storage
}

func NewAggregator(storage repository.Storage) *Aggregator {
	return &Aggregator{storage: storage}
}

// Summary of the admin's company
func (a *Aggregator) Summary(ctx context.Context, p models.Principal) (models.CompanyReport, error) {
	if !p.Role.CanViewReports() || p.CompanyID == nil {
		return models.CompanyReport{}, fmt.Errorf("%w: %s can't view reports", apperrors.ErrForbidden, p.Role)
	}

	return a.CompanySummary(ctx, *p.CompanyID)
}

func (a *Aggregator) CompanySummary(ctx context.Context, companyID uuid.UUID) (models.CompanyReport, error) {
	r := models.CompanyReport{CompanyID: companyID}
	repo := a.storage.Report()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		r.TotalPointsAwarded, err = repo.PointsAwarded(gctx, companyID)
		return err
	})
	g.Go(func() (err error) {
		r.UniqueCustomers, err = repo.UniqueCustomers(gctx, companyID)
		return err
	})
	g.Go(func() (err error) {
		r.TotalRewardsRedeemed, err = repo.RedemptionsCount(gctx, companyID)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.CompanyReport{}, fmt.Errorf("can't build company report. Err: %w", err)
	}

	r.AveragePointsPerCustomer = average(r.TotalPointsAwarded, r.UniqueCustomers)
	return r, nil
}

func average(total int64, count int64) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(total).DivRound(decimal.NewFromInt(count), averagePlaces)
}
