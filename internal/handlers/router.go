package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/nkiryanov/fideliza/internal/handlers/middleware"
	"github.com/nkiryanov/fideliza/internal/logger"
	"github.com/nkiryanov/fideliza/internal/models"
	"github.com/nkiryanov/fideliza/internal/repository"
	"github.com/nkiryanov/fideliza/internal/service/ledger"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

// Services the router dispatches to
type Services struct {
	Ledger      ledgerService
	Rewards     rewardService
	Redemptions redemptionService
	Reports     reportService
}

func NewRouter(
	services Services,
	tokens tokenParser,
	logger logger.Logger,
) http.Handler {
	withAuth := middleware.AuthMiddleware(tokens)

	api := http.NewServeMux()

	api.Handle("POST /points", handleAwardPoints(services.Ledger, logger))
	api.Handle("GET /points/balances", handleListBalances(services.Ledger, logger))
	api.Handle("GET /points/balances/{companyID}", handleCompanyBalance(services.Ledger, logger))
	api.Handle("GET /points/transactions", handleListTransactions(services.Ledger, logger))
	api.Handle("GET /dashboard", handleDashboard(services.Ledger, logger))

	api.Handle("GET /rewards", handleListRewards(services.Rewards, logger))
	api.Handle("POST /rewards", handleCreateReward(services.Rewards, logger))
	api.Handle("GET /rewards/status", handleRewardStatus(services.Rewards, logger))
	api.Handle("GET /rewards/{id}", handleGetReward(services.Rewards, logger))
	api.Handle("PATCH /rewards/{id}", handleUpdateReward(services.Rewards, logger))
	api.Handle("DELETE /rewards/{id}", handleDeleteReward(services.Rewards, logger))
	api.Handle("POST /rewards/redeem", handleRedeemReward(services.Redemptions, logger))

	api.Handle("GET /redemptions", handleListRedemptions(services.Redemptions, logger))
	api.Handle("GET /reports/summary", handleReportSummary(services.Reports, logger))

	root := http.NewServeMux()
	root.Handle("/api/v1/", http.StripPrefix("/api/v1", withAuth(api)))

	handler := chain(root,
		middleware.LoggerMiddleware(logger),
	)

	return handler
}

type tokenParser interface {
	// Has to return apperrors.ErrUnauthorized if token is not valid
	ParseAccess(access string) (models.Principal, error)
}

type ledgerService interface {
	// Nil amount means default award
	AwardPoints(ctx context.Context, issuer models.Principal, clientID uuid.UUID, amount *int64) (models.LedgerEntry, error)
	GetBalance(ctx context.Context, p models.Principal, clientID uuid.UUID, companyID uuid.UUID) (int64, error)
	GetBalancesByCompany(ctx context.Context, p models.Principal) ([]models.CompanyBalance, error)
	ListTransactions(ctx context.Context, p models.Principal, f ledger.TransactionFilter) ([]models.Transaction, error)
	Dashboard(ctx context.Context, p models.Principal) (models.Dashboard, error)
}

type rewardService interface {
	Create(ctx context.Context, p models.Principal, r models.Reward) (models.Reward, error)
	Update(ctx context.Context, p models.Principal, rewardID uuid.UUID, upd repository.RewardUpdate) (models.Reward, error)
	Delete(ctx context.Context, p models.Principal, rewardID uuid.UUID) (models.Reward, error)
	Get(ctx context.Context, rewardID uuid.UUID) (models.Reward, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.Reward, error)
	Status(ctx context.Context, p models.Principal) ([]models.RewardStatus, error)
}

type redemptionService interface {
	// Has to return *apperrors.InsufficientPointsError if balance is too low
	Redeem(ctx context.Context, p models.Principal, rewardID uuid.UUID) (models.Redemption, error)
	ListRedemptions(ctx context.Context, p models.Principal, limit int) ([]models.Redemption, error)
}

type reportService interface {
	Summary(ctx context.Context, p models.Principal) (models.CompanyReport, error)
}
