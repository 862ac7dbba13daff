package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nkiryanov/fideliza/internal/db"
	"github.com/nkiryanov/fideliza/internal/handlers"
	"github.com/nkiryanov/fideliza/internal/logger"
	"github.com/nkiryanov/fideliza/internal/repository/postgres"
	"github.com/nkiryanov/fideliza/internal/service/auth/tokenmanager"
	"github.com/nkiryanov/fideliza/internal/service/ledger"
	"github.com/nkiryanov/fideliza/internal/service/redemption"
	"github.com/nkiryanov/fideliza/internal/service/report"
	"github.com/nkiryanov/fideliza/internal/service/reward"
)

const shutdownTimeout = 5 * time.Second

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler
	Logger     logger.Logger

	pool *pgxpool.Pool
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	l, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	tokenManager, err := tokenmanager.New(tokenmanager.Config{SecretKey: c.SecretKey})
	if err != nil {
		return nil, fmt.Errorf("error while creating token manager: %w", err)
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	// Initialize repositories
	storage := postgres.NewStorage(pool)

	// Initialize services
	services := handlers.Services{
		Ledger:      ledger.NewService(storage, l),
		Rewards:     reward.NewService(storage, l),
		Redemptions: redemption.NewCoordinator(redemption.Config{Retries: c.RedeemRetries}, storage, l),
		Reports:     report.NewAggregator(storage),
	}

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    handlers.NewRouter(services, tokenManager, l),
		Logger:     l,
		pool:       pool,
	}, nil
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	defer s.pool.Close()

	httpServer := &http.Server{
		Addr:              s.ListenAddr,
		Handler:           s.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); errors.Is(err, context.DeadlineExceeded) {
			s.Logger.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		s.Logger.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	s.Logger.Info("Starting server", "address", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	return err
}
