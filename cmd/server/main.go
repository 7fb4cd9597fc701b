// Command arenahub-server starts the ArenaHub score API.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/arenahub/arenahub-backend/internal/migrate"
	"github.com/arenahub/arenahub-backend/internal/ratelimit"
	"github.com/arenahub/arenahub-backend/internal/repository"
	"github.com/arenahub/arenahub-backend/internal/repository/memory"
	"github.com/arenahub/arenahub-backend/internal/repository/postgres"
	"github.com/arenahub/arenahub-backend/internal/server/httpserver"
	"github.com/arenahub/arenahub-backend/internal/service"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// main parses configuration, runs migrations, and starts the HTTP server.
// The admin password and token signing key are environment-only; they
// never appear on the command line or in logs.
func main() {
	addr := flag.String("addr", ":3001", "listen address")
	dsn := flag.String("dsn", os.Getenv("DATABASE_URL"), "PostgreSQL DSN; empty selects the in-memory store")
	rateLimit := flag.Int("rate-limit", 100, "requests allowed per client per window (0 disables)")
	rateWindow := flag.Duration("rate-window", 15*time.Minute, "rate limit window")
	tokenTTL := flag.Duration("token-ttl", 15*time.Minute, "admin token TTL")
	flag.Parse()

	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", *addr),
	)

	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		logger.Warn("ADMIN_PASSWORD not set, admin endpoints disabled")
	}
	tokenKey := os.Getenv("ADMIN_TOKEN_KEY")
	if tokenKey == "" && adminPassword != "" {
		logger.Warn("ADMIN_TOKEN_KEY not set, admin login disabled; password-only resets remain available")
	}

	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		ledger repository.Ledger
		audit  repository.AdminLog
	)
	if *dsn != "" {
		if err := migrate.Up(ctx, *dsn); err != nil {
			logger.Fatal("migrate up", zap.Error(err))
		}
		db, err := postgres.New(ctx, *dsn)
		if err != nil {
			logger.Fatal("postgres connect", zap.Error(err))
		}
		defer db.Close()
		ledger = postgres.NewScoreRepo(db)
		audit = postgres.NewAdminRepo(db)
		logger.Info("using postgres store")
	} else {
		store := memory.New()
		ledger = store
		audit = store
		logger.Warn("no DSN configured, using in-memory store; data is lost on restart")
	}

	scoreSvc := service.NewScoreService(ledger, logger)
	adminSvc := service.NewAdminService(audit, []byte(adminPassword), []byte(tokenKey), *tokenTTL, logger)

	var limiter *ratelimit.Limiter
	if *rateLimit > 0 {
		limiter = ratelimit.New(*rateLimit, *rateWindow)
	}

	srv := &http.Server{
		Addr:    *addr,
		Handler: httpserver.New(scoreSvc, adminSvc, logger).Router(limiter),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", *addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", zap.Error(err))
		}
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}

	logger.Info("shutdown complete")
}
