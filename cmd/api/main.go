package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dmarchetti-dev/revshare-backend/api/routes"
	"github.com/dmarchetti-dev/revshare-backend/internal/distributions"
	"github.com/dmarchetti-dev/revshare-backend/internal/exits"
	"github.com/dmarchetti-dev/revshare-backend/internal/investments"
	"github.com/dmarchetti-dev/revshare-backend/internal/ledger"
	"github.com/dmarchetti-dev/revshare-backend/internal/loans"
	"github.com/dmarchetti-dev/revshare-backend/internal/payments"
	"github.com/dmarchetti-dev/revshare-backend/internal/revenue"
	"github.com/dmarchetti-dev/revshare-backend/internal/rounds"
	"github.com/dmarchetti-dev/revshare-backend/internal/startups"
	"github.com/dmarchetti-dev/revshare-backend/pkg/config"
	"github.com/dmarchetti-dev/revshare-backend/pkg/db"
	"github.com/dmarchetti-dev/revshare-backend/pkg/logger"
	"github.com/dmarchetti-dev/revshare-backend/pkg/metrics"
	"github.com/dmarchetti-dev/revshare-backend/pkg/migrate"
	"github.com/dmarchetti-dev/revshare-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	engineMetrics := metrics.NewEngineMetrics(registry)

	gormDB := dbClient.DB()
	startupRepo := startups.NewRepository(gormDB)
	roundRepo := rounds.NewRepository(gormDB)
	investmentRepo := investments.NewRepository(gormDB)
	contractRepo := investments.NewContractRepository(gormDB)
	revenueRepo := revenue.NewRepository(gormDB)
	distributionRepo := distributions.NewRepository(gormDB)
	exitRepo := exits.NewRepository(gormDB)
	loanRepo := loans.NewRepository(gormDB)

	provider := payments.NewSimulated()

	ledgerSvc, err := ledger.NewService(ledger.NewRepository(gormDB))
	requireService(logg, "ledger", err)
	startupSvc, err := startups.NewService(startupRepo)
	requireService(logg, "startups", err)
	roundSvc, err := rounds.NewService(roundRepo, startupRepo)
	requireService(logg, "rounds", err)
	investmentSvc, err := investments.NewService(
		gormDB, investmentRepo, contractRepo, roundRepo,
		ledgerSvc, provider, int64(cfg.Payments.PlatformFeeBps), engineMetrics, logg,
	)
	requireService(logg, "investments", err)
	revenueSvc, err := revenue.NewService(revenueRepo, startupRepo)
	requireService(logg, "revenue", err)
	distributionSvc, err := distributions.NewService(
		gormDB, distributionRepo, contractRepo, investmentRepo, revenueRepo, startupRepo,
		ledgerSvc, provider, redisClient, cfg.Distribution.LockTTL, engineMetrics, logg,
	)
	requireService(logg, "distributions", err)
	exitSvc, err := exits.NewService(
		gormDB, exitRepo, contractRepo, investmentRepo, roundRepo, loanRepo,
		ledgerSvc, provider, engineMetrics, logg,
	)
	requireService(logg, "exits", err)
	loanSvc, err := loans.NewService(loanRepo, startupRepo, logg)
	requireService(logg, "loans", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, registry, routes.Services{
			Startups:      startupSvc,
			Rounds:        roundSvc,
			Investments:   investmentSvc,
			Revenue:       revenueSvc,
			Distributions: distributionSvc,
			Exits:         exitSvc,
			Loans:         loanSvc,
			Ledger:        ledgerSvc,
		}),
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-shutdown:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			_ = server.Close()
		}
	}
}

func requireService(logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to create "+name+" service", err)
	os.Exit(1)
}
