package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/natillera-ledger/internal/api_gateway"
	"github.com/natillera-ledger/internal/config"
	"github.com/natillera-ledger/internal/data/mongo"
	"github.com/natillera-ledger/internal/data/postgres"
	"github.com/natillera-ledger/internal/data/redis"
	"github.com/natillera-ledger/internal/logger"
	"github.com/natillera-ledger/internal/platform/clock"
	"github.com/natillera-ledger/internal/platform/lotteryapi"
	"github.com/natillera-ledger/internal/platform/persistence"
	"github.com/natillera-ledger/internal/service"
)

func main() {
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	cfg, err := config.LoadConfig("natillera_api")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)

	// Migrations run here, before the pool is opened
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	redisClient, err := persistence.NewRedisClient(appCtx, log, &cfg.Redis)
	if err != nil {
		log.Error("Failed to initialize Redis", "error", err)
		os.Exit(1)
	}

	repos := service.Repositories{
		Members:   postgres.NewMemberRepository(log, postgresDB),
		Savings:   postgres.NewSavingsRepository(log, postgresDB),
		Loans:     postgres.NewLoanRepository(log, postgresDB),
		Movements: postgres.NewMovementRepository(log, postgresDB),
		Outbox:    postgres.NewOutboxRepository(log, postgresDB),
		Lottery:   postgres.NewLotteryRepository(log, postgresDB),
	}
	journalRepo := mongo.NewJournalRepository(log, mongoDB.Database())
	lotteryCache := redis.NewLotteryCache(log, redisClient.Client(), cfg.Lottery.CacheTTL)
	lotteryClient := lotteryapi.NewClient(log, &cfg.Lottery)

	clk := clock.System{}
	settings := service.Settings{
		DefaultInterestRate: cfg.Savings.DefaultInterestRate,
		Location:            cfg.Savings.Location(),
		LotterySlug:         cfg.Lottery.Slug,
	}

	loanService := service.NewLoanService(log, postgresDB, repos, clk, settings)
	server := api_gateway.NewServer(log, cfg, api_gateway.Services{
		Members:   service.NewMemberService(log, postgresDB, repos, clk, settings),
		Savings:   service.NewSavingsService(log, postgresDB, repos, clk, settings),
		Loans:     loanService,
		Movements: service.NewMovementService(repos.Members, repos.Movements, journalRepo),
		Polla:     service.NewPollaService(log, repos, lotteryCache, lotteryClient, clk, settings),
		Dashboard: service.NewDashboardService(repos, clk, settings),
		Admin:     service.NewAdminService(log, postgresDB, repos, clk),
	})
	log.Info("REST server initialized")

	errChan := make(chan error, 1)

	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	cancelAppCtx()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	log.Info("Starting graceful shutdown...")

	// Stop accepting requests before the pools go away
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	postgresDB.Close()

	if err = redisClient.Close(); err != nil {
		log.Error("Error closing Redis connection", "error", err)
	}

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
		os.Exit(1)
	}
	log.Info("Server shutdown completed successfully")
}
