package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/natillera-ledger/internal/config"
	"github.com/natillera-ledger/internal/data/mongo"
	"github.com/natillera-ledger/internal/data/postgres"
	"github.com/natillera-ledger/internal/data/redis"
	"github.com/natillera-ledger/internal/ledger_processor/consumer"
	"github.com/natillera-ledger/internal/ledger_processor/outbox_poller"
	"github.com/natillera-ledger/internal/ledger_processor/projection"
	"github.com/natillera-ledger/internal/ledger_processor/scheduler"
	"github.com/natillera-ledger/internal/logger"
	"github.com/natillera-ledger/internal/platform/clock"
	"github.com/natillera-ledger/internal/platform/lotteryapi"
	"github.com/natillera-ledger/internal/platform/messaging/consumers"
	"github.com/natillera-ledger/internal/platform/messaging/producers"
	"github.com/natillera-ledger/internal/platform/persistence"
	"github.com/natillera-ledger/internal/service"
)

func main() {
	cfg, err := config.LoadConfig("ledger_processor")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)

	log.Info("Starting Ledger Processor",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

	appCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

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

	journalRepo := mongo.NewJournalRepository(log, mongoDB.Database())
	if err := journalRepo.EnsureIndexes(appCtx); err != nil {
		log.Error("Failed to create journal indexes", "error", err)
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

	movementProducer, err := producers.NewMovementProducer(log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize movement Kafka producer", "error", err)
		os.Exit(1)
	}

	// dlqProducer is nil when no DLQ topic is configured; its methods handle that
	dlqProducer, err := producers.NewDLQProducer(log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize DLQ Kafka producer", "error", err)
		os.Exit(1)
	}

	clk := clock.System{}
	settings := service.Settings{
		DefaultInterestRate: cfg.Savings.DefaultInterestRate,
		Location:            cfg.Savings.Location(),
		LotterySlug:         cfg.Lottery.Slug,
	}

	pollaService := service.NewPollaService(
		log,
		repos,
		redis.NewLotteryCache(log, redisClient.Client(), cfg.Lottery.CacheTTL),
		lotteryapi.NewClient(log, &cfg.Lottery),
		clk,
		settings,
	)
	loanService := service.NewLoanService(log, postgresDB, repos, clk, settings)

	projectionService, err := projection.NewWorkerPoolProjectionService(
		projection.NewJournalProjectionService(log, journalRepo),
		projection.WorkerPoolConfig{Size: cfg.WorkerPool.Size},
		log,
	)
	if err != nil {
		log.Error("Failed to initialize projection worker pool", "error", err)
		os.Exit(1)
	}

	eventHandler := consumer.NewMovementEventHandler(log, projectionService, dlqProducer)
	kafkaConsumer := consumers.NewKafkaConsumer(log, &cfg.Kafka)

	poller := outbox_poller.NewPoller(
		&cfg.Outbox,
		repos.Outbox,
		outbox_poller.NewEventPublisher(repos.Outbox, movementProducer, log),
		log,
	)
	lotterySync := scheduler.NewLotterySync(&cfg.Lottery, cfg.Savings.Location(), pollaService, clk, log)
	loanReconciler := scheduler.NewLoanReconciler(loanService, cfg.Reconciliation.Interval, log)

	group, groupCtx := errgroup.WithContext(appCtx)

	group.Go(func() error {
		if err := kafkaConsumer.Run(groupCtx, eventHandler.HandleMessage); err != nil {
			return fmt.Errorf("kafka consumer error: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		poller.Start(groupCtx)
		return nil
	})
	group.Go(func() error {
		lotterySync.Start(groupCtx)
		return nil
	})
	group.Go(func() error {
		loanReconciler.Start(groupCtx)
		return nil
	})

	serviceErr := group.Wait()
	if serviceErr != nil && !errors.Is(serviceErr, context.Canceled) {
		log.Error("Service error occurred", "error", serviceErr)
	} else {
		log.Info("Shutdown signal received")
		serviceErr = nil
	}

	log.Info("Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	projectionService.Shutdown()

	if err := kafkaConsumer.Close(); err != nil {
		log.Error("Error closing Kafka consumer", "error", err)
	}
	if err := movementProducer.Close(); err != nil {
		log.Error("Error closing movement Kafka producer", "error", err)
	}
	if err := dlqProducer.Close(); err != nil {
		log.Error("Error closing DLQ Kafka producer", "error", err)
	}
	if err := redisClient.Close(); err != nil {
		log.Error("Error closing Redis connection", "error", err)
	}
	if err := mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}
	postgresDB.Close()

	if serviceErr != nil {
		log.Error("Ledger Processor shutdown with errors", "error", serviceErr)
		os.Exit(1)
	}
	log.Info("Ledger Processor shutdown completed successfully")
}
