package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/library-lending-engine/internal/config"
	"github.com/library-lending-engine/internal/data/mongo"
	"github.com/library-lending-engine/internal/data/postgres"
	"github.com/library-lending-engine/internal/lending_engine/components"
	"github.com/library-lending-engine/internal/lending_engine/consumer"
	"github.com/library-lending-engine/internal/lending_engine/outbox_poller"
	"github.com/library-lending-engine/internal/lending_engine/sweep_scheduler"
	"github.com/library-lending-engine/internal/logger"
	"github.com/library-lending-engine/internal/platform/messaging/consumers"
	"github.com/library-lending-engine/internal/platform/messaging/producers"
	"github.com/library-lending-engine/internal/platform/persistence"
)

func main() {
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	cfg, err := config.LoadConfig("lending_worker")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)

	log.Info("Starting lending worker",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

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

	historyRepo := mongo.NewHistoryRepository(log, mongoDB.Database())
	if err := historyRepo.EnsureIndexes(appCtx); err != nil {
		log.Error("Failed to prepare lending history collection", "error", err)
		os.Exit(1)
	}

	pool := postgresDB.Pool()
	repos := components.Repositories{
		Items:        postgres.NewItemRepository(log, pool),
		Members:      postgres.NewMemberRepository(log, pool),
		Transactions: postgres.NewTransactionRepository(log, pool),
		Fines:        postgres.NewFineRepository(log, pool),
		Outbox:       postgres.NewOutboxRepository(log, pool),
		History:      historyRepo,
	}

	engine, err := components.CreateLendingEngine(pool, repos, log, cfg)
	if err != nil {
		log.Error("Failed to create lending engine", "error", err)
		os.Exit(1)
	}

	eventProducer, err := producers.NewLendingEventProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize lending event producer", "error", err)
		os.Exit(1)
	}

	dlqProducer, err := producers.NewDLQProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize DLQ Kafka producer", "error", err)
		os.Exit(1)
	}

	var dlq producers.DeadLetterPublisher
	if dlqProducer != nil {
		dlq = dlqProducer
	}

	kafkaConsumer := consumers.NewKafkaConsumer(appCtx, log, &cfg.Kafka)
	historyHandler := consumer.NewHistoryEventHandler(log, historyRepo, dlq)

	poller := outbox_poller.NewPoller(
		&cfg.Outbox,
		repos.Outbox,
		outbox_poller.NewKafkaEventPublisher(repos.Outbox, eventProducer, log),
		log,
	)
	scheduler := sweep_scheduler.NewScheduler(engine.Sweeper, cfg.Lending.SweepInterval, log)

	if err := kafkaConsumer.Subscribe(appCtx, historyHandler.HandleMessage); err != nil {
		log.Error("Failed to start history consumer", "error", err)
		os.Exit(1)
	}

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		poller.Start(appCtx)
	}()
	go func() {
		defer wg.Done()
		scheduler.Start(appCtx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	<-quit
	log.Info("Shutdown signal received")

	cancelAppCtx()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	log.Info("Waiting for background loops to stop...")
	stopped := make(chan struct{})
	go func() {
		wg.Wait()
		close(stopped)
	}()

	select {
	case <-stopped:
		log.Info("Background loops stopped")
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout reached, forcing exit")
	}

	if err := kafkaConsumer.Close(); err != nil {
		log.Error("Error closing Kafka consumer", "error", err)
	}
	if err := eventProducer.Close(); err != nil {
		log.Error("Error closing lending event producer", "error", err)
	}
	if err := dlqProducer.Close(); err != nil {
		log.Error("Error closing DLQ Kafka producer", "error", err)
	}

	engine.Shutdown()
	postgresDB.Close()

	if err := mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	log.Info("Lending worker shutdown completed")
}
