package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/library-lending-engine/internal/api_gateway"
	"github.com/library-lending-engine/internal/api_gateway/service"
	"github.com/library-lending-engine/internal/config"
	"github.com/library-lending-engine/internal/data/mongo"
	"github.com/library-lending-engine/internal/data/postgres"
	"github.com/library-lending-engine/internal/lending_engine/components"
	"github.com/library-lending-engine/internal/logger"
	"github.com/library-lending-engine/internal/platform/persistence"
)

func main() {
	appCtx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stopSignals()

	cfg, err := config.LoadConfig("api_gateway")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)

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

	pool := postgresDB.Pool()
	repos := components.Repositories{
		Items:        postgres.NewItemRepository(log, pool),
		Members:      postgres.NewMemberRepository(log, pool),
		Transactions: postgres.NewTransactionRepository(log, pool),
		Fines:        postgres.NewFineRepository(log, pool),
		Outbox:       postgres.NewOutboxRepository(log, pool),
		History:      mongo.NewHistoryRepository(log, mongoDB.Database()),
	}

	engine, err := components.CreateLendingEngine(pool, repos, log, cfg)
	if err != nil {
		log.Error("Failed to create lending engine", "error", err)
		os.Exit(1)
	}

	server := api_gateway.NewServer(log, cfg, api_gateway.Services{
		Catalog: service.NewCatalogService(repos.Items, repos.Members, log),
		Lending: engine.Lending,
		Fines:   engine.Fines,
		Sweeper: engine.Sweeper,
		Queries: engine.Queries,
	})

	errChan := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	var serverErr error
	select {
	case <-appCtx.Done():
		log.Info("Shutdown signal received")
	case serverErr = <-errChan:
		log.Error("Server error occurred", "error", serverErr)
	}
	stopSignals()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	log.Info("Starting graceful shutdown...")

	// stop accepting requests before the pools they use go away
	if err := server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	engine.Shutdown()
	postgresDB.Close()

	if err := mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	if serverErr != nil {
		log.Error("API gateway stopped with errors", "error", serverErr)
		os.Exit(1)
	}
	log.Info("API gateway shutdown completed")
}
