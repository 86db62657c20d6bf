package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"catalogsync/internal/config"
	"catalogsync/internal/database"
	"catalogsync/internal/events"
	"catalogsync/internal/logger"
	"catalogsync/internal/recon"
	"catalogsync/internal/syncer"
	"catalogsync/internal/worker"

	_ "catalogsync/internal/connectors/registry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize logger
	logger := logger.New(cfg.LogLevel)

	// Initialize database
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	store := database.NewStore(db, logger)
	mappings := recon.NewCachedRepository(database.NewMappingStore(db))
	engine := recon.NewEngine(mappings, logger)

	publisher := events.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
	defer publisher.Close()

	s := syncer.New(db, store, engine, publisher, logger)

	// Initialize worker
	w := worker.New(cfg, logger, s)

	// Start worker
	logger.Info("Starting worker...")
	go func() {
		if err := w.Start(); err != nil {
			logger.Fatal("Failed to start worker: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down worker...")
	w.Stop()
}
