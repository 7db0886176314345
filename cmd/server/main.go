package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/duca-customs-backend/internal/auditor"
	"github.com/duca-customs-backend/internal/config"
	"github.com/duca-customs-backend/internal/data/mongo"
	"github.com/duca-customs-backend/internal/data/postgres"
	"github.com/duca-customs-backend/internal/logger"
	"github.com/duca-customs-backend/internal/platform/messaging/producers"
	"github.com/duca-customs-backend/internal/platform/persistence"
	"github.com/duca-customs-backend/internal/platform/tokens"
	"github.com/duca-customs-backend/internal/server"
	"github.com/duca-customs-backend/internal/server/service"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("server")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	// Initialize databases with app context
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

	// Initialize Kafka producer for declaration lifecycle events
	eventProducer, err := producers.NewDeclarationEventProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize Kafka producer", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	declarationRepo := postgres.NewDeclarationRepository(log, postgresDB)
	importerRepo := postgres.NewImporterRepository(log, postgresDB)
	exporterRepo := postgres.NewExporterRepository(log, postgresDB)
	userRepo := postgres.NewUserRepository(log, postgresDB)
	auditRepo := mongo.NewAuditRepository(log, mongoDB.Database())

	// Initialize best-effort audit recorder
	recorder, err := auditor.NewRecorder(log, auditRepo, auditor.Config{
		PoolSize:     cfg.Audit.WorkerPoolSize,
		WriteTimeout: cfg.Audit.WriteTimeout,
	})
	if err != nil {
		log.Error("Failed to initialize audit recorder", "error", err)
		os.Exit(1)
	}

	// Initialize token manager and services
	tokenManager := tokens.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	svcs := server.Services{
		Auth:         service.NewAuthService(log, userRepo, tokenManager, recorder),
		Declarations: service.NewDeclarationService(log, declarationRepo, importerRepo, exporterRepo, recorder, eventProducer),
		Users:        service.NewUserService(log, userRepo, recorder),
		Importers:    service.NewImporterService(log, importerRepo, recorder),
		Exporters:    service.NewExporterService(log, exporterRepo, recorder),
		Audit:        service.NewAuditService(log, auditRepo),
	}

	// Initialize REST server
	srv := server.NewServer(log, cfg, tokenManager, svcs)
	log.Info("REST server initialized")

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := srv.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Shutdown HTTP server first so no new audit work arrives
	if err = srv.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	// Drain the audit worker pool before closing its store
	recorder.Close()

	postgresDB.Close()

	if err = eventProducer.Close(); err != nil {
		log.Error("Error closing Kafka producer", "error", err)
	}

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Server shutdown completed with errors")
	} else {
		log.Info("Server shutdown completed successfully")
	}
}
