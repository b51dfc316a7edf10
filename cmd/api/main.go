package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	generationUseCase "github.com/littlehunt-studios/generation-processor/internal/domain/usecase/generation"
	ledgerUseCase "github.com/littlehunt-studios/generation-processor/internal/domain/usecase/ledger"

	"github.com/littlehunt-studios/generation-processor/internal/infrastructure/adapter/api/handler"
	"github.com/littlehunt-studios/generation-processor/internal/infrastructure/adapter/api/routes"
	"github.com/littlehunt-studios/generation-processor/internal/infrastructure/adapter/database"
	"github.com/littlehunt-studios/generation-processor/internal/infrastructure/adapter/database/migration"
	"github.com/littlehunt-studios/generation-processor/internal/infrastructure/adapter/logger"
	"github.com/littlehunt-studios/generation-processor/internal/infrastructure/adapter/provider/openai"
	"github.com/littlehunt-studios/generation-processor/internal/infrastructure/adapter/provider/replicate"
	"github.com/littlehunt-studios/generation-processor/internal/infrastructure/adapter/repository"
	timeProvider "github.com/littlehunt-studios/generation-processor/internal/infrastructure/adapter/time"
	"github.com/littlehunt-studios/generation-processor/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// A deployment without provider credentials cannot serve a single
	// generation; refuse to start instead of failing the first paying request
	if err := cfg.ValidateProviders(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	// Set Gin mode based on environment
	if cfg.Environment == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create logger
	appLogger := logger.NewZapLogger(cfg.Environment == config.Production)

	// Initialize time provider
	tp := timeProvider.NewRealTimeProvider()

	// Connect to the database
	dbConfig := database.FromAppConfig(cfg)
	dbManager := database.NewManager(dbConfig, appLogger, tp)
	if _, err := dbManager.Connect(); err != nil {
		appLogger.Error("Failed to connect to database", map[string]any{
			"error": err.Error(),
		})
		os.Exit(1)
	}
	defer dbManager.Close()

	// Run migrations
	migrationMgr := migration.NewMigrationManager(dbManager.DB(), appLogger, tp)
	if err := migrationMgr.MigrateAll(); err != nil {
		appLogger.Error("Failed to run migrations", map[string]any{
			"error": err.Error(),
		})
		os.Exit(1)
	}

	// Initialize repositories
	accountRepo := repository.NewAccountRepository(dbManager.DB(), tp, appLogger)
	transactionRepo := repository.NewTransactionRepository(dbManager.DB(), appLogger)
	generationRepo := repository.NewGenerationRepository(dbManager.DB(), tp, appLogger)

	// Unit of work pairing balance updates with their ledger entries
	uow := dbManager.CreateUnitOfWork()

	// Upstream provider clients
	replicateClient := replicate.NewClient(replicate.Config{
		APIToken:        cfg.Provider.ReplicateAPIToken,
		RequestTimeout:  cfg.Provider.RequestTimeout,
		PollInterval:    cfg.Provider.PollInterval,
		MaxPollDuration: cfg.Provider.MaxPollDuration,
	}, tp, appLogger)
	openaiClient := openai.NewClient(openai.Config{
		APIKey:          cfg.Provider.OpenAIAPIKey,
		RequestTimeout:  cfg.Provider.RequestTimeout,
		PollInterval:    cfg.Provider.PollInterval,
		MaxPollDuration: cfg.Provider.MaxPollDuration,
	}, tp, appLogger)

	// Initialize use cases
	ledgerService := ledgerUseCase.NewService(uow, accountRepo, transactionRepo, tp, appLogger)
	generationService := generationUseCase.NewService(
		ledgerService,
		generationRepo,
		replicateClient,
		openaiClient,
		openaiClient,
		tp,
		appLogger,
	)

	// Initialize API handlers
	generationHandler := handler.NewGenerationHandler(generationService, cfg.Generation.GalleryPageSize, appLogger)
	accountHandler := handler.NewAccountHandler(ledgerService, appLogger)

	// Initialize Gin router
	router := gin.New()
	routes.SetupMiddlewares(router, appLogger)
	routes.SetupRoutes(router, generationHandler, accountHandler)

	// Create HTTP server with configurable timeout values
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	// Start the server in a goroutine
	go func() {
		appLogger.Info("Starting server", map[string]any{
			"port": cfg.Server.Port,
			"env":  cfg.Environment,
		})

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Failed to start server", map[string]any{
				"error": err.Error(),
			})
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", map[string]any{
			"error": err.Error(),
		})
	}

	appLogger.Info("Server exited gracefully", nil)
	if err := appLogger.Flush(); err != nil {
		log.Printf("Failed to flush logs: %v", err)
	}
}
