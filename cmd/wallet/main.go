package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	cfg "solana-wallet-backend/config"
	"solana-wallet-backend/internal/handlers"
	"solana-wallet-backend/internal/pricing"
	"solana-wallet-backend/internal/upstream"
	"solana-wallet-backend/internal/usecases"
	"solana-wallet-backend/internal/usecases/repository"
	"solana-wallet-backend/internal/workers"
	"solana-wallet-backend/pkg/database"
)

// Server timeout constants.
const (
	readTimeoutSeconds     = 15
	writeTimeoutSeconds    = 15
	idleTimeoutSeconds     = 60
	shutdownTimeoutSeconds = 5
)

func main() {
	time.Local = time.UTC

	// Parse configuration
	config, err := cfg.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	// Setup logging
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if config.App.Debug {
		opts.Level = slog.LevelDebug
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	migrationsPath := "./migrations"
	if workDir, err := os.Getwd(); err == nil {
		if _, err := os.Stat(filepath.Join(workDir, "migrations")); !os.IsNotExist(err) {
			migrationsPath = filepath.Join(workDir, "migrations")
		} else if _, err := os.Stat(filepath.Join(workDir, "..", "migrations")); !os.IsNotExist(err) {
			migrationsPath = filepath.Join(workDir, "..", "migrations")
		}
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, opts))
	logger.Info("Starting application with configuration",
		"debug", config.App.Debug,
		"rpc_url", config.Solana.RPCURL,
		"server_port", config.HTTP.Port,
		"price_api", config.Pricing.PriceAPIURL)

	// Connect to Database
	pg, err := database.New(config,
		database.MaxPoolSize(config.DB.PoolMax),
		database.ConnTimeout(config.DB.ConnectTimeout),
		database.HealthCheckPeriod(config.DB.HealthCheckPeriod),
		database.Isolation(pgx.ReadCommitted),
	)
	if err != nil {
		slog.Error("postgres connection failed", slog.String("error", err.Error()))
		return
	}
	defer pg.Close()

	// Run database migrations
	logger.Info("Running database migrations", "path", migrationsPath)
	if err = database.RunMigrations(logger, config.DB.DatabaseURL, migrationsPath); err != nil {
		logger.Error("Failed to run database migrations", "error", err)
		log.Fatal(err)
	}

	// Create repositories
	walletsRepository := repository.NewWalletsRepository(logger, pg)
	portfolioRepository := repository.NewPortfolioRepository(logger, pg)

	// Shared throttle for every outbound ledger/price/metadata call
	limiter := upstream.NewLimiter(config.Pricing.MinRequestInterval)

	// Upstream clients
	jupiterClient := pricing.NewJupiterClient(logger, config.Pricing.PriceAPIURL, config.Pricing.RequestTimeout)
	tokenListClient := pricing.NewTokenListClient(logger, config.Pricing.TokenListAPIURL, config.Pricing.RequestTimeout)
	metadataResolver := pricing.NewMetadataResolver(logger, tokenListClient)

	// Create usecases
	walletService := usecases.NewWalletService(logger, walletsRepository)
	tokenService := usecases.NewTokenService(logger, config, limiter, jupiterClient, metadataResolver)

	// Connect to the Solana ledger
	ledger, err := usecases.GetSolanaClient(ctx, logger, config)
	if err != nil {
		logger.Error("Failed to connect to Solana", "error", err)
		log.Fatal(err)
	}

	// Create handlers
	websocketManager := handlers.NewWebSocketManager(logger)
	httpHandler := handlers.NewHTTPHandler(logger, walletService, tokenService, portfolioRepository, ledger)
	wsHandler := handlers.NewWebSocketHandler(logger, portfolioRepository, websocketManager)

	// Start the background portfolio refresher
	portfolioRefresher := workers.NewPortfolioRefresher(
		logger,
		walletService,
		tokenService,
		portfolioRepository,
		websocketManager,
		ledger,
		config.Workers.PortfolioRefreshInterval,
	)
	go portfolioRefresher.Start(ctx)

	// Create router
	router := mux.NewRouter()

	// Register WebSocket routes before HTTP routes
	wsHandler.RegisterRoutes(router)
	httpHandler.RegisterRoutes(router)

	// Configure CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	// Wrap router in CORS middleware
	handler := c.Handler(router)

	// Create HTTP server with timeouts
	server := &http.Server{
		Addr:         ":" + config.HTTP.Port,
		Handler:      handler,
		ReadTimeout:  readTimeoutSeconds * time.Second,
		WriteTimeout: writeTimeoutSeconds * time.Second,
		IdleTimeout:  idleTimeoutSeconds * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Starting server", "address", server.Addr)
		if err = server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			log.Fatal(err)
		}
	}()

	// Set up graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Stop background workers before closing the listener
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeoutSeconds*time.Second)
	defer shutdownCancel()

	if err = server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
		return
	}

	logger.Info("Server exited properly")
}
