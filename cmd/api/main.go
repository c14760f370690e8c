package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/locateflow/locateflow/internal/api"
	"github.com/locateflow/locateflow/internal/capture"
	"github.com/locateflow/locateflow/internal/config"
	"github.com/locateflow/locateflow/internal/locator"
	"github.com/locateflow/locateflow/internal/observability"
	"github.com/locateflow/locateflow/internal/repository/postgres"
	rediscache "github.com/locateflow/locateflow/internal/repository/redis"
)

func main() {
	godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(string(cfg.Env), cfg.GetLogLevel())
	defer logger.Sync()

	logger.Info("Starting LocateFlow API",
		zap.String("version", cfg.App.Version),
		zap.String("environment", string(cfg.Env)),
	)

	// Connect to PostgreSQL
	db, err := postgres.New(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	logger.Info("Connected to PostgreSQL",
		zap.String("host", cfg.Database.Host),
		zap.Int("port", cfg.Database.Port),
	)

	// Connect to Redis (optional)
	var cache *rediscache.Cache
	cache, err = rediscache.New(cfg.Redis)
	if err != nil {
		logger.Warn("Failed to connect to Redis, caching disabled", zap.Error(err))
		cache = nil
	} else {
		defer cache.Close()
		logger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr()))
	}

	// Start the capture browser (optional)
	var capturer *capture.Service
	if cfg.Capture.Enabled {
		capturer, err = capture.NewService(cfg.Capture, logger)
		if err != nil {
			logger.Warn("Failed to start capture browser, url inspection disabled", zap.Error(err))
			capturer = nil
		} else {
			defer capturer.Close()
			logger.Info("Capture browser ready", zap.String("browser", cfg.Capture.Browser))
		}
	}

	// Initialize repositories and metrics
	repos := postgres.NewRepositories(db.DB)
	metrics := observability.InitMetrics(cfg.App.Name)

	// History retention cleanup
	cleanupCtx, cancelCleanup := context.WithCancel(context.Background())
	defer cancelCleanup()
	if cfg.History.Enabled && cfg.History.Retention > 0 {
		go runRetentionCleanup(cleanupCtx, repos, cfg.History, logger)
	}

	// Create router
	router := api.NewRouter(api.RouterConfig{
		Engine:         locator.NewEngine(logger),
		DB:             db,
		Repos:          repos,
		Cache:          cache,
		Capture:        capturer,
		Metrics:        metrics,
		Logger:         logger,
		EnableCORS:     cfg.Security.CORSEnabled,
		RateLimit:      cfg.RateLimits.RequestsPerMin,
		HistoryEnabled: cfg.History.Enabled,
		MaxPageSize:    cfg.History.MaxPageSize,
	})

	// Create HTTP server
	addr := cfg.Server.Addr()
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("API server listening", zap.String("addr", addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Wait for shutdown signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Fatal("Server error", zap.Error(err))

	case sig := <-shutdown:
		logger.Info("Shutdown signal received", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Graceful shutdown failed, forcing close", zap.Error(err))
			server.Close()
		}

		logger.Info("Server stopped gracefully")
	}
}

// runRetentionCleanup periodically purges inspection records older than
// the configured retention window.
func runRetentionCleanup(ctx context.Context, repos *postgres.Repositories, cfg config.HistoryConfig, logger *zap.Logger) {
	ticker := time.NewTicker(cfg.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().UTC().Add(-cfg.Retention)
			purged, err := repos.Inspections.DeleteOlderThan(ctx, cutoff)
			if err != nil {
				logger.Error("History cleanup failed", zap.Error(err))
				continue
			}
			if purged > 0 {
				logger.Info("Purged expired inspections",
					zap.Int64("purged", purged),
					zap.Time("cutoff", cutoff),
				)
			}
		}
	}
}

// initLogger creates a configured zap logger
func initLogger(env, level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	var config zap.Config
	if env == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	config.Level = zap.NewAtomicLevelAt(zapLevel)

	logger, err := config.Build()
	if err != nil {
		// Fall back to basic logger
		logger, _ = zap.NewProduction()
	}

	return logger
}
