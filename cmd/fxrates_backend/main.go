package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	portsevents "github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/ports/events"
	portsrepo "github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/ports/repositories"
	portssvc "github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/ports/services"
	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/services"
	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/events"
	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/feed/lbclient"
	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/handlers"
	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/middleware"
	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/platform/config"
	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/repositories/database/bolt"
	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/repositories/database/pgsql"
	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/scheduler"
	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/telemetry"
	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const shutdownTimeout = 15 * time.Second

// @title FX Rates Portal API
// @version 1.0
// @description Currency catalogue, Bank of Lithuania exchange rates and cross rates.

// @host localhost:8080
// @BasePath /api/fx-rate
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open store", slog.String("driver", cfg.StoreDriver), slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeStore()

	fetcher, err := lbclient.NewClient(lbclient.Config{
		BaseURL:      cfg.FxRatesBaseURL,
		Timeout:      cfg.FetchTimeout,
		MaxRetries:   cfg.FetchMaxRetries,
		RetryBackoff: cfg.FetchRetryBackoff,
	}, nil)
	if err != nil {
		logger.Error("Failed to create FX rates client", slog.String("error", err.Error()))
		os.Exit(1)
	}

	publisher := newPublisher(cfg, logger)
	defer func() {
		if cerr := publisher.Close(); cerr != nil {
			logger.Error("Error closing sync event publisher", slog.String("error", cerr.Error()))
		}
	}()

	metrics := telemetry.NewSyncMetrics(prometheus.DefaultRegisterer)
	container := services.NewServiceContainer(cfg, repos, fetcher, publisher, metrics)

	syncScheduler := scheduler.NewSyncScheduler(container.Sync, cfg.SyncInterval, cfg.SyncOnStartup, logger)
	go syncScheduler.Start(ctx)

	router, err := newRouter(cfg, container, logger)
	if err != nil {
		logger.Error("Failed to set up router", slog.String("error", err.Error()))
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", slog.String("error", err.Error()))
	}
}

// openStore selects the repository backend. The returned func releases it.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, func(), error) {
	if cfg.StoreDriver == config.StoreDriverBolt {
		db, err := bolt.Open(cfg.BoltPath)
		if err != nil {
			return portsrepo.RepositoryProvider{}, nil, err
		}
		logger.Info("Bolt store opened", slog.String("path", cfg.BoltPath))
		repos := bolt.NewRepositoryProvider(db)
		return repos, func() {
			if err := repos.Closer.Close(); err != nil {
				logger.Error("Error closing bolt store", slog.String("error", err.Error()))
			}
		}, nil
	}

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		return portsrepo.RepositoryProvider{}, nil, err
	}
	logger.Info("Database connection pool established.")

	if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
		dbPool.Close()
		return portsrepo.RepositoryProvider{}, nil, err
	}

	return pgsql.NewRepositoryProvider(dbPool), func() { database.ClosePgxPool(dbPool) }, nil
}

func newPublisher(cfg *config.Config, logger *slog.Logger) portsevents.SyncEventPublisher {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info("Kafka brokers not configured, sync events are disabled")
		return events.NoopSyncPublisher{}
	}
	publisher, err := events.NewKafkaSyncPublisher(cfg.KafkaBrokers, cfg.KafkaSyncTopic)
	if err != nil {
		logger.Error("Failed to create Kafka publisher, sync events are disabled", slog.String("error", err.Error()))
		return events.NoopSyncPublisher{}
	}
	logger.Info("Publishing sync events to Kafka", slog.String("topic", cfg.KafkaSyncTopic))
	return publisher
}

func newRouter(cfg *config.Config, container *portssvc.ServiceContainer, logger *slog.Logger) (*gin.Engine, error) {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := handlers.RegisterValidators(); err != nil {
		return nil, err
	}

	rateLimiter, err := middleware.NewRateLimiter(cfg.RateLimit)
	if err != nil {
		return nil, err
	}

	r := gin.New()

	// Global middleware (logging, recovery)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.CORSAllowedOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		MaxAge:        12 * time.Hour,
	}))
	r.Use(middleware.RateLimit(rateLimiter))

	if err := r.SetTrustedProxies(nil); err != nil {
		return nil, err
	}

	handlers.RegisterRoutes(r, cfg, container)
	return r, nil
}
