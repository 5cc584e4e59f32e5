package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"simple-bank-api/internal/config"
	"simple-bank-api/internal/database"
	"simple-bank-api/internal/formatters"
	"simple-bank-api/internal/handlers"
	"simple-bank-api/internal/middleware"
	"simple-bank-api/internal/repositories"
	"simple-bank-api/internal/services"
	"simple-bank-api/internal/validation"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const shutdownTimeout = 10 * time.Second

// fallbackRate is served for every currency when no API key is configured
var fallbackRate = decimal.RequireFromString("0.80")

var fallbackCurrencies = []string{"AUD", "CAD", "CHF", "CNY", "EUR", "GBP", "JPY", "USD"}

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(middleware.NewTraceLogHandler(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}),
	))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := services.NewPrometheusMetrics(registry)

	accountRepo, healthChecker, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	rateProvider, closeCache := newRateProvider(cfg, metrics, logger)
	defer closeCache()

	accountService := services.NewAccountService(accountRepo, rateProvider, validation.DefaultRegistry(), metrics, logger)
	accountHandler := handlers.NewAccountHandler(accountService, formatters.DefaultRegistry(), cfg.Pagination, logger)
	healthHandler := handlers.NewHealthCheckHandler(healthChecker, cfg.Database.Driver, logger)

	limiter := middleware.NewIPRateLimiter(cfg.Security.RateLimitPerSecond, cfg.Security.RateLimitBurst)
	go limiter.Run(ctx, time.Minute)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.NewErrorHandler(registry, logger).Handle
	e.Validator = handlers.NewValidator()

	e.Use(middleware.RequestID())
	e.Use(middleware.PanicRecovery(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:  cfg.Server.CORSAllowOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{echo.HeaderContentType, echo.HeaderAccept, middleware.TraceIDHeader},
		ExposeHeaders: []string{handlers.PaginationHeader, middleware.TraceIDHeader},
	}))
	e.Use(limiter.Middleware())

	e.GET("/health", healthHandler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	accountHandler.RegisterRoutes(e.Group("/api/accounts"))

	server := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      e,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "addr", server.Addr, "env", cfg.Server.Environment, "driver", cfg.Database.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("Server exited")
	return nil
}

// openStore returns the account store selected by DB_DRIVER.
// The health checker is nil for the in-memory store.
func openStore(cfg *config.Config) (repositories.AccountRepositoryInterface, handlers.HealthChecker, func(), error) {
	if cfg.Database.Driver == config.DriverMemory {
		slog.Warn("Using in-memory account store; balances are lost on restart")
		return repositories.NewMemoryAccountRepository(), nil, func() {}, nil
	}

	db, err := database.Initialize(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	closeDB := func() {
		if err := db.Close(); err != nil {
			slog.Error("Failed to close database", "error", err)
		}
	}
	return repositories.NewAccountRepository(db.DB), db, closeDB, nil
}

// newRateProvider builds the currency rate port: the HTTP client behind a circuit
// breaker when an API key is set, a fixed-rate provider otherwise, and a Redis
// cache in front of either when REDIS_ADDR is set.
func newRateProvider(cfg *config.Config, metrics services.MetricsRecorderInterface, logger *slog.Logger) (services.CurrencyRateProviderInterface, func()) {
	var provider services.CurrencyRateProviderInterface
	if cfg.Currency.APIKey != "" {
		breaker := services.NewCircuitBreaker(services.CircuitBreakerConfigFrom(cfg.Currency), metrics)
		provider = services.NewCurrencyClient(&cfg.Currency, breaker, metrics, logger)
	} else {
		logger.Warn("CURRENCY_API_KEY not set, serving a fixed conversion rate", "rate", fallbackRate.String())
		provider = services.NewStaticRateProvider(fallbackRate, fallbackCurrencies...)
	}

	if cfg.Redis.Addr == "" {
		return provider, func() {}
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	cache := services.NewRedisRateCache(client, cfg.Currency.CacheTTL)

	closeClient := func() {
		if err := client.Close(); err != nil {
			logger.Error("Failed to close redis client", "error", err)
		}
	}
	return services.NewCachedRateProvider(provider, cache, metrics, logger), closeClient
}
