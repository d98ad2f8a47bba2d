package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/maltedev/kosmetik-price-monitor/internal/adapter"
	"github.com/maltedev/kosmetik-price-monitor/internal/aggregate"
	"github.com/maltedev/kosmetik-price-monitor/internal/api"
	"github.com/maltedev/kosmetik-price-monitor/internal/config"
	"github.com/maltedev/kosmetik-price-monitor/internal/events"
	"github.com/maltedev/kosmetik-price-monitor/internal/fetch"
	"github.com/maltedev/kosmetik-price-monitor/internal/observability"
	"github.com/maltedev/kosmetik-price-monitor/internal/orchestrator"
	"github.com/maltedev/kosmetik-price-monitor/internal/ratelimit"
	"github.com/maltedev/kosmetik-price-monitor/internal/store"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logging
	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	observability.Register()

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Snapshot store
	var snapshotStore store.Store
	switch cfg.Store.Driver {
	case "postgres":
		pgStore, err := store.NewPostgresStore(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pgStore.Close()
		snapshotStore = pgStore
		logger.Info("using postgres snapshot store")
	default:
		snapshotStore = store.NewFileStore(cfg.Store.DataFile)
		logger.Info("using file snapshot store", "file", cfg.Store.DataFile)
	}

	// Optional Redis event publisher
	var publisher orchestrator.Publisher
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Error("failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		publisher = events.NewPublisher(redisClient, cfg.Redis.Stream, logger)
		logger.Info("event publishing enabled", "stream", cfg.Redis.Stream)
	}

	// Fetch pipeline: per-host rate limiting behind a shared HTTP client
	limiter := ratelimit.NewHostLimiter(cfg.Fetch.HostMinDelay)
	fetcher := fetch.NewClient(fetch.Options{
		Timeout:   cfg.Fetch.Timeout,
		UserAgent: cfg.Fetch.UserAgent,
		Limiter:   limiter,
	}, logger)

	// Source adapters and sweep machinery
	adapters := adapter.Build(cfg, fetcher, logger)
	aggregator := aggregate.New(adapters, cfg.Brands, cfg.Sweep.MaxConcurrent, logger)
	service := orchestrator.NewService(
		aggregator,
		snapshotStore,
		publisher,
		cfg.CompetitorNames(),
		cfg.Sweep.Deadline,
		logger,
	)

	// Initialize API handlers
	handlers := api.NewHandlers(service, logger)

	// Setup Chi router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Sweep.Deadline + 30*time.Second))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://localhost:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	// API Routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/scrape", handlers.TriggerScrape)
		r.Get("/snapshot", handlers.GetSnapshot)
		r.Get("/brands/{brand}", handlers.GetBrandView)
		r.Get("/status", handlers.GetStatus)
	})

	// First sweep runs shortly after startup so the process is reachable
	// before any outbound traffic begins.
	service.StartDeferred(ctx, cfg.Sweep.InitialDelay)

	// Start server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down server...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	}()

	logger.Info("server starting",
		"addr", server.Addr,
		"competitors", len(cfg.Competitors),
		"brands", len(cfg.Brands))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
