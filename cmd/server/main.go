package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"

	"brandwatch/internal/analytics"
	"brandwatch/internal/cache"
	"brandwatch/internal/config"
	"brandwatch/internal/db"
	"brandwatch/internal/integrations"
	"brandwatch/internal/jobs"
	"brandwatch/internal/metrics"
	"brandwatch/internal/server"
	"brandwatch/internal/tracking"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load()
	setupLogging(cfg)

	// Initialize database
	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		fatal("failed to connect to database", err)
	}
	defer database.Close()

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		fatal("failed to run migrations", err)
	}
	slog.Info("migrations completed successfully")

	if cfg.SeedDevData && cfg.IsDev() {
		if err := database.SeedDevBrands(ctx); err != nil {
			slog.Warn("failed to seed dev brands", "error", err)
		}
	}

	tracked, err := config.LoadTrackingConfig(cfg.TrackingConfigFile)
	if err != nil {
		fatal("failed to load tracking config", err)
	}

	// External APIs share one retry policy.
	retrier := integrations.NewRetrier(cfg.MaxAttempts, cfg.RetryBaseDelay)
	serp := integrations.NewSerpClient(cfg.SerpAPIBaseURL, cfg.SerpAPIKey, retrier)
	gemini := integrations.NewGeminiClient(cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.GeminiModel, retrier)
	if !serp.Configured() {
		slog.Warn("SERPAPI_KEY not set, search rankings are disabled")
	}
	if !gemini.Configured() {
		slog.Warn("GEMINI_API_KEY not set, AI citations are recorded as pending")
	}

	// Redis, when configured, backs the dashboard cache, sessions and the limiter.
	var dashboardCache cache.Cache
	var storage fiber.Storage
	if cfg.RedisURL != "" {
		rc := cache.NewRedis(cfg.RedisURL, cfg.CacheTTL)
		defer rc.Close()
		dashboardCache = rc
		storage = rc.Storage()
		slog.Info("using redis for cache, sessions and rate limits")
	} else {
		dashboardCache = cache.NewMemory(cfg.CacheTTL, cfg.CacheMaxEntries)
	}

	svc := analytics.NewService(database, dashboardCache)
	metrics.Init(svc)

	fetcher := tracking.NewFetcher(database, serp, gemini, tracked)
	fetcher.OnChange = svc.Invalidate
	fetcher.RefreshDelay = cfg.RefreshDelay

	queue := jobs.NewQueue(cfg.JobQueueSize, cfg.JobWorkers, 0)
	queue.Start(ctx)

	scheduler, err := jobs.NewScheduler(cfg.RefreshSchedule, queue, database, fetcher)
	if err != nil {
		fatal("failed to create scheduler", err)
	}
	scheduler.Start()

	srv := server.New(cfg, storage)
	err = srv.RegisterRoutes(ctx, server.Deps{
		Store:     database,
		Dashboard: svc,
		Cache:     svc,
		Queue:     queue,
		Fetcher:   fetcher,
		Search:    serp,
		AI:        gemini,
		Refresh:   scheduler,
	})
	if err != nil {
		fatal("failed to register routes", err)
	}

	// Graceful shutdown
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	if err := srv.Shutdown(); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	scheduler.Stop()
	drainCtx, drainCancel := context.WithTimeout(ctx, 30*time.Second)
	queue.Stop(drainCtx)
	drainCancel()
	cancel()

	slog.Info("server exited")
}

// setupLogging installs a JSON handler in production and a text handler in development.
func setupLogging(cfg *config.Config) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, opts)
	if cfg.IsDev() {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
