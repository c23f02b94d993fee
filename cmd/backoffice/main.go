package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/terra-clan/backoffice/internal/api"
	"github.com/terra-clan/backoffice/internal/cleanup"
	"github.com/terra-clan/backoffice/internal/config"
	"github.com/terra-clan/backoffice/internal/querycache"
	"github.com/terra-clan/backoffice/internal/services"
	"github.com/terra-clan/backoffice/internal/session"
	"github.com/terra-clan/backoffice/internal/storage"
	"github.com/terra-clan/backoffice/internal/upload"
	"github.com/terra-clan/backoffice/internal/views"
	"github.com/terra-clan/backoffice/pkg/client"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.Info("starting backoffice",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"api", cfg.API.BaseURL,
	)

	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer initCancel()

	checks := map[string]api.Pinger{}

	// Admin API client
	opts := []client.Option{
		client.WithTimeout(cfg.API.Timeout),
		client.WithCSRF(cfg.API.CSRFCookie, cfg.API.CSRFHeader),
	}
	if cfg.API.AuthToken != "" {
		opts = append(opts, client.WithAuthToken(cfg.API.AuthToken))
	}
	apiClient, err := client.New(cfg.API.BaseURL, opts...)
	if err != nil {
		slog.Error("failed to create api client", "error", err)
		os.Exit(1)
	}
	checks["api"] = api.PingFunc(apiClient.Health)

	// Redis backs the shared cache tier and the recent uploads list
	var rdb *redis.Client
	if cfg.Cache.SharedTier || cfg.Uploads.RecentStore == config.StoreRedis {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(initCtx).Err(); err != nil {
			slog.Error("failed to connect to redis", "address", cfg.Redis.Address, "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		checks["redis"] = api.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
		slog.Info("redis connected successfully", "address", cfg.Redis.Address)
	}

	cacheCfg := querycache.Config{
		MaxEntries: cfg.Cache.MaxEntries,
		StaleTime:  cfg.Cache.StaleTime,
		GCTime:     cfg.Cache.GCTime,
	}
	if cfg.Cache.SharedTier {
		cacheCfg.Tier = querycache.NewRedisTierFromClient(rdb, cfg.Redis.Prefix, cfg.Redis.TTL)
	}
	cache := querycache.New(cacheCfg)

	// Recent uploads store
	var recent upload.RecentStore
	switch cfg.Uploads.RecentStore {
	case config.StorePostgres:
		repo, err := storage.NewPostgresRepository(initCtx, storage.PostgresConfig{
			DSN:          cfg.Database.DSN,
			MaxOpenConns: cfg.Database.MaxOpenConns,
			MaxIdleConns: cfg.Database.MaxIdleConns,
			MaxLifetime:  cfg.Database.MaxLifetime,
			RecentLimit:  cfg.Uploads.RecentLimit,
		})
		if err != nil {
			slog.Error("failed to create database repository", "error", err)
			os.Exit(1)
		}
		defer repo.Close()

		slog.Info("running database migrations")
		if err := storage.RunMigrations(initCtx, repo.Pool(), storage.Migrations()); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		slog.Info("database connected successfully")

		recent = repo
		checks["database"] = repo
	case config.StoreRedis:
		recent = upload.NewRedisRecentStore(rdb, "")
	default:
		recent = upload.NewMemoryRecentStore()
	}

	registry := services.NewRegistry(apiClient, cache)
	sessions := session.NewStore(apiClient)
	uploader := upload.NewUploader(apiClient, recent)

	// Table presets
	presets := views.NewLoader()
	if err := presets.LoadDefaults(); err != nil {
		slog.Error("failed to load built-in table views", "error", err)
		os.Exit(1)
	}
	if cfg.Views.Dir != "" {
		if err := presets.LoadFromDir(cfg.Views.Dir); err != nil {
			slog.Warn("failed to load table views from dir", "dir", cfg.Views.Dir, "error", err)
		}
	}

	// Restore an existing backend session, if any
	if _, err := sessions.CheckSession(initCtx); err != nil {
		slog.Info("no active admin session", "reason", client.Message(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Cache janitor
	cleaner := cleanup.NewCleaner(cache, cfg.Cache.JanitorInterval)
	cleaner.Start(ctx)

	// Setup HTTP server
	server := api.NewServer(cfg, api.Deps{
		Registry: registry,
		Session:  sessions,
		Presets:  presets,
		Uploader: uploader,
		Checks:   checks,
	})
	httpServer := &http.Server{
		Addr:        cfg.Addr(),
		Handler:     server.Router(),
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		slog.Info("HTTP server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down gracefully...")

	// Stop background workers
	cancel()
	<-cleaner.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("backoffice stopped")
}
