package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-redis/redis/v8"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/rainfall-dry-periods/internal/adapter/cache"
	httpadapter "github.com/couchcryptid/rainfall-dry-periods/internal/adapter/http"
	"github.com/couchcryptid/rainfall-dry-periods/internal/adapter/jsonfile"
	"github.com/couchcryptid/rainfall-dry-periods/internal/analysis"
	"github.com/couchcryptid/rainfall-dry-periods/internal/config"
	"github.com/couchcryptid/rainfall-dry-periods/internal/observability"
	"github.com/couchcryptid/rainfall-dry-periods/internal/source"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	src, closeSource, err := source.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open data source", "source", cfg.DataSource, "error", err)
		os.Exit(1)
	}

	clock := clockwork.NewRealClock()
	cached, closeCache := newCache(ctx, cfg, src, clock, logger)
	svc := analysis.NewService(cached, clock, logger, metrics, cfg.LoadTimeout)
	svc.SetLoadAttempts(source.LoadAttempts(cfg))

	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, httpadapter.Defaults{
		LimitedThresholdMM: cfg.LimitedThresholdMM,
		TopN:               cfg.TopN,
		WindowTopN:         cfg.WindowTopN,
		WindowDays:         cfg.WindowDays,
	}, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	if cfg.DataSource == config.SourceJSON {
		go func() {
			if err := jsonfile.Watch(ctx, cfg.DataFile, logger, func() {
				logger.Info("rainfall data changed, dropping cache", "file", cfg.DataFile)
				cached.Invalidate()
			}); err != nil {
				logger.Warn("data file watch stopped", "file", cfg.DataFile, "error", err)
			}
		}()
	}

	// Warm the readiness flag so /readyz turns green without waiting for a request.
	go func() {
		if err := svc.CheckReadiness(ctx); err != nil {
			logger.Warn("initial load failed", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := closeCache(); err != nil {
		logger.Error("cache close error", "error", err)
	}
	if err := closeSource(); err != nil {
		logger.Error("data source close error", "error", err)
	}

	logger.Info("shutdown complete")
}

type invalidatingSource interface {
	analysis.Source
	Invalidate()
}

// newCache wraps src in the configured cache backend.
func newCache(ctx context.Context, cfg *config.Config, src analysis.Source, clock clockwork.Clock, logger *slog.Logger) (invalidatingSource, func() error) {
	if cfg.CacheBackend != config.CacheRedis {
		return cache.NewCachedSource(src, cfg.CacheTTL, clock), func() error { return nil }
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	rs := cache.NewRedisSource(src, client, cfg.CacheTTL, logger)
	if err := rs.Ping(ctx); err != nil {
		logger.Warn("redis unreachable, loads will bypass the cache until it returns", "addr", cfg.RedisAddr, "error", err)
	} else {
		logger.Info("redis cache connected", "addr", cfg.RedisAddr)
	}
	return rs, rs.Close
}
