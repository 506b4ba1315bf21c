// Package bootstrap wires the ambient dependencies shared by both service
// binaries: logging, API token auth and Redis-backed stores.
package bootstrap

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"meridian-converters/internal/config"
	"meridian-converters/internal/infra/cache"
	"meridian-converters/internal/infra/logging"
	"meridian-converters/internal/infra/postgres"
	"meridian-converters/internal/infra/ratelimit"
	"meridian-converters/internal/render"
	"meridian-converters/internal/tokens"
)

const initialTokenLoadTimeout = 5 * time.Second

// Logging configures the global logger from cfg.
func Logging(cfg config.Config) {
	logging.InitLogger(
		cfg.Logger.File,
		cfg.Logger.MaxSizeMB,
		cfg.Logger.MaxBackups,
		cfg.Logger.MaxAgeDays,
		cfg.Logger.Compress,
		cfg.Logger.Level,
	)
	logging.SetLogLevel(cfg.Logger.Level)
}

// Auth loads API tokens from Postgres and keeps them fresh until ctx is
// done. It returns a nil cache when auth is disabled. A failed initial load
// is logged; the service then reports not-ready until a reload succeeds.
func Auth(ctx context.Context, cfg config.Config) (*tokens.Cache, func()) {
	if !cfg.Auth.Enabled {
		return nil, func() {}
	}

	cacheTokens := tokens.NewCache()
	dsn, err := postgres.DSN(cfg.Auth.Postgres)
	if err != nil {
		logging.Error("Invalid postgres config, API keys cannot be validated", "error", err)
		return cacheTokens, func() {}
	}

	db := postgres.NewDB()
	reloader := tokens.NewReloader(postgres.NewTokenRepository(db, dsn), cacheTokens, cfg.Auth.ReloadInterval)

	loadCtx, cancel := context.WithTimeout(ctx, initialTokenLoadTimeout)
	if err := reloader.LoadOnce(loadCtx); err != nil {
		logging.Error("Failed to load API tokens", "error", err)
	}
	cancel()

	reloader.Start(ctx)
	return cacheTokens, func() {
		if err := db.Close(); err != nil {
			logging.Warn("Closing token database failed", "error", err)
		}
	}
}

// LimiterStore returns the rate limiter storage for cfg.
func LimiterStore(cfg config.Config) fiber.Storage {
	return ratelimit.NewStore(ratelimit.RedisConfig{
		Addr: cfg.Cache.RedisHost,
		DB:   cfg.Cache.RateLimitDB,
	})
}

// RenderCache returns the Redis render cache, or nil when it is disabled.
func RenderCache(cfg config.Config) render.Cache {
	if !cfg.Cache.RenderCacheEnabled || cfg.Cache.RedisHost == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.Cache.RedisHost,
		DB:   cfg.Cache.RenderCacheDB,
	})
	logging.Info("Render cache enabled", "addr", cfg.Cache.RedisHost, "db", cfg.Cache.RenderCacheDB, "ttl", cfg.Cache.RenderCacheTTL.String())
	return cache.NewRenderCache(rdb, cfg.Cache.RenderCacheTTL)
}
