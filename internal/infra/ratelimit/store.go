// Package ratelimit provides the storage backing Fiber's limiter middleware.
package ratelimit

import (
	"github.com/gofiber/fiber/v2"
	memoryStorage "github.com/gofiber/storage/memory/v2"
	redisStorage "github.com/gofiber/storage/redis/v2"

	"meridian-converters/internal/infra/logging"
)

// RedisConfig selects the Redis instance for limiter counters.
type RedisConfig struct {
	Addr string
	DB   int
}

// NewStore returns Redis-backed storage when cfg.Addr is set, otherwise
// (or when the Redis client cannot be created) in-process memory storage.
func NewStore(cfg RedisConfig) (store fiber.Storage) {
	if cfg.Addr == "" {
		return memoryStorage.New()
	}

	defer func() {
		if r := recover(); r != nil {
			logging.Error("Redis limiter store init panicked, falling back to memory", "panic", r)
			store = memoryStorage.New()
		}
	}()

	store = redisStorage.New(redisStorage.Config{
		Addrs:    []string{cfg.Addr},
		Database: cfg.DB,
	})
	logging.Info("Using Redis for rate limiting", "addr", cfg.Addr, "db", cfg.DB)
	return store
}
