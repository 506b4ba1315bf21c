package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"meridian-converters/internal/infra/logging"
)

const opTimeout = 1 * time.Second

// RenderCache stores rendered PDFs in Redis keyed by backend and sanitized
// markdown. Errors are logged and treated as misses; the cache never fails
// a render.
type RenderCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRenderCache wraps rdb. A non-positive ttl falls back to one minute.
func NewRenderCache(rdb *redis.Client, ttl time.Duration) *RenderCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &RenderCache{rdb: rdb, ttl: ttl}
}

// Key derives the cache key for a render.
func Key(backend, sanitized string) string {
	h := sha256.New()
	h.Write([]byte(backend))
	h.Write([]byte{0})
	h.Write([]byte(sanitized))
	return "rendercache:" + hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached PDF, or nil on a miss.
func (c *RenderCache) Get(ctx context.Context, key string) []byte {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	data, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		logging.Warn("Redis read failed", "error", err)
		return nil
	}
	logging.Info("Render cache hit", "key", key)
	return data
}

// Set stores pdf under key with the configured TTL.
func (c *RenderCache) Set(ctx context.Context, key string, pdf []byte) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := c.rdb.Set(ctx, key, pdf, c.ttl).Err(); err != nil {
		logging.Warn("Redis write failed", "error", err)
	}
}
