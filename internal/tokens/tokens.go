// Package tokens keeps the in-memory view of API tokens and their rate
// limits, refreshed from a repository in the background.
package tokens

import (
	"context"
	"errors"
	"sync"
	"time"

	"meridian-converters/internal/infra/logging"
)

var (
	// ErrInvalidAPIKey signals that the provided API key is not known.
	ErrInvalidAPIKey = errors.New("invalid api key")
	// ErrTokenStoreNotReady signals that the token store has not been loaded yet.
	// This can happen during startup when the DB isn't ready.
	ErrTokenStoreNotReady = errors.New("token store not ready")
)

// Entry is the stored data for one token.
type Entry struct {
	RateLimit int
}

// Repository loads the full token set.
type Repository interface {
	LoadTokens(ctx context.Context) (map[string]Entry, error)
}

// Cache is a concurrency-safe token map. A nil map means "never loaded".
type Cache struct {
	mu sync.RWMutex
	m  map[string]Entry
}

// NewCache returns an empty, not-ready cache.
func NewCache() *Cache { return &Cache{} }

// Replace swaps the cache contents with a copy of m.
func (c *Cache) Replace(m map[string]Entry) {
	cp := make(map[string]Entry, len(m))
	for k, v := range m {
		cp[k] = v
	}
	c.mu.Lock()
	c.m = cp
	c.mu.Unlock()
}

// Ready reports whether the cache has been loaded at least once.
func (c *Cache) Ready() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.m != nil
}

// Validate checks whether token exists.
func (c *Cache) Validate(token string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.m[token]
	return ok
}

// RateLimit returns the configured limit for token. Unknown tokens return 0,
// which disables token-based limiting for them.
func (c *Cache) RateLimit(token string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.m[token].RateLimit
}

// Reloader refreshes a Cache from a Repository on an interval.
type Reloader struct {
	repo     Repository
	cache    *Cache
	interval time.Duration
}

// NewReloader wires repo into cache.
func NewReloader(repo Repository, cache *Cache, interval time.Duration) *Reloader {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Reloader{repo: repo, cache: cache, interval: interval}
}

// LoadOnce fetches all tokens and replaces the cache. On error the cache is
// left untouched.
func (r *Reloader) LoadOnce(ctx context.Context) error {
	m, err := r.repo.LoadTokens(ctx)
	if err != nil {
		return err
	}
	r.cache.Replace(m)
	return nil
}

// Start reloads in a goroutine until ctx is done.
func (r *Reloader) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				loadCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
				if err := r.LoadOnce(loadCtx); err != nil {
					logging.Error("Failed to reload API tokens", "error", err)
				}
				cancel()
			case <-ctx.Done():
				return
			}
		}
	}()
}
