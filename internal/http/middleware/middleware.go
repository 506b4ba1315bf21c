// Package middleware assembles the shared Fiber middleware chain of both services.
package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/keyauth"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	memoryStorage "github.com/gofiber/storage/memory/v2"
	"github.com/rs/xid"

	"meridian-converters/internal/config"
	"meridian-converters/internal/infra/logging"
	"meridian-converters/internal/tokens"
)

// APIKeyLocal is the Locals key holding a validated API key.
const APIKeyLocal = "api_key"

// HealthPath is the public health endpoint; it is never auth-gated.
const HealthPath = "/healthz"

// Deps are the optional collaborators of the chain. A nil Tokens disables
// API key auth and the token limiter; a nil Store uses memory storage.
type Deps struct {
	Tokens *tokens.Cache
	Store  fiber.Storage
}

// Register attaches global middleware to app.
func Register(app *fiber.App, cfg config.Config, deps Deps) {
	app.Use(recover.New())
	app.Use(cors.New())

	app.Use(requestid.New(requestid.Config{
		Generator: func() string {
			return xid.New().String()
		},
	}))

	app.Use(healthcheck.New(healthcheck.Config{
		LivenessEndpoint:  "/ops/live",
		ReadinessEndpoint: "/ops/ready",
		ReadinessProbe: func(c *fiber.Ctx) bool {
			return deps.Tokens == nil || deps.Tokens.Ready()
		},
	}))

	if deps.Tokens != nil {
		app.Use(apiKeyAuth(deps.Tokens))
	}

	store := deps.Store
	if store == nil {
		store = memoryStorage.New()
	}
	rlCfg := RateLimitConfig{
		RateInterval:           cfg.RateLimiter.Interval,
		EnableTokenRateLimiter: deps.Tokens != nil,
		EnableUserLimiter:      cfg.RateLimiter.EnableUserLimiter || cfg.RateLimiter.UserLimit > 0,
		UserLimit:              cfg.RateLimiter.UserLimit,
	}
	var rater TokenRater
	if deps.Tokens != nil {
		rater = deps.Tokens
	}
	app.Use(TokenRateLimit(rlCfg, rater, store, NewLimiterCache()))
	app.Use(UserRateLimit(rlCfg, store))

	app.Use(func(c *fiber.Ctx) error {
		requestID := c.Get(fiber.HeaderXRequestID)
		if requestID == "" {
			requestID = c.GetRespHeader(fiber.HeaderXRequestID)
		}
		logging.Info("Incoming request", "method", c.Method(), "path", c.Path(), "request_id", requestID)
		return c.Next()
	})
}

func apiKeyAuth(cache *tokens.Cache) fiber.Handler {
	return keyauth.New(keyauth.Config{
		KeyLookup:  "header:X-API-Key",
		ContextKey: APIKeyLocal,
		Validator: func(c *fiber.Ctx, key string) (bool, error) {
			if !cache.Ready() {
				return false, tokens.ErrTokenStoreNotReady
			}
			if !cache.Validate(key) {
				return false, tokens.ErrInvalidAPIKey
			}
			return true, nil
		},
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || c.Path() == HealthPath || c.Get("X-API-Key") == ""
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// keyauth can call ErrorHandler with a nil error
			status := fiber.StatusUnauthorized
			if err == nil {
				err = fiber.ErrUnauthorized
			}
			if errors.Is(err, tokens.ErrTokenStoreNotReady) {
				status = fiber.StatusServiceUnavailable
			}
			return JSONError(c, status, err.Error())
		},
	})
}
