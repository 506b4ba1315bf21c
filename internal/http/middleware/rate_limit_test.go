package middleware

import (
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	memoryStorage "github.com/gofiber/storage/memory/v2"
)

type fakeTokenRater struct{ limit int }

func (f fakeTokenRater) RateLimit(token string) int { return f.limit }

func newTokenApp(cfg RateLimitConfig, limit int) *fiber.App {
	app := fiber.New()
	// auth is assumed to have run
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(APIKeyLocal, "abc")
		return c.Next()
	})
	app.Use(TokenRateLimit(cfg, fakeTokenRater{limit: limit}, memoryStorage.New(), NewLimiterCache()))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	return app
}

func TestTokenRateLimit_Enforced(t *testing.T) {
	app := newTokenApp(RateLimitConfig{RateInterval: time.Hour, EnableTokenRateLimiter: true}, 1)
	req, _ := http.NewRequest(http.MethodGet, "/", nil)

	resp1, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp1.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp1.StatusCode)
	}

	resp2, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp2.StatusCode != fiber.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp2.StatusCode)
	}
	body, _ := io.ReadAll(resp2.Body)
	if !strings.Contains(string(body), "Too many requests") {
		t.Fatalf("expected JSON body to mention rate limit, got %q", string(body))
	}
}

func TestTokenRateLimit_DisabledOrUnlimited(t *testing.T) {
	tests := []struct {
		name  string
		cfg   RateLimitConfig
		limit int
	}{
		{name: "disabled", cfg: RateLimitConfig{RateInterval: time.Hour}, limit: 1},
		{name: "zero limit", cfg: RateLimitConfig{RateInterval: time.Hour, EnableTokenRateLimiter: true}, limit: 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app := newTokenApp(tc.cfg, tc.limit)
			for i := 0; i < 3; i++ {
				req, _ := http.NewRequest(http.MethodGet, "/", nil)
				resp, err := app.Test(req)
				if err != nil {
					t.Fatalf("request failed: %v", err)
				}
				if resp.StatusCode != fiber.StatusOK {
					t.Fatalf("request %d: expected 200, got %d", i, resp.StatusCode)
				}
			}
		})
	}
}

func TestUserRateLimit_PublicLimitedButTokenBypasses(t *testing.T) {
	cfg := RateLimitConfig{
		RateInterval:      time.Hour,
		EnableUserLimiter: true,
		UserLimit:         1,
	}

	app := fiber.New()
	app.Use(UserRateLimit(cfg, memoryStorage.New()))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	publicReq, _ := http.NewRequest(http.MethodGet, "/", nil)
	publicReq.Header.Set("User-Agent", "public-client")
	resp1, err := app.Test(publicReq)
	if err != nil {
		t.Fatalf("public request failed: %v", err)
	}
	if resp1.StatusCode != fiber.StatusOK {
		t.Fatalf("expected first public request to pass, got %d", resp1.StatusCode)
	}
	resp2, err := app.Test(publicReq)
	if err != nil {
		t.Fatalf("public request failed: %v", err)
	}
	if resp2.StatusCode != fiber.StatusTooManyRequests {
		t.Fatalf("expected second public request to be rate limited, got %d", resp2.StatusCode)
	}

	otherAgent, _ := http.NewRequest(http.MethodGet, "/", nil)
	otherAgent.Header.Set("User-Agent", "another-client")
	resp3, err := app.Test(otherAgent)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp3.StatusCode != fiber.StatusOK {
		t.Fatalf("expected a different client to have its own window, got %d", resp3.StatusCode)
	}

	appWithToken := fiber.New()
	appWithToken.Use(func(c *fiber.Ctx) error {
		c.Locals(APIKeyLocal, c.Get("X-API-Key"))
		return c.Next()
	})
	appWithToken.Use(UserRateLimit(cfg, memoryStorage.New()))
	appWithToken.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	for i := 0; i < 3; i++ {
		tokenReq, _ := http.NewRequest(http.MethodGet, "/", nil)
		tokenReq.Header.Set("User-Agent", "public-client")
		tokenReq.Header.Set("X-API-Key", "abc")
		resp, err := appWithToken.Test(tokenReq)
		if err != nil {
			t.Fatalf("token request failed: %v", err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("expected token-authenticated request to bypass user limiter, got %d", resp.StatusCode)
		}
	}
}

func TestLimiterCache_ReusesHandlerPerLimit(t *testing.T) {
	lc := NewLimiterCache()
	builds := 0
	build := func() fiber.Handler {
		builds++
		return func(c *fiber.Ctx) error { return nil }
	}
	lc.get(5, build)
	lc.get(5, build)
	lc.get(7, build)
	if builds != 2 {
		t.Fatalf("expected 2 builds, got %d", builds)
	}
}
