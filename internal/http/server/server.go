// Package server builds the Fiber apps of the render and OCR services.
package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/monitor"

	"meridian-converters/internal/config"
	"meridian-converters/internal/http/handlers"
	"meridian-converters/internal/http/middleware"
	"meridian-converters/internal/infra/logging"
	"meridian-converters/internal/tokens"
)

const shutdownTimeout = 5 * time.Second

// RenderDeps wires the render service app.
type RenderDeps struct {
	Config  config.Config
	Service handlers.RenderService
	// Tokens enables API key auth when non-nil.
	Tokens *tokens.Cache
	// Store backs the rate limiters; nil means in-memory.
	Store fiber.Storage
}

// OCRDeps wires the OCR service app.
type OCRDeps struct {
	Config  config.Config
	Service handlers.OCRService
	Tokens  *tokens.Cache
	Store   fiber.Storage
}

// NewRender creates the render service app.
func NewRender(deps RenderDeps) *fiber.App {
	app := newApp(deps.Config, renderBodyLimit(deps.Config))
	middleware.Register(app, deps.Config, middleware.Deps{Tokens: deps.Tokens, Store: deps.Store})

	app.Post("/render", handlers.Render(deps.Service))

	finish(app)
	return app
}

// NewOCR creates the OCR service app. The configured upload limit becomes
// the request body limit.
func NewOCR(deps OCRDeps) *fiber.App {
	app := newApp(deps.Config, deps.Config.OCR.MaxUploadBytes)
	middleware.Register(app, deps.Config, middleware.Deps{Tokens: deps.Tokens, Store: deps.Store})

	app.Post("/ocr", handlers.OCR(deps.Service))

	finish(app)
	return app
}

func newApp(cfg config.Config, bodyLimit int) *fiber.App {
	app := fiber.New(fiber.Config{
		Prefork:               cfg.Server.Prefork,
		DisableStartupMessage: true,
		BodyLimit:             bodyLimit,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			msg := "Internal Server Error"

			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
				msg = e.Message
			}

			if code >= fiber.StatusInternalServerError {
				logging.Error("Request failed", "path", c.Path(), "status", code, "message", msg)
			} else {
				logging.Warn("Request failed", "path", c.Path(), "status", code, "message", msg)
			}
			return middleware.JSONError(c, code, msg)
		},
	})

	// health sits ahead of auth and limiters
	app.Get(middleware.HealthPath, handlers.Health)
	return app
}

func finish(app *fiber.App) {
	app.Get("/ops/monitor", monitor.New())

	// Ensure all responses, including 404s, return JSON
	app.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Not Found")
	})
}

// renderBodyLimit leaves room for JSON escaping of the markdown field.
func renderBodyLimit(cfg config.Config) int {
	limit := cfg.Render.MaxMarkdownBytes*2 + 4096
	if limit < fiber.DefaultBodyLimit {
		return fiber.DefaultBodyLimit
	}
	return limit
}

// Serve starts app on addr and blocks until SIGINT or SIGTERM, then shuts
// down gracefully and closes idleConnsClosed.
func Serve(app *fiber.App, addr string, idleConnsClosed chan struct{}) {
	go func() {
		if err := app.Listen(addr); err != nil {
			logging.Error("Server error", "error", err)
		}
	}()

	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigint)
	<-sigint

	logging.Warn("Shutdown signal received, closing server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logging.Error("Server forced to shutdown", "error", err)
	}

	close(idleConnsClosed)
	logging.Info("Server stopped cleanly")
}
