package main

import (
	"context"

	"meridian-converters/internal/bootstrap"
	"meridian-converters/internal/config"
	"meridian-converters/internal/http/server"
	"meridian-converters/internal/infra/cache"
	"meridian-converters/internal/infra/chrome"
	"meridian-converters/internal/infra/logging"
	"meridian-converters/internal/infra/pandoc"
	"meridian-converters/internal/render"
)

func main() {
	cfg := config.Load()
	bootstrap.Logging(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tokenCache, closeAuth := bootstrap.Auth(ctx, cfg)
	defer closeAuth()

	svc := render.NewService(newRenderer(cfg), bootstrap.RenderCache(cfg), render.Options{
		TempDir:          cfg.Render.TempDir,
		Timeout:          cfg.RenderTimeout(),
		MaxMarkdownBytes: cfg.Render.MaxMarkdownBytes,
		CacheKey:         cache.Key,
	})

	app := server.NewRender(server.RenderDeps{
		Config:  cfg,
		Service: svc,
		Tokens:  tokenCache,
		Store:   bootstrap.LimiterStore(cfg),
	})

	idleConnsClosed := make(chan struct{})
	logging.Info("Render service starting", "addr", cfg.Server.Host+cfg.Server.Port, "backend", cfg.Render.Backend)
	server.Serve(app, cfg.Server.Host+cfg.Server.Port, idleConnsClosed)
	<-idleConnsClosed
}

func newRenderer(cfg config.Config) render.Renderer {
	if cfg.Render.Backend == config.BackendChrome {
		return chrome.New(cfg.Render.ChromePath, cfg.Render.ChromeNoSandbox)
	}
	r := pandoc.New(cfg.Render.PandocPath, cfg.Render.PDFEngine)
	if err := r.Check(); err != nil {
		logging.Warn("pandoc binary not found, renders will fail", "path", cfg.Render.PandocPath, "error", err)
	}
	return r
}
