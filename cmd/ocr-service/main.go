package main

import (
	"context"

	"meridian-converters/internal/bootstrap"
	"meridian-converters/internal/config"
	"meridian-converters/internal/http/server"
	"meridian-converters/internal/infra/logging"
	"meridian-converters/internal/infra/raster"
	"meridian-converters/internal/infra/raster/mupdf"
	"meridian-converters/internal/infra/tesseract"
	"meridian-converters/internal/infra/tesseract/gosseract"
	"meridian-converters/internal/ocr"
)

func main() {
	cfg := config.Load()
	bootstrap.Logging(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tokenCache, closeAuth := bootstrap.Auth(ctx, cfg)
	defer closeAuth()

	svc := ocr.NewService(newRasterizer(cfg), newRecognizer(cfg), ocr.Options{
		DPI:                  cfg.OCR.DPI,
		Timeout:              cfg.OCRTimeout(),
		AcceptedContentTypes: cfg.OCR.AcceptedContentTypes,
	})

	app := server.NewOCR(server.OCRDeps{
		Config:  cfg,
		Service: svc,
		Tokens:  tokenCache,
		Store:   bootstrap.LimiterStore(cfg),
	})

	idleConnsClosed := make(chan struct{})
	logging.Info("OCR service starting",
		"addr", cfg.Server.Host+cfg.Server.Port,
		"rasterizer", cfg.OCR.Rasterizer,
		"recognizer", cfg.OCR.Recognizer,
		"dpi", cfg.OCR.DPI,
	)
	server.Serve(app, cfg.Server.Host+cfg.Server.Port, idleConnsClosed)
	<-idleConnsClosed
}

func newRasterizer(cfg config.Config) ocr.Rasterizer {
	if cfg.OCR.Rasterizer == config.RasterizerMuPDF {
		return mupdf.New()
	}
	return raster.NewPdftoppm(cfg.OCR.PdftoppmPath, cfg.OCR.TempDir)
}

func newRecognizer(cfg config.Config) ocr.Recognizer {
	if cfg.OCR.Recognizer == config.RecognizerCLI {
		return tesseract.NewCLI(cfg.OCR.TesseractPath, cfg.OCR.Languages, cfg.OCR.DPI, cfg.OCR.TempDir)
	}
	return gosseract.New(cfg.OCR.Languages, cfg.OCR.DPI)
}
