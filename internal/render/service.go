// Package render turns markdown requests into base64-encoded PDFs.
package render

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"time"

	"meridian-converters/internal/domain"
	"meridian-converters/internal/infra/command"
	"meridian-converters/internal/infra/logging"
)

// Renderer writes a PDF for markdown to outPath.
type Renderer interface {
	Name() string
	RenderPDF(ctx context.Context, markdown, outPath string) error
}

// Cache is an optional store of rendered PDFs.
type Cache interface {
	Get(ctx context.Context, key string) []byte
	Set(ctx context.Context, key string, pdf []byte)
}

// Options tune a Service. Zero values disable the corresponding limit.
type Options struct {
	TempDir          string
	Timeout          time.Duration
	MaxMarkdownBytes int
	// CacheKey derives the cache key from backend name and sanitized markdown.
	CacheKey func(backend, sanitized string) string
}

// Service renders one request at a time per call; it keeps no state
// between calls.
type Service struct {
	renderer Renderer
	cache    Cache
	opts     Options
}

// NewService builds a Service. cache may be nil.
func NewService(renderer Renderer, cache Cache, opts Options) *Service {
	return &Service{renderer: renderer, cache: cache, opts: opts}
}

// Render sanitizes the markdown, renders it once and returns the base64 PDF
// with the request's hash echoed back. Markdown that is empty before or
// after sanitizing yields an empty pdfBase64, not an error.
func (s *Service) Render(ctx context.Context, req domain.RenderRequest) (domain.RenderResponse, error) {
	if strings.TrimSpace(req.Markdown) == "" {
		return domain.EmptyRender(req.ContentHash), nil
	}
	if s.opts.MaxMarkdownBytes > 0 && len(req.Markdown) > s.opts.MaxMarkdownBytes {
		return domain.RenderResponse{}, domain.ErrDocumentTooLarge
	}

	sanitized, dropped := domain.SanitizeMarkdownCount(req.Markdown)
	if dropped > 0 {
		logging.Warn("Dropped blocked markdown lines", "lines", dropped)
	}
	if strings.TrimSpace(sanitized) == "" {
		return domain.EmptyRender(req.ContentHash), nil
	}

	var key string
	if s.cache != nil && s.opts.CacheKey != nil {
		key = s.opts.CacheKey(s.renderer.Name(), sanitized)
		if cached := s.cache.Get(ctx, key); cached != nil {
			return encode(cached, req.ContentHash), nil
		}
	}

	pdf, err := s.renderToBytes(ctx, sanitized)
	if err != nil {
		return domain.RenderResponse{}, err
	}

	if key != "" {
		s.cache.Set(ctx, key, pdf)
	}
	return encode(pdf, req.ContentHash), nil
}

// renderToBytes runs the engine against a temporary file that is removed
// on every return path.
func (s *Service) renderToBytes(ctx context.Context, sanitized string) ([]byte, error) {
	tmp, err := os.CreateTemp(s.opts.TempDir, "render-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	path := tmp.Name()
	defer os.Remove(path)
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	ctx, cancel := command.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	start := time.Now()
	if err := s.renderer.RenderPDF(ctx, sanitized, path); err != nil {
		logging.Error("PDF render failed", "backend", s.renderer.Name(), "error", err)
		return nil, err
	}

	pdf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rendered pdf: %w", err)
	}
	logging.Info("PDF rendered", "backend", s.renderer.Name(), "bytes", len(pdf), "duration_ms", time.Since(start).Milliseconds())
	return pdf, nil
}

func encode(pdf []byte, hash *string) domain.RenderResponse {
	return domain.RenderResponse{
		PDFBase64: base64.StdEncoding.EncodeToString(pdf),
		Hash:      hash,
	}
}
