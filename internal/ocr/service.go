// Package ocr extracts text and an average confidence from uploaded PDFs.
package ocr

import (
	"context"
	"errors"
	"strings"
	"time"

	"meridian-converters/internal/domain"
	"meridian-converters/internal/infra/command"
	"meridian-converters/internal/infra/logging"
)

// DefaultDPI is the rasterization resolution used when none is configured.
const DefaultDPI = 300

// Rasterizer converts a PDF into one image per page.
type Rasterizer interface {
	Name() string
	Rasterize(ctx context.Context, pdf []byte, dpi int) ([][]byte, error)
}

// Recognizer reads text from a page image. Confidences returns the raw
// per-token scores on a 0..100 scale; negative values mark non-text regions.
type Recognizer interface {
	Name() string
	Text(ctx context.Context, img []byte) (string, error)
	Confidences(ctx context.Context, img []byte) ([]float64, error)
}

// Options tune a Service.
type Options struct {
	DPI                  int
	Timeout              time.Duration
	AcceptedContentTypes []string
}

// Service runs the rasterize-then-recognize pipeline sequentially, page by
// page, in a single attempt.
type Service struct {
	rasterizer Rasterizer
	recognizer Recognizer
	dpi        int
	timeout    time.Duration
	accepted   map[string]struct{}
}

// NewService builds a Service.
func NewService(rasterizer Rasterizer, recognizer Recognizer, opts Options) *Service {
	dpi := opts.DPI
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	types := opts.AcceptedContentTypes
	if len(types) == 0 {
		types = []string{"application/pdf", "application/octet-stream", "pdf"}
	}
	accepted := make(map[string]struct{}, len(types))
	for _, t := range types {
		accepted[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}
	return &Service{
		rasterizer: rasterizer,
		recognizer: recognizer,
		dpi:        dpi,
		timeout:    opts.Timeout,
		accepted:   accepted,
	}
}

// Accepts reports whether contentType is one of the accepted upload types.
// Parameters such as "; charset=binary" are ignored.
func (s *Service) Accepts(contentType string) bool {
	mediaType, _, _ := strings.Cut(contentType, ";")
	_, ok := s.accepted[strings.ToLower(strings.TrimSpace(mediaType))]
	return ok
}

// Recognize validates the upload, rasterizes it and recognizes every page.
//
// Errors: ErrUnsupportedMediaType, ErrEmptyDocument, *ConversionError when
// the rasterizer rejects the document, or the recognizer's error, which
// aborts the whole request.
func (s *Service) Recognize(ctx context.Context, contentType string, payload []byte) (domain.OcrResult, error) {
	if !s.Accepts(contentType) {
		return domain.OcrResult{}, domain.ErrUnsupportedMediaType
	}
	if len(payload) == 0 {
		return domain.OcrResult{}, domain.ErrEmptyDocument
	}

	ctx, cancel := command.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	images, err := s.rasterizer.Rasterize(ctx, payload, s.dpi)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return domain.OcrResult{}, err
		}
		return domain.OcrResult{}, &domain.ConversionError{Err: err}
	}
	if len(images) == 0 {
		return domain.OcrResult{Text: "", Confidence: 0, Pages: 0}, nil
	}

	pages := make([]domain.PageText, 0, len(images))
	for i, img := range images {
		text, err := s.recognizer.Text(ctx, img)
		if err != nil {
			logging.Error("OCR text extraction failed", "page", i+1, "error", err)
			return domain.OcrResult{}, err
		}
		confs, err := s.recognizer.Confidences(ctx, img)
		if err != nil {
			logging.Error("OCR confidence extraction failed", "page", i+1, "error", err)
			return domain.OcrResult{}, err
		}
		pages = append(pages, domain.PageText{Text: text, Confidence: domain.PageConfidence(confs)})
	}

	result := domain.CombinePages(pages)
	logging.Info("OCR completed",
		"rasterizer", s.rasterizer.Name(),
		"recognizer", s.recognizer.Name(),
		"pages", result.Pages,
		"confidence", result.Confidence,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}
