// Package mupdf rasterizes PDF pages in-process with MuPDF (go-fitz).
package mupdf

import (
	"bytes"
	"context"
	"fmt"
	"image/png"

	"github.com/gen2brain/go-fitz"

	"meridian-converters/internal/domain"
)

const engineName = "mupdf"

// Rasterizer renders pages without spawning a process.
type Rasterizer struct{}

// New returns a MuPDF rasterizer.
func New() *Rasterizer { return &Rasterizer{} }

func (*Rasterizer) Name() string { return engineName }

// Rasterize renders each page of pdf at dpi into PNG bytes.
func (r *Rasterizer) Rasterize(ctx context.Context, pdf []byte, dpi int) ([][]byte, error) {
	doc, err := fitz.NewFromMemory(pdf)
	if err != nil {
		return nil, domain.NewEngineError(engineName, "open", err.Error(), err)
	}
	defer doc.Close()

	n := doc.NumPage()
	pages := make([][]byte, 0, n)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, domain.NewEngineError(engineName, "rasterize", "", err)
		}
		img, err := doc.ImageDPI(i, float64(dpi))
		if err != nil {
			return nil, domain.NewEngineError(engineName, "rasterize", fmt.Sprintf("page %d: %v", i+1, err), err)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode page %d: %w", i+1, err)
		}
		pages = append(pages, buf.Bytes())
	}
	return pages, nil
}
