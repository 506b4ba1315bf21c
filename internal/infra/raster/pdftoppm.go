// Package raster turns PDF documents into per-page PNG images.
package raster

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"meridian-converters/internal/domain"
	"meridian-converters/internal/infra/command"
)

// Pdftoppm rasterizes through poppler's pdftoppm binary.
type Pdftoppm struct {
	Path    string
	TempDir string

	exec command.Executor
}

// NewPdftoppm returns a rasterizer running the binary at path.
func NewPdftoppm(path, tempDir string) *Pdftoppm {
	return newPdftoppm(path, tempDir, command.OSExecutor{})
}

func newPdftoppm(path, tempDir string, ex command.Executor) *Pdftoppm {
	if path == "" {
		path = "pdftoppm"
	}
	return &Pdftoppm{Path: path, TempDir: tempDir, exec: ex}
}

func (p *Pdftoppm) Name() string { return "pdftoppm" }

// Rasterize renders every page of pdf at dpi and returns PNG bytes in page order.
func (p *Pdftoppm) Rasterize(ctx context.Context, pdf []byte, dpi int) ([][]byte, error) {
	dir, err := os.MkdirTemp(p.TempDir, "raster-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	input := filepath.Join(dir, "input.pdf")
	if err := os.WriteFile(input, pdf, 0o600); err != nil {
		return nil, fmt.Errorf("write input: %w", err)
	}

	args := []string{"-r", strconv.Itoa(dpi), "-png", input, filepath.Join(dir, "page")}
	res, err := p.exec.Run(ctx, p.Path, args, nil)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, domain.NewEngineError(p.Name(), "rasterize", "", err)
		}
		return nil, domain.NewEngineError(p.Name(), "rasterize", command.Message(res, err), err)
	}

	return readPages(dir)
}

// readPages loads page-N.png files from dir ordered by N. pdftoppm pads N
// to the width of the highest page number.
func readPages(dir string) ([][]byte, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "page-*.png"))
	if err != nil {
		return nil, err
	}

	type page struct {
		n    int
		path string
	}
	pages := make([]page, 0, len(matches))
	for _, m := range matches {
		num := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(m), "page-"), ".png")
		n, err := strconv.Atoi(num)
		if err != nil {
			continue
		}
		pages = append(pages, page{n: n, path: m})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].n < pages[j].n })

	out := make([][]byte, 0, len(pages))
	for _, pg := range pages {
		data, err := os.ReadFile(pg.path)
		if err != nil {
			return nil, fmt.Errorf("read page %d: %w", pg.n, err)
		}
		out = append(out, data)
	}
	return out, nil
}
