// Package tesseract runs optical character recognition with the tesseract
// CLI. The cgo binding lives in the gosseract subpackage.
package tesseract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"meridian-converters/internal/domain"
	"meridian-converters/internal/infra/command"
)

const engineName = "tesseract"

// CLI recognizes images through the tesseract binary.
type CLI struct {
	Path      string
	Languages []string
	DPI       int
	TempDir   string

	exec command.Executor
}

// NewCLI returns a recognizer running the binary at path.
func NewCLI(path string, languages []string, dpi int, tempDir string) *CLI {
	return newCLI(path, languages, dpi, tempDir, command.OSExecutor{})
}

func newCLI(path string, languages []string, dpi int, tempDir string, ex command.Executor) *CLI {
	if path == "" {
		path = "tesseract"
	}
	return &CLI{Path: path, Languages: languages, DPI: dpi, TempDir: tempDir, exec: ex}
}

func (c *CLI) Name() string { return engineName }

// Text returns the plain text tesseract recognizes in img.
func (c *CLI) Text(ctx context.Context, img []byte) (string, error) {
	out, err := c.run(ctx, img, "text")
	if err != nil {
		return "", err
	}
	return out, nil
}

// Confidences returns the raw per-token confidences from tesseract's TSV
// output. Non-numeric cells are dropped; negative values are kept.
func (c *CLI) Confidences(ctx context.Context, img []byte) ([]float64, error) {
	out, err := c.run(ctx, img, "tsv")
	if err != nil {
		return nil, err
	}
	return domain.ParseConfidences(ConfColumn(out)), nil
}

func (c *CLI) run(ctx context.Context, img []byte, op string) (string, error) {
	dir, err := os.MkdirTemp(c.TempDir, "ocr-*")
	if err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	input := filepath.Join(dir, "page.png")
	if err := os.WriteFile(input, img, 0o600); err != nil {
		return "", fmt.Errorf("write page image: %w", err)
	}

	res, err := c.exec.Run(ctx, c.Path, c.args(input, op), nil)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return "", domain.NewEngineError(engineName, op, "", err)
		}
		return "", domain.NewEngineError(engineName, op, command.Message(res, err), err)
	}
	return string(res.Stdout), nil
}

func (c *CLI) args(input, op string) []string {
	args := []string{input, "stdout"}
	if len(c.Languages) > 0 {
		args = append(args, "-l", strings.Join(c.Languages, "+"))
	}
	if c.DPI > 0 {
		args = append(args, "--dpi", strconv.Itoa(c.DPI))
	}
	if op == "tsv" {
		args = append(args, "tsv")
	}
	return args
}

// ConfColumn extracts the cells of the "conf" column from tesseract TSV
// output. Rows shorter than the header are skipped.
func ConfColumn(tsv string) []string {
	lines := strings.Split(strings.ReplaceAll(tsv, "\r\n", "\n"), "\n")
	if len(lines) == 0 {
		return nil
	}

	idx := -1
	for i, col := range strings.Split(lines[0], "\t") {
		if strings.TrimSpace(col) == "conf" {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}

	var cells []string
	for _, line := range lines[1:] {
		if line == "" {
			continue
		}
		cols := strings.Split(line, "\t")
		if idx >= len(cols) {
			continue
		}
		cells = append(cells, cols[idx])
	}
	return cells
}
