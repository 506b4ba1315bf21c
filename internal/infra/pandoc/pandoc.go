// Package pandoc renders markdown to PDF with the pandoc CLI and a LaTeX
// PDF engine.
package pandoc

import (
	"context"
	"errors"
	"strings"

	"meridian-converters/internal/domain"
	"meridian-converters/internal/infra/command"
)

const engineName = "pandoc"

// Renderer invokes pandoc once per call; there is no retry.
type Renderer struct {
	Path      string
	PDFEngine string

	exec command.Executor
}

// New returns a Renderer that runs the binary at path (looked up in PATH
// when it has no separator) with the given --pdf-engine.
func New(path, pdfEngine string) *Renderer {
	return newWithExecutor(path, pdfEngine, command.OSExecutor{})
}

func newWithExecutor(path, pdfEngine string, ex command.Executor) *Renderer {
	if path == "" {
		path = "pandoc"
	}
	if pdfEngine == "" {
		pdfEngine = "xelatex"
	}
	return &Renderer{Path: path, PDFEngine: pdfEngine, exec: ex}
}

func (r *Renderer) Name() string { return engineName }

// Args returns the pandoc argument list for writing outPath.
func (r *Renderer) Args(outPath string) []string {
	return []string{
		"--from=markdown",
		"--to=pdf",
		"--output=" + outPath,
		"--pdf-engine=" + r.PDFEngine,
	}
}

// RenderPDF feeds markdown to pandoc on stdin and lets it write the PDF to
// outPath. Failures carry pandoc's stderr as the message.
func (r *Renderer) RenderPDF(ctx context.Context, markdown, outPath string) error {
	res, err := r.exec.Run(ctx, r.Path, r.Args(outPath), strings.NewReader(markdown))
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return domain.NewEngineError(engineName, "render", "", err)
	}
	return domain.NewEngineError(engineName, "render", command.Message(res, err), err)
}

// Check reports whether the pandoc binary can be found.
func (r *Renderer) Check() error {
	_, err := r.exec.LookPath(r.Path)
	return err
}
