// Package chrome renders markdown to PDF by converting it to HTML with
// goldmark and printing the page with headless Chrome.
package chrome

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"meridian-converters/internal/domain"
)

const engineName = "chrome"

// A4 in inches with the default margin used for markdown documents.
const (
	paperWidth  = 8.27
	paperHeight = 11.69
	margin      = 0.6
)

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: "DejaVu Serif", Georgia, serif; font-size: 11pt; line-height: 1.45; }
pre, code { font-family: "DejaVu Sans Mono", monospace; font-size: 9.5pt; }
pre { background: #f5f5f5; padding: 8px; white-space: pre-wrap; }
table { border-collapse: collapse; }
th, td { border: 1px solid #999; padding: 3px 6px; }
</style>
</head>
<body>
%s
</body>
</html>`

// Renderer prints markdown through a fresh headless Chrome per call.
type Renderer struct {
	ChromePath string
	NoSandbox  bool

	md goldmark.Markdown
}

// New returns a Renderer. An empty chromePath lets chromedp locate Chrome.
func New(chromePath string, noSandbox bool) *Renderer {
	return &Renderer{
		ChromePath: chromePath,
		NoSandbox:  noSandbox,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		),
	}
}

func (r *Renderer) Name() string { return engineName }

// ToHTML converts markdown into a standalone HTML document. Raw HTML in the
// markdown is not passed through.
func (r *Renderer) ToHTML(markdown string) (string, error) {
	var body bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &body); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return fmt.Sprintf(pageTemplate, "Document", body.String()), nil
}

// RenderPDF writes the printed document to outPath.
func (r *Renderer) RenderPDF(ctx context.Context, markdown, outPath string) error {
	doc, err := r.ToHTML(markdown)
	if err != nil {
		return domain.NewEngineError(engineName, "render", "", err)
	}

	pdfBuf, err := r.printHTML(ctx, doc)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return domain.NewEngineError(engineName, "render", "", err)
		}
		return domain.NewEngineError(engineName, "render", err.Error(), err)
	}

	if err := os.WriteFile(outPath, pdfBuf, 0o600); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func (r *Renderer) printHTML(ctx context.Context, doc string) ([]byte, error) {
	tmpDir, err := os.MkdirTemp("", "chromedata-*")
	if err != nil {
		return nil, fmt.Errorf("cannot create temp profile dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	allocatorOptions := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserDataDir(tmpDir),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-gpu-compositing", true),
		chromedp.Flag("disable-features", "Vulkan,UseSkiaRenderer"),
		chromedp.Flag("use-gl", "swiftshader"),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if r.ChromePath != "" {
		allocatorOptions = append(allocatorOptions, chromedp.ExecPath(r.ChromePath))
	}
	if r.NoSandbox {
		allocatorOptions = append(allocatorOptions, chromedp.Flag("no-sandbox", true))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocatorOptions...)
	defer cancelAlloc()
	chromeCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	return printInTab(chromeCtx, doc)
}

// printInTab loads doc into the current tab and prints it to PDF.
func printInTab(ctx context.Context, doc string) ([]byte, error) {
	var pdfBuf []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frame, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frame.Frame.ID, doc).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(100*time.Millisecond),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdfBuf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(paperWidth).
				WithPaperHeight(paperHeight).
				WithMarginTop(margin).
				WithMarginBottom(margin).
				WithMarginLeft(margin).
				WithMarginRight(margin).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuf, nil
}
