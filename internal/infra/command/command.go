// Package command runs external engine binaries (pandoc, pdftoppm,
// tesseract) and captures their output.
package command

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"
	"time"
)

// Result holds what a finished command wrote.
type Result struct {
	Stdout []byte
	Stderr []byte
}

// Executor abstracts process execution so adapters can be tested without
// the real binaries.
type Executor interface {
	LookPath(file string) (string, error)
	Run(ctx context.Context, name string, args []string, stdin io.Reader) (Result, error)
}

// OSExecutor is the production executor backed by os/exec.
type OSExecutor struct{}

func (OSExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

// Run executes name with args. A non-nil error is returned when the process
// could not start, exited non-zero, or ctx expired; Result is filled in all cases.
func (OSExecutor) Run(ctx context.Context, name string, args []string, stdin io.Reader) (Result, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = 2 * time.Second

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil && err != nil {
		err = ctxErr
	}
	return Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}, err
}

// Message picks the most useful text describing a failed run: stderr if
// present, else stdout, else the error itself.
func Message(res Result, err error) string {
	if msg := strings.TrimSpace(string(res.Stderr)); msg != "" {
		return msg
	}
	if msg := strings.TrimSpace(string(res.Stdout)); msg != "" {
		return msg
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.String()
		}
		return err.Error()
	}
	return ""
}

// WithTimeout derives a context bounded by timeout; zero or negative means
// the parent is returned unchanged.
func WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
