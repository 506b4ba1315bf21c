package raster

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meridian-converters/internal/domain"
	"meridian-converters/internal/infra/command"
)

type fakeExec struct {
	args  []string
	input []byte
	pages []string
	res   command.Result
	err   error
}

func (f *fakeExec) LookPath(file string) (string, error) { return file, nil }

func (f *fakeExec) Run(ctx context.Context, name string, args []string, stdin io.Reader) (command.Result, error) {
	f.args = args
	if f.err != nil {
		return f.res, f.err
	}
	f.input, _ = os.ReadFile(args[3])
	prefix := args[4]
	for _, p := range f.pages {
		if err := os.WriteFile(prefix+"-"+p+".png", []byte("png "+p), 0o600); err != nil {
			return command.Result{}, err
		}
	}
	return f.res, nil
}

func TestPdftoppm_OrdersPagesNumerically(t *testing.T) {
	fx := &fakeExec{pages: []string{"10", "02", "01", "09"}}
	p := newPdftoppm("", t.TempDir(), fx)

	pages, err := p.Rasterize(context.Background(), []byte("%PDF-1.4"), 300)
	require.NoError(t, err)

	assert.Equal(t, []string{"-r", "300", "-png"}, fx.args[:3])
	assert.Equal(t, "%PDF-1.4", string(fx.input))
	require.Len(t, pages, 4)
	assert.Equal(t, "png 01", string(pages[0]))
	assert.Equal(t, "png 02", string(pages[1]))
	assert.Equal(t, "png 09", string(pages[2]))
	assert.Equal(t, "png 10", string(pages[3]))
}

func TestPdftoppm_ZeroPages(t *testing.T) {
	p := newPdftoppm("pdftoppm", t.TempDir(), &fakeExec{})
	pages, err := p.Rasterize(context.Background(), []byte("%PDF-1.4"), 300)
	require.NoError(t, err)
	assert.Empty(t, pages)
}

func TestPdftoppm_FailureCarriesStderrAndCleansUp(t *testing.T) {
	base := t.TempDir()
	fx := &fakeExec{
		res: command.Result{Stderr: []byte("Syntax Warning: May not be a PDF file\n")},
		err: errors.New("exit status 1"),
	}
	p := newPdftoppm("pdftoppm", base, fx)

	_, err := p.Rasterize(context.Background(), []byte("not a pdf"), 300)
	require.Error(t, err)
	var ee *domain.EngineError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "Syntax Warning: May not be a PDF file", err.Error())

	left, _ := filepath.Glob(filepath.Join(base, "raster-*"))
	assert.Empty(t, left, "temp dir must be removed")
}
