// Package gosseract recognizes text through libtesseract using the
// gosseract cgo binding.
package gosseract

import (
	"context"
	"fmt"
	"strconv"

	"github.com/otiai10/gosseract/v2"

	"meridian-converters/internal/domain"
)

const engineName = "tesseract"

// Recognizer creates one client per call; gosseract clients are not safe
// for concurrent use.
type Recognizer struct {
	Languages []string
	DPI       int

	clientFactory func() *gosseract.Client
}

// New returns a Recognizer for the given languages and source DPI.
func New(languages []string, dpi int) *Recognizer {
	return &Recognizer{Languages: languages, DPI: dpi, clientFactory: gosseract.NewClient}
}

func (r *Recognizer) Name() string { return engineName }

// Text returns the plain text recognized in img.
func (r *Recognizer) Text(ctx context.Context, img []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", domain.NewEngineError(engineName, "text", "", err)
	}
	c, err := r.client(img)
	if err != nil {
		return "", err
	}
	defer c.Close()

	text, err := c.Text()
	if err != nil {
		return "", domain.NewEngineError(engineName, "text", err.Error(), err)
	}
	return text, nil
}

// Confidences returns the per-word confidences reported by tesseract,
// unfiltered.
func (r *Recognizer) Confidences(ctx context.Context, img []byte) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewEngineError(engineName, "confidences", "", err)
	}
	c, err := r.client(img)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, domain.NewEngineError(engineName, "confidences", err.Error(), err)
	}
	confs := make([]float64, 0, len(boxes))
	for _, b := range boxes {
		confs = append(confs, b.Confidence)
	}
	return confs, nil
}

func (r *Recognizer) client(img []byte) (*gosseract.Client, error) {
	c := r.clientFactory()
	if len(r.Languages) > 0 {
		if err := c.SetLanguage(r.Languages...); err != nil {
			c.Close()
			return nil, domain.NewEngineError(engineName, "configure", fmt.Sprintf("set languages: %v", err), err)
		}
	}
	if r.DPI > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), strconv.Itoa(r.DPI)); err != nil {
			c.Close()
			return nil, domain.NewEngineError(engineName, "configure", fmt.Sprintf("set dpi: %v", err), err)
		}
	}
	if err := c.SetImageFromBytes(img); err != nil {
		c.Close()
		return nil, domain.NewEngineError(engineName, "configure", fmt.Sprintf("set image: %v", err), err)
	}
	return c, nil
}
