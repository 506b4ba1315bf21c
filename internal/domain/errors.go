package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyDocument signals an upload with no bytes.
	ErrEmptyDocument = errors.New("Uploaded document was empty")
	// ErrMissingFile signals a multipart request without a file part.
	ErrMissingFile = errors.New("file upload is required")
	// ErrUnsupportedMediaType signals a declared content type outside the accepted set.
	ErrUnsupportedMediaType = errors.New("Only PDF uploads are supported")
	// ErrDocumentTooLarge signals input above the configured size limit.
	ErrDocumentTooLarge = errors.New("document exceeds allowed size")
)

// EngineError is returned when an external engine (pandoc, chrome,
// tesseract, pdftoppm, mupdf) fails. Message carries the engine's own text
// and is passed through to the caller unchanged.
type EngineError struct {
	Engine  string
	Op      string
	Message string
	Err     error
}

func (e *EngineError) Error() string {
	msg := strings.TrimSpace(e.Message)
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = "unknown error"
	}
	return msg
}

func (e *EngineError) Unwrap() error { return e.Err }

// NewEngineError builds an EngineError. message may be empty, in which case
// the wrapped error's text is used.
func NewEngineError(engine, op, message string, err error) *EngineError {
	return &EngineError{Engine: engine, Op: op, Message: message, Err: err}
}

// ConversionError marks a failure to turn an uploaded PDF into page images.
// It is treated as a bad document supplied by the caller.
type ConversionError struct {
	Err error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("Failed to convert PDF to images: %v", e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }
