package handlers

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"meridian-converters/internal/domain"
)

// OCRService is the part of ocr.Service used by the HTTP layer.
type OCRService interface {
	Accepts(contentType string) bool
	Recognize(ctx context.Context, contentType string, payload []byte) (domain.OcrResult, error)
}

// OCR handles POST /ocr with a multipart "file" part.
func OCR(svc OCRService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return toFiberError(domain.ErrMissingFile)
		}

		contentType := fh.Header.Get(fiber.HeaderContentType)
		if !svc.Accepts(contentType) {
			return toFiberError(domain.ErrUnsupportedMediaType)
		}

		payload, err := readUpload(fh)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		result, err := svc.Recognize(c.UserContext(), contentType, payload)
		if err != nil {
			return toFiberError(err)
		}
		return c.JSON(result)
	}
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return data, nil
}
