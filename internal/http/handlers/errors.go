package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"meridian-converters/internal/domain"
)

// toFiberError maps service errors to HTTP status codes. Engine messages
// are passed through unchanged.
func toFiberError(err error) *fiber.Error {
	var fe *fiber.Error
	var conv *domain.ConversionError
	switch {
	case errors.As(err, &fe):
		return fe
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.NewError(fiber.StatusGatewayTimeout, "conversion timed out")
	case errors.Is(err, domain.ErrMissingFile), errors.Is(err, domain.ErrEmptyDocument):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnsupportedMediaType):
		return fiber.NewError(fiber.StatusUnsupportedMediaType, err.Error())
	case errors.Is(err, domain.ErrDocumentTooLarge):
		return fiber.NewError(fiber.StatusRequestEntityTooLarge, err.Error())
	case errors.As(err, &conv):
		return fiber.NewError(fiber.StatusBadRequest, conv.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
