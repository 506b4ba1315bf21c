package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"meridian-converters/internal/domain"
)

// RenderService is the part of render.Service used by the HTTP layer.
type RenderService interface {
	Render(ctx context.Context, req domain.RenderRequest) (domain.RenderResponse, error)
}

// Render handles POST /render.
func Render(svc RenderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req domain.RenderRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		resp, err := svc.Render(c.UserContext(), req)
		if err != nil {
			return toFiberError(err)
		}
		return c.JSON(resp)
	}
}
