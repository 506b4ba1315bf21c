package middleware

import "github.com/gofiber/fiber/v2"

// JSONError writes the standard error envelope.
func JSONError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    status,
			"message": message,
		},
	})
}
