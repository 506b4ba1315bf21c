package handlers

import "github.com/gofiber/fiber/v2"

// Health always reports ok; it does not probe engines.
func Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
