package handlers

import "github.com/gofiber/fiber/v2"

func success(c *fiber.Ctx, message string, data any) error {
	return c.JSON(fiber.Map{
		"message": message,
		"data":    data,
	})
}

func failure(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}
