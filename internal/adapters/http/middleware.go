package http

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
)

const apiKeyHeader = "X-API-Key"

// RequireAPIKey rejects requests without the configured key. An empty key disables the check.
func RequireAPIKey(key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if key == "" {
			return c.Next()
		}
		if subtle.ConstantTimeCompare([]byte(c.Get(apiKeyHeader)), []byte(key)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid API key",
			})
		}
		return c.Next()
	}
}
