package auth

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
)

// Config holds the auth middleware configuration.
type Config struct {
	// ApiKey is the expected API key. Empty disables the check.
	ApiKey string
}

// New creates a middleware that validates the X-Api-Key header.
func New(cfg Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cfg.ApiKey == "" {
			return c.Next()
		}

		provided := c.Get("X-Api-Key")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(cfg.ApiKey)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid api key",
			})
		}

		return c.Next()
	}
}
