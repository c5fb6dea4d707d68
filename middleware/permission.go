package middleware

import (
	"elearn/config"

	"github.com/gofiber/fiber/v2"
)

// ServiceKeyMiddleware protects internal endpoints called by backend
// collaborators (payment/refund service, expiry tooling) rather than end
// users. The shared key comes from configuration.
func ServiceKeyMiddleware(c *fiber.Ctx) error {
	key := c.Get("X-Service-Key")
	if key == "" || key != config.AppConfig.ServiceApiKey {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status":  false,
			"message": "Missing or invalid service key",
			"data":    nil,
		})
	}
	return c.Next()
}
