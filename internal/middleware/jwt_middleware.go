package middleware

import (
	"strings"

	"greentrack/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AuthRequired is a Fiber middleware that gates a route behind a valid
// bearer token. On success the verified identity is stored in Locals as
// "user_id" and "username"; handlers read it from there and pass it
// explicitly into service calls. All failure modes collapse into 401 so the
// response never reveals which check failed.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "Not authorized to access this route (No Token)",
			})
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "Not authorized to access this route (No Token)",
			})
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "Not authorized to access this route (Invalid Token)",
			})
		}

		userID, _ := claims["user_id"].(string)
		if userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "Not authorized to access this route (Invalid Token)",
			})
		}

		c.Locals("user_id", userID)
		c.Locals("username", claims["username"])

		return c.Next()
	}
}
