package middleware

import (
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"linkpress/internal/users"
)

// currentUserKey is the fiber locals key the authenticated user is stored
// under. Handlers read it back through CurrentUser.
const currentUserKey = "currentUser"

// APIKeyAuth validates the API key on analytics endpoints and resolves the
// owning user. Expects: Authorization: Bearer <api_key>
func APIKeyAuth(db *gorm.DB, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing Authorization header",
			})
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid Authorization header format. Expected: Bearer <api_key>",
			})
		}

		providedKey := strings.TrimPrefix(authHeader, "Bearer ")
		if providedKey == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "API key is empty",
			})
		}

		user, err := users.FindByAPIKey(db, providedKey)
		if err != nil {
			logger.Debug("API key rejected", slog.Any("error", err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid API key",
			})
		}

		c.Locals(currentUserKey, user)
		return c.Next()
	}
}

// CurrentUser returns the user resolved by APIKeyAuth, or nil when the
// request did not pass through it.
func CurrentUser(c *fiber.Ctx) *users.User {
	user, _ := c.Locals(currentUserKey).(*users.User)
	return user
}
