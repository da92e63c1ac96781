package middleware

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"crypto-support-bot/models"
	"crypto-support-bot/services"
)

func RequireAuth(c *fiber.Ctx) error {
	sessionID := c.Cookies(services.SessionCookieName)
	if sessionID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	session, err := services.GetSessionByID(c.Context(), sessionID)
	if err != nil {
		slog.Error("Failed to get session", "error", err)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	if session == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid or expired session",
		})
	}

	// Set user information in locals for downstream handlers
	c.Locals("user_id", session.UserID)
	c.Locals("username", session.Username)
	c.Locals("role", session.Role)

	// Extend session expiration on activity
	services.ExtendSession(c.Context(), sessionID)

	return c.Next()
}

// RequireAdmin must be stacked after RequireAuth: it reads the role
// RequireAuth stored in locals and never advances the chain before the
// check passes.
func RequireAdmin(c *fiber.Ctx) error {
	userRole, ok := c.Locals("role").(string)
	if !ok || userRole != string(models.RoleAdmin) {
		slog.Info("Access denied, admin required", "user_role", c.Locals("role"))
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Only admins can perform this action",
		})
	}

	return c.Next()
}
