package handlers

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"crypto-support-bot/models"
	"crypto-support-bot/services"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Message string           `json:"message"`
	User    *models.Operator `json:"user"`
}

func Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Username == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Username and password are required",
		})
	}

	operator, err := services.GetOperatorByUsername(c.Context(), req.Username)
	if err != nil {
		slog.Error("Failed to get operator", "error", err, "username", req.Username)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid credentials",
		})
	}

	if !operator.IsActive {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Account is disabled",
		})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(operator.PasswordHash), []byte(req.Password)); err != nil {
		slog.Info("Invalid password attempt", "username", req.Username)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid credentials",
		})
	}

	session, err := services.CreateSession(
		c.Context(),
		operator.ID.Hex(),
		operator.Username,
		string(operator.Role),
		c.IP(),
		c.Get("User-Agent"),
	)
	if err != nil {
		slog.Error("Failed to create session", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create session",
		})
	}

	c.Cookie(&fiber.Cookie{
		Name:     services.SessionCookieName,
		Value:    session.SessionID,
		Expires:  session.ExpiresAt,
		HTTPOnly: true,
		SameSite: "Lax",
		Path:     "/",
	})

	if err := services.UpdateOperatorLastLogin(c.Context(), operator.ID.Hex()); err != nil {
		slog.Error("Failed to update last login", "error", err)
	}

	slog.Info("Operator logged in", "operatorID", operator.ID.Hex(), "username", operator.Username)

	return c.Status(fiber.StatusOK).JSON(LoginResponse{
		Message: "Login successful",
		User:    operator,
	})
}

func Logout(c *fiber.Ctx) error {
	sessionID := c.Cookies(services.SessionCookieName)
	if sessionID != "" {
		if err := services.DestroySession(c.Context(), sessionID); err != nil {
			slog.Error("Failed to destroy session", "error", err)
		}
	}

	// Clear session cookie
	c.Cookie(&fiber.Cookie{
		Name:     services.SessionCookieName,
		Value:    "",
		Expires:  time.Now().Add(-1 * time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
		Path:     "/",
	})

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Logged out successfully",
	})
}

func GetCurrentUser(c *fiber.Ctx) error {
	sessionID := c.Cookies(services.SessionCookieName)
	if sessionID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Not authenticated",
		})
	}

	session, err := services.GetSessionByID(c.Context(), sessionID)
	if err != nil || session == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Not authenticated",
		})
	}

	operator, err := services.GetOperatorByID(c.Context(), session.UserID)
	if err != nil {
		slog.Error("Failed to get operator", "error", err, "userID", session.UserID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get user information",
		})
	}

	return c.Status(fiber.StatusOK).JSON(operator)
}

func CheckSession(c *fiber.Ctx) error {
	sessionID := c.Cookies(services.SessionCookieName)
	if sessionID == "" {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"authenticated": false,
		})
	}

	session, err := services.GetSessionByID(c.Context(), sessionID)
	if err != nil || session == nil {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"authenticated": false,
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"authenticated": true,
		"user_id":       session.UserID,
		"username":      session.Username,
		"role":          session.Role,
	})
}
