package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"crypto-support-bot/models"
)

// sessionLocals stands in for RequireAuth, which stores the session's
// identity in locals before RequireAdmin runs.
func sessionLocals(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("user_id", "op-1")
		c.Locals("username", "operator")
		c.Locals("role", role)
		return c.Next()
	}
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name           string
		role           string
		wantStatus     int
		wantHandlerHit bool
	}{
		{"admin passes", string(models.RoleAdmin), fiber.StatusCreated, true},
		{"operator blocked", string(models.RoleOperator), fiber.StatusForbidden, false},
		{"missing role blocked", "", fiber.StatusForbidden, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()

			handlerHit := false
			app.Post("/faq",
				sessionLocals(tt.role),
				RequireAdmin,
				func(c *fiber.Ctx) error {
					handlerHit = true
					return c.SendStatus(fiber.StatusCreated)
				},
			)

			resp, err := app.Test(httptest.NewRequest("POST", "/faq", nil))
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			// The protected handler must never run when the check fails,
			// not merely have its response rewritten afterwards.
			if handlerHit != tt.wantHandlerHit {
				t.Errorf("handler ran = %v, want %v", handlerHit, tt.wantHandlerHit)
			}
		})
	}
}
