package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"crypto-support-bot/services"
)

// AddFAQRequest is the payload for creating a FAQ entry. Keywords are
// optional; omitted keywords are derived from the question.
type AddFAQRequest struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Keywords []string `json:"keywords,omitempty"`
}

// AddFAQEntry handles POST /admin/faq
func AddFAQEntry(c *fiber.Ctx) error {
	var req AddFAQRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	entry, err := knowledge.AddEntry(c.Context(), req.Question, req.Answer, req.Keywords)
	if err != nil {
		var validationErr *services.ValidationError
		if errors.As(err, &validationErr) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": validationErr.Error(),
			})
		}

		var persistenceErr *services.PersistenceError
		if errors.As(err, &persistenceErr) {
			// The entry is live in memory; it will answer queries until a
			// restart even though the write-back failed.
			slog.Error("FAQ entry persisted in memory only", "error", err, "entryID", entry.ID)
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"entry":   entry,
				"warning": "entry active but not persisted; it may be lost on restart",
			})
		}

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to add FAQ entry",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"entry": entry,
	})
}

// ListFAQEntries handles GET /admin/faq
func ListFAQEntries(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"questions": knowledge.ListAll(),
		"count":     knowledge.Len(),
	})
}

// SearchFAQEntries handles GET /admin/faq/search?q=term
func SearchFAQEntries(c *fiber.Ctx) error {
	term := c.Query("q")
	if term == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Query parameter q is required",
		})
	}

	results := knowledge.Search(term)
	return c.JSON(fiber.Map{
		"entries": results,
		"count":   len(results),
	})
}

// ListForwards handles GET /admin/forwards
func ListForwards(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)

	records, err := services.ListForwards(c.Context(), limit)
	if err != nil {
		slog.Error("Failed to list forwards", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list forwarded messages",
		})
	}

	return c.JSON(fiber.Map{
		"forwards": records,
		"count":    len(records),
	})
}

// UpdateStopStatusRequest toggles human handling for a chat
type UpdateStopStatusRequest struct {
	Stop bool `json:"stop"`
}

// UpdateCustomerStopStatus handles PUT /admin/customers/:chatID/stop
func UpdateCustomerStopStatus(c *fiber.Ctx) error {
	chatID := c.Params("chatID")
	if chatID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Chat ID is required",
		})
	}

	var req UpdateStopStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	customer, err := services.UpdateCustomerStopStatus(c.Context(), chatID, req.Stop)
	if err != nil {
		slog.Error("Failed to update customer stop status", "error", err, "chatID", chatID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update customer",
		})
	}

	services.GetWebSocketManager().Broadcast(services.BroadcastMessage{
		Type: "customer_stop_status_changed",
		Data: customer,
	})

	return c.JSON(customer)
}
