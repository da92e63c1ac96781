package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"crypto-support-bot/services"
)

// GetStats handles GET /api/dashboard/stats: interaction counts per
// routing action plus message volume.
func GetStats(c *fiber.Ctx) error {
	stats, err := services.InteractionStats(c.Context())
	if err != nil {
		slog.Error("Failed to aggregate interaction stats", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to compute stats",
		})
	}

	messageCount, err := services.CountMessages(c.Context())
	if err != nil {
		slog.Error("Failed to count messages", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to compute stats",
		})
	}

	return c.JSON(fiber.Map{
		"interactions_by_action": stats,
		"message_count":          messageCount,
		"faq_entries":            knowledge.Len(),
	})
}

// GetChatHistory handles GET /api/dashboard/messages/:chatID
func GetChatHistory(c *fiber.Ctx) error {
	chatID := c.Params("chatID")
	if chatID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Chat ID is required",
		})
	}

	limit := c.QueryInt("limit", 50)

	messages, err := services.GetChatHistory(c.Context(), chatID, limit)
	if err != nil {
		slog.Error("Failed to fetch chat history", "error", err, "chatID", chatID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch chat history",
		})
	}

	return c.JSON(fiber.Map{
		"messages": messages,
		"count":    len(messages),
	})
}

// GetWalletBalance handles GET /api/dashboard/balance/:address
func GetWalletBalance(c *fiber.Ctx) error {
	address := c.Params("address")
	if address == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Address is required",
		})
	}

	balance, err := explorer.WalletBalance(c.Context(), address)
	if err != nil {
		slog.Error("Failed to fetch wallet balance", "error", err, "address", address)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Failed to fetch balance from explorer",
		})
	}

	return c.JSON(fiber.Map{
		"address": address,
		"balance": balance,
		"unit":    "ETH",
	})
}
