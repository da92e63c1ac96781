package webhooks

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"crypto-support-bot/config"
	"crypto-support-bot/handlers"
)

func RegisterRoutes(app *fiber.App, cfg *config.Config) {
	webhook := app.Group("/webhook")

	// Webhook event handler
	webhook.Post("/", handleWebhookEvent(cfg))
}

// handleWebhookEvent processes incoming updates from Telegram
func handleWebhookEvent(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Telegram echoes the secret configured at setWebhook time
		if cfg.WebhookSecret != "" {
			if c.Get("X-Telegram-Bot-Api-Secret-Token") != cfg.WebhookSecret {
				slog.Warn("Webhook secret mismatch", "ip", c.IP())
				return c.SendStatus(fiber.StatusForbidden)
			}
		}

		var update Update
		if err := c.BodyParser(&update); err != nil {
			slog.Error("Failed to parse webhook body", "error", err)
			return c.SendStatus(fiber.StatusBadRequest)
		}

		// Process the update asynchronously; Telegram retries on non-200
		go processUpdate(update)

		return c.SendStatus(fiber.StatusOK)
	}
}

// processUpdate handles one update in a separate goroutine
func processUpdate(update Update) {
	msg := update.Message
	if msg == nil {
		msg = update.EditedMessage
	}
	if msg == nil {
		slog.Info("Ignoring update without message", "updateID", update.UpdateID)
		return
	}

	// Bots talking to bots is a feedback loop waiting to happen
	if msg.From != nil && msg.From.IsBot {
		return
	}

	if msg.Text == "" {
		slog.Info("Ignoring non-text message", "chatID", msg.Chat.ID)
		return
	}

	incoming := handlers.IncomingMessage{
		ChatID:    strconv.FormatInt(msg.Chat.ID, 10),
		MessageID: msg.MessageID,
		Text:      msg.Text,
		Timestamp: msg.Date,
	}
	if msg.From != nil {
		incoming.SenderID = strconv.FormatInt(msg.From.ID, 10)
		incoming.SenderName = senderDisplayName(msg.From)
	}

	handlers.HandleMessage(incoming)
}

func senderDisplayName(u *User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		name = u.Username
	}
	return name
}
