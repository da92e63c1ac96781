package handlers

import (
	"context"
	"log/slog"
	"time"

	"crypto-support-bot/models"
	"crypto-support-bot/services"
)

// IncomingMessage is the transport-neutral shape of an inbound chat
// message (kept here instead of webhooks to avoid an import cycle)
type IncomingMessage struct {
	ChatID     string
	MessageID  int64
	SenderID   string
	SenderName string
	Text       string
	Timestamp  int64
}

const providerApology = "I'm having trouble reaching the data provider right now. Please try again in a minute."

// Routing dependencies, wired once from main
var (
	classifier *services.Classifier
	knowledge  *services.KnowledgeStore
	market     *services.MarketService
	explorer   *services.ExplorerService
	telegram   *services.TelegramService
	forwarder  *services.Forwarder
)

// InitRouting wires the classifier and its collaborators into the
// message pipeline
func InitRouting(c *services.Classifier, k *services.KnowledgeStore, m *services.MarketService, e *services.ExplorerService, t *services.TelegramService, f *services.Forwarder) {
	classifier = c
	knowledge = k
	market = m
	explorer = e
	telegram = t
	forwarder = f
}

// HandleMessage processes one inbound message to completion: persist,
// classify, fetch any provider data, reply and/or forward, record the
// interaction.
func HandleMessage(msg IncomingMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	slog.Info("Handling message",
		"chatID", msg.ChatID,
		"senderID", msg.SenderID,
		"text", msg.Text,
	)

	if err := services.SaveOrUpdateCustomer(ctx, msg.ChatID, msg.SenderName); err != nil {
		slog.Error("Failed to save/update customer", "error", err)
	}

	wsManager := services.GetWebSocketManager()

	// Save the user's message regardless of how it routes
	userMessage := &models.Message{
		ChatID:     msg.ChatID,
		SenderID:   msg.SenderID,
		SenderName: msg.SenderName,
		Text:       msg.Text,
		IsBot:      false,
		Timestamp:  time.Now(),
	}
	if err := services.SaveMessage(ctx, userMessage); err != nil {
		slog.Error("Failed to save user message", "error", err)
	}

	// If a human operator has taken over the chat, the bot stays silent:
	// record the message and surface it on the dashboard only.
	customer, err := services.GetCustomer(ctx, msg.ChatID)
	if err != nil {
		slog.Warn("Failed to get customer status", "error", err)
	}
	if customer != nil && customer.Stop {
		slog.Info("Chat is human-handled, skipping bot response", "chatID", msg.ChatID)
		wsManager.Broadcast(services.BroadcastMessage{
			Type: "new_message",
			Data: map[string]interface{}{
				"chat_id":        msg.ChatID,
				"sender_name":    msg.SenderName,
				"text":           msg.Text,
				"requires_human": true,
				"timestamp":      time.Now().Unix(),
			},
		})
		return
	}

	wsManager.Broadcast(services.BroadcastMessage{
		Type: "new_message",
		Data: map[string]interface{}{
			"chat_id":     msg.ChatID,
			"sender_name": msg.SenderName,
			"text":        msg.Text,
			"is_bot":      false,
			"timestamp":   time.Now().Unix(),
		},
	})

	decision := classifier.Classify(msg.Text)

	slog.Info("Message classified",
		"chatID", msg.ChatID,
		"action", decision.Action,
		"matchType", decision.MatchType,
		"confidence", decision.Confidence,
		"priority", decision.Priority,
	)

	var reply string
	switch decision.Action {
	case models.ActionPrice:
		reply = handlePriceQuery(ctx, decision.Symbol)

	case models.ActionForward:
		if _, err := forwarder.Forward(ctx, msg.ChatID, msg.SenderName, msg.Text, decision.Priority, decision.Categories); err != nil {
			slog.Error("Failed to forward message", "error", err, "chatID", msg.ChatID)
		}
		reply = "Thanks for flagging this. I've passed your message to our support team and someone will get back to you shortly."

	case models.ActionAnswer:
		reply = decision.Reply

	case models.ActionFallback:
		reply = decision.Reply
		if decision.ShouldForward {
			// Generic distress without a category hit: forward at medium
			// priority but still answer with the fallback.
			if _, err := forwarder.Forward(ctx, msg.ChatID, msg.SenderName, msg.Text, decision.Priority, nil); err != nil {
				slog.Error("Failed to forward distressed message", "error", err, "chatID", msg.ChatID)
			}
		}
	}

	if err := telegram.SendMessage(ctx, msg.ChatID, reply); err != nil {
		slog.Error("Failed to send reply", "error", err, "chatID", msg.ChatID)
	}

	botMessage := &models.Message{
		ChatID:    msg.ChatID,
		SenderID:  "bot",
		Text:      reply,
		IsBot:     true,
		Intent:    string(decision.Action),
		Timestamp: time.Now(),
	}
	if err := services.SaveMessage(ctx, botMessage); err != nil {
		slog.Error("Failed to save bot message", "error", err)
	}

	wsManager.Broadcast(services.BroadcastMessage{
		Type: "new_message",
		Data: map[string]interface{}{
			"chat_id":   msg.ChatID,
			"text":      reply,
			"is_bot":    true,
			"intent":    string(decision.Action),
			"timestamp": time.Now().Unix(),
		},
	})

	interaction := &models.Interaction{
		ChatID:     msg.ChatID,
		Action:     decision.Action,
		MatchType:  decision.MatchType,
		Symbol:     decision.Symbol,
		Confidence: decision.Confidence,
		Timestamp:  time.Now(),
	}
	if decision.Entry != nil {
		interaction.EntryID = decision.Entry.ID
	}
	if err := services.SaveInteraction(ctx, interaction); err != nil {
		slog.Error("Failed to save interaction", "error", err)
	}
}

// handlePriceQuery resolves a price-path reply. "gas" goes to the gas
// oracle, everything else to the price provider. Provider failures are
// never shown raw to the user.
func handlePriceQuery(ctx context.Context, symbol string) string {
	if symbol == "gas" {
		gas, err := explorer.GasOracle(ctx)
		if err != nil {
			slog.Error("Gas oracle lookup failed", "error", err)
			return providerApology
		}
		return services.FormatGasQuote(gas)
	}

	quote, err := market.GetQuote(ctx, symbol)
	if err != nil {
		slog.Error("Price lookup failed", "error", err, "symbol", symbol)
		return providerApology
	}
	return services.FormatQuote(quote)
}
