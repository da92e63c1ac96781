package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"crypto-support-bot/models"
	"crypto-support-bot/services"
)

// WebSocketMessage represents an incoming WebSocket message
type WebSocketMessage struct {
	Type    string          `json:"type"`
	ChatID  string          `json:"chat_id,omitempty"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// WebSocketUpgrade upgrades HTTP connection to WebSocket
func WebSocketUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		c.Locals("allowed", true)
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// HandleWebSocket handles dashboard WebSocket connections
func HandleWebSocket(c *websocket.Conn) {
	// Set by the auth middleware from the session
	userID, _ := c.Locals("user_id").(string)
	username, _ := c.Locals("username").(string)

	if userID == "" {
		userID = uuid.New().String()
	}

	conn := &services.WebSocketConnection{
		Conn:     c,
		UserID:   userID,
		Username: username,
		Send:     make(chan []byte, 256),
	}

	wsManager := services.GetWebSocketManager()
	wsManager.RegisterConnection(conn)
	defer wsManager.UnregisterConnection(userID)

	slog.Info("WebSocket connection established", "userID", userID, "username", username)

	welcomeMsg := map[string]interface{}{
		"type":    "connected",
		"message": "WebSocket connection established",
		"user_id": userID,
	}
	if welcomeData, err := json.Marshal(welcomeMsg); err == nil {
		c.WriteMessage(websocket.TextMessage, welcomeData)
	}

	go handleWebSocketSend(conn)

	handleWebSocketReceive(conn)
}

// handleWebSocketSend handles sending messages to the WebSocket client
func handleWebSocketSend(conn *services.WebSocketConnection) {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		conn.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			conn.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// Channel closed
				conn.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := conn.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				slog.Error("Failed to write WebSocket message", "error", err)
				return
			}

		case <-ticker.C:
			// Send ping to keep connection alive
			conn.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleWebSocketReceive handles receiving messages from the WebSocket client
func handleWebSocketReceive(conn *services.WebSocketConnection) {
	defer func() {
		conn.Conn.Close()
	}()

	conn.Conn.SetReadLimit(512 * 1024) // 512KB max message size
	conn.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.Conn.SetPongHandler(func(string) error {
		conn.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, messageBytes, err := conn.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("WebSocket read error", "error", err)
			}
			break
		}

		conn.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))

		var msg WebSocketMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			slog.Error("Failed to parse WebSocket message", "error", err)
			continue
		}

		switch msg.Type {
		case "ping":
			pongMsg := map[string]string{"type": "pong"}
			if pongData, err := json.Marshal(pongMsg); err == nil {
				conn.Send <- pongData
			}

		case "send_message":
			// Operator replying to a customer from the dashboard
			handleOperatorMessage(conn, msg)

		default:
			slog.Warn("Unknown WebSocket message type", "type", msg.Type, "userID", conn.UserID)
		}
	}
}

// handleOperatorMessage relays an operator reply to the customer chat.
// The chat must already be marked human-handled.
func handleOperatorMessage(conn *services.WebSocketConnection, msg WebSocketMessage) {
	if msg.ChatID == "" || msg.Message == "" {
		sendWebSocketError(conn, "Missing required fields: chat_id and message")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	customer, err := services.GetCustomer(ctx, msg.ChatID)
	if err != nil || customer == nil {
		sendWebSocketError(conn, "Customer not found")
		return
	}

	if !customer.Stop {
		sendWebSocketError(conn, "Chat is not marked for human handling")
		return
	}

	if err := telegram.SendMessage(ctx, msg.ChatID, msg.Message); err != nil {
		slog.Error("Failed to send operator message", "error", err, "chatID", msg.ChatID)
		sendWebSocketError(conn, "Failed to deliver message to customer")
		return
	}

	messageDoc := &models.Message{
		ChatID:     msg.ChatID,
		SenderID:   conn.UserID,
		SenderName: conn.Username,
		Text:       msg.Message,
		IsBot:      false,
		IsHuman:    true,
		Timestamp:  time.Now(),
	}
	if err := services.SaveMessage(ctx, messageDoc); err != nil {
		slog.Error("Failed to save operator message", "error", err)
	}

	successMsg := map[string]interface{}{
		"type":      "message_sent",
		"chat_id":   msg.ChatID,
		"message":   msg.Message,
		"timestamp": time.Now().Unix(),
	}
	if successData, err := json.Marshal(successMsg); err == nil {
		conn.Send <- successData
	}

	services.GetWebSocketManager().Broadcast(services.BroadcastMessage{
		Type: "new_message",
		Data: map[string]interface{}{
			"chat_id":    msg.ChatID,
			"text":       msg.Message,
			"is_bot":     false,
			"is_human":   true,
			"agent_id":   conn.UserID,
			"agent_name": conn.Username,
			"timestamp":  time.Now().Unix(),
		},
	})

	slog.Info("Operator message delivered", "chatID", msg.ChatID, "userID", conn.UserID)
}

// sendWebSocketError sends an error message to the WebSocket client
func sendWebSocketError(conn *services.WebSocketConnection, errorMessage string) {
	errorMsg := map[string]string{
		"type":  "error",
		"error": errorMessage,
	}
	if errorData, err := json.Marshal(errorMsg); err == nil {
		conn.Send <- errorData
	}
}
