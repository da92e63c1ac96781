package services

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
)

// WebSocket errors
var (
	ErrConnectionNotFound   = errors.New("connection not found")
	ErrConnectionBufferFull = errors.New("connection buffer full")
)

// WebSocketManager fans out live events to connected operator dashboards
type WebSocketManager struct {
	connections map[string]*WebSocketConnection
	mu          sync.RWMutex
	broadcast   chan BroadcastMessage
}

// WebSocketConnection represents a single operator connection
type WebSocketConnection struct {
	Conn     *websocket.Conn
	UserID   string
	Username string
	Send     chan []byte
}

// BroadcastMessage represents an event to broadcast to all operators
type BroadcastMessage struct {
	Type string
	Data interface{}
}

// MessagePayload is the wire structure of broadcast events
type MessagePayload struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp int64       `json:"timestamp"`
}

var wsManager *WebSocketManager
var once sync.Once

// GetWebSocketManager returns the singleton WebSocket manager
func GetWebSocketManager() *WebSocketManager {
	once.Do(func() {
		wsManager = &WebSocketManager{
			connections: make(map[string]*WebSocketConnection),
			broadcast:   make(chan BroadcastMessage, 100),
		}
		go wsManager.handleBroadcast()
	})
	return wsManager
}

// RegisterConnection registers a new operator connection
func (m *WebSocketManager) RegisterConnection(conn *WebSocketConnection) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.connections[conn.UserID] = conn

	slog.Info("WebSocket connection registered",
		"userID", conn.UserID,
		"totalConnections", len(m.connections))
}

// UnregisterConnection removes an operator connection
func (m *WebSocketManager) UnregisterConnection(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if conn, exists := m.connections[userID]; exists {
		close(conn.Send)
		delete(m.connections, userID)

		slog.Info("WebSocket connection unregistered",
			"userID", userID,
			"remainingConnections", len(m.connections))
	}
}

// Broadcast queues an event for all connected operators
func (m *WebSocketManager) Broadcast(message BroadcastMessage) {
	m.broadcast <- message
}

func (m *WebSocketManager) handleBroadcast() {
	for message := range m.broadcast {
		payload := MessagePayload{
			Type:      message.Type,
			Data:      message.Data,
			Timestamp: time.Now().Unix(),
		}

		jsonData, err := json.Marshal(payload)
		if err != nil {
			slog.Error("Failed to marshal WebSocket message", "error", err)
			continue
		}

		m.mu.RLock()
		for _, conn := range m.connections {
			select {
			case conn.Send <- jsonData:
				// Message sent successfully
			default:
				// Connection buffer full, skip
				slog.Warn("WebSocket connection buffer full", "userID", conn.UserID)
			}
		}
		m.mu.RUnlock()
	}
}

// SendToConnection sends a message to a specific operator
func (m *WebSocketManager) SendToConnection(userID string, data []byte) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if conn, exists := m.connections[userID]; exists {
		select {
		case conn.Send <- data:
			return nil
		default:
			return ErrConnectionBufferFull
		}
	}
	return ErrConnectionNotFound
}

// ConnectionCount returns the number of connected operators
func (m *WebSocketManager) ConnectionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.connections)
}
