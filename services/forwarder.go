package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"crypto-support-bot/models"
)

// Forwarder escalates messages to the human operator channel. A forward
// is persisted first, then pushed to the dashboard feed and the operator
// chat; the pushes are best effort with no exactly-once guarantee, the
// stored record is what operators can always fall back on.
type Forwarder struct {
	operatorChatID string
	telegram       *TelegramService
	ws             *WebSocketManager
}

// NewForwarder creates a forwarder. operatorChatID may be empty, in
// which case only the dashboard feed is notified.
func NewForwarder(operatorChatID string, telegram *TelegramService, ws *WebSocketManager) *Forwarder {
	return &Forwarder{
		operatorChatID: operatorChatID,
		telegram:       telegram,
		ws:             ws,
	}
}

// Forward escalates one message and returns the stored record
func (f *Forwarder) Forward(ctx context.Context, chatID, senderName, text string, priority models.Priority, matches []models.CategoryMatch) (*models.ForwardRecord, error) {
	record := &models.ForwardRecord{
		ForwardID:  uuid.NewString(),
		ChatID:     chatID,
		SenderName: senderName,
		Text:       text,
		Priority:   priority,
		CreatedAt:  time.Now(),
	}
	for _, m := range matches {
		record.Categories = append(record.Categories, m.Category)
		record.MatchedKeywords = append(record.MatchedKeywords, m.MatchedKeywords...)
	}

	if err := SaveForward(ctx, record); err != nil {
		return nil, fmt.Errorf("persist forward: %w", err)
	}

	f.ws.Broadcast(BroadcastMessage{
		Type: "message_forwarded",
		Data: record,
	})

	if f.operatorChatID != "" {
		if err := f.telegram.SendMessage(ctx, f.operatorChatID, formatForward(record)); err != nil {
			// The record is already persisted, operators can still find it
			// in the queue.
			slog.Error("Failed to notify operator channel",
				"error", err,
				"forwardID", record.ForwardID,
			)
		}
	}

	return record, nil
}

func formatForward(record *models.ForwardRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] Forwarded message from %s\n", strings.ToUpper(string(record.Priority)), senderLabel(record))
	if len(record.Categories) > 0 {
		cats := make([]string, len(record.Categories))
		for i, c := range record.Categories {
			cats[i] = string(c)
		}
		fmt.Fprintf(&b, "Categories: %s\n", strings.Join(cats, ", "))
	}
	if len(record.MatchedKeywords) > 0 {
		fmt.Fprintf(&b, "Matched: %s\n", strings.Join(record.MatchedKeywords, ", "))
	}
	fmt.Fprintf(&b, "\n%s", record.Text)
	return b.String()
}

func senderLabel(record *models.ForwardRecord) string {
	if record.SenderName != "" {
		return record.SenderName
	}
	return "chat " + record.ChatID
}
