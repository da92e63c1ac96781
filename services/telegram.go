package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

const telegramAPI = "https://api.telegram.org"

// TelegramService sends outbound messages through the Telegram Bot API
type TelegramService struct {
	token   string
	baseURL string
	client  *http.Client
}

// NewTelegramService creates an outbound transport client
func NewTelegramService(token string) *TelegramService {
	return &TelegramService{
		token:   token,
		baseURL: telegramAPI,
		client:  &http.Client{},
	}
}

// SendMessage sends a text reply to a chat
func (s *TelegramService) SendMessage(ctx context.Context, chatID, text string) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", s.baseURL, s.token)

	payload := map[string]interface{}{
		"chat_id": chatID,
		"text":    text,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		slog.Error("Failed to send telegram message", "status", resp.StatusCode, "body", string(body))
		return fmt.Errorf("failed to send message: %s", resp.Status)
	}

	return nil
}
