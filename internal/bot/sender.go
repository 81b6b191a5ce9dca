package bot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"attendance-bot/internal/types"

	"github.com/sirupsen/logrus"
)

// Sender delivers outbound messages to the platform webhook. Delivery is
// fire-and-forget: bounded by a timeout, never retried, and failures are
// reported back only so callers can log them.
type Sender struct {
	webhookURL string
	client     *http.Client
}

// NewSender creates a Sender from the bot configuration.
func NewSender(configManager types.ConfigManager) *Sender {
	botConfig := configManager.GetBotConfig()
	return &Sender{
		webhookURL: botConfig.WebhookURL,
		client: &http.Client{
			Timeout: time.Duration(botConfig.SendTimeout) * time.Second,
		},
	}
}

type sendResult struct {
	Code    int    `json:"code"`
	Message string `json:"msg"`
}

// Send posts a message to the configured webhook. Success means the platform
// answered with code 0. An unset webhook URL drops the message silently;
// the config layer already warned about that at startup.
func (s *Sender) Send(message OutboundMessage) error {
	if s.webhookURL == "" {
		return nil
	}

	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("marshal outbound message: %w", err)
	}

	resp, err := s.client.Post(s.webhookURL, "application/json; charset=utf-8", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post outbound message: %w", err)
	}
	defer resp.Body.Close()

	var result sendResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode send response: %w", err)
	}
	if result.Code != 0 {
		return fmt.Errorf("platform rejected message: code=%d msg=%s", result.Code, result.Message)
	}
	return nil
}

// SendLogged sends a message and logs any failure. This is the form every
// inbound handler uses: outbound delivery must never fail the inbound
// response.
func (s *Sender) SendLogged(message OutboundMessage) {
	if err := s.Send(message); err != nil {
		logrus.WithError(err).WithField("msg_type", message.MsgType).Error("Failed to send outbound message")
	}
}
