package handler

import (
	"io"

	"attendance-bot/internal/response"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// The webhook endpoints always acknowledge with code 0 so the platform never
// retries a delivery; a retry would duplicate check-in side effects. Only a
// handler-level panic downgrades the body to code 500, still as HTTP 200.

// BotMessage handles POST /bot/message, the inbound text-message webhook.
func (s *Server) BotMessage(c *gin.Context) {
	defer func() {
		if r := recover(); r != nil {
			logrus.WithField("panic", r).Error("Panic while handling bot message")
			response.AckInternalError(c)
		}
	}()

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		logrus.WithError(err).Warn("Failed to read bot message body")
		response.Ack(c)
		return
	}

	s.Adapter.HandleMessage(body)
	response.Ack(c)
}

// BotCallback handles POST /bot/callback, the interactive-card button events.
func (s *Server) BotCallback(c *gin.Context) {
	defer func() {
		if r := recover(); r != nil {
			logrus.WithField("panic", r).Error("Panic while handling bot callback")
			response.AckInternalError(c)
		}
	}()

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		logrus.WithError(err).Warn("Failed to read bot callback body")
		response.Ack(c)
		return
	}

	s.Adapter.HandleCallback(body)
	response.Ack(c)
}
