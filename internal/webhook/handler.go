// Package webhook receives inbound message events from the session gateway
// and feeds them to the inbound queue.
package webhook

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/siskadev/siska-bot/internal/domain/chat"
)

// Enqueuer accepts inbound messages for serialized processing
type Enqueuer interface {
	Enqueue(msg chat.Message) error
}

// Handler handles webhook requests
type Handler struct {
	verifier *Verifier
	queue    Enqueuer
	logger   *zap.Logger
}

// NewHandler creates a new webhook handler
func NewHandler(verifier *Verifier, queue Enqueuer, logger *zap.Logger) *Handler {
	return &Handler{
		verifier: verifier,
		queue:    queue,
		logger:   logger,
	}
}

// messageEvent is the gateway's inbound event payload
type messageEvent struct {
	From       string `json:"from"`
	Body       string `json:"body"`
	IsGroup    bool   `json:"is_group"`
	QuotedID   string `json:"quoted_message_id"`
	MediaRef   string `json:"media_ref"`
	NotifyName string `json:"notify_name"`
}

// Handle processes one inbound message event
func (h *Handler) Handle(c *gin.Context) {
	if !h.verifier.VerifyToken(c.GetHeader("X-Gateway-Token")) {
		h.logger.Warn("Rejected webhook with bad token",
			zap.String("ip", c.ClientIP()))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.logger.Error("Failed to read request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	timestamp := c.GetHeader("X-Gateway-Timestamp")
	nonce := c.GetHeader("X-Gateway-Nonce")
	signature := c.GetHeader("X-Gateway-Signature")
	if !h.verifier.VerifySignature(timestamp, nonce, signature, string(body)) {
		h.logger.Warn("Rejected webhook with bad signature",
			zap.String("ip", c.ClientIP()))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	var event messageEvent
	if err := json.Unmarshal(body, &event); err != nil {
		h.logger.Error("Failed to parse message event", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event payload"})
		return
	}
	if event.From == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from is required"})
		return
	}

	msg := chat.Message{
		From:       chat.ParticipantID(event.From),
		Body:       event.Body,
		IsGroup:    event.IsGroup,
		QuotedID:   event.QuotedID,
		MediaRef:   event.MediaRef,
		NotifyName: event.NotifyName,
	}

	if err := h.queue.Enqueue(msg); err != nil {
		h.logger.Error("Failed to enqueue message",
			zap.String("from", event.From),
			zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queue full"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "queued"})
}
