package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"catalogsync/internal/logger"
	"catalogsync/internal/models"
	"catalogsync/internal/syncer"
	"catalogsync/internal/webhook"
)

type WebhookHandler struct {
	syncer *syncer.Syncer
	logger *logger.Logger
}

func NewWebhookHandler(syncer *syncer.Syncer, logger *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		syncer: syncer,
		logger: logger,
	}
}

// Receive accepts one inbound callback for a connector. The raw body is kept
// byte-for-byte because signature verification runs over it, not over the
// decoded payload.
func (h *WebhookHandler) Receive(c *gin.Context) {
	id := c.Param("id")

	connector, err := h.syncer.Connector(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch connector"})
		return
	}
	if connector == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Connector not found"})
		return
	}

	// The source segment in the callback URL must match the connector row it
	// addresses; a mismatch means a misregistered callback.
	source := models.SourceType(strings.ToUpper(c.Param("source")))
	if source != connector.Type {
		c.JSON(http.StatusNotFound, gin.H{"error": "Connector not found"})
		return
	}

	adapter, err := h.syncer.Build(connector)
	if err != nil {
		h.logger.Error("webhook for misconfigured connector %s: %v", id, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read body"})
		return
	}

	headers := make(map[string]string, len(c.Request.Header))
	for k := range c.Request.Header {
		headers[k] = c.Request.Header.Get(k)
	}

	payload := &models.WebhookPayload{
		Event:       eventName(c, headers, body),
		Data:        body,
		Timestamp:   time.Now().UTC(),
		ConnectorID: id,
		Headers:     headers,
		RawBody:     body,
	}

	if err := adapter.HandleWebhook(c.Request.Context(), payload); err != nil {
		if errors.Is(err, webhook.ErrInvalidSignature) {
			h.logger.Warn("rejected webhook for connector %s: %v", id, err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid signature"})
			return
		}
		h.logger.Error("webhook processing failed for connector %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process webhook"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Webhook processed"})
}

// eventName resolves the event topic: Shopify carries it in a header, the
// other sources put it in the body, and a query parameter works for callbacks
// registered per event.
func eventName(c *gin.Context, headers map[string]string, body []byte) string {
	if event := c.Query("event"); event != "" {
		return event
	}
	if topic := headers["X-Shopify-Topic"]; topic != "" {
		return topic
	}

	var probe struct {
		Event  string `json:"event"`
		Evento string `json:"evento"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return ""
	}
	if probe.Event != "" {
		return probe.Event
	}
	return probe.Evento
}
