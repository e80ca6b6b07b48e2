// Package webhook provides the inbound HTTP handlers: the Dialogflow
// fulfillment webhook and the Slack interactive-action callback.
package webhook

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/absencebot/absence-bot/internal/dialogflow"
	"github.com/absencebot/absence-bot/internal/metrics"
	"github.com/absencebot/absence-bot/internal/pipeline"
	"github.com/absencebot/absence-bot/pkg/logger"
)

// DialogflowConsumer advances the NLU dialogue one webhook call.
type DialogflowConsumer interface {
	HandleDialogflow(ctx context.Context, webhook dialogflow.Webhook) (dialogflow.Fulfillment, *pipeline.Terminal)
}

// DialogflowHandler handles fulfillment webhook requests.
type DialogflowHandler struct {
	service DialogflowConsumer
	log     *logger.Logger
}

// NewDialogflowHandler creates a new fulfillment webhook handler.
func NewDialogflowHandler(service DialogflowConsumer, log *logger.Logger) *DialogflowHandler {
	return &DialogflowHandler{service: service, log: log}
}

// Handle processes a Dialogflow fulfillment call.
// POST /dialogflow (basic auth).
func (h *DialogflowHandler) Handle(c *gin.Context) {
	started := time.Now()
	defer func() {
		metrics.WebhookDurationSeconds.WithLabelValues("dialogflow").Observe(time.Since(started).Seconds())
	}()

	var webhook dialogflow.Webhook
	if err := c.ShouldBindJSON(&webhook); err != nil {
		h.log.Warn().Err(err).Msg("Malformed Dialogflow webhook body")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook payload"})
		return
	}

	fulfillment, terminal := h.service.HandleDialogflow(c.Request.Context(), webhook)
	if terminal != nil {
		c.JSON(terminal.Status, terminal.Body)
		return
	}
	c.JSON(http.StatusOK, fulfillment)
}
