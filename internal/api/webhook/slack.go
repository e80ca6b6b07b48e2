package webhook

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/absencebot/absence-bot/internal/metrics"
	"github.com/absencebot/absence-bot/internal/pipeline"
	"github.com/absencebot/absence-bot/internal/slack"
	"github.com/absencebot/absence-bot/pkg/logger"
)

// SlackConsumer carries one reviewer decision through the approval flow.
type SlackConsumer interface {
	HandleInteraction(ctx context.Context, action slack.InteractiveMessageAction) (slack.Fallback, *pipeline.Terminal)
}

const (
	signatureFailedText = "Sorry, I can not verify your request. Please try again."
	payloadFailedText   = "Sorry, can't decode absence payload data. Please try again."
)

// SlackHandler handles interactive-action callbacks. Requests are authenticated
// by the v0 signature scheme, so the raw body must be read before any form
// parsing touches it.
type SlackHandler struct {
	service       SlackConsumer
	signingSecret string
	log           *logger.Logger
}

// NewSlackHandler creates a new interactive-action handler.
func NewSlackHandler(service SlackConsumer, signingSecret string, log *logger.Logger) *SlackHandler {
	return &SlackHandler{service: service, signingSecret: signingSecret, log: log}
}

// Handle processes a Slack interactive-action callback.
// POST /slack.
func (h *SlackHandler) Handle(c *gin.Context) {
	started := time.Now()
	defer func() {
		metrics.WebhookDurationSeconds.WithLabelValues("slack").Observe(time.Since(started).Seconds())
	}()

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read interactive-action body")
		c.JSON(http.StatusInternalServerError, slack.NewErrorResponse(signatureFailedText))
		return
	}

	timestamp := c.GetHeader(slack.TimestampHeader)
	provided := c.GetHeader(slack.SignatureHeader)
	if !slack.VerifySignature(h.signingSecret, timestamp, body, provided) {
		h.log.Warn().Str("timestamp", timestamp).Msg("Rejected interactive action with bad signature")
		c.JSON(http.StatusUnprocessableEntity, slack.NewErrorResponse(signatureFailedText))
		return
	}

	form, err := url.ParseQuery(string(body))
	if err != nil {
		h.log.Warn().Err(err).Msg("Malformed interactive-action form body")
		c.JSON(http.StatusUnprocessableEntity, slack.NewErrorResponse(payloadFailedText))
		return
	}

	action, err := slack.DecodeInteractiveAction([]byte(form.Get("payload")))
	if err != nil {
		h.log.Warn().Err(err).Msg("Malformed interactive-action payload")
		c.JSON(http.StatusUnprocessableEntity, slack.NewErrorResponse(payloadFailedText))
		return
	}

	fallback, terminal := h.service.HandleInteraction(c.Request.Context(), action)
	if terminal != nil {
		c.JSON(terminal.Status, terminal.Body)
		return
	}
	c.JSON(http.StatusOK, fallback)
}
