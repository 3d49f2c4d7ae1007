package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"stridesync/internal/infrastructure/observability"
	"stridesync/internal/infrastructure/strava"
	"stridesync/internal/shared/logger"
)

// WebhookHandler terminates the provider's webhook surface. The POST
// path acknowledges before the provider's delivery timeout and defers all
// import work to the dispatcher; the response never reflects processing
// outcome.
type WebhookHandler struct {
	processor   eventProcessor
	dispatcher  taskDispatcher
	metrics     *observability.Metrics
	verifyToken string
	logger      logger.Interface
}

func NewWebhookHandler(
	processor eventProcessor,
	dispatcher taskDispatcher,
	metrics *observability.Metrics,
	verifyToken string,
	logger logger.Interface,
) *WebhookHandler {
	return &WebhookHandler{
		processor:   processor,
		dispatcher:  dispatcher,
		metrics:     metrics,
		verifyToken: verifyToken,
		logger:      logger,
	}
}

// Verify answers the provider's subscription handshake: echo the
// challenge only when the shared verification token matches.
func (h *WebhookHandler) Verify(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode != "subscribe" || token != h.verifyToken {
		h.logger.Warnw("webhook verification rejected", "mode", mode)
		c.JSON(http.StatusForbidden, gin.H{"error": "verification failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"hub.challenge": challenge})
}

// Receive acknowledges an event delivery and queues the import. A full
// queue or malformed body is logged and still acknowledged: the
// provider retries unacked deliveries aggressively and the periodic
// sweep covers anything dropped here.
func (h *WebhookHandler) Receive(c *gin.Context) {
	h.metrics.WebhookEventsReceived.Inc()

	var event strava.WebhookEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		h.logger.Warnw("malformed webhook payload", "error", err)
		h.metrics.WebhookEventsDropped.Inc()
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	err := h.dispatcher.Enqueue("webhook-event", func(ctx context.Context) {
		h.processor.Process(ctx, event)
	})
	if err != nil {
		h.logger.Warnw("webhook event dropped",
			"activity_id", event.ActivityID(),
			"error", err)
		h.metrics.WebhookEventsDropped.Inc()
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
