package handler

import (
	"go-ticket-reservation/internal/payment"
	"go-ticket-reservation/internal/service"
	"go-ticket-reservation/pkg/logger"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// providerName keys the idempotency ledger; one engine, one provider.
const providerName = "payments"

// SignatureHeader carries the provider's HMAC over the raw body.
const SignatureHeader = "X-Webhook-Signature"

type WebhookHandler struct {
	settlementService service.SettlementService
	webhookSecret     string
}

func NewWebhookHandler(settlementService service.SettlementService, webhookSecret string) *WebhookHandler {
	return &WebhookHandler{
		settlementService: settlementService,
		webhookSecret:     webhookSecret,
	}
}

func (h *WebhookHandler) RegisterRoutes(r *gin.Engine) {
	r.POST("/api/v1/webhooks/payment", h.HandlePaymentWebhook)
}

// HandlePaymentWebhook acknowledges with 200 for everything it handled or
// deliberately absorbed, so the provider stops redelivering. Only transient
// infrastructure failure answers 503: nothing was committed, and the
// idempotency gate makes the redelivery safe.
func (h *WebhookHandler) HandlePaymentWebhook(c *gin.Context) {
	log := logger.WithComponent("webhook_handler")

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		log.Warn("failed to read webhook body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if !payment.VerifySignature(h.webhookSecret, body, c.GetHeader(SignatureHeader)) {
		log.Warn("webhook signature verification failed")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid signature"})
		return
	}

	outcome, err := h.settlementService.HandleEvent(c, providerName, body)
	if err != nil {
		log.Error("settlement failed, requesting redelivery", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Temporarily unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true, "outcome": outcome})
}
