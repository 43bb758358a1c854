package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/herdirudian/thelodgemember-sub002/internal/modules/payments"
)

type WebhookHandler struct {
	Logger         *slog.Logger
	Reconciler     *payments.Reconciler
	CallbackSecret string
}

func NewWebhookHandler(logger *slog.Logger, r *payments.Reconciler, callbackSecret string) *WebhookHandler {
	return &WebhookHandler{Logger: logger, Reconciler: r, CallbackSecret: callbackSecret}
}

const headerCallbackSignature = "X-Callback-Signature"

// POST /webhooks/payments
// Body is raw JSON; the signature covers the unparsed bytes, so the check runs
// before any decoding or state read.
func (h *WebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	if !payments.VerifySignature(body, c.GetHeader(headerCallbackSignature), h.CallbackSecret) {
		h.Logger.Warn("callback signature rejected", "client_ip", c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "invalid signature"})
		return
	}

	ev, err := payments.ParseCallback(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid payload"})
		return
	}

	res := h.Reconciler.Reconcile(c.Request.Context(), ev, body)
	if !res.Success {
		if errors.Is(res.Err, payments.ErrPaymentNotFound) {
			// Data/config error on our side; retrying the delivery won't help.
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "unknown external_id"})
			return
		}
		// 500 so the gateway retries the delivery.
		h.Logger.Error("callback apply failed", "external_id", ev.ExternalID, "status", ev.Status, "err", res.Err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "duplicate": res.Duplicate})
}
