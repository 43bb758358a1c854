package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/herdirudian/thelodgemember-sub002/internal/http/middleware"
	"github.com/herdirudian/thelodgemember-sub002/internal/modules/payments"
	"github.com/herdirudian/thelodgemember-sub002/internal/shared/apperr"
)

type PaymentHandler struct {
	Logger     *slog.Logger
	Store      payments.Store
	Gateway    payments.Gateway
	Reconciler *payments.Reconciler
}

func NewPaymentHandler(logger *slog.Logger, store payments.Store, gw payments.Gateway, r *payments.Reconciler) *PaymentHandler {
	return &PaymentHandler{Logger: logger, Store: store, Gateway: gw, Reconciler: r}
}

// GET /api/payments/:externalID
// Polled by the frontend while the customer sits on the gateway redirect page.
func (h *PaymentHandler) GetByExternalID(c *gin.Context) {
	p, err := h.Store.FindPaymentByExternalID(c.Request.Context(), c.Param("externalID"))
	if err != nil {
		if errors.Is(err, payments.ErrPaymentNotFound) {
			middleware.Fail(c, apperr.NotFoundErr("Payment not found."))
			return
		}
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"external_id": p.ExternalID,
		"status":      p.Status,
		"amount":      p.Amount,
		"currency":    p.Currency,
		"invoice_url": p.InvoiceURL,
		"paid_at":     p.PaidAt,
	})
}

// POST /api/payments/:externalID/resync
// Pulls the invoice from the gateway and runs it through the same reconcile
// path as a webhook delivery. Covers deliveries lost while we were down.
func (h *PaymentHandler) Resync(c *gin.Context) {
	ctx := c.Request.Context()

	p, err := h.Store.FindPaymentByExternalID(ctx, c.Param("externalID"))
	if err != nil {
		if errors.Is(err, payments.ErrPaymentNotFound) {
			middleware.Fail(c, apperr.NotFoundErr("Payment not found."))
			return
		}
		middleware.Fail(c, apperr.Wrap(err))
		return
	}
	if p.InvoiceID == "" {
		middleware.Fail(c, apperr.ConflictErr("Payment has no gateway invoice."))
		return
	}

	inv, err := h.Gateway.GetInvoice(ctx, p.InvoiceID)
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	ev := payments.CallbackPayload{
		ExternalID: p.ExternalID,
		InvoiceID:  inv.ID,
		Status:     inv.Status,
	}
	raw, _ := json.Marshal(gin.H{
		"source":      "resync",
		"id":          inv.ID,
		"external_id": p.ExternalID,
		"status":      inv.Status,
		"amount":      inv.Amount,
	})

	res := h.Reconciler.Reconcile(ctx, ev, raw)
	if !res.Success {
		middleware.Fail(c, apperr.Wrap(res.Err))
		return
	}

	h.Logger.InfoContext(ctx, "payment resynced from gateway",
		"external_id", p.ExternalID, "gateway_status", inv.Status, "duplicate", res.Duplicate)

	c.JSON(http.StatusOK, gin.H{
		"external_id": p.ExternalID,
		"status":      res.Payment.Status,
		"duplicate":   res.Duplicate,
	})
}

// POST /api/payments/:externalID/expire
// Voids a still-payable invoice at the gateway. The local state change arrives
// through the EXPIRED callback, same as a natural expiry.
func (h *PaymentHandler) Expire(c *gin.Context) {
	ctx := c.Request.Context()

	p, err := h.Store.FindPaymentByExternalID(ctx, c.Param("externalID"))
	if err != nil {
		if errors.Is(err, payments.ErrPaymentNotFound) {
			middleware.Fail(c, apperr.NotFoundErr("Payment not found."))
			return
		}
		middleware.Fail(c, apperr.Wrap(err))
		return
	}
	if p.Status.Terminal() {
		middleware.Fail(c, apperr.ConflictErr("Payment is already settled."))
		return
	}
	if p.InvoiceID == "" {
		middleware.Fail(c, apperr.ConflictErr("Payment has no gateway invoice."))
		return
	}

	inv, err := h.Gateway.ExpireInvoice(ctx, p.InvoiceID)
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	h.Logger.InfoContext(ctx, "invoice expired at gateway",
		"external_id", p.ExternalID, "invoice_id", p.InvoiceID)

	c.JSON(http.StatusAccepted, gin.H{
		"external_id":    p.ExternalID,
		"gateway_status": inv.Status,
	})
}
