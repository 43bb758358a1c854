package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/herdirudian/thelodgemember-sub002/internal/http/middleware"
	"github.com/herdirudian/thelodgemember-sub002/internal/modules/bookings"
	"github.com/herdirudian/thelodgemember-sub002/internal/shared/apperr"
)

type VoucherHandler struct {
	Logger *slog.Logger
	Repo   *bookings.Repo
}

func NewVoucherHandler(logger *slog.Logger, repo *bookings.Repo) *VoucherHandler {
	return &VoucherHandler{Logger: logger, Repo: repo}
}

// GET /api/vouchers/:code/verify
// The gate scanner hits this with the QR payload hash; staff can also type the
// friendly code. Only a PAID booking verifies, and only the first scan counts.
func (h *VoucherHandler) Verify(c *gin.Context) {
	ctx := c.Request.Context()
	code := c.Param("code")

	b, err := h.Repo.FindTicketBookingByCode(ctx, code)
	if err != nil {
		if errors.Is(err, bookings.ErrNotFound) {
			middleware.Fail(c, apperr.NotFoundErr("Voucher not found."))
			return
		}
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	if b.Status != bookings.StatusPaid {
		c.JSON(http.StatusConflict, gin.H{
			"valid":  false,
			"reason": "booking not paid",
			"status": b.Status,
		})
		return
	}

	already, err := h.Repo.MarkTicketVerified(ctx, b.ID)
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	h.Logger.InfoContext(ctx, "voucher scanned",
		"booking_id", b.ID, "friendly_code", b.FriendlyCode, "already_used", already)

	c.JSON(http.StatusOK, gin.H{
		"valid":         true,
		"already_used":  already,
		"friendly_code": b.FriendlyCode,
		"customer_name": b.CustomerName,
		"quantity":      b.Quantity,
		"visit_date":    b.VisitDate.Format("2006-01-02"),
	})
}
