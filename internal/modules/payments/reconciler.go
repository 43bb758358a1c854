package payments

import (
	"context"
	"log/slog"
	"time"

	"github.com/herdirudian/thelodgemember-sub002/internal/modules/bookings"
	"github.com/herdirudian/thelodgemember-sub002/internal/monitoring"
)

// EVoucherIssuer renders and e-mails the QR voucher for a paid ticket booking.
// Failures are the issuer's own; the reconciler only logs and counts them.
type EVoucherIssuer interface {
	IssueEVoucher(ctx context.Context, b bookings.TicketBooking, t *bookings.Ticket) error
}

// ReconcileResult is what the HTTP boundary gets. Every code path returns one
// of these; downstream errors never escape as panics.
type ReconcileResult struct {
	Success bool
	Payment *Payment
	Err     error

	// Duplicate marks a redelivered terminal event: acknowledged, no side
	// effects re-applied.
	Duplicate bool
	// NotifyErr is a failed e-voucher dispatch. The state transition stands;
	// callers must still ack the delivery.
	NotifyErr error
}

type Reconciler struct {
	store  Store
	issuer EVoucherIssuer
	logger *slog.Logger

	// notifyTimeout bounds the outbound mail call so a slow provider cannot
	// hold the webhook response past the gateway's retry window.
	notifyTimeout time.Duration
}

func NewReconciler(store Store, issuer EVoucherIssuer, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		store:         store,
		issuer:        issuer,
		logger:        logger,
		notifyTimeout: 10 * time.Second,
	}
}

// Reconcile applies one verified callback: look the payment up by external_id,
// apply the status transition to payment and booking in one transaction, then
// fire the e-voucher side effect for the paid-ticket branch.
func (r *Reconciler) Reconcile(ctx context.Context, ev CallbackPayload, raw []byte) ReconcileResult {
	p, err := r.store.FindPaymentByExternalID(ctx, ev.ExternalID)
	if err != nil {
		monitoring.TrackCallback(ev.Status, "rejected")
		r.logger.ErrorContext(ctx, "callback payment lookup failed",
			"external_id", ev.ExternalID, "status", ev.Status, "err", err)
		return ReconcileResult{Success: false, Err: err}
	}

	status, known := ParseStatus(ev.Status)
	if !known {
		// Archive for audit, change nothing. Unknown statuses must not corrupt
		// booking state, and the delivery is still acknowledged.
		if err := r.store.ArchivePayload(ctx, p.ID, p.ExternalID, ev.Status, ev.InvoiceID, raw); err != nil {
			monitoring.TrackCallback(ev.Status, "error")
			return ReconcileResult{Success: false, Payment: &p, Err: err}
		}
		monitoring.TrackCallback(ev.Status, "ignored")
		r.logger.WarnContext(ctx, "callback with unrecognized status archived",
			"external_id", p.ExternalID, "status", ev.Status)
		return ReconcileResult{Success: true, Payment: &p}
	}

	t := Transition{
		PaymentID:      p.ID,
		To:             status,
		InvoiceID:      ev.InvoiceID,
		PaymentMethod:  ev.PaymentMethod,
		PaymentChannel: ev.PaymentChannel,
		FailureCode:    ev.FailureCode,
		FailureMessage: ev.FailureMessage,
		Raw:            raw,
	}
	if status == StatusPaid {
		paidAt := ev.PaidTime(time.Now())
		t.PaidAt = &paidAt
	}

	out, err := r.store.ApplyTransition(ctx, t)
	if err != nil {
		monitoring.TrackCallback(ev.Status, "error")
		r.logger.ErrorContext(ctx, "callback transition failed",
			"external_id", p.ExternalID, "status", ev.Status, "err", err)
		return ReconcileResult{Success: false, Payment: &p, Err: err}
	}

	if out.AlreadyTerminal {
		monitoring.TrackCallback(ev.Status, "duplicate")
		r.logger.InfoContext(ctx, "duplicate terminal callback acknowledged",
			"external_id", p.ExternalID, "status", ev.Status, "payment_status", out.Payment.Status)
		return ReconcileResult{Success: true, Payment: &out.Payment, Duplicate: true}
	}

	res := ReconcileResult{Success: true, Payment: &out.Payment}

	if status == StatusPaid {
		switch {
		case out.Ticket != nil:
			res.NotifyErr = r.issueVoucher(ctx, *out.Ticket, out.TicketProduct)
		case out.Accommodation != nil:
			// Accommodation has no QR gate flow, so no e-voucher here.
		default:
			r.logger.WarnContext(ctx, "paid payment has no booking attached",
				"external_id", p.ExternalID, "payment_id", p.ID)
		}
	}

	monitoring.TrackCallback(ev.Status, "applied")
	r.logger.InfoContext(ctx, "callback applied",
		"external_id", p.ExternalID, "status", ev.Status)
	return res
}

func (r *Reconciler) issueVoucher(ctx context.Context, b bookings.TicketBooking, t *bookings.Ticket) error {
	if b.QRPayload == "" || b.FriendlyCode == "" {
		r.logger.WarnContext(ctx, "ticket booking has no voucher payload, skipping e-voucher",
			"booking_id", b.ID)
		return nil
	}

	nctx, cancel := context.WithTimeout(ctx, r.notifyTimeout)
	defer cancel()

	if err := r.issuer.IssueEVoucher(nctx, b, t); err != nil {
		// A mail outage never blocks payment confirmation: log, count, move on.
		monitoring.TrackEVoucherEmail("failed")
		r.logger.ErrorContext(ctx, "e-voucher dispatch failed",
			"booking_id", b.ID, "customer_email", b.CustomerEmail, "err", err)
		return err
	}

	monitoring.TrackEVoucherEmail("sent")
	r.logger.InfoContext(ctx, "e-voucher dispatched",
		"booking_id", b.ID, "friendly_code", b.FriendlyCode)
	return nil
}
