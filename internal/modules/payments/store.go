package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/herdirudian/thelodgemember-sub002/internal/modules/bookings"
)

// Transition is one terminal status change derived from a verified callback.
type Transition struct {
	PaymentID string
	To        Status
	InvoiceID string

	// PAID fields.
	PaidAt         *time.Time
	PaymentMethod  string
	PaymentChannel string

	// FAILED fields.
	FailureCode    string
	FailureMessage string

	Raw []byte
}

// TransitionOutcome reports what the store applied. At most one of Ticket and
// Accommodation is set; both nil means the payment has no booking attached.
type TransitionOutcome struct {
	Payment Payment

	// AlreadyTerminal is true when the payment had reached a terminal status
	// before this delivery: the payload was archived and nothing else changed.
	AlreadyTerminal bool

	Ticket        *bookings.TicketBooking
	TicketProduct *bookings.Ticket
	Accommodation *bookings.AccommodationBooking
}

// Store is what the reconciler needs from persistence. The gorm implementation
// applies each transition atomically; tests substitute a mock.
type Store interface {
	FindPaymentByExternalID(ctx context.Context, externalID string) (Payment, error)
	ApplyTransition(ctx context.Context, t Transition) (TransitionOutcome, error)
	// ArchivePayload records a delivery that carried an unrecognized status:
	// audit row plus raw payload on the payment, no status change anywhere.
	ArchivePayload(ctx context.Context, paymentID, externalID, status, invoiceID string, raw []byte) error
}

type GormStore struct{ db *gorm.DB }

func NewGormStore(db *gorm.DB) *GormStore { return &GormStore{db: db} }

func (s *GormStore) FindPaymentByExternalID(ctx context.Context, externalID string) (Payment, error) {
	var p Payment
	if err := s.db.WithContext(ctx).First(&p, "external_id = ?", externalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Payment{}, ErrPaymentNotFound
		}
		return Payment{}, err
	}
	return p, nil
}

// bookingStatusFor maps a terminal payment status onto the booking vocabulary.
// FAILED maps to CANCELLED, not "FAILED": bookings never carry that status.
func bookingStatusFor(to Status) (string, error) {
	switch to {
	case StatusPaid:
		return bookings.StatusPaid, nil
	case StatusExpired:
		return bookings.StatusExpired, nil
	case StatusFailed:
		return bookings.StatusCancelled, nil
	case StatusPending:
		return "", fmt.Errorf("no booking status for %s", to)
	}
	return "", fmt.Errorf("no booking status for %s", to)
}

func (s *GormStore) ApplyTransition(ctx context.Context, t Transition) (TransitionOutcome, error) {
	var out TransitionOutcome

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		ev := CallbackEvent{
			ID:         uuid.NewString(),
			ExternalID: "",
			Status:     string(t.To),
			InvoiceID:  t.InvoiceID,
			Payload:    datatypes.JSON(t.Raw),
			ReceivedAt: now,
		}

		// Row lock serializes concurrent deliveries for the same payment.
		var p Payment
		if err := tx.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&p, "id = ?", t.PaymentID).Error; err != nil {
			return err
		}
		ev.ExternalID = p.ExternalID

		// Terminal states are monotonic: keep the payload for audit, touch
		// nothing else. The caller must not re-run side effects.
		if p.Status.Terminal() {
			if err := tx.WithContext(ctx).Model(&Payment{}).
				Where("id = ?", p.ID).
				Updates(map[string]any{"raw_payload": datatypes.JSON(t.Raw), "updated_at": now}).Error; err != nil {
				return err
			}
			out.Payment = p
			out.AlreadyTerminal = true
			note := "duplicate terminal delivery"
			ev.ProcessError = &note
			processed := now
			ev.ProcessedAt = &processed
			return tx.WithContext(ctx).Create(&ev).Error
		}

		updates := map[string]any{
			"status":      t.To,
			"raw_payload": datatypes.JSON(t.Raw),
			"updated_at":  now,
		}
		if t.InvoiceID != "" {
			updates["invoice_id"] = t.InvoiceID
		}

		switch t.To {
		case StatusPaid:
			paidAt := now
			if t.PaidAt != nil {
				paidAt = *t.PaidAt
			}
			updates["paid_at"] = &paidAt
			if t.PaymentMethod != "" {
				updates["payment_method"] = t.PaymentMethod
			}
			if t.PaymentChannel != "" {
				updates["payment_channel"] = t.PaymentChannel
			}
		case StatusFailed:
			if t.FailureCode != "" {
				updates["failure_code"] = t.FailureCode
			}
			if t.FailureMessage != "" {
				updates["failure_message"] = t.FailureMessage
			}
		case StatusExpired:
			// no extra fields
		case StatusPending:
			return fmt.Errorf("apply transition: %s is not a terminal status", t.To)
		}

		if err := tx.WithContext(ctx).Model(&Payment{}).
			Where("id = ?", p.ID).
			Updates(updates).Error; err != nil {
			return err
		}

		bStatus, err := bookingStatusFor(t.To)
		if err != nil {
			return err
		}

		// A payment references exactly one booking, ticket or accommodation.
		var tb bookings.TicketBooking
		terr := tx.WithContext(ctx).First(&tb, "payment_id = ?", p.ID).Error
		switch {
		case terr == nil:
			if err := tx.WithContext(ctx).Model(&bookings.TicketBooking{}).
				Where("id = ?", tb.ID).
				Updates(map[string]any{"status": bStatus, "updated_at": now}).Error; err != nil {
				return err
			}
			tb.Status = bStatus
			out.Ticket = &tb

			var product bookings.Ticket
			if err := tx.WithContext(ctx).First(&product, "id = ?", tb.TicketID).Error; err == nil {
				out.TicketProduct = &product
			}

		case errors.Is(terr, gorm.ErrRecordNotFound):
			var ab bookings.AccommodationBooking
			aerr := tx.WithContext(ctx).First(&ab, "payment_id = ?", p.ID).Error
			if aerr == nil {
				if err := tx.WithContext(ctx).Model(&bookings.AccommodationBooking{}).
					Where("id = ?", ab.ID).
					Updates(map[string]any{"status": bStatus, "updated_at": now}).Error; err != nil {
					return err
				}
				ab.Status = bStatus
				out.Accommodation = &ab
			} else if !errors.Is(aerr, gorm.ErrRecordNotFound) {
				return aerr
			}
			// neither found: payment without booking, caller logs it

		default:
			return terr
		}

		if err := tx.WithContext(ctx).First(&out.Payment, "id = ?", p.ID).Error; err != nil {
			return err
		}

		processed := time.Now()
		ev.ProcessedAt = &processed
		return tx.WithContext(ctx).Create(&ev).Error
	})
	if err != nil {
		return TransitionOutcome{}, err
	}

	return out, nil
}

func (s *GormStore) ArchivePayload(ctx context.Context, paymentID, externalID, status, invoiceID string, raw []byte) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		if err := tx.WithContext(ctx).Model(&Payment{}).
			Where("id = ?", paymentID).
			Updates(map[string]any{"raw_payload": datatypes.JSON(raw), "updated_at": now}).Error; err != nil {
			return err
		}

		note := "ignored: unrecognized status"
		return tx.WithContext(ctx).Create(&CallbackEvent{
			ID:           uuid.NewString(),
			ExternalID:   externalID,
			Status:       status,
			InvoiceID:    invoiceID,
			Payload:      datatypes.JSON(raw),
			ReceivedAt:   now,
			ProcessedAt:  &now,
			ProcessError: &note,
		}).Error
	})
}
