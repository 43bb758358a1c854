package payments

import (
	"time"

	"gorm.io/datatypes"
)

// Currency is fixed by the gateway contract; amounts are whole IDR.
const Currency = "IDR"

// Status is the payment lifecycle state. PENDING is the only non-terminal
// state; once a payment reaches PAID, EXPIRED or FAILED it never transitions
// again.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusPaid    Status = "PAID"
	StatusExpired Status = "EXPIRED"
	StatusFailed  Status = "FAILED"
)

func (s Status) Terminal() bool {
	switch s {
	case StatusPaid, StatusExpired, StatusFailed:
		return true
	}
	return false
}

// ParseStatus maps a gateway status string onto the typed enum. ok is false
// for statuses this service does not recognize; those are archived but never
// applied.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusPaid:
		return StatusPaid, true
	case StatusExpired:
		return StatusExpired, true
	case StatusFailed:
		return StatusFailed, true
	}
	return "", false
}

type Payment struct {
	ID string `gorm:"type:char(36);primaryKey"`
	// ExternalID is chosen by us at invoice-creation time and echoed back by the
	// gateway on every callback; it is the join key for reconciliation.
	ExternalID string `gorm:"type:varchar(64);not null;uniqueIndex:ux_payments_external_id"`

	Amount   int64  `gorm:"not null"`
	Currency string `gorm:"type:char(3);not null"`
	Status   Status `gorm:"type:varchar(16);not null;index:ix_payments_status"`

	// Gateway identifiers, set once the invoice exists.
	InvoiceID  string `gorm:"type:varchar(128);index:ix_payments_invoice_id"`
	InvoiceURL string `gorm:"type:varchar(512)"`

	// Success-only fields.
	PaymentMethod  *string    `gorm:"type:varchar(64)"`
	PaymentChannel *string    `gorm:"type:varchar(64)"`
	PaidAt         *time.Time `gorm:"type:datetime(3)"`

	// Failure-only fields.
	FailureCode    *string `gorm:"type:varchar(64)"`
	FailureMessage *string `gorm:"type:varchar(255)"`

	// RawPayload keeps the last received callback body for audit.
	RawPayload datatypes.JSON `gorm:"type:json"`

	CreatedAt time.Time `gorm:"type:datetime(3);not null"`
	UpdatedAt time.Time `gorm:"type:datetime(3);not null"`
}

func (Payment) TableName() string { return "payments" }

// CallbackEvent is the audit record of one webhook delivery, written whether or
// not the delivery changed any state.
type CallbackEvent struct {
	ID         string         `gorm:"type:char(36);primaryKey"`
	ExternalID string         `gorm:"type:varchar(64);not null;index:ix_callback_events_external_id"`
	Status     string         `gorm:"type:varchar(32);not null"`
	InvoiceID  string         `gorm:"type:varchar(128)"`
	Payload    datatypes.JSON `gorm:"type:json;not null"`

	ReceivedAt   time.Time  `gorm:"type:datetime(3);not null"`
	ProcessedAt  *time.Time `gorm:"type:datetime(3)"`
	ProcessError *string    `gorm:"type:varchar(255)"`
}

func (CallbackEvent) TableName() string { return "callback_events" }
