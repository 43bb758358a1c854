package payments

import (
	"encoding/json"
	"fmt"
	"time"
)

// CallbackPayload is the inbound webhook body. Only the listed fields are
// consumed; the full raw body is archived separately.
type CallbackPayload struct {
	ExternalID string `json:"external_id"`
	InvoiceID  string `json:"id"`
	Status     string `json:"status"`

	// Present when status == "PAID".
	PaidAt         string `json:"paid_at"`
	PaymentMethod  string `json:"payment_method"`
	PaymentChannel string `json:"payment_channel"`

	// Present when status == "FAILED".
	FailureCode    string `json:"failure_code"`
	FailureMessage string `json:"failure_message"`
}

func ParseCallback(raw []byte) (CallbackPayload, error) {
	var p CallbackPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return CallbackPayload{}, fmt.Errorf("parse callback: %w", err)
	}
	if p.ExternalID == "" {
		return CallbackPayload{}, fmt.Errorf("parse callback: missing external_id")
	}
	if p.Status == "" {
		return CallbackPayload{}, fmt.Errorf("parse callback: missing status")
	}
	return p, nil
}

// PaidTime returns the event's paid_at timestamp, falling back to now when the
// field is absent or unparseable.
func (p CallbackPayload) PaidTime(now time.Time) time.Time {
	if p.PaidAt == "" {
		return now
	}
	t, err := time.Parse(time.RFC3339, p.PaidAt)
	if err != nil {
		return now
	}
	return t
}
