package payments

import (
	"context"
	"time"
)

type InvoiceItem struct {
	Name     string
	Quantity int
	Price    int64
}

type CreateInvoiceRequest struct {
	ExternalID  string
	Amount      int64
	Description string

	CustomerName  string
	CustomerEmail string
	CustomerPhone string

	SuccessRedirectURL string
	FailureRedirectURL string

	// DurationSeconds is how long the invoice stays payable.
	DurationSeconds int64
	Currency        string
	Items           []InvoiceItem
}

type Invoice struct {
	ID         string
	ExternalID string
	Status     string
	Amount     int64
	InvoiceURL string
	ExpiryDate time.Time
}

// Gateway is the narrow seam over the invoicing provider's SDK surface. The
// reconciler never talks to it; invoice creation and the resync/expire
// endpoints do.
type Gateway interface {
	CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (Invoice, error)
	GetInvoice(ctx context.Context, invoiceID string) (Invoice, error)
	ExpireInvoice(ctx context.Context, invoiceID string) (Invoice, error)
}
