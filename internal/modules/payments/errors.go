package payments

import "errors"

var (
	// ErrPaymentNotFound means the callback's external_id does not correspond to
	// any payment we issued. This is a configuration/data error and is not
	// retried internally.
	ErrPaymentNotFound = errors.New("payment not found")

	ErrInvoiceNotCreated = errors.New("gateway invoice not created")
)
