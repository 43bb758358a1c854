package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	callbackEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_callback_events_total",
			Help: "Inbound payment callback deliveries by status and outcome",
		},
		[]string{"status", "result"},
	)

	evoucherEmails = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evoucher_emails_total",
			Help: "E-voucher email dispatch attempts by outcome",
		},
		[]string{"result"},
	)

	invoiceRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_invoice_requests_total",
			Help: "Outbound invoice creation calls by outcome",
		},
		[]string{"result"},
	)
)

// TrackCallback records one webhook delivery. result is one of
// applied|duplicate|ignored|rejected|error.
func TrackCallback(status, result string) {
	callbackEvents.WithLabelValues(status, result).Inc()
}

// TrackEVoucherEmail records one e-voucher dispatch attempt (sent|failed).
func TrackEVoucherEmail(result string) {
	evoucherEmails.WithLabelValues(result).Inc()
}

// TrackInvoiceRequest records one gateway invoice call (ok|error).
func TrackInvoiceRequest(result string) {
	invoiceRequests.WithLabelValues(result).Inc()
}
