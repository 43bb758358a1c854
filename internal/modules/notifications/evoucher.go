package notifications

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// EVoucherInput carries everything the e-voucher email shows: customer
// contact, product snapshot, totals and the QR artifact.
type EVoucherInput struct {
	CustomerName  string
	CustomerEmail string

	TicketName        string
	TicketDescription string
	TicketLocation    string
	TicketDuration    string
	TicketCategory    string
	TicketPrice       int64
	TicketImageURL    string

	Quantity    int
	TotalAmount int64
	VisitDate   time.Time

	FriendlyCode    string
	QRDataURL       string
	VerificationURL string
}

// SendEVoucher dispatches the e-voucher email for a paid ticket booking.
func SendEVoucher(ctx context.Context, s Sender, in EVoucherInput) error {
	if in.CustomerEmail == "" {
		return fmt.Errorf("evoucher: customer email required")
	}
	if in.QRDataURL == "" {
		return fmt.Errorf("evoucher: qr artifact required")
	}

	subject := fmt.Sprintf("Your E-Voucher %s - The Lodge Family", in.FriendlyCode)
	visit := in.VisitDate.Format("Monday, 2 January 2006")

	text := "Hi " + in.CustomerName + ",\n\n" +
		"Your payment is confirmed. Here is your e-voucher.\n\n" +
		"Ticket: " + in.TicketName + "\n" +
		"Location: " + in.TicketLocation + "\n" +
		"Visit date: " + visit + "\n" +
		fmt.Sprintf("Quantity: %d\n", in.Quantity) +
		"Total: " + FormatIDR(in.TotalAmount) + "\n" +
		"Voucher code: " + in.FriendlyCode + "\n\n" +
		"Show the QR code at the gate, or give the voucher code to our staff:\n" +
		in.VerificationURL + "\n\n" +
		"See you at the lodge!\nThe Lodge Family"

	var html strings.Builder
	html.WriteString(`
<html>
  <body style="font-family: sans-serif;">
    <h2>Your E-Voucher</h2>
    <p>Hi ` + in.CustomerName + `,</p>
    <p>Your payment is confirmed. Show this QR code at the gate.</p>
    <p><img src="` + in.QRDataURL + `" alt="e-voucher QR" width="256" height="256"/></p>
    <p><strong>Voucher code:</strong> ` + in.FriendlyCode + `</p>
    <table cellpadding="4">
      <tr><td><strong>Ticket</strong></td><td>` + in.TicketName + `</td></tr>`)
	if in.TicketCategory != "" {
		html.WriteString(`
      <tr><td><strong>Category</strong></td><td>` + in.TicketCategory + `</td></tr>`)
	}
	if in.TicketLocation != "" {
		html.WriteString(`
      <tr><td><strong>Location</strong></td><td>` + in.TicketLocation + `</td></tr>`)
	}
	if in.TicketDuration != "" {
		html.WriteString(`
      <tr><td><strong>Duration</strong></td><td>` + in.TicketDuration + `</td></tr>`)
	}
	html.WriteString(`
      <tr><td><strong>Visit date</strong></td><td>` + visit + `</td></tr>
      <tr><td><strong>Quantity</strong></td><td>` + fmt.Sprintf("%d", in.Quantity) + `</td></tr>
      <tr><td><strong>Price</strong></td><td>` + FormatIDR(in.TicketPrice) + `</td></tr>
      <tr><td><strong>Total</strong></td><td>` + FormatIDR(in.TotalAmount) + `</td></tr>
    </table>`)
	if in.TicketDescription != "" {
		html.WriteString(`
    <p>` + in.TicketDescription + `</p>`)
	}
	if in.TicketImageURL != "" {
		html.WriteString(`
    <p><img src="` + in.TicketImageURL + `" alt="` + in.TicketName + `" width="320"/></p>`)
	}
	html.WriteString(`
    <p>See you at the lodge!</p>
    <p>The Lodge Family</p>
  </body>
</html>
`)

	return s.Send(ctx, Message{
		To:      in.CustomerEmail,
		ToName:  in.CustomerName,
		Subject: subject,
		HTML:    html.String(),
		Text:    text,
	})
}

// FormatIDR renders a whole-rupiah amount with dot thousand separators,
// e.g. 150000 -> "Rp 150.000".
func FormatIDR(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	s := fmt.Sprintf("%d", amount)
	var b strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(c)
	}
	out := "Rp " + b.String()
	if neg {
		out = "-" + out
	}
	return out
}
