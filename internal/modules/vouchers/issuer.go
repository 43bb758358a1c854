package vouchers

import (
	"context"

	"github.com/herdirudian/thelodgemember-sub002/internal/modules/bookings"
	"github.com/herdirudian/thelodgemember-sub002/internal/modules/notifications"
)

// Issuer builds the e-voucher artifact and hands it to the notification
// sender. It satisfies the reconciler's issuer seam.
type Issuer struct {
	builder *Builder
	sender  notifications.Sender
}

func NewIssuer(builder *Builder, sender notifications.Sender) *Issuer {
	return &Issuer{builder: builder, sender: sender}
}

func (i *Issuer) IssueEVoucher(ctx context.Context, b bookings.TicketBooking, t *bookings.Ticket) error {
	v, err := i.builder.Build(ctx, b.QRPayload, b.FriendlyCode)
	if err != nil {
		return err
	}

	in := notifications.EVoucherInput{
		CustomerName:    b.CustomerName,
		CustomerEmail:   b.CustomerEmail,
		Quantity:        b.Quantity,
		TotalAmount:     b.TotalAmount,
		VisitDate:       b.VisitDate,
		FriendlyCode:    v.FriendlyCode,
		QRDataURL:       v.QRDataURL,
		VerificationURL: v.VerificationURL,
	}
	if t != nil {
		in.TicketName = t.Name
		in.TicketDescription = t.Description
		in.TicketLocation = t.Location
		in.TicketDuration = t.Duration
		in.TicketCategory = t.Category
		in.TicketPrice = t.Price
		in.TicketImageURL = t.ImageURL
	}

	return notifications.SendEVoucher(ctx, i.sender, in)
}
