package payments

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/herdirudian/thelodgemember-sub002/internal/modules/bookings"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) FindPaymentByExternalID(ctx context.Context, externalID string) (Payment, error) {
	args := m.Called(ctx, externalID)
	return args.Get(0).(Payment), args.Error(1)
}

func (m *MockStore) ApplyTransition(ctx context.Context, t Transition) (TransitionOutcome, error) {
	args := m.Called(ctx, t)
	return args.Get(0).(TransitionOutcome), args.Error(1)
}

func (m *MockStore) ArchivePayload(ctx context.Context, paymentID, externalID, status, invoiceID string, raw []byte) error {
	args := m.Called(ctx, paymentID, externalID, status, invoiceID, raw)
	return args.Error(0)
}

type MockIssuer struct {
	mock.Mock
}

func (m *MockIssuer) IssueEVoucher(ctx context.Context, b bookings.TicketBooking, t *bookings.Ticket) error {
	args := m.Called(ctx, b, t)
	return args.Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func pendingPayment() Payment {
	return Payment{
		ID:         "pay-1",
		ExternalID: "lodge-abc",
		Amount:     150000,
		Currency:   Currency,
		Status:     StatusPending,
	}
}

func paidTicketOutcome(p Payment) TransitionOutcome {
	p.Status = StatusPaid
	return TransitionOutcome{
		Payment: p,
		Ticket: &bookings.TicketBooking{
			ID:            "tb-1",
			TicketID:      "t-1",
			PaymentID:     p.ID,
			CustomerName:  "Siti Rahma",
			CustomerEmail: "siti@example.com",
			Quantity:      2,
			Status:        bookings.StatusPaid,
			QRPayload:     "deadbeef",
			FriendlyCode:  "LDG-7K3M2P",
		},
		TicketProduct: &bookings.Ticket{ID: "t-1", Name: "Waterfall Day Pass", Price: 75000},
	}
}

func TestReconcile_UnknownExternalID(t *testing.T) {
	store := &MockStore{}
	issuer := &MockIssuer{}
	r := NewReconciler(store, issuer, testLogger())

	ctx := context.Background()
	store.On("FindPaymentByExternalID", ctx, "lodge-missing").
		Return(Payment{}, ErrPaymentNotFound).Once()

	res := r.Reconcile(ctx, CallbackPayload{ExternalID: "lodge-missing", Status: "PAID"}, []byte(`{}`))

	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, ErrPaymentNotFound)

	store.AssertExpectations(t)
	store.AssertNotCalled(t, "ApplyTransition", mock.Anything, mock.Anything)
	issuer.AssertNotCalled(t, "IssueEVoucher", mock.Anything, mock.Anything, mock.Anything)
}

func TestReconcile_PaidTicket_IssuesVoucherOnce(t *testing.T) {
	store := &MockStore{}
	issuer := &MockIssuer{}
	r := NewReconciler(store, issuer, testLogger())

	ctx := context.Background()
	p := pendingPayment()
	out := paidTicketOutcome(p)

	store.On("FindPaymentByExternalID", ctx, p.ExternalID).Return(p, nil).Once()
	store.On("ApplyTransition", ctx, mock.MatchedBy(func(tr Transition) bool {
		return tr.PaymentID == p.ID &&
			tr.To == StatusPaid &&
			tr.InvoiceID == "inv_1" &&
			tr.PaymentMethod == "BANK_TRANSFER" &&
			tr.PaidAt != nil
	})).Return(out, nil).Once()
	issuer.On("IssueEVoucher", mock.Anything, *out.Ticket, out.TicketProduct).Return(nil).Once()

	ev := CallbackPayload{
		ExternalID:     p.ExternalID,
		InvoiceID:      "inv_1",
		Status:         "PAID",
		PaidAt:         "2026-08-30T10:15:00Z",
		PaymentMethod:  "BANK_TRANSFER",
		PaymentChannel: "BCA",
	}
	res := r.Reconcile(ctx, ev, []byte(`{"status":"PAID"}`))

	assert.True(t, res.Success)
	assert.NoError(t, res.NotifyErr)
	assert.False(t, res.Duplicate)
	require.NotNil(t, res.Payment)
	assert.Equal(t, StatusPaid, res.Payment.Status)

	store.AssertExpectations(t)
	issuer.AssertExpectations(t)
	issuer.AssertNumberOfCalls(t, "IssueEVoucher", 1)
}

func TestReconcile_PaidAccommodation_NoVoucher(t *testing.T) {
	store := &MockStore{}
	issuer := &MockIssuer{}
	r := NewReconciler(store, issuer, testLogger())

	ctx := context.Background()
	p := pendingPayment()
	paid := p
	paid.Status = StatusPaid
	out := TransitionOutcome{
		Payment: paid,
		Accommodation: &bookings.AccommodationBooking{
			ID:        "ab-1",
			PaymentID: p.ID,
			Status:    bookings.StatusPaid,
		},
	}

	store.On("FindPaymentByExternalID", ctx, p.ExternalID).Return(p, nil).Once()
	store.On("ApplyTransition", ctx, mock.Anything).Return(out, nil).Once()

	res := r.Reconcile(ctx, CallbackPayload{ExternalID: p.ExternalID, Status: "PAID"}, []byte(`{}`))

	assert.True(t, res.Success)
	assert.NoError(t, res.NotifyErr)
	issuer.AssertNotCalled(t, "IssueEVoucher", mock.Anything, mock.Anything, mock.Anything)
}

func TestReconcile_StatusMapping(t *testing.T) {
	cases := []struct {
		status string
		to     Status
	}{
		{"EXPIRED", StatusExpired},
		{"FAILED", StatusFailed},
	}

	for _, tc := range cases {
		t.Run(tc.status, func(t *testing.T) {
			store := &MockStore{}
			issuer := &MockIssuer{}
			r := NewReconciler(store, issuer, testLogger())

			ctx := context.Background()
			p := pendingPayment()
			done := p
			done.Status = tc.to

			store.On("FindPaymentByExternalID", ctx, p.ExternalID).Return(p, nil).Once()
			store.On("ApplyTransition", ctx, mock.MatchedBy(func(tr Transition) bool {
				return tr.To == tc.to && tr.PaidAt == nil
			})).Return(TransitionOutcome{Payment: done}, nil).Once()

			res := r.Reconcile(ctx, CallbackPayload{ExternalID: p.ExternalID, Status: tc.status}, []byte(`{}`))

			assert.True(t, res.Success)
			store.AssertExpectations(t)
			issuer.AssertNotCalled(t, "IssueEVoucher", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestReconcile_UnknownStatus_ArchivesOnly(t *testing.T) {
	store := &MockStore{}
	issuer := &MockIssuer{}
	r := NewReconciler(store, issuer, testLogger())

	ctx := context.Background()
	p := pendingPayment()
	raw := []byte(`{"status":"REFUNDED"}`)

	store.On("FindPaymentByExternalID", ctx, p.ExternalID).Return(p, nil).Once()
	store.On("ArchivePayload", ctx, p.ID, p.ExternalID, "REFUNDED", "inv_1", raw).Return(nil).Once()

	res := r.Reconcile(ctx, CallbackPayload{ExternalID: p.ExternalID, InvoiceID: "inv_1", Status: "REFUNDED"}, raw)

	assert.True(t, res.Success, "unrecognized statuses are acknowledged")
	store.AssertExpectations(t)
	store.AssertNotCalled(t, "ApplyTransition", mock.Anything, mock.Anything)
	issuer.AssertNotCalled(t, "IssueEVoucher", mock.Anything, mock.Anything, mock.Anything)
}

func TestReconcile_DuplicateTerminal_NoResend(t *testing.T) {
	store := &MockStore{}
	issuer := &MockIssuer{}
	r := NewReconciler(store, issuer, testLogger())

	ctx := context.Background()
	p := pendingPayment()
	p.Status = StatusPaid

	store.On("FindPaymentByExternalID", ctx, p.ExternalID).Return(p, nil).Once()
	store.On("ApplyTransition", ctx, mock.Anything).
		Return(TransitionOutcome{Payment: p, AlreadyTerminal: true}, nil).Once()

	res := r.Reconcile(ctx, CallbackPayload{ExternalID: p.ExternalID, Status: "PAID"}, []byte(`{}`))

	assert.True(t, res.Success)
	assert.True(t, res.Duplicate)
	issuer.AssertNotCalled(t, "IssueEVoucher", mock.Anything, mock.Anything, mock.Anything)
}

func TestReconcile_IssuerFailure_DoesNotFailReconcile(t *testing.T) {
	store := &MockStore{}
	issuer := &MockIssuer{}
	r := NewReconciler(store, issuer, testLogger())

	ctx := context.Background()
	p := pendingPayment()
	out := paidTicketOutcome(p)

	store.On("FindPaymentByExternalID", ctx, p.ExternalID).Return(p, nil).Once()
	store.On("ApplyTransition", ctx, mock.Anything).Return(out, nil).Once()

	smtpErr := errors.New("smtp: connection refused")
	issuer.On("IssueEVoucher", mock.Anything, mock.Anything, mock.Anything).Return(smtpErr).Once()

	res := r.Reconcile(ctx, CallbackPayload{ExternalID: p.ExternalID, Status: "PAID"}, []byte(`{}`))

	assert.True(t, res.Success, "mail outage must not turn the delivery into a failure")
	assert.ErrorIs(t, res.NotifyErr, smtpErr)
	require.NotNil(t, res.Payment)
	assert.Equal(t, StatusPaid, res.Payment.Status)
}

func TestReconcile_TransitionError(t *testing.T) {
	store := &MockStore{}
	issuer := &MockIssuer{}
	r := NewReconciler(store, issuer, testLogger())

	ctx := context.Background()
	p := pendingPayment()
	dbErr := errors.New("deadlock found when trying to get lock")

	store.On("FindPaymentByExternalID", ctx, p.ExternalID).Return(p, nil).Once()
	store.On("ApplyTransition", ctx, mock.Anything).Return(TransitionOutcome{}, dbErr).Once()

	res := r.Reconcile(ctx, CallbackPayload{ExternalID: p.ExternalID, Status: "PAID"}, []byte(`{}`))

	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, dbErr)
	issuer.AssertNotCalled(t, "IssueEVoucher", mock.Anything, mock.Anything, mock.Anything)
}

func TestReconcile_MissingVoucherPayload_SkipsIssue(t *testing.T) {
	store := &MockStore{}
	issuer := &MockIssuer{}
	r := NewReconciler(store, issuer, testLogger())

	ctx := context.Background()
	p := pendingPayment()
	out := paidTicketOutcome(p)
	out.Ticket.QRPayload = ""

	store.On("FindPaymentByExternalID", ctx, p.ExternalID).Return(p, nil).Once()
	store.On("ApplyTransition", ctx, mock.Anything).Return(out, nil).Once()

	res := r.Reconcile(ctx, CallbackPayload{ExternalID: p.ExternalID, Status: "PAID"}, []byte(`{}`))

	assert.True(t, res.Success)
	assert.NoError(t, res.NotifyErr)
	issuer.AssertNotCalled(t, "IssueEVoucher", mock.Anything, mock.Anything, mock.Anything)
}

func TestBookingStatusFor(t *testing.T) {
	got, err := bookingStatusFor(StatusPaid)
	require.NoError(t, err)
	assert.Equal(t, bookings.StatusPaid, got)

	got, err = bookingStatusFor(StatusExpired)
	require.NoError(t, err)
	assert.Equal(t, bookings.StatusExpired, got)

	// A failed payment cancels the booking; bookings never carry "FAILED".
	got, err = bookingStatusFor(StatusFailed)
	require.NoError(t, err)
	assert.Equal(t, bookings.StatusCancelled, got)

	_, err = bookingStatusFor(StatusPending)
	assert.Error(t, err)
}
