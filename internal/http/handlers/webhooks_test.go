package handlers

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/herdirudian/thelodgemember-sub002/internal/modules/bookings"
	"github.com/herdirudian/thelodgemember-sub002/internal/modules/payments"
)

type stubStore struct {
	mock.Mock
}

func (m *stubStore) FindPaymentByExternalID(ctx context.Context, externalID string) (payments.Payment, error) {
	args := m.Called(ctx, externalID)
	return args.Get(0).(payments.Payment), args.Error(1)
}

func (m *stubStore) ApplyTransition(ctx context.Context, t payments.Transition) (payments.TransitionOutcome, error) {
	args := m.Called(ctx, t)
	return args.Get(0).(payments.TransitionOutcome), args.Error(1)
}

func (m *stubStore) ArchivePayload(ctx context.Context, paymentID, externalID, status, invoiceID string, raw []byte) error {
	args := m.Called(ctx, paymentID, externalID, status, invoiceID, raw)
	return args.Error(0)
}

type stubIssuer struct {
	mock.Mock
}

func (m *stubIssuer) IssueEVoucher(ctx context.Context, b bookings.TicketBooking, t *bookings.Ticket) error {
	args := m.Called(ctx, b, t)
	return args.Error(0)
}

const testSecret = "whsec_test_123"

func signBody(body []byte) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func webhookRouter(store payments.Store, issuer payments.EVoucherIssuer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	h := NewWebhookHandler(logger, payments.NewReconciler(store, issuer, logger), testSecret)

	r := gin.New()
	r.POST("/webhooks/payments", h.Handle)
	return r
}

func postCallback(t *testing.T, r *gin.Engine, body []byte, sig string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payments", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if sig != "" {
		req.Header.Set("X-Callback-Signature", sig)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWebhook_RejectsBadSignature(t *testing.T) {
	store := &stubStore{}
	r := webhookRouter(store, &stubIssuer{})

	body := []byte(`{"external_id":"lodge-abc","status":"PAID"}`)

	w := postCallback(t, r, body, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code, "missing signature")

	w = postCallback(t, r, body, "deadbeef")
	assert.Equal(t, http.StatusUnauthorized, w.Code, "wrong signature")

	// Signature over different bytes than the delivered body.
	w = postCallback(t, r, body, signBody([]byte(`{"external_id":"lodge-abc","status":"FAILED"}`)))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	store.AssertNotCalled(t, "FindPaymentByExternalID", mock.Anything, mock.Anything)
}

func TestWebhook_RejectsMalformedPayload(t *testing.T) {
	store := &stubStore{}
	r := webhookRouter(store, &stubIssuer{})

	// Valid signature, invalid payload: signature check runs first and passes.
	body := []byte(`{"status":"PAID"}`)
	w := postCallback(t, r, body, signBody(body))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	store.AssertNotCalled(t, "FindPaymentByExternalID", mock.Anything, mock.Anything)
}

func TestWebhook_UnknownExternalID(t *testing.T) {
	store := &stubStore{}
	r := webhookRouter(store, &stubIssuer{})

	store.On("FindPaymentByExternalID", mock.Anything, "lodge-missing").
		Return(payments.Payment{}, payments.ErrPaymentNotFound).Once()

	body := []byte(`{"external_id":"lodge-missing","status":"PAID"}`)
	w := postCallback(t, r, body, signBody(body))

	assert.Equal(t, http.StatusNotFound, w.Code)
	store.AssertExpectations(t)
}

func TestWebhook_AppliesPaidCallback(t *testing.T) {
	store := &stubStore{}
	issuer := &stubIssuer{}
	r := webhookRouter(store, issuer)

	p := payments.Payment{ID: "pay-1", ExternalID: "lodge-abc", Status: payments.StatusPending}
	paid := p
	paid.Status = payments.StatusPaid
	out := payments.TransitionOutcome{
		Payment: paid,
		Ticket: &bookings.TicketBooking{
			ID: "tb-1", PaymentID: "pay-1",
			CustomerEmail: "siti@example.com",
			QRPayload:     "deadbeef", FriendlyCode: "LDG-7K3M2P",
		},
	}

	store.On("FindPaymentByExternalID", mock.Anything, "lodge-abc").Return(p, nil).Once()
	store.On("ApplyTransition", mock.Anything, mock.Anything).Return(out, nil).Once()
	issuer.On("IssueEVoucher", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	body := []byte(`{"external_id":"lodge-abc","id":"inv_1","status":"PAID","paid_at":"2026-08-30T10:15:00Z"}`)
	w := postCallback(t, r, body, signBody(body))

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		OK        bool `json:"ok"`
		Duplicate bool `json:"duplicate"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.False(t, resp.Duplicate)

	store.AssertExpectations(t)
	issuer.AssertExpectations(t)
}

func TestWebhook_DuplicateTerminalAcked(t *testing.T) {
	store := &stubStore{}
	issuer := &stubIssuer{}
	r := webhookRouter(store, issuer)

	p := payments.Payment{ID: "pay-1", ExternalID: "lodge-abc", Status: payments.StatusPaid}

	store.On("FindPaymentByExternalID", mock.Anything, "lodge-abc").Return(p, nil).Once()
	store.On("ApplyTransition", mock.Anything, mock.Anything).
		Return(payments.TransitionOutcome{Payment: p, AlreadyTerminal: true}, nil).Once()

	body := []byte(`{"external_id":"lodge-abc","status":"PAID"}`)
	w := postCallback(t, r, body, signBody(body))

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		OK        bool `json:"ok"`
		Duplicate bool `json:"duplicate"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.True(t, resp.Duplicate)

	issuer.AssertNotCalled(t, "IssueEVoucher", mock.Anything, mock.Anything, mock.Anything)
}

func TestWebhook_UnknownStatusAcked(t *testing.T) {
	store := &stubStore{}
	r := webhookRouter(store, &stubIssuer{})

	p := payments.Payment{ID: "pay-1", ExternalID: "lodge-abc", Status: payments.StatusPending}

	store.On("FindPaymentByExternalID", mock.Anything, "lodge-abc").Return(p, nil).Once()
	store.On("ArchivePayload", mock.Anything, "pay-1", "lodge-abc", "SETTLING", "", mock.Anything).
		Return(nil).Once()

	body := []byte(`{"external_id":"lodge-abc","status":"SETTLING"}`)
	w := postCallback(t, r, body, signBody(body))

	assert.Equal(t, http.StatusOK, w.Code)
	store.AssertExpectations(t)
	store.AssertNotCalled(t, "ApplyTransition", mock.Anything, mock.Anything)
}

func TestWebhook_StoreErrorReturns500(t *testing.T) {
	store := &stubStore{}
	r := webhookRouter(store, &stubIssuer{})

	p := payments.Payment{ID: "pay-1", ExternalID: "lodge-abc", Status: payments.StatusPending}

	store.On("FindPaymentByExternalID", mock.Anything, "lodge-abc").Return(p, nil).Once()
	store.On("ApplyTransition", mock.Anything, mock.Anything).
		Return(payments.TransitionOutcome{}, assert.AnError).Once()

	body := []byte(`{"external_id":"lodge-abc","status":"PAID"}`)
	w := postCallback(t, r, body, signBody(body))

	// 500 tells the gateway to retry the delivery.
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
