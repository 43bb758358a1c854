package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herdirudian/thelodgemember-sub002/internal/config"
)

func TestXenditGateway_CreateInvoice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v2/invoices", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "xnd_test_key", user)
		assert.Empty(t, pass)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "lodge-abc", req["external_id"])
		assert.Equal(t, float64(150000), req["amount"])
		assert.Equal(t, "IDR", req["currency"])
		assert.Equal(t, float64(86400), req["invoice_duration"])

		customer, _ := req["customer"].(map[string]any)
		assert.Equal(t, "siti@example.com", customer["email"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":          "inv_123",
			"external_id": "lodge-abc",
			"status":      "PENDING",
			"amount":      150000,
			"invoice_url": "https://checkout.example.com/inv_123",
		})
	}))
	defer srv.Close()

	g := NewXenditGateway(config.GatewayConfig{BaseURL: srv.URL, APIKey: "xnd_test_key"})

	inv, err := g.CreateInvoice(context.Background(), CreateInvoiceRequest{
		ExternalID:      "lodge-abc",
		Amount:          150000,
		Description:     "Waterfall Day Pass x2",
		CustomerName:    "Siti Rahma",
		CustomerEmail:   "siti@example.com",
		DurationSeconds: 86400,
		Currency:        Currency,
		Items:           []InvoiceItem{{Name: "Waterfall Day Pass", Quantity: 2, Price: 75000}},
	})
	require.NoError(t, err)

	assert.Equal(t, "inv_123", inv.ID)
	assert.Equal(t, "lodge-abc", inv.ExternalID)
	assert.Equal(t, "PENDING", inv.Status)
	assert.Equal(t, "https://checkout.example.com/inv_123", inv.InvoiceURL)
}

func TestXenditGateway_CreateInvoice_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error_code":"API_VALIDATION_ERROR"}`))
	}))
	defer srv.Close()

	g := NewXenditGateway(config.GatewayConfig{BaseURL: srv.URL, APIKey: "xnd_test_key"})

	_, err := g.CreateInvoice(context.Background(), CreateInvoiceRequest{
		ExternalID: "lodge-abc",
		Amount:     150000,
		Currency:   Currency,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "API_VALIDATION_ERROR")
}

func TestXenditGateway_GetInvoice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/v2/invoices/inv_123", r.URL.Path)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":          "inv_123",
			"external_id": "lodge-abc",
			"status":      "PAID",
			"amount":      150000,
		})
	}))
	defer srv.Close()

	g := NewXenditGateway(config.GatewayConfig{BaseURL: srv.URL, APIKey: "xnd_test_key"})

	inv, err := g.GetInvoice(context.Background(), "inv_123")
	require.NoError(t, err)
	assert.Equal(t, "PAID", inv.Status)
}
