package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/herdirudian/thelodgemember-sub002/internal/config"
)

// XenditGateway talks to the invoicing REST API. It is constructed once at
// startup and injected wherever a Gateway is needed.
type XenditGateway struct {
	baseURL string
	apiKey  string
	hc      *http.Client
}

func NewXenditGateway(cfg config.GatewayConfig) *XenditGateway {
	return &XenditGateway{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		hc:      &http.Client{Timeout: 15 * time.Second},
	}
}

type invoiceCustomer struct {
	GivenNames   string `json:"given_names,omitempty"`
	Email        string `json:"email,omitempty"`
	MobileNumber string `json:"mobile_number,omitempty"`
}

type invoiceItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
}

type invoiceRequest struct {
	ExternalID         string          `json:"external_id"`
	Amount             int64           `json:"amount"`
	Description        string          `json:"description"`
	PayerEmail         string          `json:"payer_email,omitempty"`
	Customer           invoiceCustomer `json:"customer"`
	SuccessRedirectURL string          `json:"success_redirect_url,omitempty"`
	FailureRedirectURL string          `json:"failure_redirect_url,omitempty"`
	InvoiceDuration    int64           `json:"invoice_duration,omitempty"`
	Currency           string          `json:"currency"`
	Items              []invoiceItem   `json:"items,omitempty"`
}

type invoiceReply struct {
	ID         string    `json:"id"`
	ExternalID string    `json:"external_id"`
	Status     string    `json:"status"`
	Amount     int64     `json:"amount"`
	InvoiceURL string    `json:"invoice_url"`
	ExpiryDate time.Time `json:"expiry_date"`
}

func (g *XenditGateway) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (Invoice, error) {
	items := make([]invoiceItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = invoiceItem{Name: it.Name, Quantity: it.Quantity, Price: it.Price}
	}

	body := invoiceRequest{
		ExternalID:  req.ExternalID,
		Amount:      req.Amount,
		Description: req.Description,
		PayerEmail:  req.CustomerEmail,
		Customer: invoiceCustomer{
			GivenNames:   req.CustomerName,
			Email:        req.CustomerEmail,
			MobileNumber: req.CustomerPhone,
		},
		SuccessRedirectURL: req.SuccessRedirectURL,
		FailureRedirectURL: req.FailureRedirectURL,
		InvoiceDuration:    req.DurationSeconds,
		Currency:           req.Currency,
		Items:              items,
	}

	var reply invoiceReply
	if err := g.do(ctx, http.MethodPost, "/v2/invoices", body, &reply); err != nil {
		return Invoice{}, fmt.Errorf("createInvoice: %w", err)
	}
	return toInvoice(reply), nil
}

func (g *XenditGateway) GetInvoice(ctx context.Context, invoiceID string) (Invoice, error) {
	var reply invoiceReply
	if err := g.do(ctx, http.MethodGet, "/v2/invoices/"+invoiceID, nil, &reply); err != nil {
		return Invoice{}, fmt.Errorf("getInvoice: %w", err)
	}
	return toInvoice(reply), nil
}

func (g *XenditGateway) ExpireInvoice(ctx context.Context, invoiceID string) (Invoice, error) {
	var reply invoiceReply
	if err := g.do(ctx, http.MethodPost, "/invoices/"+invoiceID+"/expire!", nil, &reply); err != nil {
		return Invoice{}, fmt.Errorf("expireInvoice: %w", err)
	}
	return toInvoice(reply), nil
}

func (g *XenditGateway) do(ctx context.Context, method, path string, body any, out any) error {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("json.Marshal: %w", err)
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, r)
	if err != nil {
		return fmt.Errorf("http.NewRequestWithContext: %w", err)
	}
	// API key as basic auth username, empty password.
	req.SetBasicAuth(g.apiKey, "")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.hc.Do(req)
	if err != nil {
		return fmt.Errorf("hc.Do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		rbody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("resp.StatusCode: %d, resp.Body: %s", resp.StatusCode, rbody)
	}

	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("json.Decode: %w", err)
	}
	return nil
}

func toInvoice(r invoiceReply) Invoice {
	return Invoice{
		ID:         r.ID,
		ExternalID: r.ExternalID,
		Status:     r.Status,
		Amount:     r.Amount,
		InvoiceURL: r.InvoiceURL,
		ExpiryDate: r.ExpiryDate,
	}
}
