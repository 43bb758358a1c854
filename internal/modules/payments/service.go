package payments

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/herdirudian/thelodgemember-sub002/internal/config"
	"github.com/herdirudian/thelodgemember-sub002/internal/monitoring"
)

// Service creates gateway invoices. No reconciliation logic lives here; it
// only produces the external_id that Reconcile later looks up by.
type Service struct {
	db      *gorm.DB
	gateway Gateway
	cfg     config.GatewayConfig
	logger  *slog.Logger
}

func NewService(db *gorm.DB, g Gateway, cfg config.GatewayConfig, logger *slog.Logger) *Service {
	return &Service{db: db, gateway: g, cfg: cfg, logger: logger}
}

type CreateInvoiceInput struct {
	Amount      int64
	Description string

	CustomerName  string
	CustomerEmail string
	CustomerPhone string

	// ExpiryDate overrides the configured default invoice duration.
	ExpiryDate *time.Time
}

type CreateInvoiceResult struct {
	Payment    Payment
	InvoiceID  string
	InvoiceURL string
}

func (s *Service) CreateInvoice(ctx context.Context, in CreateInvoiceInput) (CreateInvoiceResult, error) {
	if in.Amount <= 0 {
		return CreateInvoiceResult{}, fmt.Errorf("createInvoice: amount must be positive")
	}

	// Phase-1: persist the PENDING payment so the external_id exists before the
	// gateway can possibly call back.
	now := time.Now()
	p := Payment{
		ID:         uuid.NewString(),
		ExternalID: "lodge-" + uuid.NewString(),
		Amount:     in.Amount,
		Currency:   Currency,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return CreateInvoiceResult{}, err
	}

	// Phase-2: gateway call, outside any transaction.
	inv, gerr := s.gateway.CreateInvoice(ctx, CreateInvoiceRequest{
		ExternalID:         p.ExternalID,
		Amount:             in.Amount,
		Description:        in.Description,
		CustomerName:       in.CustomerName,
		CustomerEmail:      in.CustomerEmail,
		CustomerPhone:      in.CustomerPhone,
		SuccessRedirectURL: s.cfg.SuccessRedirectURL,
		FailureRedirectURL: s.cfg.FailureRedirectURL,
		DurationSeconds:    s.durationSeconds(in.ExpiryDate, now),
		Currency:           Currency,
		Items: []InvoiceItem{
			{Name: in.Description, Quantity: 1, Price: in.Amount},
		},
	})

	// Phase-3: finalize the payment row.
	if gerr != nil {
		monitoring.TrackInvoiceRequest("error")
		msg := truncate(gerr.Error(), 250)
		if err := s.db.WithContext(ctx).Model(&Payment{}).
			Where("id = ?", p.ID).
			Updates(map[string]any{
				"status":          StatusFailed,
				"failure_message": msg,
				"updated_at":      time.Now(),
			}).Error; err != nil {
			s.logger.ErrorContext(ctx, "failed to mark payment failed after gateway error",
				"payment_id", p.ID, "err", err)
		}
		s.logger.ErrorContext(ctx, "gateway invoice creation failed",
			"external_id", p.ExternalID, "err", gerr)
		return CreateInvoiceResult{}, fmt.Errorf("%w: %s", ErrInvoiceNotCreated, msg)
	}

	if err := s.db.WithContext(ctx).Model(&Payment{}).
		Where("id = ?", p.ID).
		Updates(map[string]any{
			"invoice_id":  inv.ID,
			"invoice_url": inv.InvoiceURL,
			"updated_at":  time.Now(),
		}).Error; err != nil {
		return CreateInvoiceResult{}, err
	}

	monitoring.TrackInvoiceRequest("ok")
	p.InvoiceID = inv.ID
	p.InvoiceURL = inv.InvoiceURL

	return CreateInvoiceResult{Payment: p, InvoiceID: inv.ID, InvoiceURL: inv.InvoiceURL}, nil
}

// durationSeconds converts an explicit expiry date into seconds from now,
// falling back to the configured default (24h) when absent or already past.
func (s *Service) durationSeconds(expiry *time.Time, now time.Time) int64 {
	def := int64(s.cfg.InvoiceDuration / time.Second)
	if def <= 0 {
		def = int64((24 * time.Hour) / time.Second)
	}
	if expiry == nil {
		return def
	}
	secs := int64(expiry.Sub(now) / time.Second)
	if secs <= 0 {
		return def
	}
	return secs
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n]
}
