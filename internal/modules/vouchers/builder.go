package vouchers

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/herdirudian/thelodgemember-sub002/internal/storage"
)

// EVoucher is the rendered artifact attached to the outbound notification.
type EVoucher struct {
	FriendlyCode    string
	VerificationURL string
	// QRDataURL is a data:image/png;base64 URL embedded straight into the email
	// body.
	QRDataURL string
	// AssetURL points at the stored PNG copy; empty when storage was
	// unavailable (the email still carries the inline QR).
	AssetURL string
}

type Builder struct {
	baseURL string
	store   storage.Storage
	logger  *slog.Logger
}

func NewBuilder(baseURL string, store storage.Storage, logger *slog.Logger) *Builder {
	return &Builder{baseURL: strings.TrimRight(baseURL, "/"), store: store, logger: logger}
}

// Build synthesizes the verification URL from the booking's payload hash and
// renders it as a QR PNG.
func (b *Builder) Build(ctx context.Context, payloadHash, friendlyCode string) (EVoucher, error) {
	if payloadHash == "" || friendlyCode == "" {
		return EVoucher{}, fmt.Errorf("voucher build: payload hash and friendly code required")
	}

	verifyURL := fmt.Sprintf("%s/api/vouchers/%s/verify", b.baseURL, payloadHash)

	png, err := qrcode.Encode(verifyURL, qrcode.Medium, 256)
	if err != nil {
		return EVoucher{}, fmt.Errorf("voucher build: qr encode: %w", err)
	}

	v := EVoucher{
		FriendlyCode:    friendlyCode,
		VerificationURL: verifyURL,
		QRDataURL:       "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
	}

	// Storing the PNG is best effort: the inline data URL already carries the
	// artifact to the customer.
	if b.store != nil {
		res, err := b.store.Put(ctx, bytes.NewReader(png), storage.PutInput{
			Key:         friendlyCode + ".png",
			Filename:    friendlyCode + ".png",
			ContentType: "image/png",
			Size:        int64(len(png)),
		})
		if err != nil {
			b.logger.WarnContext(ctx, "voucher asset upload failed", "friendly_code", friendlyCode, "err", err)
		} else {
			v.AssetURL = res.URL
		}
	}

	return v, nil
}
