package storage

import (
	"context"
	"io"
)

type PutInput struct {
	// Key is the stable object name, e.g. the voucher's friendly code. A
	// re-issued voucher overwrites its previous PNG instead of piling up
	// copies. When empty, a random key is generated from Filename's extension.
	Key         string
	Filename    string
	ContentType string
	Size        int64
}

type PutResult struct {
	Key string
	URL string
}

// Storage holds generated voucher assets (QR PNGs) so the admin panel can serve
// them without regenerating.
type Storage interface {
	Put(ctx context.Context, r io.Reader, in PutInput) (PutResult, error)
	Delete(ctx context.Context, key string) error
}
