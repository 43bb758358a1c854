package vouchers

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herdirudian/thelodgemember-sub002/internal/storage"
)

type fakeStorage struct {
	putErr error
	key    string
	data   []byte
	in     storage.PutInput
}

func (f *fakeStorage) Put(ctx context.Context, r io.Reader, in storage.PutInput) (storage.PutResult, error) {
	if f.putErr != nil {
		return storage.PutResult{}, f.putErr
	}
	f.in = in
	f.data, _ = io.ReadAll(r)
	f.key = in.Key
	return storage.PutResult{Key: in.Key, URL: "https://assets.example.com/vouchers/" + in.Key}, nil
}

func (f *fakeStorage) Delete(ctx context.Context, key string) error { return nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// pngMagic is the fixed 8-byte PNG file header.
var pngMagic = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

func TestBuilder_Build(t *testing.T) {
	fs := &fakeStorage{}
	b := NewBuilder("https://lodge.example.com/", fs, discardLogger())

	v, err := b.Build(context.Background(), "deadbeefcafe", "LDG-7K3M2P")
	require.NoError(t, err)

	assert.Equal(t, "LDG-7K3M2P", v.FriendlyCode)
	assert.Equal(t, "https://lodge.example.com/api/vouchers/deadbeefcafe/verify", v.VerificationURL)

	require.True(t, strings.HasPrefix(v.QRDataURL, "data:image/png;base64,"))
	png, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(v.QRDataURL, "data:image/png;base64,"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngMagic), "QR payload is not a PNG")

	assert.Equal(t, "https://assets.example.com/vouchers/LDG-7K3M2P.png", v.AssetURL)
	assert.Equal(t, "image/png", fs.in.ContentType)
	assert.Equal(t, png, fs.data, "stored PNG matches the inline one")
}

func TestBuilder_Build_StorageFailureIsBestEffort(t *testing.T) {
	fs := &fakeStorage{putErr: errors.New("s3: access denied")}
	b := NewBuilder("https://lodge.example.com", fs, discardLogger())

	v, err := b.Build(context.Background(), "deadbeefcafe", "LDG-7K3M2P")
	require.NoError(t, err, "storage outage must not block voucher issuance")

	assert.Empty(t, v.AssetURL)
	assert.NotEmpty(t, v.QRDataURL, "inline QR still present")
}

func TestBuilder_Build_NilStorage(t *testing.T) {
	b := NewBuilder("https://lodge.example.com", nil, discardLogger())

	v, err := b.Build(context.Background(), "deadbeefcafe", "LDG-7K3M2P")
	require.NoError(t, err)
	assert.Empty(t, v.AssetURL)
}

func TestBuilder_Build_RequiresInputs(t *testing.T) {
	b := NewBuilder("https://lodge.example.com", nil, discardLogger())

	_, err := b.Build(context.Background(), "", "LDG-7K3M2P")
	assert.Error(t, err)

	_, err = b.Build(context.Background(), "deadbeefcafe", "")
	assert.Error(t, err)
}
