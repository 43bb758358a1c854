package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func signFor(t *testing.T, secret string, body []byte) string {
	t.Helper()
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature_Valid(t *testing.T) {
	secret := "whsec_test_123"
	body := []byte(`{"external_id":"lodge-abc","status":"PAID"}`)

	sig := signFor(t, secret, body)

	assert.True(t, VerifySignature(body, sig, secret))
}

func TestVerifySignature_CoversRawBytes(t *testing.T) {
	secret := "whsec_test_123"
	body := []byte(`{"external_id":"lodge-abc","status":"PAID"}`)
	sig := signFor(t, secret, body)

	// Semantically identical JSON with different whitespace must not verify.
	reordered := []byte(`{"external_id": "lodge-abc", "status": "PAID"}`)
	assert.False(t, VerifySignature(reordered, sig, secret))
}

func TestVerifySignature_TamperedBody(t *testing.T) {
	secret := "whsec_test_123"
	body := []byte(`{"external_id":"lodge-abc","status":"PAID"}`)
	sig := signFor(t, secret, body)

	tampered := make([]byte, len(body))
	copy(tampered, body)
	tampered[len(tampered)-3] ^= 0x01

	assert.False(t, VerifySignature(tampered, sig, secret))
}

func TestVerifySignature_WrongSecret(t *testing.T) {
	body := []byte(`{"external_id":"lodge-abc","status":"PAID"}`)
	sig := signFor(t, "whsec_test_123", body)

	assert.False(t, VerifySignature(body, sig, "whsec_other"))
}

func TestVerifySignature_EmptyInputs(t *testing.T) {
	body := []byte(`{}`)
	sig := signFor(t, "secret", body)

	assert.False(t, VerifySignature(body, sig, ""), "empty secret never verifies")
	assert.False(t, VerifySignature(body, "", "secret"), "empty signature never verifies")
	assert.False(t, VerifySignature(body, "not-hex-at-all", "secret"))
}
