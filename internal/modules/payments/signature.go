package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// VerifySignature reports whether providedSignature is the hex-encoded
// HMAC-SHA256 of rawBody keyed by sharedSecret.
//
// rawBody must be the unparsed request body exactly as received; hashing a
// re-serialized JSON document will not match what the sender signed. Any
// malformed input is treated as a mismatch, never as an error.
func VerifySignature(rawBody []byte, providedSignature, sharedSecret string) bool {
	if sharedSecret == "" || providedSignature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(sharedSecret))
	mac.Write(rawBody)
	want := hex.EncodeToString(mac.Sum(nil))

	return subtle.ConstantTimeCompare([]byte(want), []byte(providedSignature)) == 1
}
