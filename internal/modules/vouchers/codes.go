package vouchers

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// codeAlphabet omits 0/O/1/I so a gate attendant can read the code out loud.
const codeAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

// NewFriendlyCode returns the human-readable voucher code, e.g. "LDG-7K2MQ4".
func NewFriendlyCode() string {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing is unrecoverable for code generation
		panic(err)
	}
	var sb strings.Builder
	sb.WriteString("LDG-")
	for _, c := range b {
		sb.WriteByte(codeAlphabet[int(c)%len(codeAlphabet)])
	}
	return sb.String()
}

// NewPayloadHash derives the opaque verification payload stored on the booking
// and encoded into the QR.
func NewPayloadHash(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
