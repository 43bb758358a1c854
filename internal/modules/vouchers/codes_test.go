package vouchers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFriendlyCode(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 200; i++ {
		code := NewFriendlyCode()

		require.Len(t, code, 10)
		require.True(t, strings.HasPrefix(code, "LDG-"), code)

		for _, c := range code[4:] {
			assert.Contains(t, codeAlphabet, string(c), "code %s uses char outside alphabet", code)
		}

		seen[code] = true
	}

	// 32^6 codes; 200 draws colliding would indicate broken randomness.
	assert.Len(t, seen, 200)
}

func TestCodeAlphabetOmitsAmbiguousChars(t *testing.T) {
	for _, c := range "0O1I" {
		assert.NotContains(t, codeAlphabet, string(c))
	}
}

func TestNewPayloadHash(t *testing.T) {
	a := NewPayloadHash("booking-1", "lodge-abc")
	b := NewPayloadHash("booking-1", "lodge-abc")
	assert.Equal(t, a, b, "same inputs hash identically")
	assert.Len(t, a, 64)

	c := NewPayloadHash("booking-2", "lodge-abc")
	assert.NotEqual(t, a, c)

	// The separator keeps ("ab","c") and ("a","bc") distinct.
	assert.NotEqual(t, NewPayloadHash("ab", "c"), NewPayloadHash("a", "bc"))
}
