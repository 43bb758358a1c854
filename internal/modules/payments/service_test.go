package payments

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDurationSeconds(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	s := &Service{}
	assert.Equal(t, int64(86400), s.durationSeconds(nil, now), "default is 24h when unconfigured")

	s.cfg.InvoiceDuration = 2 * time.Hour
	assert.Equal(t, int64(7200), s.durationSeconds(nil, now))

	expiry := now.Add(30 * time.Minute)
	assert.Equal(t, int64(1800), s.durationSeconds(&expiry, now))

	past := now.Add(-time.Hour)
	assert.Equal(t, int64(7200), s.durationSeconds(&past, now), "past expiry falls back to default")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 250))
	assert.Equal(t, "abc", truncate("abc", 3))
	assert.Equal(t, "ab", truncate("abc", 2))
	assert.Equal(t, "", truncate("", 10))

	long := strings.Repeat("x", 400)
	assert.Len(t, truncate(long, 250), 250)
}
