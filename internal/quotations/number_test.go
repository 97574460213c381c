package quotations

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNumberGeneratorFormat(t *testing.T) {
	gen := newNumberGenerator("QT")
	now := time.Date(2025, 8, 1, 14, 30, 0, 0, time.UTC)

	pattern := regexp.MustCompile(`^QT-20250801-\d{4}$`)
	for i := 0; i < 50; i++ {
		number := gen.Next(now)
		assert.Regexp(t, pattern, number)
	}
}

func TestNumberGeneratorUsesUTCDate(t *testing.T) {
	gen := newNumberGenerator("QT")
	// 23:30 in UTC-5 is already the next day in UTC.
	loc := time.FixedZone("UTC-5", -5*3600)
	now := time.Date(2025, 8, 1, 23, 30, 0, 0, loc)

	assert.Regexp(t, regexp.MustCompile(`^QT-20250802-\d{4}$`), gen.Next(now))
}
