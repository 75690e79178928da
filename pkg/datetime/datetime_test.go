package datetime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatMillis(t *testing.T) {
	// 2024-05-01T09:30:15.123Z
	ms := time.Date(2024, 5, 1, 9, 30, 15, 123_000_000, time.UTC).UnixMilli()
	assert.Equal(t, "2024-05-01T09:30:15.123+0000", FormatMillis(ms))
}

func TestFormatMillisAlwaysUTC(t *testing.T) {
	// Epoch zero renders at UTC midnight regardless of host timezone.
	assert.Equal(t, "1970-01-01T00:00:00.000+0000", FormatMillis(0))
}

func TestRoundTrip(t *testing.T) {
	ms := int64(1714555815123)
	parsed, err := ParseToMillis(FormatMillis(ms))
	require.NoError(t, err)
	assert.Equal(t, ms, parsed)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := ParseToMillis("01/05/2024 09:30")
	assert.Error(t, err)
}
