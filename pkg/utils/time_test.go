package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNowRFC3339RoundTrips(t *testing.T) {
	before := time.Now().UTC().Truncate(time.Second)

	parsed, err := ParseRFC3339(NowRFC3339())
	require.NoError(t, err)

	assert.Equal(t, time.UTC, parsed.Location())
	assert.False(t, parsed.Before(before))
}

func TestParseRFC3339Invalid(t *testing.T) {
	_, err := ParseRFC3339("03/15/2026")
	assert.Error(t, err)
}

func TestFormatDate(t *testing.T) {
	loc := time.FixedZone("UTC-8", -8*60*60)
	ts := time.Date(2026, 3, 15, 23, 30, 0, 0, loc)

	// Formatting normalizes to UTC, so late-evening local times roll
	// over to the next calendar day.
	assert.Equal(t, "2026-03-16", FormatDate(ts))
	assert.Equal(t, "2026-03-15", FormatDate(ts.Add(-8*time.Hour)))
}
