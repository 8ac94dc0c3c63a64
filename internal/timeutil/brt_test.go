package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStartOfDay(t *testing.T) {
	// 01:30 UTC is still the previous day in Brasília (UTC-3)
	utc := time.Date(2025, 3, 10, 1, 30, 0, 0, time.UTC)

	start := StartOfDay(utc)
	assert.Equal(t, 2025, start.Year())
	assert.Equal(t, time.March, start.Month())
	assert.Equal(t, 9, start.Day())
	assert.Equal(t, 0, start.Hour())
	assert.Equal(t, 0, start.Minute())
	assert.Equal(t, BRT, start.Location())
}

func TestEndOfDay(t *testing.T) {
	utc := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	end := EndOfDay(utc)
	assert.Equal(t, 10, end.Day())
	assert.Equal(t, 23, end.Hour())
	assert.Equal(t, 59, end.Minute())
	assert.Equal(t, 59, end.Second())
	assert.True(t, end.After(StartOfDay(utc)))
}

func TestFormatBRT(t *testing.T) {
	utc := time.Date(2025, 6, 15, 2, 0, 0, 0, time.UTC)
	assert.Equal(t, "14/06/2025", FormatBRT(utc, DateLayout))
	assert.Equal(t, "14/06/2025 23:00:00", FormatBRT(utc, DateTimeLayout))
}

func TestToBRT(t *testing.T) {
	utc := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	brt := ToBRT(utc)
	assert.True(t, utc.Equal(brt))
	assert.Equal(t, BRT, brt.Location())
}
