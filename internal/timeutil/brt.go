package timeutil

import (
	"time"
)

// BRT is the Brasília time location (UTC-3)
var BRT *time.Location

func init() {
	var err error
	BRT, err = time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		// Fallback: create fixed zone if America/Sao_Paulo not available
		BRT = time.FixedZone("BRT", -3*60*60) // UTC-3
	}
}

// Now returns the current time in BRT
func Now() time.Time {
	return time.Now().In(BRT)
}

// ToBRT converts any time to BRT
func ToBRT(t time.Time) time.Time {
	return t.In(BRT)
}

// FormatBRT formats a time in BRT using the given layout
func FormatBRT(t time.Time, layout string) string {
	return t.In(BRT).Format(layout)
}

// StartOfDay returns the start of day (00:00:00) in BRT for the given time
func StartOfDay(t time.Time) time.Time {
	brt := t.In(BRT)
	return time.Date(brt.Year(), brt.Month(), brt.Day(), 0, 0, 0, 0, BRT)
}

// EndOfDay returns the end of day (23:59:59) in BRT for the given time
func EndOfDay(t time.Time) time.Time {
	brt := t.In(BRT)
	return time.Date(brt.Year(), brt.Month(), brt.Day(), 23, 59, 59, 999999999, BRT)
}

// Common layouts for BRT formatting
const (
	DateLayout     = "02/01/2006"
	TimeLayout     = "15:04:05"
	DateTimeLayout = "02/01/2006 15:04:05"
)
