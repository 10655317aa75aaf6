package timeutil

import (
	"time"
)

// ICT is the farm-local timezone (Indochina Time, UTC+7).
// All age-based date arithmetic is anchored to farm-local days.
var ICT *time.Location

func init() {
	var err error
	ICT, err = time.LoadLocation("Asia/Ho_Chi_Minh")
	if err != nil {
		// Fallback: create fixed zone if Asia/Ho_Chi_Minh not available
		ICT = time.FixedZone("ICT", 7*60*60) // UTC+7
	}
}

// Now returns the current time in ICT
func Now() time.Time {
	return time.Now().In(ICT)
}

// ToICT converts any time to ICT
func ToICT(t time.Time) time.Time {
	return t.In(ICT)
}

// ParseDate parses a YYYY-MM-DD date string as a farm-local day
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, value, ICT)
}

// StartOfDay returns the start of day (00:00:00) in ICT for the given time
func StartOfDay(t time.Time) time.Time {
	ict := t.In(ICT)
	return time.Date(ict.Year(), ict.Month(), ict.Day(), 0, 0, 0, 0, ICT)
}

// EndOfDay returns the end of day (23:59:59.999999999) in ICT for the given time
func EndOfDay(t time.Time) time.Time {
	ict := t.In(ICT)
	return time.Date(ict.Year(), ict.Month(), ict.Day(), 23, 59, 59, 999999999, ICT)
}

// MonthRange returns the inclusive start and end of a calendar month in ICT
func MonthRange(month, year int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, ICT)
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return start, end
}

// SameDay reports whether two times fall on the same farm-local day
func SameDay(a, b time.Time) bool {
	return StartOfDay(a).Equal(StartOfDay(b))
}

// DateKey formats a time as the YYYY-MM-DD farm-local day key
func DateKey(t time.Time) string {
	return t.In(ICT).Format(DateLayout)
}

// Common layouts
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
)
