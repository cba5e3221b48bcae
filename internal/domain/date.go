package domain

import (
	"fmt"
	"time"
)

// DayLayout is the locale independent calendar day key
const DayLayout = "2006-01-02"

// DayKey formats t as a calendar day in t's location
func DayKey(t time.Time) string {
	return t.Format(DayLayout)
}

// ParseDay parses a YYYY-MM-DD day key as midnight UTC
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// ParseDayIn parses a day key as midnight in loc
func ParseDayIn(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DayLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}
