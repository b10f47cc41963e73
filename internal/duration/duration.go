// Package duration provides parsing for human-readable duration strings.
package duration

import (
	"fmt"
	"time"
)

// Day is 24 hours. Windows and schedules are counted in whole days.
const Day = 24 * time.Hour

// Parse parses human-readable durations like "1w", "30d", "6mo".
func Parse(s string) (time.Duration, error) {
	var n int
	var unit string

	if _, err := fmt.Sscanf(s, "%d%s", &n, &unit); err != nil {
		return 0, fmt.Errorf("invalid duration format: %s (use e.g., 1d, 1w, 30d)", s)
	}
	if n <= 0 {
		return 0, fmt.Errorf("duration must be positive: %s", s)
	}

	switch unit {
	case "m", "min", "mins":
		return time.Duration(n) * time.Minute, nil
	case "h", "hr", "hrs", "hour", "hours":
		return time.Duration(n) * time.Hour, nil
	case "d", "day", "days":
		return time.Duration(n) * Day, nil
	case "w", "wk", "wks", "week", "weeks":
		return time.Duration(n) * 7 * Day, nil
	case "mo", "month", "months":
		return time.Duration(n) * 30 * Day, nil
	case "y", "yr", "yrs", "year", "years":
		return time.Duration(n) * 365 * Day, nil
	default:
		return 0, fmt.Errorf("unknown duration unit: %s", unit)
	}
}

// ParseDays parses a duration and converts it to whole days. Durations
// shorter than a day, or not a whole number of days, are rejected.
func ParseDays(s string) (int, error) {
	d, err := Parse(s)
	if err != nil {
		return 0, err
	}
	if d < Day || d%Day != 0 {
		return 0, fmt.Errorf("window must be a whole number of days: %s", s)
	}
	return int(d / Day), nil
}
