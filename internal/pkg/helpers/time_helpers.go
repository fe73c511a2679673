package helpers

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultAnalyticsWindow is used when a date range omits from
const DefaultAnalyticsWindow = 30 * 24 * time.Hour

const dateOnly = "2006-01-02"

// ParseDuration parses a duration string, returns default duration on error.
func ParseDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	duration, err := time.ParseDuration(durationStr)
	if err != nil {
		log.Warn().Err(err).Str("durationStr", durationStr).Dur("defaultDuration", defaultDuration).Msg("Failed to parse duration string, using default")
		return defaultDuration
	}
	return duration
}

// ParseTimestamp accepts RFC3339 (with or without fractional seconds) or YYYY-MM-DD.
// endOfDay moves a date-only value to the last instant of that UTC day.
func ParseTimestamp(value string, endOfDay bool) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(dateOnly, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected RFC3339 or YYYY-MM-DD", value)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

// ParseDateRange resolves an inclusive range. Empty to means now; empty from means
// DefaultAnalyticsWindow before to. The caller validates from <= to.
func ParseDateRange(from, to string, now time.Time) (time.Time, time.Time, error) {
	end := now.UTC()
	if to != "" {
		t, err := ParseTimestamp(to, true)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end = t
	}

	start := end.Add(-DefaultAnalyticsWindow)
	if from != "" {
		t, err := ParseTimestamp(from, false)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		start = t
	}

	return start, end, nil
}

// TruncateDay returns midnight UTC of t's UTC day
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween lists every UTC day from from's day to to's day inclusive
func DaysBetween(from, to time.Time) []time.Time {
	start, end := TruncateDay(from), TruncateDay(to)
	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
