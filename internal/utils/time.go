package utils

import (
	"fmt"
	"strings"
	"time"
)

const (
	layoutDate     = "2006-01-02"
	layoutDateTime = "2006-01-02 15:04:05"
	layoutLocalMin = "2006-01-02T15:04"
)

// travelDateLayouts are tried in order; date-only values are midnight UTC.
var travelDateLayouts = []string{
	time.RFC3339Nano,
	layoutLocalMin,
	"2006-01-02T15:04:05",
	layoutDateTime,
	layoutDate,
}

// NowUTC returns current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// ParseTravelDate parses an optional travel date. Empty input yields nil;
// anything unparseable is an error rather than a silent coercion.
func ParseTravelDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range travelDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unrecognized date %q", s)
}

// FormatISO renders t as RFC 3339 in UTC.
func FormatISO(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// FormatDate formats time to YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(layoutDate)
}

// FormatDateTime formats time to "YYYY-MM-DD HH:MM".
func FormatDateTime(t time.Time) string {
	return t.Format("2006-01-02 15:04")
}

// HoursBetween is the signed number of hours from now to t.
func HoursBetween(now, t time.Time) float64 {
	return t.Sub(now).Hours()
}
