package util

import (
	"errors"
	"fmt"
	"time"
)

// ErrDateFormat is returned when a date string matches none of the
// accepted layouts.
var ErrDateFormat = errors.New("date must be 2006-01-02 15:04:05-0700, 2006-01-02 15:04:05 or 2006-01-02")

// dateLayouts are tried in order; the offset-carrying layout first so a
// supplied zone is never silently dropped.
var dateLayouts = []string{
	"2006-01-02 15:04:05-0700",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Eastern is the exchange's local zone. Intraday provider timestamps are
// quoted in it and converted to UTC before leaving the retrieval layer.
var Eastern = mustLoadLocation("America/New_York")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(fmt.Sprintf("load location %s: %v", name, err))
	}
	return loc
}

// ParseDate parses a request date string in any of the accepted layouts.
// Layouts without an explicit offset are read as naive timestamps; the
// provider only receives the calendar-date part anyway.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: got %q", ErrDateFormat, s)
}

// ParseDateDefault parses s or returns def when s is empty.
func ParseDateDefault(s string, def time.Time) (time.Time, error) {
	if s == "" {
		return def, nil
	}
	return ParseDate(s)
}

// ParseProviderTime reads a provider bar timestamp ("2006-01-02" for the
// daily endpoint, "2006-01-02 15:04:05" for intraday) as exchange-local
// wall time and returns the UTC instant.
func ParseProviderTime(s, layout string) (time.Time, error) {
	t, err := time.ParseInLocation(layout, s, Eastern)
	if err != nil {
		return time.Time{}, fmt.Errorf("provider date %q: %w", s, err)
	}
	return t.UTC(), nil
}

// FormatCalendarDate renders t as the YYYY-MM-DD form the provider's
// from/to query parameters require.
func FormatCalendarDate(t time.Time) string {
	return t.Format("2006-01-02")
}
