package ingest

import (
	"fmt"
	"strings"
	"time"
)

// DateLayouts are tried in order; the first match wins.
var DateLayouts = []string{ //nolint:gochecknoglobals // read-only default
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"01/02/2006 3:04 PM",
	"01/02/2006 15:04",
	"01/02/2006",
	"Jan 2, 2006 3:04PM",
	"Jan 2, 2006 3:04 PM",
	"Jan 2, 2006",
	"January 2, 2006",
	"2-Jan-2006",
}

// ParseDate parses s with the default layouts. Results are UTC wall-clock times.
func ParseDate(s string) (time.Time, error) {
	return parseDate(s, DateLayouts)
}

func parseDate(s string, layouts []string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: Date string cannot be empty", ErrInvalidDate)
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: Could not parse date '%s'", ErrInvalidDate, s)
}
