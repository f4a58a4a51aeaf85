package ledger

import (
	"strings"
	"time"
)

// DisplayDateFormat is the format dates are rendered in throughout the
// aging report and the export artifacts.
const DisplayDateFormat = "02/01/2006"

// dateLayouts are the accepted input layouts, tried in order. The
// report itself uses dd/mm/yyyy; helper documents occasionally carry
// two-digit years or ISO dates.
var dateLayouts = []string{
	"02/01/2006",
	"02/01/06",
	"2006-01-02",
	"02.01.2006",
}

// ParseDate parses a display date string. The boolean is false when the
// value is empty or matches none of the accepted layouts; callers treat
// that as a degraded row, never as a fatal error.
func ParseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDate renders t in the display format.
func FormatDate(t time.Time) string {
	return t.Format(DisplayDateFormat)
}
