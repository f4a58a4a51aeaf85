package ledger

import (
	"strconv"
	"strings"
)

// ParseAmount converts a raw cell value into a signed amount. Text
// values may carry thousands separators ("1,234.50"). Empty or
// unparseable values return nil: the row stays in the set but is
// excluded from matching and from every count.
func ParseAmount(raw string) *float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// Float returns a pointer to v. Convenience for tests and callers that
// already hold a typed amount.
func Float(v float64) *float64 {
	return &v
}
