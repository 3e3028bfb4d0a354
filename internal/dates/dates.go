package dates

import (
	"fmt"
	"strconv"
	"time"
)

// DateLayout is the canonical output form.
const DateLayout = "2006-01-02"

// FormatError indicates a date value that matched no accepted
// representation. It aborts mapping of the single record that carried it.
type FormatError struct {
	Raw string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("unrecognized date value %q", e.Raw)
}

// layouts are tried in order for general date parsing. Timestamps are
// truncated to the date portion.
var layouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"Jan 2, 2006",
	"2 Jan 2006",
	time.RFC1123,
	time.RFC1123Z,
}

// FormatDate converts a raw legacy date cell to YYYY-MM-DD.
//
// Rules, applied in order:
//   - empty input maps to empty output (absent date, not an error)
//   - a value already in YYYY-MM-DD form is returned unchanged
//   - a digit-only value of length >= 10 is interpreted as Unix epoch
//     milliseconds and truncated to the UTC date
//   - otherwise the value is tried against a list of known layouts and
//     truncated to the date portion
//
// Anything else fails with *FormatError.
func FormatDate(raw string) (string, error) {
	if raw == "" {
		return "", nil
	}
	if isCanonical(raw) {
		return raw, nil
	}
	if isDigits(raw) && len(raw) >= 10 {
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return "", &FormatError{Raw: raw}
		}
		return time.UnixMilli(ms).UTC().Format(DateLayout), nil
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC().Format(DateLayout), nil
		}
	}
	return "", &FormatError{Raw: raw}
}

// isCanonical reports whether s already matches ^\d{4}-\d{2}-\d{2}$.
func isCanonical(s string) bool {
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return false
	}
	for _, i := range []int{0, 1, 2, 3, 5, 6, 8, 9} {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}
