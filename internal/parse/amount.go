package parse

import (
	"strconv"
	"strings"
)

// ParseEuroAmount converts a European-formatted monetary string to a float:
// '.' is the thousands separator and ',' the decimal separator, so
// "1.234,56" yields 1234.56. Returns false when no usable digits remain
// after cleanup; malformed input is never an error, just an absent value.
func ParseEuroAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")

	hasDigit := false
	for _, r := range s {
		if r >= '0' && r <= '9' {
			hasDigit = true
			break
		}
	}
	if !hasDigit {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// euroAmountPtr is the pointer-returning variant used when filling optional
// entity fields.
func euroAmountPtr(s string) *float64 {
	v, ok := ParseEuroAmount(s)
	if !ok {
		return nil
	}
	return &v
}

// parseRate converts a percentage fragment like "4,00" or "22" to a float.
func parseRate(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
