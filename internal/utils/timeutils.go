package utils

import (
	"fmt"
	"math"
	"strings"
)

// Placeholder is the token operators type for a value they could not record.
const Placeholder = "x"

// IsPlaceholder reports whether token is the (case-insensitive) placeholder.
func IsPlaceholder(token string) bool {
	return strings.EqualFold(strings.TrimSpace(token), Placeholder)
}

// ParseClock converts a 4-digit "HHMM" clock token into fractional hours.
// Placeholder and empty tokens decode to nil without error.
func ParseClock(raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || IsPlaceholder(raw) {
		return nil, nil
	}
	if len(raw) != 4 {
		return nil, fmt.Errorf("clock value %q must have 4 digits", raw)
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return nil, fmt.Errorf("clock value %q must be numeric", raw)
		}
	}

	hours := int(raw[0]-'0')*10 + int(raw[1]-'0')
	minutes := int(raw[2]-'0')*10 + int(raw[3]-'0')
	value := float64(hours) + float64(minutes)/60
	return &value, nil
}

// FormatClock renders fractional hours as "HHMM". The hour truncates toward
// zero, minutes round to the nearest integer; nil renders as "".
func FormatClock(hours *float64) string {
	if hours == nil || math.IsNaN(*hours) || math.IsInf(*hours, 0) {
		return ""
	}
	h := int(*hours)
	m := int(math.Round((*hours - float64(h)) * 60))
	if m == 60 {
		h++
		m = 0
	}
	return fmt.Sprintf("%02d%02d", h, m)
}
