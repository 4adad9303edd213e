package models

import (
	"fmt"
	"strings"
	"time"
)

const (
	// dateInputLayout accepts unpadded day and month ("3/7/24").
	dateInputLayout = "2/1/06"
	// DateLayout is the canonical day/month/2-digit-year rendering.
	DateLayout = "02/01/06"
)

// Date is a calendar day as entered by operators (day/month/yy).
type Date struct {
	time.Time
}

// ParseDate parses a day/month/2-digit-year token.
func ParseDate(raw string) (Date, error) {
	t, err := time.Parse(dateInputLayout, strings.TrimSpace(raw))
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", raw, err)
	}
	return Date{Time: t}, nil
}

// NewDate builds a Date from a calendar day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// MarshalText renders the date in DateLayout.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText parses DateLayout (or its unpadded form).
func (d *Date) UnmarshalText(text []byte) error {
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON overrides the RFC 3339 encoding promoted from time.Time.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON reads the quoted DateLayout form.
func (d *Date) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	return d.UnmarshalText([]byte(raw))
}
