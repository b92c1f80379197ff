// Package calendar provides a date-only value for due dates and start dates.
package calendar

import (
	"encoding/json"
	"fmt"
	"time"
)

// Layout is the wire format of a Date.
const Layout = "2006-01-02"

// Date is a calendar day with no time of day, held as midnight UTC.
// The zero Date marshals to JSON null.
type Date struct {
	t time.Time
}

// NewDate returns the date for the given day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in t's location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// Parse parses a YYYY-MM-DD string.
func Parse(s string) (Date, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return Date{t: t}, nil
}

// FromUnix restores a Date stored as Unix seconds.
func FromUnix(sec int64) Date {
	return DateOf(time.Unix(sec, 0).UTC())
}

// Unix returns the Unix seconds of midnight UTC.
func (d Date) Unix() int64 { return d.t.Unix() }

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time { return d.t }

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool { return d.t.IsZero() }

// Equal reports whether d and o are the same day.
func (d Date) Equal(o Date) bool { return d.t.Equal(o.t) }

// Before reports whether d is strictly before o.
func (d Date) Before(o Date) bool { return d.t.Before(o.t) }

// After reports whether d is strictly after o.
func (d Date) After(o Date) bool { return d.t.After(o.t) }

// Year and Month expose the date's calendar fields.
func (d Date) Year() int          { return d.t.Year() }
func (d Date) Month() time.Month { return d.t.Month() }

// String formats the date as YYYY-MM-DD, or "" when unset.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(Layout)
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler. Both null and "" yield the zero Date.
func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
