package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

const dateFormat = "2006-01-02"

// Date is a calendar day without time or zone. The zero value is "no date".
// Dates are comparable and can be used as map keys.
type Date struct {
	civil.Date
}

// NewDate normalizes its arguments the way time.Date does, so 2024-02-30 becomes 2024-03-01.
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	return Date{civil.DateOf(t)}
}

// ParseDate accepts YYYY-MM-DD or any ISO 8601 date-time starting with it; only the
// date part is kept.
func ParseDate(s string) (Date, error) {
	if len(s) < len(dateFormat) {
		return Date{}, fmt.Errorf("invalid date %q", s)
	}
	d, err := civil.ParseDate(s[:len(dateFormat)])
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{d}, nil
}

// MustParseDate is ParseDate for constants and tests.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) IsZero() bool {
	return d == Date{}
}

// Time returns midnight UTC of d.
func (d Date) Time() time.Time {
	return d.In(time.UTC)
}

func (d Date) AddDays(n int) Date {
	return Date{d.Date.AddDays(n)}
}

// DaysUntil returns the number of days from d to o, negative if o is before d.
func (d Date) DaysUntil(o Date) int {
	return o.DaysSince(d.Date)
}

// Equal reports whether both dates denote the same day.
func (d Date) Equal(o Date) bool {
	return d == o
}

func (d Date) Before(o Date) bool {
	return d.Date.Before(o.Date)
}

func (d Date) After(o Date) bool {
	return d.Date.After(o.Date)
}

func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
