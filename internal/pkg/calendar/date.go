// Package calendar provides a date without time-of-day. A Date is always held as
// midnight UTC so that two dates compare equal exactly when year, month and day match.
package calendar

import (
	"encoding/json"
	"fmt"
	"time"
)

const Layout = "2006-01-02"

const day = 24 * time.Hour

type Date struct {
	t time.Time
}

func New(year int, month time.Month, dayOfMonth int) Date {
	return Date{t: time.Date(year, month, dayOfMonth, 0, 0, 0, 0, time.UTC)}
}

// Of returns the calendar date that instant t falls on when observed in loc.
func Of(t time.Time, loc *time.Location) Date {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return New(y, m, d)
}

// FromTime keeps the year, month and day of t as stored, ignoring its clock and zone.
// Use it for values read from DATE columns.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return New(y, m, d)
}

func Parse(s string) (Date, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return FromTime(t), nil
}

func (d Date) Time() time.Time { return d.t }
func (d Date) Year() int { return d.t.Year() }
func (d Date) Month() time.Month { return d.t.Month() }
func (d Date) Day() int { return d.t.Day() }
func (d Date) IsZero() bool { return d.t.IsZero() }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(Layout)
}

func (d Date) Equal(other Date) bool { return d.t.Equal(other.t) }
func (d Date) Before(other Date) bool { return d.t.Before(other.t) }
func (d Date) After(other Date) bool { return d.t.After(other.t) }

func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

// InclusiveDays counts the days covered by start..end, both ends included.
// Returns 0 when end is before start.
func InclusiveDays(start, end Date) int {
	if end.Before(start) {
		return 0
	}
	diff := end.t.Sub(start.t)
	days := int(diff / day)
	if diff%day != 0 {
		days++
	}
	return days + 1
}

// MonthRange returns the first and last day of the given month.
func MonthRange(year int, month time.Month) (Date, Date) {
	first := New(year, month, 1)
	return first, Date{t: first.t.AddDate(0, 1, -1)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
