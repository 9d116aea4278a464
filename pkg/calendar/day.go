// Package calendar provides a timezone-free calendar date used for
// per-day records such as activity logs and medication start/end dates.
package calendar

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// Layout is the wire and storage format of a Day.
const Layout = "2006-01-02"

// Day is a calendar date with no time-of-day or zone. The zero value is
// "no date".
type Day struct {
	t time.Time
}

// New returns the given date.
func New(year int, month time.Month, day int) Day {
	return Day{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// Of returns the date of t as observed in t's own location.
func Of(t time.Time) Day {
	y, m, d := t.Date()
	return New(y, m, d)
}

// Today returns the current date in loc.
func Today(loc *time.Location) Day {
	return Of(time.Now().In(loc))
}

// Parse accepts "YYYY-MM-DD" or an RFC3339 timestamp. Timestamps are
// reduced to their UTC date.
func Parse(s string) (Day, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(Layout, s); err == nil {
		return Of(t), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return Of(t.UTC()), nil
	}
	return Day{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
}

func (d Day) IsZero() bool { return d.t.IsZero() }

func (d Day) AddDays(n int) Day { return Day{t: d.t.AddDate(0, 0, n)} }

func (d Day) Before(o Day) bool { return d.t.Before(o.t) }

func (d Day) After(o Day) bool { return d.t.After(o.t) }

func (d Day) Equal(o Day) bool { return d.t.Equal(o.t) }

// DaysUntil returns the number of days from d to o (negative when o is earlier).
func (d Day) DaysUntil(o Day) int {
	return int(o.t.Sub(d.t).Hours() / 24)
}

// At returns the instant at hour:minute on d in loc.
func (d Day) At(hour, minute int, loc *time.Location) time.Time {
	y, m, dd := d.t.Date()
	return time.Date(y, m, dd, hour, minute, 0, 0, loc)
}

func (d Day) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(Layout)
}

func (d Day) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Day) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if s == "" {
		*d = Day{}
		return nil
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ScanDate implements pgtype.DateScanner.
func (d *Day) ScanDate(v pgtype.Date) error {
	if !v.Valid {
		*d = Day{}
		return nil
	}
	*d = Of(v.Time)
	return nil
}

// DateValue implements pgtype.DateValuer.
func (d Day) DateValue() (pgtype.Date, error) {
	if d.IsZero() {
		return pgtype.Date{}, nil
	}
	return pgtype.Date{Time: d.t, Valid: true}, nil
}
