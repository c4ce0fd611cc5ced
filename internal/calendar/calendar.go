// Package calendar provides business-day arithmetic in a single fixed
// timezone. Dates are civil dates stored as midnight UTC.
package calendar

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"
)

const (
	DateLayout      = "2006-01-02"
	DefaultTimezone = "America/Belem"
)

var inputLayouts = []string{DateLayout, "02/01/2006", "2/1/2006"}

type Clock struct {
	loc *time.Location
	now func() time.Time
}

func NewClock(timezone string) (*Clock, error) {
	if timezone == "" {
		timezone = DefaultTimezone
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", timezone, err)
	}
	return &Clock{loc: loc, now: time.Now}, nil
}

// NewFixedClock returns a clock frozen at now.
func NewFixedClock(timezone string, now time.Time) (*Clock, error) {
	c, err := NewClock(timezone)
	if err != nil {
		return nil, err
	}
	c.now = func() time.Time { return now }
	return c, nil
}

func (c *Clock) Location() *time.Location {
	return c.loc
}

func (c *Clock) Now() time.Time {
	return c.now()
}

// Today returns the current calendar day in the business timezone.
func (c *Clock) Today() time.Time {
	return c.DateOf(c.now())
}

// DateOf returns the business calendar day that contains t.
func (c *Clock) DateOf(t time.Time) time.Time {
	local := t.In(c.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts calendar days from a to b. Negative when b precedes a.
func DaysBetween(a, b time.Time) int {
	return int(Truncate(b).Sub(Truncate(a)).Hours() / 24)
}

// Truncate drops the clock part of t, keeping the day as written in t's own
// location.
func Truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate accepts YYYY-MM-DD, DD/MM/YYYY and RFC 3339 timestamps. A
// timestamp keeps the day as written in its own offset; use
// (*Clock).ParseDate to resolve it in the business timezone.
func ParseDate(s string) (time.Time, error) {
	t, instant, err := parse(s)
	if err != nil {
		return time.Time{}, err
	}
	if instant {
		return Truncate(t), nil
	}
	return t, nil
}

// ParseDate is like the package ParseDate, but a timestamp resolves to the
// business calendar day that contains it.
func (c *Clock) ParseDate(s string) (time.Time, error) {
	t, instant, err := parse(s)
	if err != nil {
		return time.Time{}, err
	}
	if instant {
		return c.DateOf(t), nil
	}
	return t, nil
}

func parse(s string) (time.Time, bool, error) {
	s = strings.TrimSpace(s)
	for _, layout := range inputLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, false, nil
		}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true, nil
	}
	return time.Time{}, false, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatBR renders a date as DD/MM/YYYY for narratives.
func FormatBR(t time.Time) string {
	return t.Format("02/01/2006")
}
