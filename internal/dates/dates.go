// Package dates holds calendar-date helpers shared by the anniversary engine,
// storage and the chat/API surfaces. A calendar date is a time.Time at
// midnight UTC; only its year, month and day carry meaning.
package dates

import (
	"strings"
	"time"
)

// Layout is the persisted and wire form of a calendar date.
const Layout = "2006-01-02"

// Day truncates t to its calendar date, keeping t's wall-clock date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Date builds a calendar date. Out-of-range values normalise like time.Date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Today returns the current calendar date in loc.
func Today(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return Day(time.Now().In(loc))
}

// Format renders a calendar date as YYYY-MM-DD.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// ParseDateOrNull parses YYYY-MM-DD. Blank or malformed input yields nil.
func ParseDateOrNull(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := time.Parse(Layout, s)
	if err != nil {
		return nil
	}
	t = Day(t)
	return &t
}

// AddYears adds n calendar years. Feb 29 lands on Feb 28 in non-leap years
// instead of rolling over into March.
func AddYears(t time.Time, n int) time.Time {
	y := t.Year() + n
	m, d := t.Month(), t.Day()
	if m == time.February && d == 29 && !IsLeap(y) {
		d = 28
	}
	return Date(y, m, d)
}

// IsLeap reports whether year is a Gregorian leap year.
func IsLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysBetween returns the whole days from a to b (negative when b is earlier).
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}

// Max returns the later of two dates.
func Max(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}

// Set is a set of calendar dates.
type Set map[time.Time]struct{}

// NewSet builds a set from the given dates.
func NewSet(ds ...time.Time) Set {
	s := make(Set, len(ds))
	for _, d := range ds {
		s.Add(d)
	}
	return s
}

func (s Set) Add(d time.Time) {
	s[Day(d)] = struct{}{}
}

func (s Set) Has(d time.Time) bool {
	_, ok := s[Day(d)]
	return ok
}
