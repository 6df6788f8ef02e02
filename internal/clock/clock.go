// Package clock provides an injectable time source and the calendar helpers
// used by the rate limiter and the daily celebration matcher.
//
// All instants handed to the persistence layer are UTC. Calendar questions
// ("is this record due today?") are answered against a date that the caller
// has already converted into the configured business timezone.
package clock

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

// DateLayout is the persisted form of a calendar date (delivery sent_date).
const DateLayout = "2006-01-02"

// ErrInvalidMonthDay is returned by ParseMonthDay for malformed MM-DD values.
var ErrInvalidMonthDay = errors.New("date must be in MM-DD format")

// Clock is a source of the current instant.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock.
type RealClock struct{}

// Now returns the current system time in UTC.
func (RealClock) Now() time.Time {
	return time.Now().UTC()
}

// FakeClock is a manually driven Clock for tests. It is safe for concurrent use.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFake returns a FakeClock stopped at start.
func NewFake(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

// Now returns the fake's current instant.
func (f *FakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Advance moves the fake forward by d.
func (f *FakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

// Set moves the fake to t.
func (f *FakeClock) Set(t time.Time) {
	f.mu.Lock()
	f.now = t
	f.mu.Unlock()
}

// WindowBounds returns the fixed window [start, start+d) anchored at
// windowStart and whether now falls inside it. A zero windowStart is never
// inside.
func WindowBounds(windowStart, now time.Time, d time.Duration) (start, end time.Time, inside bool) {
	start = windowStart
	end = windowStart.Add(d)
	if windowStart.IsZero() {
		return start, end, false
	}
	return start, end, !now.Before(start) && now.Before(end)
}

// ParseMonthDay validates an "MM-DD" string against the longest possible
// month (so "02-29" is accepted) and returns its components.
func ParseMonthDay(s string) (time.Month, int, error) {
	s = strings.TrimSpace(s)
	if len(s) != 5 || s[2] != '-' {
		return 0, 0, ErrInvalidMonthDay
	}
	m, err1 := strconv.Atoi(s[:2])
	d, err2 := strconv.Atoi(s[3:])
	if err1 != nil || err2 != nil || m < 1 || m > 12 || d < 1 {
		return 0, 0, ErrInvalidMonthDay
	}
	// 2000 is a leap year, so Feb has 29 days here.
	last := time.Date(2000, time.Month(m)+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if d > last {
		return 0, 0, ErrInvalidMonthDay
	}
	return time.Month(m), d, nil
}

// MonthDay formats t as "MM-DD" in t's own location.
func MonthDay(t time.Time) string {
	return fmt.Sprintf("%02d-%02d", int(t.Month()), t.Day())
}

// IsDueToday reports whether a recurring MM-DD event falls on today's
// calendar date. Feb 29 events are due only on Feb 29; in non-leap years
// they are not shifted to another day.
func IsDueToday(monthDay string, today time.Time) bool {
	m, d, err := ParseMonthDay(monthDay)
	if err != nil {
		return false
	}
	return today.Month() == m && today.Day() == d
}

// DateKey formats the calendar date of t (in t's location) as YYYY-MM-DD.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// YearsSince returns how many full years have elapsed between year and
// today's year, or 0 when year is unknown or in the future.
func YearsSince(year int, today time.Time) int {
	if year <= 0 || year > today.Year() {
		return 0
	}
	return today.Year() - year
}

// StartOfDay returns midnight of t's calendar date in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
}
