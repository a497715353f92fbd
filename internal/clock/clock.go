// Package clock abstracts "now" so date-dependent rules can be tested.
//
// Dates (scheduled_date, response_deadline, ...) are stored as the instant of
// local midnight in the business timezone, expressed in UTC. "today" is the
// half-open range [StartOfDay(now), StartOfDay(now)+1d).
package clock

import (
	"sync"
	"time"
)

type Clock interface {
	Now() time.Time
	Location() *time.Location
}

type wallClock struct{ loc *time.Location }

// Real returns the wall clock in loc (UTC when nil).
func Real(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return wallClock{loc: loc}
}

func (w wallClock) Now() time.Time           { return time.Now().In(w.loc) }
func (w wallClock) Location() *time.Location { return w.loc }

// Mock is a settable clock.
type Mock struct {
	mu  sync.Mutex
	now time.Time
}

func NewMock(now time.Time) *Mock { return &Mock{now: now} }

func (m *Mock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Mock) Location() *time.Location {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now.Location()
}

func (m *Mock) Set(t time.Time) {
	m.mu.Lock()
	m.now = t
	m.mu.Unlock()
}

func (m *Mock) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.mu.Unlock()
}

// StartOfDay returns local midnight of t's day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	l := t.In(loc)
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, loc)
}

// Today is StartOfDay of c.Now() in c's location, as UTC.
func Today(c Clock) time.Time {
	return StartOfDay(c.Now(), c.Location()).UTC()
}

// MonthRange returns [first instant of this month, first instant of next month), as UTC.
func MonthRange(c Clock) (time.Time, time.Time) {
	l := c.Now().In(c.Location())
	start := time.Date(l.Year(), l.Month(), 1, 0, 0, 0, 0, c.Location())
	return start.UTC(), start.AddDate(0, 1, 0).UTC()
}

// DaysBetween counts whole calendar days from a to b (negative when b is earlier).
func DaysBetween(a, b time.Time, loc *time.Location) int {
	da := StartOfDay(a, loc)
	db := StartOfDay(b, loc)
	ya, ma, dda := da.Date()
	yb, mb, ddb := db.Date()
	ua := time.Date(ya, ma, dda, 0, 0, 0, 0, time.UTC)
	ub := time.Date(yb, mb, ddb, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

// ParseDate parses YYYY-MM-DD as local midnight in loc, returned as UTC.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(time.DateOnly, s, loc)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
