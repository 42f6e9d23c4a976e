// Package timeutil provides week-window helpers for the XP ledger.
// Weekly XP buckets are fixed 7-day windows anchored to the start of the week
// in a configured timezone, so the anchor must be computed consistently at
// credit time and at read time.
// No external dependencies - uses only standard library.
package timeutil

import (
	"time"
)

// DefaultLocation is used when no timezone is configured (UTC+8, no DST).
var DefaultLocation = time.FixedZone("Asia/Taipei", 8*60*60)

// Clock supplies the current time. Production code uses SystemClock;
// tests substitute a fixed clock.
type Clock interface {
	Now() time.Time
}

// SystemClock is the real clock.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant. Intended for tests.
type FixedClock struct {
	At time.Time
}

// Now returns the fixed instant.
func (c FixedClock) Now() time.Time { return c.At }

// WeekAnchor computes weekly window boundaries in a fixed location with a
// fixed first day of the week.
type WeekAnchor struct {
	Location *time.Location
	FirstDay time.Weekday
}

// NewWeekAnchor creates a WeekAnchor. A nil location falls back to
// DefaultLocation; the zero FirstDay is Sunday, which matches time.Weekday.
func NewWeekAnchor(loc *time.Location, firstDay time.Weekday) WeekAnchor {
	if loc == nil {
		loc = DefaultLocation
	}
	return WeekAnchor{Location: loc, FirstDay: firstDay}
}

// StartOfDay returns 00:00:00 of t's day in the anchor location.
func (a WeekAnchor) StartOfDay(t time.Time) time.Time {
	local := t.In(a.Location)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, a.Location)
}

// StartOfWeek returns the start of the weekly window containing t.
func (a WeekAnchor) StartOfWeek(t time.Time) time.Time {
	local := t.In(a.Location)
	back := (int(local.Weekday()) - int(a.FirstDay) + 7) % 7
	return a.StartOfDay(local.AddDate(0, 0, -back))
}

// EndOfWeek returns the exclusive end of the weekly window containing t,
// i.e. the start of the next window.
func (a WeekAnchor) EndOfWeek(t time.Time) time.Time {
	return a.StartOfWeek(t).AddDate(0, 0, 7)
}

// SameWeek reports whether two instants fall into the same weekly window.
func (a WeekAnchor) SameWeek(t1, t2 time.Time) bool {
	return a.StartOfWeek(t1).Equal(a.StartOfWeek(t2))
}

// WindowExpired reports whether the window starting at windowStart no longer
// contains now.
func (a WeekAnchor) WindowExpired(windowStart, now time.Time) bool {
	return !now.Before(windowStart.AddDate(0, 0, 7))
}
