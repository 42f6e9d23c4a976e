package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, DefaultLocation)
}

func TestStartOfWeek_MondayAnchor(t *testing.T) {
	anchor := NewWeekAnchor(DefaultLocation, time.Monday)

	// Wednesday 2026-01-07 -> Monday 2026-01-05 00:00
	got := anchor.StartOfWeek(date(2026, time.January, 7, 15, 30))
	assert.Equal(t, date(2026, time.January, 5, 0, 0), got)

	// Monday itself stays put
	got = anchor.StartOfWeek(date(2026, time.January, 5, 0, 0))
	assert.Equal(t, date(2026, time.January, 5, 0, 0), got)

	// Sunday belongs to the week that started the previous Monday
	got = anchor.StartOfWeek(date(2026, time.January, 11, 23, 59))
	assert.Equal(t, date(2026, time.January, 5, 0, 0), got)
}

func TestStartOfWeek_SundayAnchor(t *testing.T) {
	anchor := NewWeekAnchor(DefaultLocation, time.Sunday)

	got := anchor.StartOfWeek(date(2026, time.January, 7, 12, 0))
	assert.Equal(t, date(2026, time.January, 4, 0, 0), got)
}

func TestSameWeek(t *testing.T) {
	anchor := NewWeekAnchor(DefaultLocation, time.Monday)

	assert.True(t, anchor.SameWeek(
		date(2026, time.January, 5, 0, 0),
		date(2026, time.January, 11, 23, 59),
	))
	assert.False(t, anchor.SameWeek(
		date(2026, time.January, 11, 23, 59),
		date(2026, time.January, 12, 0, 0),
	))
}

func TestWindowExpired(t *testing.T) {
	anchor := NewWeekAnchor(DefaultLocation, time.Monday)
	windowStart := date(2026, time.January, 5, 0, 0)

	// Inside the window, including the last instant
	assert.False(t, anchor.WindowExpired(windowStart, windowStart))
	assert.False(t, anchor.WindowExpired(windowStart, date(2026, time.January, 11, 23, 59)))

	// Exactly one week later the window is over
	assert.True(t, anchor.WindowExpired(windowStart, date(2026, time.January, 12, 0, 0)))
	assert.True(t, anchor.WindowExpired(windowStart, date(2026, time.March, 1, 0, 0)))
}

func TestFixedClock(t *testing.T) {
	at := date(2026, time.January, 5, 10, 0)
	clock := FixedClock{At: at}
	assert.Equal(t, at, clock.Now())
}
