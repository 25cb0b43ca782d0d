package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCalendarKeys(t *testing.T) {
	start := time.Date(2026, time.October, 15, 23, 30, 0, 0, time.UTC)
	fake := NewFake(start)
	cal := NewCalendar(fake, time.UTC)

	assert.Equal(t, "2026-10-15", cal.Today())
	assert.Equal(t, "2026-10-14", cal.Yesterday())
	assert.Equal(t, "2026-W42", cal.WeekKey(start))
	assert.Equal(t, "2026-Q4", cal.SeasonKey(start))

	fake.Advance(time.Hour)
	assert.Equal(t, "2026-10-16", cal.Today())
}

func TestCalendarWindowEnds(t *testing.T) {
	cal := NewCalendar(Real{}, time.UTC)
	thu := time.Date(2026, time.October, 15, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2026, time.October, 16, 0, 0, 0, 0, time.UTC), cal.EndOfDay(thu))
	assert.Equal(t, time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC), cal.EndOfWeek(thu))
	assert.Equal(t, time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC), cal.EndOfSeason(thu))
}

func TestDaysBetween(t *testing.T) {
	cal := NewCalendar(Real{}, time.UTC)

	d, ok := cal.DaysBetween("2026-10-14", "2026-10-15")
	assert.True(t, ok)
	assert.Equal(t, 1, d)

	d, ok = cal.DaysBetween("2026-12-31", "2027-01-02")
	assert.True(t, ok)
	assert.Equal(t, 2, d)

	_, ok = cal.DaysBetween("", "2026-10-15")
	assert.False(t, ok)
}
