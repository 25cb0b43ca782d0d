package clock

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Calendar turns instants into the calendar keys used for daily, weekly and
// season windows. All keys are computed in a single location so that a day
// boundary is the same for every component of a session.
type Calendar struct {
	clock Clock
	loc   *time.Location
}

// NewCalendar returns a calendar over the given clock. A nil location means UTC.
func NewCalendar(c Clock, loc *time.Location) *Calendar {
	if c == nil {
		c = Real{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Calendar{clock: c, loc: loc}
}

// Now returns the current instant in the calendar's location.
func (c *Calendar) Now() time.Time {
	return c.clock.Now().In(c.loc)
}

// Location returns the calendar's location.
func (c *Calendar) Location() *time.Location {
	return c.loc
}

// Today returns the current date key (YYYY-MM-DD).
func (c *Calendar) Today() string {
	return c.DateKey(c.Now())
}

// Yesterday returns the date key of the day before today.
func (c *Calendar) Yesterday() string {
	n := c.Now()
	return c.DateKey(time.Date(n.Year(), n.Month(), n.Day()-1, 12, 0, 0, 0, c.loc))
}

// DateKey formats t as a date key in the calendar's location.
func (c *Calendar) DateKey(t time.Time) string {
	return t.In(c.loc).Format(dateLayout)
}

// WeekKey returns the ISO week key (YYYY-Www) containing t.
func (c *Calendar) WeekKey(t time.Time) string {
	year, week := t.In(c.loc).ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// SeasonKey returns the calendar quarter key (YYYY-Qn) containing t.
func (c *Calendar) SeasonKey(t time.Time) string {
	t = t.In(c.loc)
	return fmt.Sprintf("%04d-Q%d", t.Year(), (int(t.Month())-1)/3+1)
}

// EndOfDay returns the first instant of the day after t.
func (c *Calendar) EndOfDay(t time.Time) time.Time {
	t = t.In(c.loc)
	return time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, c.loc)
}

// EndOfWeek returns the first instant of the ISO week after t (Monday 00:00).
func (c *Calendar) EndOfWeek(t time.Time) time.Time {
	t = t.In(c.loc)
	offset := (int(t.Weekday()) + 6) % 7 // days since Monday
	monday := time.Date(t.Year(), t.Month(), t.Day()-offset, 0, 0, 0, 0, c.loc)
	return monday.AddDate(0, 0, 7)
}

// EndOfSeason returns the first instant of the quarter after t.
func (c *Calendar) EndOfSeason(t time.Time) time.Time {
	t = t.In(c.loc)
	firstMonth := time.Month(((int(t.Month())-1)/3)*3 + 1)
	return time.Date(t.Year(), firstMonth+3, 1, 0, 0, 0, 0, c.loc)
}

// DaysBetween returns the number of calendar days from date key a to date key
// b. It returns false if either key fails to parse.
func (c *Calendar) DaysBetween(a, b string) (int, bool) {
	ta, err := time.ParseInLocation(dateLayout, a, c.loc)
	if err != nil {
		return 0, false
	}
	tb, err := time.ParseInLocation(dateLayout, b, c.loc)
	if err != nil {
		return 0, false
	}
	// Noon avoids DST edges collapsing or doubling a day.
	ta = time.Date(ta.Year(), ta.Month(), ta.Day(), 12, 0, 0, 0, c.loc)
	tb = time.Date(tb.Year(), tb.Month(), tb.Day(), 12, 0, 0, 0, c.loc)
	return int(tb.Sub(ta).Round(24*time.Hour) / (24 * time.Hour)), true
}
