package schedule

import (
	"fmt"
	"time"
)

// ClockTime is a year-agnostic instant: a month-day plus a time of day.
// Persisted grids store every entry start as a ClockTime so one generated
// grid can be replayed across calendar years. All timezone and leap-year
// policy lives in the anchoring helpers below.
type ClockTime struct {
	Month  time.Month
	Day    int
	Hour   int
	Minute int
	Second int
}

// ClockTimeOf projects an absolute instant onto its year-agnostic form
func ClockTimeOf(t time.Time) ClockTime {
	return ClockTime{
		Month:  t.Month(),
		Day:    t.Day(),
		Hour:   t.Hour(),
		Minute: t.Minute(),
		Second: t.Second(),
	}
}

// ParseClockTime parses the persisted "MM-DD HH:MM:SS" representation
func ParseClockTime(s string) (ClockTime, error) {
	var c ClockTime
	var month int
	n, err := fmt.Sscanf(s, "%2d-%2d %2d:%2d:%2d", &month, &c.Day, &c.Hour, &c.Minute, &c.Second)
	if err != nil || n != 5 {
		return ClockTime{}, fmt.Errorf("malformed clock time %q (want MM-DD HH:MM:SS)", s)
	}
	c.Month = time.Month(month)
	if c.Month < time.January || c.Month > time.December || c.Day < 1 || c.Day > 31 {
		return ClockTime{}, fmt.Errorf("clock time %q has out-of-range date", s)
	}
	if c.Hour > 23 || c.Minute > 59 || c.Second > 59 {
		return ClockTime{}, fmt.Errorf("clock time %q has out-of-range time of day", s)
	}
	return c, nil
}

// String renders the persisted "MM-DD HH:MM:SS" representation
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d-%02d %02d:%02d:%02d", int(c.Month), c.Day, c.Hour, c.Minute, c.Second)
}

// MonthDay renders the MM-DD portion
func (c ClockTime) MonthDay() string {
	return fmt.Sprintf("%02d-%02d", int(c.Month), c.Day)
}

// TimeOfDay renders the HH:MM:SS portion
func (c ClockTime) TimeOfDay() string {
	return fmt.Sprintf("%02d:%02d:%02d", c.Hour, c.Minute, c.Second)
}

// Anchor places the clock time into a concrete year and location.
// A Feb-29 clock time anchored to a non-leap year normalizes to Mar-1,
// per time.Date semantics.
func (c ClockTime) Anchor(year int, loc *time.Location) time.Time {
	return time.Date(year, c.Month, c.Day, c.Hour, c.Minute, c.Second, 0, loc)
}

// AnchorDayOfYear maps a 1-based day-of-year onto a concrete year, keeping
// the given time of day. Day-of-year is the authoritative re-anchoring key
// for persisted grids: a 365-day grid lands on Jan-1 through Dec-30/31 of
// any target year with no gaps and no invalid dates.
func AnchorDayOfYear(year, dayOfYear int, c ClockTime, loc *time.Location) time.Time {
	d := time.Date(year, time.January, 1, c.Hour, c.Minute, c.Second, 0, loc)
	return d.AddDate(0, 0, dayOfYear-1)
}
