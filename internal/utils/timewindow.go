package utils

import (
	"time"

	"tradecap/internal/domain"
)

// Clock abstracts the time source so window resolution can be tested with a
// fixed instant instead of a process-wide override.
type Clock interface {
	Now() time.Time
}

type systemClock struct {
	loc *time.Location
}

// NewSystemClock returns a Clock reading the wall clock in the given location.
// Falls back to Local if the timezone data is missing.
func NewSystemClock(tz string) Clock {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.Local
	}
	return &systemClock{loc: loc}
}

func (c *systemClock) Now() time.Time {
	return time.Now().In(c.loc)
}

// FixedClock is a Clock pinned to one instant, for tests and dry runs.
type FixedClock struct {
	Instant time.Time
}

func (c FixedClock) Now() time.Time {
	return c.Instant
}

// WindowResolution is the outcome of mapping an instant to a trading window.
type WindowResolution struct {
	Active bool
	Label  domain.WindowLabel
	Date   time.Time // calendar date the window belongs to
	Window string    // canonical identifier, e.g. "2025-02-23 14:00 - 14:30"
}

// ResolveWindow determines whether now lies inside one of the two daily
// trading windows. The canonical policy matches on the hour alone
// (hour == 14 or hour == 19); with strictBoundary the instant must also fall
// within the first 30 minutes of the hour, boundaries inclusive.
func ResolveWindow(now time.Time, strictBoundary bool) WindowResolution {
	var label domain.WindowLabel
	switch now.Hour() {
	case domain.MorningHour:
		label = domain.WindowMorning
	case domain.EveningHour:
		label = domain.WindowEvening
	default:
		return WindowResolution{}
	}

	if strictBoundary && now.Minute() > 30 {
		return WindowResolution{}
	}

	date := Midnight(now)
	return WindowResolution{
		Active: true,
		Label:  label,
		Date:   date,
		Window: label.WindowString(date),
	}
}

// Midnight truncates an instant to 00:00:00 of its calendar day, preserving
// the location.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// IsSunday reports whether the instant falls on a Sunday, the week-boundary
// day on which before-trade deposits also move weekly capital.
func IsSunday(t time.Time) bool {
	return t.Weekday() == time.Sunday
}
