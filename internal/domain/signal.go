package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// WindowLabel identifies one of the two fixed daily trading windows.
type WindowLabel string

const (
	WindowMorning WindowLabel = "morning"
	WindowEvening WindowLabel = "evening"
)

// Trading window opening hours (local time). Each window spans 30 minutes.
const (
	MorningHour = 14
	EveningHour = 19
)

// SignalStatus constants. The transition not-started -> completed is one-way.
const (
	SignalNotStarted = "not-started"
	SignalCompleted  = "completed"
)

// Signal represents one user's pending or executed trade for one window on one
// date. At most one signal exists per (user, calendar_date, window_label).
type Signal struct {
	ID              uuid.UUID   `json:"id"`
	UserID          uuid.UUID   `json:"user_id"`
	Title           string      `json:"title"`
	CalendarDate    time.Time   `json:"calendar_date"`
	WindowLabel     WindowLabel `json:"window_label"`
	Status          string      `json:"status"`
	Traded          bool        `json:"traded"`
	StartingCapital float64     `json:"starting_capital"`
	FinalCapital    float64     `json:"final_capital"`
	Profit          float64     `json:"profit"`
	CreatedAt       time.Time   `json:"created_at"`
}

// Hour returns the opening hour of the window.
func (w WindowLabel) Hour() int {
	if w == WindowEvening {
		return EveningHour
	}
	return MorningHour
}

// Order returns the replay order of the window within a day. Morning replays
// before evening; processing out of order corrupts the capital chain.
func (w WindowLabel) Order() int {
	if w == WindowEvening {
		return 1
	}
	return 0
}

// Valid reports whether the label is one of the two known windows.
func (w WindowLabel) Valid() bool {
	return w == WindowMorning || w == WindowEvening
}

// WindowString renders the canonical window identifier for a date,
// e.g. "2025-02-23 14:00 - 14:30".
func (w WindowLabel) WindowString(date time.Time) string {
	h := w.Hour()
	return fmt.Sprintf("%s %02d:00 - %02d:30", date.Format("2006-01-02"), h, h)
}

// WindowString renders the signal's window identifier.
func (s *Signal) WindowString() string {
	return s.WindowLabel.WindowString(s.CalendarDate)
}

// Pending reports whether the signal has not been executed yet.
func (s *Signal) Pending() bool {
	return s.Status == SignalNotStarted
}
