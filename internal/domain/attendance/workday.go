package attendance

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-client/internal/pkg/validator"
)

// Workday is the schedule the development API classifies attendance against.
type Workday struct {
	Start     time.Duration // offset from local midnight
	End       time.Duration
	LateGrace time.Duration
	Location  *time.Location
}

// ParseWorkday builds a Workday from "HH:MM" start and end times.
func ParseWorkday(start, end string, lateGrace time.Duration, loc *time.Location) (Workday, error) {
	s, ok := validator.IsValidClock(start)
	if !ok {
		return Workday{}, fmt.Errorf("invalid workday start %q: want HH:MM", start)
	}
	e, ok := validator.IsValidClock(end)
	if !ok {
		return Workday{}, fmt.Errorf("invalid workday end %q: want HH:MM", end)
	}
	if e <= s {
		return Workday{}, fmt.Errorf("workday end %s must be after start %s", end, start)
	}
	if loc == nil {
		loc = time.Local
	}
	return Workday{Start: s, End: e, LateGrace: lateGrace, Location: loc}, nil
}

// Date is the working day t belongs to.
func (w Workday) Date(t time.Time) string {
	return t.In(w.Location).Format(validator.DateLayout)
}

func (w Workday) midnight(t time.Time) time.Time {
	local := t.In(w.Location)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, w.Location)
}

// StartOf returns the scheduled start on t's working day.
func (w Workday) StartOf(t time.Time) time.Time {
	return w.midnight(t).Add(w.Start)
}

// EndOf returns the scheduled end on t's working day.
func (w Workday) EndOf(t time.Time) time.Time {
	return w.midnight(t).Add(w.End)
}

// ClassifyClockIn is LATE once the grace period after the start has passed.
func (w Workday) ClassifyClockIn(t time.Time) Status {
	if t.After(w.StartOf(t).Add(w.LateGrace)) {
		return StatusLate
	}
	return StatusPresent
}

// LeftEarly reports a clock-out before the scheduled end.
func (w Workday) LeftEarly(t time.Time) bool {
	return t.Before(w.EndOf(t))
}

// IsWorkingDay is false on weekends.
func (w Workday) IsWorkingDay(t time.Time) bool {
	switch t.In(w.Location).Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return true
}
