package attendance

import (
	"time"
)

// Status is the server-assigned classification of a day. The client never computes it.
type Status string

const (
	StatusPresent    Status = "PRESENT"
	StatusLate       Status = "LATE"
	StatusAbsent     Status = "ABSENT"
	StatusEarlyLeave Status = "EARLY_LEAVE"
)

// Phase is the client-derived position within the working day.
type Phase string

const (
	PhaseClockedOut Phase = "clocked_out"
	PhaseClockedIn  Phase = "clocked_in"
	PhaseOnBreak    Phase = "on_break"
)

// Record is the one-per-user-per-day attendance row.
type Record struct {
	ID         string     `json:"id,omitempty"`
	UserID     string     `json:"userId,omitempty"`
	UserName   string     `json:"userName,omitempty"`
	Date       string     `json:"date"`
	ClockIn    *time.Time `json:"clockIn,omitempty"`
	ClockOut   *time.Time `json:"clockOut,omitempty"`
	BreakStart *time.Time `json:"breakStart,omitempty"`
	BreakEnd   *time.Time `json:"breakEnd,omitempty"`
	TotalHours *float64   `json:"totalHours,omitempty"`
	Status     Status     `json:"status"`
	Notes      *string    `json:"notes,omitempty"`
}

// Closed reports whether the day has been clocked out.
func (r *Record) Closed() bool {
	return r != nil && r.ClockIn != nil && r.ClockOut != nil
}

// Clone returns a deep copy so callers cannot mutate held state.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	c.ClockIn = cloneTime(r.ClockIn)
	c.ClockOut = cloneTime(r.ClockOut)
	c.BreakStart = cloneTime(r.BreakStart)
	c.BreakEnd = cloneTime(r.BreakEnd)
	if r.TotalHours != nil {
		h := *r.TotalHours
		c.TotalHours = &h
	}
	if r.Notes != nil {
		n := *r.Notes
		c.Notes = &n
	}
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// Stats summarises attendance over a date range.
type Stats struct {
	StartDate    string  `json:"startDate"`
	EndDate      string  `json:"endDate"`
	TotalDays    int     `json:"totalDays"`
	PresentDays  int     `json:"presentDays"`
	LateDays     int     `json:"lateDays"`
	AbsentDays   int     `json:"absentDays"`
	TotalHours   float64 `json:"totalHours"`
	AverageHours float64 `json:"averageHours"`
}
