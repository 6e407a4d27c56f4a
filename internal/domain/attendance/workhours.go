package attendance

import (
	"fmt"
	"math"
	"time"
)

// WorkingTime is the elapsed working time of a record.
// Flagged is set when the raw inputs produced a negative duration and the result was clamped.
type WorkingTime struct {
	Minutes int
	Flagged bool
	Reason  string
}

// String formats as hours and zero-padded minutes, e.g. 125 -> "2:05".
func (w WorkingTime) String() string {
	return fmt.Sprintf("%d:%02d", w.Minutes/60, w.Minutes%60)
}

// Hours returns the working time as fractional hours.
func (w WorkingTime) Hours() float64 {
	return float64(w.Minutes) / 60
}

// ComputeWorkingTime returns working minutes from clock-in to clock-out, or to now for an
// open shift, less a closed break. An open break is not subtracted.
func ComputeWorkingTime(r *Record, now time.Time) WorkingTime {
	if r == nil || r.ClockIn == nil {
		return WorkingTime{}
	}

	end := now
	if r.ClockOut != nil {
		end = *r.ClockOut
	}

	minutes := wholeMinutes(end.Sub(*r.ClockIn))
	if minutes < 0 {
		return WorkingTime{Flagged: true, Reason: "clock-out is before clock-in"}
	}

	var w WorkingTime
	if r.BreakStart != nil && r.BreakEnd != nil {
		breakMinutes := wholeMinutes(r.BreakEnd.Sub(*r.BreakStart))
		if breakMinutes < 0 {
			w.Flagged = true
			w.Reason = "break end is before break start"
			breakMinutes = 0
		}
		minutes -= breakMinutes
	}

	if minutes < 0 {
		return WorkingTime{Flagged: true, Reason: "break is longer than the shift"}
	}

	w.Minutes = minutes
	return w
}

// FormatWorkingHours is ComputeWorkingTime rendered as "H:MM".
func FormatWorkingHours(r *Record, now time.Time) string {
	return ComputeWorkingTime(r, now).String()
}

// SumHours totals the working hours of closed records, rounded to one decimal.
// Open records contribute nothing, matching the monthly history view.
func SumHours(records []Record) float64 {
	total := 0
	for i := range records {
		if !records[i].Closed() {
			continue
		}
		total += ComputeWorkingTime(&records[i], *records[i].ClockOut).Minutes
	}
	return math.Round(float64(total)/60*10) / 10
}

func wholeMinutes(d time.Duration) int {
	return int(math.Floor(d.Minutes()))
}
