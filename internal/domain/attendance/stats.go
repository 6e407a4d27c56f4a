package attendance

import "math"

// ComputeStats summarises records that fall in [startDate, endDate].
// AverageHours is taken over closed records only.
func ComputeStats(startDate, endDate string, records []Record) Stats {
	stats := Stats{StartDate: startDate, EndDate: endDate}

	closed := 0
	for i := range records {
		r := &records[i]
		if r.Date < startDate || r.Date > endDate {
			continue
		}
		stats.TotalDays++
		switch r.Status {
		case StatusPresent, StatusEarlyLeave:
			stats.PresentDays++
		case StatusLate:
			stats.LateDays++
		case StatusAbsent:
			stats.AbsentDays++
		}
		if r.Closed() {
			closed++
		}
	}

	stats.TotalHours = SumHours(inRange(startDate, endDate, records))
	if closed > 0 {
		stats.AverageHours = math.Round(stats.TotalHours/float64(closed)*10) / 10
	}
	return stats
}

func inRange(startDate, endDate string, records []Record) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.Date >= startDate && r.Date <= endDate {
			out = append(out, r)
		}
	}
	return out
}
