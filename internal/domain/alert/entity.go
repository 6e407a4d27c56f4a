package alert

import (
	"time"
)

// Type is the kind of attendance anomaly an alert reports.
type Type string

const (
	TypeLate            Type = "late"
	TypeAbsent          Type = "absent"
	TypeMissingClockOut Type = "missing_clock_out"
)

// AllTypes returns all available alert types
func AllTypes() []Type {
	return []Type{TypeLate, TypeAbsent, TypeMissingClockOut}
}

// Alert is a read-only notification surfaced to managers. Only IsRead may change.
type Alert struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	Date      string    `json:"date"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

// Unread filters alerts down to those not yet read.
func Unread(alerts []Alert) []Alert {
	var out []Alert
	for _, a := range alerts {
		if !a.IsRead {
			out = append(out, a)
		}
	}
	return out
}
