package attendance

import (
	"time"

	"github.com/cmlabs-hris/attendance-client/internal/pkg/validator"
)

// Action is a command that transitions today's record.
type Action string

const (
	ActionClockIn    Action = "clock_in"
	ActionClockOut   Action = "clock_out"
	ActionBreakStart Action = "break_start"
	ActionBreakEnd   Action = "break_end"
)

var actionPaths = map[Action]string{
	ActionClockIn:    "clock-in",
	ActionClockOut:   "clock-out",
	ActionBreakStart: "break-start",
	ActionBreakEnd:   "break-end",
}

// Path returns the endpoint segment under /time for the action.
func (a Action) Path() string {
	return actionPaths[a]
}

func (a Action) Valid() bool {
	_, ok := actionPaths[a]
	return ok
}

// ActionFromPath maps an endpoint segment back to its action.
func ActionFromPath(segment string) (Action, bool) {
	for a, p := range actionPaths {
		if p == segment {
			return a, true
		}
	}
	return "", false
}

type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ClockRequest is the body sent with a clock action.
type ClockRequest struct {
	Action    Action    `json:"-"`
	Timestamp time.Time `json:"timestamp"`
	Location  *Location `json:"location,omitempty"`
}

func (r *ClockRequest) Validate() error {
	var errs validator.ValidationErrors

	if !r.Action.Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "action",
			Message: "action must be one of clock_in, clock_out, break_start, break_end",
		})
	}

	if r.Timestamp.IsZero() {
		errs = append(errs, validator.ValidationError{
			Field:   "timestamp",
			Message: "timestamp is required",
		})
	}

	if r.Location != nil {
		if r.Location.Lat < -90 || r.Location.Lat > 90 {
			errs = append(errs, validator.ValidationError{
				Field:   "location.lat",
				Message: "lat must be between -90 and 90",
			})
		}
		if r.Location.Lng < -180 || r.Location.Lng > 180 {
			errs = append(errs, validator.ValidationError{
				Field:   "location.lng",
				Message: "lng must be between -180 and 180",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}
