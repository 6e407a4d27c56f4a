package request

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-client/internal/pkg/validator"
)

type CreateLeaveRequest struct {
	Type      LeaveType `json:"type"`
	StartDate string    `json:"startDate"`
	EndDate   string    `json:"endDate"`
	Reason    string    `json:"reason"`
}

func (r *CreateLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	// Type
	if !r.Type.Valid() {
		types := make([]string, len(LeaveTypes))
		for i, t := range LeaveTypes {
			types[i] = string(t)
		}
		errs = append(errs, validator.ValidationError{
			Field:   "type",
			Message: "type must be one of " + strings.Join(types, ", "),
		})
	}

	// Date range
	start, startOK := validator.IsValidDate(r.StartDate)
	if !startOK {
		errs = append(errs, validator.ValidationError{
			Field:   "startDate",
			Message: "startDate must be in YYYY-MM-DD format",
		})
	}
	end, endOK := validator.IsValidDate(r.EndDate)
	if !endOK {
		errs = append(errs, validator.ValidationError{
			Field:   "endDate",
			Message: "endDate must be in YYYY-MM-DD format",
		})
	}
	if startOK && endOK && end.Before(start) {
		errs = append(errs, validator.ValidationError{
			Field:   "endDate",
			Message: "endDate must not be before startDate",
		})
	}

	// Reason
	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Days returns the inclusive length of the leave. Call after Validate.
func (r *CreateLeaveRequest) Days() int {
	start, _ := time.Parse(validator.DateLayout, r.StartDate)
	end, _ := time.Parse(validator.DateLayout, r.EndDate)
	return int(end.Sub(start).Hours()/24) + 1
}

type CreateTimeModificationRequest struct {
	Date              string     `json:"date"`
	RequestedClockIn  *time.Time `json:"requestedClockIn,omitempty"`
	RequestedClockOut *time.Time `json:"requestedClockOut,omitempty"`
	Reason            string     `json:"reason"`
}

func (r *CreateTimeModificationRequest) Validate() error {
	var errs validator.ValidationErrors

	// Date
	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	// Requested times
	if r.RequestedClockIn == nil && r.RequestedClockOut == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "requestedClockIn",
			Message: "requestedClockIn or requestedClockOut is required",
		})
	}
	if r.RequestedClockIn != nil && r.RequestedClockOut != nil && !r.RequestedClockOut.After(*r.RequestedClockIn) {
		errs = append(errs, validator.ValidationError{
			Field:   "requestedClockOut",
			Message: "requestedClockOut must be after requestedClockIn",
		})
	}

	// Reason
	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// UpdateStatusRequest is a manager decision on a pending request.
type UpdateStatusRequest struct {
	Status  Status  `json:"status"`
	Comment *string `json:"comment,omitempty"`
}

func (r *UpdateStatusRequest) Validate() error {
	var errs validator.ValidationErrors

	if !r.Status.Terminal() {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be APPROVED or REJECTED",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ListFilter narrows a listing. A nil Status lists every status.
type ListFilter struct {
	Status *Status
}

func PendingOnly() ListFilter {
	s := StatusPending
	return ListFilter{Status: &s}
}

func (f ListFilter) Matches(item Item) bool {
	return f.Status == nil || item.CurrentStatus() == *f.Status
}

// ParseStatus accepts any letter case; an empty string means no filter.
func ParseStatus(s string) (*Status, error) {
	if s == "" {
		return nil, nil
	}
	st := Status(strings.ToUpper(s))
	if !st.Valid() {
		return nil, validator.ValidationErrors{{Field: "status", Message: "status must be PENDING, APPROVED or REJECTED"}}
	}
	return &st, nil
}
