package auth

import (
	"github.com/cmlabs-hris/attendance-client/internal/domain/user"
	"github.com/cmlabs-hris/attendance-client/internal/pkg/validator"
)

type LoginRequest struct {
	EmployeeID string `json:"employeeId"`
	Password   string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	var errs validator.ValidationErrors

	// Employee ID
	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employeeId",
			Message: "employeeId is required",
		})
	} else if !validator.IsValidEmployeeID(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employeeId",
			Message: "employeeId may only contain letters, numbers, underscores, and hyphens",
		})
	}

	// Password
	if validator.IsEmpty(r.Password) {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type LoginResponse struct {
	User  user.User `json:"user"`
	Token string    `json:"token"`
}
