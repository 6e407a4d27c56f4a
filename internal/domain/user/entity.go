package user

import (
	"time"

	"github.com/cmlabs-hris/attendance-client/internal/pkg/validator"
)

type Role string

const (
	RoleEmployee Role = "EMPLOYEE"
	RoleManager  Role = "MANAGER"
)

// User is the identity record issued by the server and owned by the session.
type User struct {
	ID         string     `json:"id"`
	EmployeeID string     `json:"employeeId"`
	Name       string     `json:"name"`
	Email      string     `json:"email,omitempty"`
	Department string     `json:"department"`
	Role       Role       `json:"role"`
	IsActive   bool       `json:"isActive"`
	CreatedAt  *time.Time `json:"createdAt,omitempty"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty"`
}

// IsManager checks if user is a manager
func (u *User) IsManager() bool {
	return u != nil && u.Role == RoleManager
}

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleEmployee || r == RoleManager
}

// ProfileUpdate carries the profile fields a user may change. Nil fields are left alone.
type ProfileUpdate struct {
	Name       *string `json:"name,omitempty"`
	Email      *string `json:"email,omitempty"`
	Department *string `json:"department,omitempty"`
}

// Apply merges the non-nil fields of p into u.
func (p ProfileUpdate) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Department != nil {
		u.Department = *p.Department
	}
}

func (p *ProfileUpdate) Validate() error {
	var errs validator.ValidationErrors

	if p.Name != nil && validator.IsEmpty(*p.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name must not be empty",
		})
	}

	if p.Email != nil && *p.Email != "" && !validator.IsValidEmail(*p.Email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email is not a valid address",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
