package request

import (
	"context"
)

// RepositoryFilter scopes a development API listing. Nil fields do not filter.
type RepositoryFilter struct {
	UserID *string
	Status *Status
}

// LeaveRepository stores leave requests for the development API.
type LeaveRepository interface {
	Create(ctx context.Context, req LeaveRequest) (LeaveRequest, error)
	GetByID(ctx context.Context, id string) (LeaveRequest, error)
	List(ctx context.Context, filter RepositoryFilter) ([]LeaveRequest, error)
	// Update applies fn to the stored request atomically. An error from fn leaves it unchanged.
	Update(ctx context.Context, id string, fn func(*LeaveRequest) error) (LeaveRequest, error)
	// Delete removes the request once check, when non-nil, accepts it.
	Delete(ctx context.Context, id string, check func(LeaveRequest) error) error
}

// TimeModificationRepository stores time modification requests for the development API.
type TimeModificationRepository interface {
	Create(ctx context.Context, req TimeModificationRequest) (TimeModificationRequest, error)
	GetByID(ctx context.Context, id string) (TimeModificationRequest, error)
	List(ctx context.Context, filter RepositoryFilter) ([]TimeModificationRequest, error)
	Update(ctx context.Context, id string, fn func(*TimeModificationRequest) error) (TimeModificationRequest, error)
	Delete(ctx context.Context, id string, check func(TimeModificationRequest) error) error
}
