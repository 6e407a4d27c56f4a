package request

import (
	"context"
)

// Service is the remote request API as consumed by the client.
type Service interface {
	// Leave
	CreateLeave(ctx context.Context, req CreateLeaveRequest) (LeaveRequest, error)
	ListLeave(ctx context.Context, filter ListFilter) ([]LeaveRequest, error)
	UpdateLeaveStatus(ctx context.Context, id string, req UpdateStatusRequest) (LeaveRequest, error)
	DeleteLeave(ctx context.Context, id string) error
	// Time modification
	CreateTimeModification(ctx context.Context, req CreateTimeModificationRequest) (TimeModificationRequest, error)
	ListTimeModification(ctx context.Context, filter ListFilter) ([]TimeModificationRequest, error)
	UpdateTimeModificationStatus(ctx context.Context, id string, req UpdateStatusRequest) (TimeModificationRequest, error)
	DeleteTimeModification(ctx context.Context, id string) error
}
