package alert

import (
	"context"
)

// Repository stores alerts for the development API.
type Repository interface {
	Create(ctx context.Context, a Alert) (Alert, error)
	GetByID(ctx context.Context, id string) (Alert, error)
	List(ctx context.Context, limit int) ([]Alert, error)
	MarkRead(ctx context.Context, id string) (Alert, error)
	ExistsFor(ctx context.Context, t Type, userID, date string) (bool, error)
}
