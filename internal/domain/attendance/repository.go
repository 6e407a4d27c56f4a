package attendance

import (
	"context"
)

// Repository stores records for the development API.
type Repository interface {
	GetByUserAndDate(ctx context.Context, userID, date string) (Record, error)
	Save(ctx context.Context, record Record) (Record, error)
	// Update runs fn on the user's record for date and saves the result in one step.
	// found is false when the day has no record yet. An error from fn aborts the write.
	Update(ctx context.Context, userID, date string, fn func(rec *Record, found bool) error) (Record, error)
	ListByUser(ctx context.Context, userID, startDate, endDate string) ([]Record, error)
	ListByDate(ctx context.Context, date string) ([]Record, error)
}
