package attendance

import (
	"context"
)

// Service is the remote time-tracking API as consumed by the client.
type Service interface {
	Clock(ctx context.Context, req ClockRequest) (Record, error)
	Today(ctx context.Context) (*Record, error)
	History(ctx context.Context, year, month int) ([]Record, error)
	Statistics(ctx context.Context, startDate, endDate string) (Stats, error)
}
