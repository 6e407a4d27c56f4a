package backend

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-client/internal/domain/alert"
	"github.com/cmlabs-hris/attendance-client/internal/domain/user"
)

type AlertService struct {
	alerts alert.Repository
	now    func() time.Time
}

func NewAlertService(alerts alert.Repository) *AlertService {
	return &AlertService{alerts: alerts, now: time.Now}
}

// Raise stores an alert unless one of the same type already exists for the user and date.
// It reports whether a new alert was created.
func (s *AlertService) Raise(ctx context.Context, t alert.Type, u user.User, date, message string) (bool, error) {
	exists, err := s.alerts.ExistsFor(ctx, t, u.ID, date)
	if err != nil {
		return false, fmt.Errorf("failed to check existing alert: %w", err)
	}
	if exists {
		return false, nil
	}

	_, err = s.alerts.Create(ctx, alert.Alert{
		Type:      t,
		UserID:    u.ID,
		UserName:  u.Name,
		Date:      date,
		Message:   message,
		CreatedAt: s.now(),
	})
	if err != nil {
		return false, fmt.Errorf("failed to create alert: %w", err)
	}

	slog.Info("Alert raised", "type", t, "user_id", u.ID, "date", date)
	return true, nil
}

func (s *AlertService) List(ctx context.Context, limit int) ([]alert.Alert, error) {
	return s.alerts.List(ctx, limit)
}

func (s *AlertService) MarkRead(ctx context.Context, id string) (alert.Alert, error) {
	return s.alerts.MarkRead(ctx, id)
}
