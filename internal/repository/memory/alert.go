package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-client/internal/domain/alert"
	"github.com/google/uuid"
)

type alertRepositoryImpl struct {
	mu     sync.RWMutex
	alerts map[string]alert.Alert
}

func NewAlertRepository() alert.Repository {
	return &alertRepositoryImpl{alerts: make(map[string]alert.Alert)}
}

// Create implements alert.Repository.
func (r *alertRepositoryImpl) Create(ctx context.Context, a alert.Alert) (alert.Alert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	r.alerts[a.ID] = a
	return a, nil
}

// GetByID implements alert.Repository.
func (r *alertRepositoryImpl) GetByID(ctx context.Context, id string) (alert.Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.alerts[id]
	if !ok {
		return alert.Alert{}, alert.ErrAlertNotFound
	}
	return a, nil
}

// List implements alert.Repository. Newest first; limit <= 0 lists everything.
func (r *alertRepositoryImpl) List(ctx context.Context, limit int) ([]alert.Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	alerts := make([]alert.Alert, 0, len(r.alerts))
	for _, a := range r.alerts {
		alerts = append(alerts, a)
	}
	sort.Slice(alerts, func(i, j int) bool { return alerts[i].CreatedAt.After(alerts[j].CreatedAt) })
	if limit > 0 && len(alerts) > limit {
		alerts = alerts[:limit]
	}
	return alerts, nil
}

// MarkRead implements alert.Repository.
func (r *alertRepositoryImpl) MarkRead(ctx context.Context, id string) (alert.Alert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.alerts[id]
	if !ok {
		return alert.Alert{}, alert.ErrAlertNotFound
	}
	a.IsRead = true
	r.alerts[id] = a
	return a, nil
}

// ExistsFor implements alert.Repository.
func (r *alertRepositoryImpl) ExistsFor(ctx context.Context, t alert.Type, userID, date string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.alerts {
		if a.Type == t && a.UserID == userID && a.Date == date {
			return true, nil
		}
	}
	return false, nil
}
