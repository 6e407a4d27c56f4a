package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/cmlabs-hris/attendance-client/internal/domain/attendance"
	"github.com/google/uuid"
)

type attendanceRepositoryImpl struct {
	mu      sync.RWMutex
	records map[string]attendance.Record // key: userID|date
}

func NewAttendanceRepository() attendance.Repository {
	return &attendanceRepositoryImpl{records: make(map[string]attendance.Record)}
}

func recordKey(userID, date string) string {
	return userID + "|" + date
}

// GetByUserAndDate implements attendance.Repository.
func (r *attendanceRepositoryImpl) GetByUserAndDate(ctx context.Context, userID, date string) (attendance.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[recordKey(userID, date)]
	if !ok {
		return attendance.Record{}, attendance.ErrAttendanceNotFound
	}
	return *rec.Clone(), nil
}

// Save implements attendance.Repository. It inserts or replaces the user's record for the day.
func (r *attendanceRepositoryImpl) Save(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := recordKey(record.UserID, record.Date)
	if existing, ok := r.records[key]; ok {
		record.ID = existing.ID
	} else if record.ID == "" {
		record.ID = uuid.NewString()
	}

	r.records[key] = *record.Clone()
	return record, nil
}

// Update implements attendance.Repository.
func (r *attendanceRepositoryImpl) Update(ctx context.Context, userID, date string, fn func(rec *attendance.Record, found bool) error) (attendance.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := recordKey(userID, date)
	existing, found := r.records[key]
	rec := attendance.Record{UserID: userID, Date: date}
	if found {
		rec = *existing.Clone()
	}
	if err := fn(&rec, found); err != nil {
		return attendance.Record{}, err
	}

	rec.UserID, rec.Date = userID, date
	if found {
		rec.ID = existing.ID
	} else if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	r.records[key] = *rec.Clone()
	return rec, nil
}

// ListByUser implements attendance.Repository. Bounds are inclusive YYYY-MM-DD dates.
func (r *attendanceRepositoryImpl) ListByUser(ctx context.Context, userID, startDate, endDate string) ([]attendance.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := []attendance.Record{}
	for _, rec := range r.records {
		if rec.UserID == userID && rec.Date >= startDate && rec.Date <= endDate {
			records = append(records, *rec.Clone())
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Date > records[j].Date })
	return records, nil
}

// ListByDate implements attendance.Repository.
func (r *attendanceRepositoryImpl) ListByDate(ctx context.Context, date string) ([]attendance.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := []attendance.Record{}
	for _, rec := range r.records {
		if rec.Date == date {
			records = append(records, *rec.Clone())
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].UserName < records[j].UserName })
	return records, nil
}
