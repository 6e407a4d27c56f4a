package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-client/internal/domain/request"
	"github.com/google/uuid"
)

type leaveRequestRepositoryImpl struct {
	mu       sync.RWMutex
	requests map[string]request.LeaveRequest
}

func NewLeaveRequestRepository() request.LeaveRepository {
	return &leaveRequestRepositoryImpl{requests: make(map[string]request.LeaveRequest)}
}

// Create implements request.LeaveRepository.
func (r *leaveRequestRepositoryImpl) Create(ctx context.Context, req request.LeaveRequest) (request.LeaveRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now()
	}
	r.requests[req.ID] = req
	return req, nil
}

// GetByID implements request.LeaveRepository.
func (r *leaveRequestRepositoryImpl) GetByID(ctx context.Context, id string) (request.LeaveRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	req, ok := r.requests[id]
	if !ok {
		return request.LeaveRequest{}, request.ErrRequestNotFound
	}
	return req, nil
}

// List implements request.LeaveRepository. Newest first.
func (r *leaveRequestRepositoryImpl) List(ctx context.Context, filter request.RepositoryFilter) ([]request.LeaveRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []request.LeaveRequest{}
	for _, req := range r.requests {
		if matches(req, filter) {
			result = append(result, req)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

// Update implements request.LeaveRepository. The lock is held across fn.
func (r *leaveRequestRepositoryImpl) Update(ctx context.Context, id string, fn func(*request.LeaveRequest) error) (request.LeaveRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.requests[id]
	if !ok {
		return request.LeaveRequest{}, request.ErrRequestNotFound
	}
	if err := fn(&req); err != nil {
		return request.LeaveRequest{}, err
	}
	req.ID = id
	r.requests[id] = req
	return req, nil
}

// Delete implements request.LeaveRepository.
func (r *leaveRequestRepositoryImpl) Delete(ctx context.Context, id string, check func(request.LeaveRequest) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.requests[id]
	if !ok {
		return request.ErrRequestNotFound
	}
	if check != nil {
		if err := check(req); err != nil {
			return err
		}
	}
	delete(r.requests, id)
	return nil
}

type timeModificationRepositoryImpl struct {
	mu       sync.RWMutex
	requests map[string]request.TimeModificationRequest
}

func NewTimeModificationRepository() request.TimeModificationRepository {
	return &timeModificationRepositoryImpl{requests: make(map[string]request.TimeModificationRequest)}
}

// Create implements request.TimeModificationRepository.
func (r *timeModificationRepositoryImpl) Create(ctx context.Context, req request.TimeModificationRequest) (request.TimeModificationRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now()
	}
	r.requests[req.ID] = req
	return req, nil
}

// GetByID implements request.TimeModificationRepository.
func (r *timeModificationRepositoryImpl) GetByID(ctx context.Context, id string) (request.TimeModificationRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	req, ok := r.requests[id]
	if !ok {
		return request.TimeModificationRequest{}, request.ErrRequestNotFound
	}
	return req, nil
}

// List implements request.TimeModificationRepository. Newest first.
func (r *timeModificationRepositoryImpl) List(ctx context.Context, filter request.RepositoryFilter) ([]request.TimeModificationRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []request.TimeModificationRequest{}
	for _, req := range r.requests {
		if matches(req, filter) {
			result = append(result, req)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

// Update implements request.TimeModificationRepository. The lock is held across fn.
func (r *timeModificationRepositoryImpl) Update(ctx context.Context, id string, fn func(*request.TimeModificationRequest) error) (request.TimeModificationRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.requests[id]
	if !ok {
		return request.TimeModificationRequest{}, request.ErrRequestNotFound
	}
	if err := fn(&req); err != nil {
		return request.TimeModificationRequest{}, err
	}
	req.ID = id
	r.requests[id] = req
	return req, nil
}

// Delete implements request.TimeModificationRepository.
func (r *timeModificationRepositoryImpl) Delete(ctx context.Context, id string, check func(request.TimeModificationRequest) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.requests[id]
	if !ok {
		return request.ErrRequestNotFound
	}
	if check != nil {
		if err := check(req); err != nil {
			return err
		}
	}
	delete(r.requests, id)
	return nil
}

func matches(item request.Item, filter request.RepositoryFilter) bool {
	if filter.UserID != nil && item.OwnerID() != *filter.UserID {
		return false
	}
	if filter.Status != nil && item.CurrentStatus() != *filter.Status {
		return false
	}
	return true
}
