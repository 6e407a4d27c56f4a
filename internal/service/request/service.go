package request

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/cmlabs-hris/attendance-client/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-client/internal/domain/request"
	"github.com/cmlabs-hris/attendance-client/internal/domain/user"
	"github.com/cmlabs-hris/attendance-client/internal/pkg/apiclient"
	"github.com/cmlabs-hris/attendance-client/internal/pkg/sequence"
)

const (
	leavePath            = "/requests/leave"
	timeModificationPath = "/requests/time-modification"
)

// UserSource yields the user the view is acting as.
type UserSource interface {
	User() (user.User, bool)
}

// RequestServiceImpl talks to the request endpoints and keeps the last listing of each
// kind so that withdraw and decision controls can be checked before a call is sent.
type RequestServiceImpl struct {
	api   *apiclient.Client
	users UserSource
	seq   *sequence.Tracker

	leave    listCache[request.LeaveRequest]
	timeMods listCache[request.TimeModificationRequest]
}

func NewRequestService(api *apiclient.Client, users UserSource) *RequestServiceImpl {
	return &RequestServiceImpl{
		api:   api,
		users: users,
		seq:   sequence.NewTracker(),
	}
}

var _ request.Service = (*RequestServiceImpl)(nil)

// Viewer describes the current user for request.Controls.
func (s *RequestServiceImpl) Viewer() (request.Viewer, error) {
	u, ok := s.users.User()
	if !ok {
		return request.Viewer{}, auth.ErrNotAuthenticated
	}
	return request.Viewer{UserID: u.ID, IsManager: u.IsManager()}, nil
}

// LeaveRequests returns the cached result of the last ListLeave.
func (s *RequestServiceImpl) LeaveRequests() []request.LeaveRequest {
	return s.leave.snapshot()
}

// TimeModificationRequests returns the cached result of the last ListTimeModification.
func (s *RequestServiceImpl) TimeModificationRequests() []request.TimeModificationRequest {
	return s.timeMods.snapshot()
}

// Reset drops both cached listings, e.g. on logout.
func (s *RequestServiceImpl) Reset() {
	s.seq.Invalidate(leavePath)
	s.seq.Invalidate(timeModificationPath)
	s.leave.clear()
	s.timeMods.clear()
}

// ========================================
// LEAVE
// ========================================

func (s *RequestServiceImpl) CreateLeave(ctx context.Context, req request.CreateLeaveRequest) (request.LeaveRequest, error) {
	if err := req.Validate(); err != nil {
		return request.LeaveRequest{}, err
	}
	return create(ctx, s, leavePath, &s.leave, req)
}

func (s *RequestServiceImpl) ListLeave(ctx context.Context, filter request.ListFilter) ([]request.LeaveRequest, error) {
	return list(ctx, s, leavePath, &s.leave, filter)
}

func (s *RequestServiceImpl) UpdateLeaveStatus(ctx context.Context, id string, req request.UpdateStatusRequest) (request.LeaveRequest, error) {
	return decide(ctx, s, leavePath, &s.leave, id, req)
}

func (s *RequestServiceImpl) DeleteLeave(ctx context.Context, id string) error {
	return withdraw(ctx, s, leavePath, &s.leave, id)
}

// ========================================
// TIME MODIFICATION
// ========================================

func (s *RequestServiceImpl) CreateTimeModification(ctx context.Context, req request.CreateTimeModificationRequest) (request.TimeModificationRequest, error) {
	if err := req.Validate(); err != nil {
		return request.TimeModificationRequest{}, err
	}
	return create(ctx, s, timeModificationPath, &s.timeMods, req)
}

func (s *RequestServiceImpl) ListTimeModification(ctx context.Context, filter request.ListFilter) ([]request.TimeModificationRequest, error) {
	return list(ctx, s, timeModificationPath, &s.timeMods, filter)
}

func (s *RequestServiceImpl) UpdateTimeModificationStatus(ctx context.Context, id string, req request.UpdateStatusRequest) (request.TimeModificationRequest, error) {
	return decide(ctx, s, timeModificationPath, &s.timeMods, id, req)
}

func (s *RequestServiceImpl) DeleteTimeModification(ctx context.Context, id string) error {
	return withdraw(ctx, s, timeModificationPath, &s.timeMods, id)
}

// ========================================
// SHARED FLOWS
// ========================================

func create[T request.Item](ctx context.Context, s *RequestServiceImpl, path string, c *listCache[T], body interface{}) (T, error) {
	var zero T
	if _, err := s.Viewer(); err != nil {
		return zero, err
	}

	seq := s.seq.Next(path)
	var out T
	if err := s.api.Post(ctx, path, body, &out); err != nil {
		return zero, err
	}
	s.seq.Apply(path, seq, func() { c.upsert(out) })
	return out, nil
}

func list[T request.Item](ctx context.Context, s *RequestServiceImpl, path string, c *listCache[T], filter request.ListFilter) ([]T, error) {
	var query url.Values
	if filter.Status != nil {
		query = url.Values{}
		query.Set("status", string(*filter.Status))
	}

	seq := s.seq.Next(path)
	items := []T{}
	if err := s.api.Get(ctx, path, query, &items); err != nil {
		return nil, err
	}
	if !s.seq.Apply(path, seq, func() { c.set(items, filter) }) {
		slog.Debug("Discarded stale request listing", "path", path, "seq", seq)
	}
	return items, nil
}

func decide[T request.Item](ctx context.Context, s *RequestServiceImpl, path string, c *listCache[T], id string, req request.UpdateStatusRequest) (T, error) {
	var zero T
	v, err := s.Viewer()
	if err != nil {
		return zero, err
	}
	if !v.IsManager {
		return zero, user.ErrManagerAccessRequired
	}
	if err := req.Validate(); err != nil {
		return zero, err
	}
	if item, ok := c.find(id); ok {
		if err := request.CheckTransition(item.CurrentStatus(), req.Status); err != nil {
			return zero, err
		}
		if item.OwnerID() == v.UserID {
			return zero, request.ErrSelfDecision
		}
	}

	seq := s.seq.Next(path)
	var out T
	if err := s.api.Patch(ctx, path+"/"+url.PathEscape(id), req, &out); err != nil {
		resync(ctx, s, path, c, err)
		return zero, err
	}
	s.seq.Apply(path, seq, func() { c.upsert(out) })
	return out, nil
}

func withdraw[T request.Item](ctx context.Context, s *RequestServiceImpl, path string, c *listCache[T], id string) error {
	v, err := s.Viewer()
	if err != nil {
		return err
	}
	if item, ok := c.find(id); ok {
		if err := request.CheckWithdraw(item, v.UserID); err != nil {
			return err
		}
	}

	seq := s.seq.Next(path)
	if err := s.api.Delete(ctx, path+"/"+url.PathEscape(id), nil); err != nil {
		resync(ctx, s, path, c, err)
		return err
	}
	s.seq.Apply(path, seq, func() { c.remove(id) })
	return nil
}

// resync reloads the current listing after the server rejected a mutation on business grounds.
func resync[T request.Item](ctx context.Context, s *RequestServiceImpl, path string, c *listCache[T], cause error) {
	if !apiclient.IsBusiness(cause) {
		return
	}
	filter, loaded := c.lastFilter()
	if !loaded {
		return
	}
	if _, err := list(ctx, s, path, c, filter); err != nil {
		slog.Warn("Resync after rejected request change failed", "path", path, "error", err)
	}
}
