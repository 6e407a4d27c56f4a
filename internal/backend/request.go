package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-client/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-client/internal/domain/request"
	"github.com/cmlabs-hris/attendance-client/internal/domain/user"
	"github.com/cmlabs-hris/attendance-client/internal/pkg/validator"
)

// modificationWindow is how far back a time modification may reach.
const modificationWindow = 30 * 24 * time.Hour

type RequestService struct {
	leave    request.LeaveRepository
	timeMods request.TimeModificationRepository
	users    user.Repository
	records  attendance.Repository
	workday  attendance.Workday
	now      func() time.Time
}

func NewRequestService(
	leave request.LeaveRepository,
	timeMods request.TimeModificationRepository,
	users user.Repository,
	records attendance.Repository,
	workday attendance.Workday,
) *RequestService {
	return &RequestService{
		leave:    leave,
		timeMods: timeMods,
		users:    users,
		records:  records,
		workday:  workday,
		now:      time.Now,
	}
}

// visibleTo scopes listings: managers see every request, employees only their own.
func visibleTo(a actor, status *request.Status) request.RepositoryFilter {
	filter := request.RepositoryFilter{Status: status}
	if !a.IsManager() {
		id := a.UserID
		filter.UserID = &id
	}
	return filter
}

// checkDecision validates a manager's decision on item. Nobody decides their own request.
func checkDecision(item request.Item, managerID string, to request.Status) error {
	if err := request.CheckTransition(item.CurrentStatus(), to); err != nil {
		return err
	}
	if item.OwnerID() == managerID {
		return request.ErrSelfDecision
	}
	return nil
}

func (s *RequestService) caller(ctx context.Context) (actor, user.User, error) {
	a, err := actorFromContext(ctx)
	if err != nil {
		return actor{}, user.User{}, err
	}
	account, err := s.users.GetByID(ctx, a.UserID)
	if err != nil {
		return actor{}, user.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return a, account.User, nil
}

// ========================================
// LEAVE
// ========================================

func (s *RequestService) CreateLeave(ctx context.Context, req request.CreateLeaveRequest) (request.LeaveRequest, error) {
	if err := req.Validate(); err != nil {
		return request.LeaveRequest{}, err
	}
	a, u, err := s.caller(ctx)
	if err != nil {
		return request.LeaveRequest{}, err
	}

	existing, err := s.leave.List(ctx, request.RepositoryFilter{UserID: &a.UserID})
	if err != nil {
		return request.LeaveRequest{}, fmt.Errorf("failed to list leave requests: %w", err)
	}
	for _, lr := range existing {
		if lr.Status == request.StatusRejected {
			continue
		}
		if lr.StartDate <= req.EndDate && req.StartDate <= lr.EndDate {
			return request.LeaveRequest{}, request.ErrLeaveOverlap
		}
	}

	created, err := s.leave.Create(ctx, request.LeaveRequest{
		UserID:    a.UserID,
		UserName:  u.Name,
		Type:      req.Type,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Reason:    req.Reason,
		Status:    request.StatusPending,
		CreatedAt: s.now(),
	})
	if err != nil {
		return request.LeaveRequest{}, fmt.Errorf("failed to create leave request: %w", err)
	}

	slog.Info("Leave request submitted", "request_id", created.ID, "user_id", a.UserID, "days", req.Days())
	return created, nil
}

func (s *RequestService) ListLeave(ctx context.Context, filter request.ListFilter) ([]request.LeaveRequest, error) {
	a, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.leave.List(ctx, visibleTo(a, filter.Status))
}

func (s *RequestService) UpdateLeaveStatus(ctx context.Context, id string, req request.UpdateStatusRequest) (request.LeaveRequest, error) {
	if err := req.Validate(); err != nil {
		return request.LeaveRequest{}, err
	}
	a, u, err := s.caller(ctx)
	if err != nil {
		return request.LeaveRequest{}, err
	}
	if !a.IsManager() {
		return request.LeaveRequest{}, user.ErrManagerAccessRequired
	}

	lr, err := s.leave.Update(ctx, id, func(lr *request.LeaveRequest) error {
		if err := checkDecision(lr, a.UserID, req.Status); err != nil {
			return err
		}
		now := s.now()
		lr.Status = req.Status
		lr.ApprovedBy = &u.Name
		lr.ApprovedAt = &now
		lr.Comment = req.Comment
		return nil
	})
	if err != nil {
		return request.LeaveRequest{}, err
	}

	slog.Info("Leave request decided", "request_id", id, "status", lr.Status, "manager_id", a.UserID)
	return lr, nil
}

func (s *RequestService) DeleteLeave(ctx context.Context, id string) error {
	a, err := actorFromContext(ctx)
	if err != nil {
		return err
	}
	return s.leave.Delete(ctx, id, func(lr request.LeaveRequest) error {
		return request.CheckWithdraw(lr, a.UserID)
	})
}

// ========================================
// TIME MODIFICATION
// ========================================

func (s *RequestService) CreateTimeModification(ctx context.Context, req request.CreateTimeModificationRequest) (request.TimeModificationRequest, error) {
	if err := req.Validate(); err != nil {
		return request.TimeModificationRequest{}, err
	}
	a, u, err := s.caller(ctx)
	if err != nil {
		return request.TimeModificationRequest{}, err
	}

	target, _ := time.ParseInLocation(validator.DateLayout, req.Date, s.workday.Location)
	now := s.now()
	if req.Date > s.workday.Date(now) {
		return request.TimeModificationRequest{}, validator.ValidationErrors{{Field: "date", Message: "date must not be in the future"}}
	}
	if now.Sub(target) > modificationWindow {
		return request.TimeModificationRequest{}, request.ErrModificationWindow
	}

	pending := request.StatusPending
	open, err := s.timeMods.List(ctx, request.RepositoryFilter{UserID: &a.UserID, Status: &pending})
	if err != nil {
		return request.TimeModificationRequest{}, fmt.Errorf("failed to list time modifications: %w", err)
	}
	for _, tm := range open {
		if tm.Date == req.Date {
			return request.TimeModificationRequest{}, request.ErrDuplicateModification
		}
	}

	tm := request.TimeModificationRequest{
		UserID:            a.UserID,
		UserName:          u.Name,
		Date:              req.Date,
		RequestedClockIn:  req.RequestedClockIn,
		RequestedClockOut: req.RequestedClockOut,
		Reason:            req.Reason,
		Status:            request.StatusPending,
		CreatedAt:         now,
	}
	if rec, err := s.records.GetByUserAndDate(ctx, a.UserID, req.Date); err == nil {
		tm.OriginalClockIn = rec.ClockIn
		tm.OriginalClockOut = rec.ClockOut
	} else if !errors.Is(err, attendance.ErrAttendanceNotFound) {
		return request.TimeModificationRequest{}, fmt.Errorf("failed to get attendance: %w", err)
	}
	if tm.RequestedClockIn == nil && tm.OriginalClockIn == nil {
		return request.TimeModificationRequest{}, request.ErrMissingClockIn
	}

	created, err := s.timeMods.Create(ctx, tm)
	if err != nil {
		return request.TimeModificationRequest{}, fmt.Errorf("failed to create time modification: %w", err)
	}

	slog.Info("Time modification submitted", "request_id", created.ID, "user_id", a.UserID, "date", req.Date)
	return created, nil
}

func (s *RequestService) ListTimeModification(ctx context.Context, filter request.ListFilter) ([]request.TimeModificationRequest, error) {
	a, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.timeMods.List(ctx, visibleTo(a, filter.Status))
}

// UpdateTimeModificationStatus decides a request. Approval applies the requested
// times to the attendance record of that day.
func (s *RequestService) UpdateTimeModificationStatus(ctx context.Context, id string, req request.UpdateStatusRequest) (request.TimeModificationRequest, error) {
	if err := req.Validate(); err != nil {
		return request.TimeModificationRequest{}, err
	}
	a, u, err := s.caller(ctx)
	if err != nil {
		return request.TimeModificationRequest{}, err
	}
	if !a.IsManager() {
		return request.TimeModificationRequest{}, user.ErrManagerAccessRequired
	}

	// Approval rewrites the attendance record while the request is locked.
	tm, err := s.timeMods.Update(ctx, id, func(tm *request.TimeModificationRequest) error {
		if err := checkDecision(tm, a.UserID, req.Status); err != nil {
			return err
		}
		if req.Status == request.StatusApproved {
			if err := s.applyModification(ctx, *tm); err != nil {
				return err
			}
		}
		now := s.now()
		tm.Status = req.Status
		tm.ApprovedBy = &u.Name
		tm.ApprovedAt = &now
		tm.Comment = req.Comment
		return nil
	})
	if err != nil {
		return request.TimeModificationRequest{}, err
	}

	slog.Info("Time modification decided", "request_id", id, "status", tm.Status, "manager_id", a.UserID)
	return tm, nil
}

func (s *RequestService) applyModification(ctx context.Context, tm request.TimeModificationRequest) error {
	_, err := s.records.Update(ctx, tm.UserID, tm.Date, func(rec *attendance.Record, found bool) error {
		if !found {
			rec.UserName = tm.UserName
		}
		if tm.RequestedClockIn != nil {
			in := *tm.RequestedClockIn
			rec.ClockIn = &in
		}
		if tm.RequestedClockOut != nil {
			out := *tm.RequestedClockOut
			rec.ClockOut = &out
		}
		if rec.ClockIn == nil {
			return request.ErrMissingClockIn
		}
		if rec.ClockOut != nil && !rec.ClockOut.After(*rec.ClockIn) {
			return attendance.ErrClockOutBeforeIn
		}

		rec.Status = s.workday.ClassifyClockIn(*rec.ClockIn)
		rec.TotalHours = nil
		if rec.Closed() {
			hours := RoundHours(attendance.ComputeWorkingTime(rec, *rec.ClockOut).Hours())
			rec.TotalHours = &hours
			if rec.Status == attendance.StatusPresent && s.workday.LeftEarly(*rec.ClockOut) {
				rec.Status = attendance.StatusEarlyLeave
			}
		}
		return nil
	})
	return err
}

func (s *RequestService) DeleteTimeModification(ctx context.Context, id string) error {
	a, err := actorFromContext(ctx)
	if err != nil {
		return err
	}
	return s.timeMods.Delete(ctx, id, func(tm request.TimeModificationRequest) error {
		return request.CheckWithdraw(tm, a.UserID)
	})
}

// PendingCount is the size of the manager approval queue across both kinds.
func (s *RequestService) PendingCount(ctx context.Context) (int, error) {
	pending := request.StatusPending
	leave, err := s.leave.List(ctx, request.RepositoryFilter{Status: &pending})
	if err != nil {
		return 0, err
	}
	timeMods, err := s.timeMods.List(ctx, request.RepositoryFilter{Status: &pending})
	if err != nil {
		return 0, err
	}
	return len(leave) + len(timeMods), nil
}
