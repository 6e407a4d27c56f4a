package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/attendance-client/internal/domain/alert"
	"github.com/cmlabs-hris/attendance-client/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-client/internal/domain/user"
	"github.com/cmlabs-hris/attendance-client/internal/pkg/validator"
)

// maxClockSkew is how far ahead of the server clock a client timestamp may be.
const maxClockSkew = 5 * time.Minute

type AttendanceService struct {
	records attendance.Repository
	users   user.Repository
	alerts  *AlertService
	workday attendance.Workday
	now     func() time.Time
}

func NewAttendanceService(records attendance.Repository, users user.Repository, alerts *AlertService, workday attendance.Workday) *AttendanceService {
	return &AttendanceService{
		records: records,
		users:   users,
		alerts:  alerts,
		workday: workday,
		now:     time.Now,
	}
}

// Clock applies one action to the caller's record for the day of req.Timestamp.
func (s *AttendanceService) Clock(ctx context.Context, req attendance.ClockRequest) (attendance.Record, error) {
	if err := req.Validate(); err != nil {
		return attendance.Record{}, err
	}
	if req.Timestamp.After(s.now().Add(maxClockSkew)) {
		return attendance.Record{}, attendance.ErrFutureTimestamp
	}

	a, err := actorFromContext(ctx)
	if err != nil {
		return attendance.Record{}, err
	}
	account, err := s.users.GetByID(ctx, a.UserID)
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to get user: %w", err)
	}

	at := req.Timestamp.In(s.workday.Location)
	date := s.workday.Date(at)
	if date != s.workday.Date(s.now()) {
		return attendance.Record{}, attendance.ErrTimestampNotToday
	}

	saved, err := s.records.Update(ctx, a.UserID, date, func(rec *attendance.Record, found bool) error {
		if !found {
			rec.UserName = account.User.Name
			rec.Status = attendance.StatusAbsent
		}
		return s.apply(rec, req.Action, at)
	})
	if err != nil {
		return attendance.Record{}, err
	}

	slog.Info("Clock action recorded", "action", req.Action, "user_id", a.UserID, "date", date, "status", saved.Status)

	if req.Action == attendance.ActionClockIn && saved.Status == attendance.StatusLate {
		if _, err := s.alerts.Raise(ctx, alert.TypeLate, account.User, date, alert.LateMessage(account.User.Name, date, at)); err != nil {
			slog.Error("Failed to raise late alert", "user_id", a.UserID, "error", err)
		}
	}
	return saved, nil
}

func (s *AttendanceService) apply(rec *attendance.Record, action attendance.Action, at time.Time) error {
	switch action {
	case attendance.ActionClockIn:
		if rec.ClockIn != nil {
			return attendance.ErrAlreadyClockedIn
		}
		rec.ClockIn = &at
		rec.Status = s.workday.ClassifyClockIn(at)

	case attendance.ActionClockOut:
		if rec.ClockIn == nil {
			return attendance.ErrNotClockedIn
		}
		if rec.ClockOut != nil {
			return attendance.ErrAlreadyClockedOut
		}
		if !at.After(*rec.ClockIn) {
			return attendance.ErrClockOutBeforeIn
		}
		// An open break ends with the shift.
		if rec.BreakStart != nil && rec.BreakEnd == nil {
			rec.BreakEnd = &at
		}
		rec.ClockOut = &at
		hours := RoundHours(attendance.ComputeWorkingTime(rec, at).Hours())
		rec.TotalHours = &hours
		if rec.Status == attendance.StatusPresent && s.workday.LeftEarly(at) {
			rec.Status = attendance.StatusEarlyLeave
		}

	case attendance.ActionBreakStart:
		if rec.ClockIn == nil {
			return attendance.ErrNotClockedIn
		}
		if rec.ClockOut != nil {
			return attendance.ErrAlreadyClockedOut
		}
		if rec.BreakStart != nil {
			return attendance.ErrBreakAlreadyTaken
		}
		rec.BreakStart = &at

	case attendance.ActionBreakEnd:
		if rec.ClockOut != nil {
			return attendance.ErrAlreadyClockedOut
		}
		if rec.BreakStart == nil || rec.BreakEnd != nil {
			return attendance.ErrNotOnBreak
		}
		rec.BreakEnd = &at

	default:
		return attendance.ErrInvalidAction
	}
	return nil
}

// RoundHours rounds stored totals to two decimals.
func RoundHours(h float64) float64 {
	return math.Round(h*100) / 100
}

// Today returns nil when the caller has no record for the current day.
func (s *AttendanceService) Today(ctx context.Context) (*attendance.Record, error) {
	a, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	rec, err := s.records.GetByUserAndDate(ctx, a.UserID, s.workday.Date(s.now()))
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (s *AttendanceService) History(ctx context.Context, year, month int) ([]attendance.Record, error) {
	if !validator.IsValidMonth(year, month) {
		return nil, validator.ValidationErrors{{Field: "month", Message: "year and month must form a valid month"}}
	}
	a, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	start, end := monthBounds(year, month)
	return s.records.ListByUser(ctx, a.UserID, start, end)
}

func (s *AttendanceService) Statistics(ctx context.Context, startDate, endDate string) (attendance.Stats, error) {
	var errs validator.ValidationErrors
	start, startOK := validator.IsValidDate(startDate)
	if !startOK {
		errs.Add("start", "start must be in YYYY-MM-DD format")
	}
	end, endOK := validator.IsValidDate(endDate)
	if !endOK {
		errs.Add("end", "end must be in YYYY-MM-DD format")
	}
	if startOK && endOK && end.Before(start) {
		errs.Add("end", "end must not be before start")
	}
	if err := errs.OrNil(); err != nil {
		return attendance.Stats{}, err
	}

	a, err := actorFromContext(ctx)
	if err != nil {
		return attendance.Stats{}, err
	}
	records, err := s.records.ListByUser(ctx, a.UserID, startDate, endDate)
	if err != nil {
		return attendance.Stats{}, err
	}
	return attendance.ComputeStats(startDate, endDate, records), nil
}

// monthBounds returns the first and last calendar day of the month.
func monthBounds(year, month int) (string, string) {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first.Format(validator.DateLayout), last.Format(validator.DateLayout)
}
