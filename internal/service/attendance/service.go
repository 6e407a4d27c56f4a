package attendance

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/cmlabs-hris/attendance-client/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-client/internal/pkg/apiclient"
	"github.com/cmlabs-hris/attendance-client/internal/pkg/validator"
)

type AttendanceServiceImpl struct {
	api *apiclient.Client
	now func() time.Time
}

func NewAttendanceService(api *apiclient.Client) *AttendanceServiceImpl {
	return &AttendanceServiceImpl{api: api, now: time.Now}
}

var _ attendance.Service = (*AttendanceServiceImpl)(nil)

// Clock posts one clock action to /time/<action>.
func (s *AttendanceServiceImpl) Clock(ctx context.Context, req attendance.ClockRequest) (attendance.Record, error) {
	if err := req.Validate(); err != nil {
		return attendance.Record{}, err
	}

	var rec attendance.Record
	if err := s.api.Post(ctx, "/time/"+req.Action.Path(), req, &rec); err != nil {
		return attendance.Record{}, err
	}
	return rec, nil
}

func (s *AttendanceServiceImpl) ClockIn(ctx context.Context, loc *attendance.Location) (attendance.Record, error) {
	return s.Clock(ctx, attendance.ClockRequest{Action: attendance.ActionClockIn, Timestamp: s.now(), Location: loc})
}

func (s *AttendanceServiceImpl) ClockOut(ctx context.Context, loc *attendance.Location) (attendance.Record, error) {
	return s.Clock(ctx, attendance.ClockRequest{Action: attendance.ActionClockOut, Timestamp: s.now(), Location: loc})
}

func (s *AttendanceServiceImpl) BreakStart(ctx context.Context) (attendance.Record, error) {
	return s.Clock(ctx, attendance.ClockRequest{Action: attendance.ActionBreakStart, Timestamp: s.now()})
}

func (s *AttendanceServiceImpl) BreakEnd(ctx context.Context) (attendance.Record, error) {
	return s.Clock(ctx, attendance.ClockRequest{Action: attendance.ActionBreakEnd, Timestamp: s.now()})
}

// Today returns nil when the server has no record for today.
func (s *AttendanceServiceImpl) Today(ctx context.Context) (*attendance.Record, error) {
	var rec *attendance.Record
	if err := s.api.Get(ctx, "/time/today", nil, &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *AttendanceServiceImpl) History(ctx context.Context, year, month int) ([]attendance.Record, error) {
	if !validator.IsValidMonth(year, month) {
		return nil, validator.ValidationErrors{{Field: "month", Message: "year and month must form a valid month"}}
	}

	query := url.Values{}
	query.Set("year", strconv.Itoa(year))
	query.Set("month", strconv.Itoa(month))

	records := []attendance.Record{}
	if err := s.api.Get(ctx, "/time/history", query, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *AttendanceServiceImpl) Statistics(ctx context.Context, startDate, endDate string) (attendance.Stats, error) {
	var errs validator.ValidationErrors
	start, startOK := validator.IsValidDate(startDate)
	if !startOK {
		errs.Add("startDate", "startDate must be in YYYY-MM-DD format")
	}
	end, endOK := validator.IsValidDate(endDate)
	if !endOK {
		errs.Add("endDate", "endDate must be in YYYY-MM-DD format")
	}
	if startOK && endOK && end.Before(start) {
		errs.Add("endDate", "endDate must not be before startDate")
	}
	if err := errs.OrNil(); err != nil {
		return attendance.Stats{}, err
	}

	query := url.Values{}
	query.Set("start", startDate)
	query.Set("end", endDate)

	var stats attendance.Stats
	if err := s.api.Get(ctx, "/time/statistics", query, &stats); err != nil {
		return attendance.Stats{}, err
	}
	return stats, nil
}
