package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-client/internal/domain/alert"
	"github.com/cmlabs-hris/attendance-client/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-client/internal/domain/user"
)

var errAlreadyRecorded = errors.New("attendance already recorded")

// AlertRaiser creates deduplicated alerts.
type AlertRaiser interface {
	Raise(ctx context.Context, t alert.Type, u user.User, date, message string) (bool, error)
}

// AttendanceJobs raise the alerts that no clock action triggers on its own.
type AttendanceJobs struct {
	records attendance.Repository
	users   user.Repository
	alerts  AlertRaiser
	workday attendance.Workday
	now     func() time.Time
}

func NewAttendanceJobs(records attendance.Repository, users user.Repository, alerts AlertRaiser, workday attendance.Workday) *AttendanceJobs {
	return &AttendanceJobs{
		records: records,
		users:   users,
		alerts:  alerts,
		workday: workday,
		now:     time.Now,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	scheduler.AddJob("flag_missing_clock_outs", interval, j.FlagMissingClockOuts)
	scheduler.AddJob("mark_absent_employees", interval, j.MarkAbsentEmployees)
}

// closedDay is the latest working day whose scheduled end has passed.
func (j *AttendanceJobs) closedDay() (time.Time, bool) {
	now := j.now()
	day := now
	if now.Before(j.workday.EndOf(now)) {
		day = now.AddDate(0, 0, -1)
	}
	for i := 0; i < 7; i++ {
		if j.workday.IsWorkingDay(day) {
			return day, true
		}
		day = day.AddDate(0, 0, -1)
	}
	return time.Time{}, false
}

// FlagMissingClockOuts raises missing_clock_out for records of the last closed day that were never clocked out.
func (j *AttendanceJobs) FlagMissingClockOuts(ctx context.Context) error {
	day, ok := j.closedDay()
	if !ok {
		return nil
	}
	date := j.workday.Date(day)

	records, err := j.records.ListByDate(ctx, date)
	if err != nil {
		return fmt.Errorf("failed to list attendance for %s: %w", date, err)
	}

	flagged := 0
	for _, rec := range records {
		if rec.ClockIn == nil || rec.ClockOut != nil {
			continue
		}
		account, err := j.users.GetByID(ctx, rec.UserID)
		if err != nil {
			slog.Error("Cron: Failed to load user for open record", "user_id", rec.UserID, "error", err)
			continue
		}
		created, err := j.alerts.Raise(ctx, alert.TypeMissingClockOut, account.User, date, alert.MissingClockOutMessage(account.User.Name, date))
		if err != nil {
			return err
		}
		if created {
			flagged++
		}
	}

	if flagged > 0 {
		slog.Info("Cron: Flagged missing clock-outs", "date", date, "count", flagged)
	}
	return nil
}

// MarkAbsentEmployees records ABSENT and raises an absent alert for active employees
// with no record on the last closed day.
func (j *AttendanceJobs) MarkAbsentEmployees(ctx context.Context) error {
	day, ok := j.closedDay()
	if !ok {
		return nil
	}
	date := j.workday.Date(day)

	users, err := j.users.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	marked := 0
	for _, u := range users {
		if !u.IsActive || u.Role != user.RoleEmployee {
			continue
		}
		_, err := j.records.Update(ctx, u.ID, date, func(rec *attendance.Record, found bool) error {
			if found {
				return errAlreadyRecorded
			}
			rec.UserName = u.Name
			rec.Status = attendance.StatusAbsent
			return nil
		})
		if errors.Is(err, errAlreadyRecorded) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to mark %s absent: %w", u.ID, err)
		}
		if _, err := j.alerts.Raise(ctx, alert.TypeAbsent, u, date, alert.AbsentMessage(u.Name, date)); err != nil {
			return err
		}
		marked++
	}

	if marked > 0 {
		slog.Info("Cron: Marked absent employees", "date", date, "count", marked)
	}
	return nil
}
