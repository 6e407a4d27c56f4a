package cron

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/attendance-client/internal/backend"
	"github.com/cmlabs-hris/attendance-client/internal/domain/alert"
	"github.com/cmlabs-hris/attendance-client/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-client/internal/domain/user"
	"github.com/cmlabs-hris/attendance-client/internal/repository/memory"
)

type jobsFixture struct {
	jobs    *AttendanceJobs
	records attendance.Repository
	alerts  alert.Repository
}

var (
	alice  = user.User{ID: "u-1", EmployeeID: "EMP001", Name: "Alice", Role: user.RoleEmployee, IsActive: true}
	bob    = user.User{ID: "u-2", EmployeeID: "EMP002", Name: "Bob", Role: user.RoleEmployee, IsActive: true}
	former = user.User{ID: "u-3", EmployeeID: "EMP003", Name: "Carol", Role: user.RoleEmployee, IsActive: false}
	boss   = user.User{ID: "u-4", EmployeeID: "MGR001", Name: "Dewi", Role: user.RoleManager, IsActive: true}
)

func newJobsFixture(t *testing.T, now time.Time) *jobsFixture {
	t.Helper()
	ctx := context.Background()

	users := memory.NewUserRepository()
	for _, u := range []user.User{alice, bob, former, boss} {
		require.NoError(t, users.Create(ctx, user.Account{User: u}))
	}
	workday, err := attendance.ParseWorkday("09:00", "18:00", 15*time.Minute, time.UTC)
	require.NoError(t, err)

	f := &jobsFixture{
		records: memory.NewAttendanceRepository(),
		alerts:  memory.NewAlertRepository(),
	}
	f.jobs = NewAttendanceJobs(f.records, users, backend.NewAlertService(f.alerts), workday)
	f.jobs.now = func() time.Time { return now }
	return f
}

func at(date, hhmm string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", date+" "+hhmm)
	if err != nil {
		panic(err)
	}
	return t
}

func TestFlagMissingClockOuts(t *testing.T) {
	// Tuesday evening, after the workday end
	f := newJobsFixture(t, at("2024-05-14", "19:00"))
	ctx := context.Background()

	in := at("2024-05-14", "09:00")
	out := at("2024-05-14", "17:30")
	_, err := f.records.Save(ctx, attendance.Record{UserID: alice.ID, UserName: alice.Name, Date: "2024-05-14", ClockIn: &in, Status: attendance.StatusPresent})
	require.NoError(t, err)
	_, err = f.records.Save(ctx, attendance.Record{UserID: bob.ID, UserName: bob.Name, Date: "2024-05-14", ClockIn: &in, ClockOut: &out, Status: attendance.StatusEarlyLeave})
	require.NoError(t, err)

	// Act
	require.NoError(t, f.jobs.FlagMissingClockOuts(ctx))
	require.NoError(t, f.jobs.FlagMissingClockOuts(ctx))

	// Assert
	alerts, err := f.alerts.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, alert.TypeMissingClockOut, alerts[0].Type)
	assert.Equal(t, alice.ID, alerts[0].UserID)
	assert.Equal(t, "2024-05-14", alerts[0].Date)
}

func TestFlagMissingClockOuts_BeforeEndChecksPreviousDay(t *testing.T) {
	// Tuesday morning: Monday is the last closed day
	f := newJobsFixture(t, at("2024-05-14", "10:00"))
	ctx := context.Background()

	in := at("2024-05-14", "09:00")
	_, err := f.records.Save(ctx, attendance.Record{UserID: alice.ID, UserName: alice.Name, Date: "2024-05-14", ClockIn: &in, Status: attendance.StatusPresent})
	require.NoError(t, err)

	// Act
	require.NoError(t, f.jobs.FlagMissingClockOuts(ctx))

	// Assert
	alerts, err := f.alerts.List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestMarkAbsentEmployees(t *testing.T) {
	// Saturday: Friday is the last working day
	f := newJobsFixture(t, at("2024-05-18", "12:00"))
	ctx := context.Background()

	in := at("2024-05-17", "08:55")
	_, err := f.records.Save(ctx, attendance.Record{UserID: alice.ID, UserName: alice.Name, Date: "2024-05-17", ClockIn: &in, Status: attendance.StatusPresent})
	require.NoError(t, err)

	// Act
	require.NoError(t, f.jobs.MarkAbsentEmployees(ctx))
	require.NoError(t, f.jobs.MarkAbsentEmployees(ctx))

	// Assert
	rec, err := f.records.GetByUserAndDate(ctx, bob.ID, "2024-05-17")
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusAbsent, rec.Status)
	assert.Nil(t, rec.ClockIn)

	_, err = f.records.GetByUserAndDate(ctx, former.ID, "2024-05-17")
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
	_, err = f.records.GetByUserAndDate(ctx, boss.ID, "2024-05-17")
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)

	alerts, err := f.alerts.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, alert.TypeAbsent, alerts[0].Type)
	assert.Equal(t, bob.ID, alerts[0].UserID)
}
