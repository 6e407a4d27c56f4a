package backend

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/attendance-client/internal/domain/alert"
	"github.com/cmlabs-hris/attendance-client/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-client/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-client/internal/domain/report"
	"github.com/cmlabs-hris/attendance-client/internal/domain/request"
	"github.com/cmlabs-hris/attendance-client/internal/domain/user"
	"github.com/cmlabs-hris/attendance-client/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-client/internal/pkg/storage"
	"github.com/cmlabs-hris/attendance-client/internal/repository/memory"
)

var (
	employee = user.User{ID: "u-emp", EmployeeID: "EMP001", Name: "Budi", Department: "Engineering", Role: user.RoleEmployee, IsActive: true}
	manager  = user.User{ID: "u-mgr", EmployeeID: "MGR001", Name: "Sari", Department: "Engineering", Role: user.RoleManager, IsActive: true}
)

type fixture struct {
	jwt        jwt.Service
	users      user.Repository
	records    attendance.Repository
	alertsRepo alert.Repository
	auth       *AuthService
	attendance *AttendanceService
	requests   *RequestService
	manager    *ManagerService
	now        time.Time
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()

	jwtService, err := jwt.NewJWTService("test-secret-key-for-jwt", "1h")
	require.NoError(t, err)
	workday, err := attendance.ParseWorkday("09:00", "18:00", 15*time.Minute, time.UTC)
	require.NoError(t, err)

	f := &fixture{
		jwt:        jwtService,
		users:      memory.NewUserRepository(),
		records:    memory.NewAttendanceRepository(),
		alertsRepo: memory.NewAlertRepository(),
		now:        now,
	}
	clock := func() time.Time { return f.now }

	hash, err := HashPassword("password123")
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, f.users.Create(ctx, user.Account{User: employee, PasswordHash: hash}))
	require.NoError(t, f.users.Create(ctx, user.Account{User: manager, PasswordHash: hash}))

	alerts := NewAlertService(f.alertsRepo)
	alerts.now = clock
	f.auth = NewAuthService(f.users, jwtService)
	f.attendance = NewAttendanceService(f.records, f.users, alerts, workday)
	f.attendance.now = clock
	f.requests = NewRequestService(memory.NewLeaveRequestRepository(), memory.NewTimeModificationRepository(), f.users, f.records, workday)
	f.requests.now = clock
	f.manager = NewManagerService(f.users, f.records, alerts, f.requests, storage.NewMemoryStorage(), workday)
	f.manager.now = clock
	return f
}

func (f *fixture) as(t *testing.T, u user.User) context.Context {
	t.Helper()
	token, _, err := f.jwt.GenerateAccessToken(u)
	require.NoError(t, err)
	parsed, err := f.jwt.JWTAuth().Decode(token)
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), parsed, nil)
}

func day(hhmm string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", "2024-05-13 "+hhmm)
	if err != nil {
		panic(err)
	}
	return t
}

func clockReq(action attendance.Action, hhmm string) attendance.ClockRequest {
	return attendance.ClockRequest{Action: action, Timestamp: day(hhmm)}
}

func TestAuthService_Login(t *testing.T) {
	f := newFixture(t, day("08:00"))
	ctx := context.Background()

	t.Run("valid credentials", func(t *testing.T) {
		resp, err := f.auth.Login(ctx, auth.LoginRequest{EmployeeID: "EMP001", Password: "password123"})
		require.NoError(t, err)
		assert.Equal(t, employee.ID, resp.User.ID)
		assert.NotEmpty(t, resp.Token)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := f.auth.Login(ctx, auth.LoginRequest{EmployeeID: "EMP001", Password: "nope"})
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("unknown employee", func(t *testing.T) {
		_, err := f.auth.Login(ctx, auth.LoginRequest{EmployeeID: "EMP999", Password: "password123"})
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("profile from token", func(t *testing.T) {
		u, err := f.auth.Profile(f.as(t, manager))
		require.NoError(t, err)
		assert.Equal(t, manager.Name, u.Name)
	})
}

func TestAttendanceService_DayFlow(t *testing.T) {
	f := newFixture(t, day("18:30"))
	ctx := f.as(t, employee)

	rec, err := f.attendance.Clock(ctx, clockReq(attendance.ActionClockIn, "09:03"))
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusPresent, rec.Status)
	assert.Equal(t, "2024-05-13", rec.Date)

	_, err = f.attendance.Clock(ctx, clockReq(attendance.ActionClockIn, "09:05"))
	assert.ErrorIs(t, err, attendance.ErrAlreadyClockedIn)

	_, err = f.attendance.Clock(ctx, clockReq(attendance.ActionBreakEnd, "11:00"))
	assert.ErrorIs(t, err, attendance.ErrNotOnBreak)

	_, err = f.attendance.Clock(ctx, clockReq(attendance.ActionBreakStart, "12:00"))
	require.NoError(t, err)
	_, err = f.attendance.Clock(ctx, clockReq(attendance.ActionBreakEnd, "13:00"))
	require.NoError(t, err)
	_, err = f.attendance.Clock(ctx, clockReq(attendance.ActionBreakStart, "15:00"))
	assert.ErrorIs(t, err, attendance.ErrBreakAlreadyTaken)

	rec, err = f.attendance.Clock(ctx, clockReq(attendance.ActionClockOut, "18:03"))
	require.NoError(t, err)
	require.NotNil(t, rec.TotalHours)
	assert.Equal(t, 8.0, *rec.TotalHours)
	assert.Equal(t, attendance.StatusPresent, rec.Status)

	today, err := f.attendance.Today(ctx)
	require.NoError(t, err)
	require.NotNil(t, today)
	assert.True(t, today.Closed())
}

func TestAttendanceService_LateRaisesAlert(t *testing.T) {
	f := newFixture(t, day("10:00"))
	ctx := f.as(t, employee)

	rec, err := f.attendance.Clock(ctx, clockReq(attendance.ActionClockIn, "09:20"))
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusLate, rec.Status)

	alerts, err := f.alertsRepo.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, alert.TypeLate, alerts[0].Type)
	assert.Equal(t, employee.ID, alerts[0].UserID)
}

func TestAttendanceService_EarlyLeaveAndOpenBreak(t *testing.T) {
	f := newFixture(t, day("17:00"))
	ctx := f.as(t, employee)

	_, err := f.attendance.Clock(ctx, clockReq(attendance.ActionClockIn, "08:55"))
	require.NoError(t, err)
	_, err = f.attendance.Clock(ctx, clockReq(attendance.ActionBreakStart, "16:00"))
	require.NoError(t, err)

	rec, err := f.attendance.Clock(ctx, clockReq(attendance.ActionClockOut, "17:00"))
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusEarlyLeave, rec.Status)
	require.NotNil(t, rec.BreakEnd)
	assert.Equal(t, day("17:00"), *rec.BreakEnd)
	assert.Equal(t, 7.08, *rec.TotalHours)
}

func TestAttendanceService_RejectsFutureTimestamp(t *testing.T) {
	f := newFixture(t, day("09:00"))

	_, err := f.attendance.Clock(f.as(t, employee), clockReq(attendance.ActionClockIn, "10:00"))

	assert.ErrorIs(t, err, attendance.ErrFutureTimestamp)
}

func TestAttendanceService_RejectsOtherDays(t *testing.T) {
	f := newFixture(t, day("10:00"))
	yesterday := attendance.ClockRequest{Action: attendance.ActionClockIn, Timestamp: day("09:00").AddDate(0, 0, -1)}

	_, err := f.attendance.Clock(f.as(t, employee), yesterday)

	assert.ErrorIs(t, err, attendance.ErrTimestampNotToday)
	_, err = f.records.GetByUserAndDate(context.Background(), employee.ID, "2024-05-12")
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
}

func TestAttendanceService_ConcurrentClockIn(t *testing.T) {
	f := newFixture(t, day("10:00"))
	ctx := f.as(t, employee)

	// Act
	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.attendance.Clock(ctx, clockReq(attendance.ActionClockIn, "09:00"))
		}(i)
	}
	wg.Wait()

	// Assert
	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, attendance.ErrAlreadyClockedIn)
	}
	assert.Equal(t, 1, succeeded)
}

func TestAttendanceService_TodayWithoutRecord(t *testing.T) {
	f := newFixture(t, day("08:00"))

	rec, err := f.attendance.Today(f.as(t, employee))

	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestRequestService_LeaveLifecycle(t *testing.T) {
	f := newFixture(t, day("10:00"))
	empCtx := f.as(t, employee)
	mgrCtx := f.as(t, manager)

	lr, err := f.requests.CreateLeave(empCtx, request.CreateLeaveRequest{
		Type: request.LeaveAnnual, StartDate: "2024-05-20", EndDate: "2024-05-22", Reason: "Family trip",
	})
	require.NoError(t, err)
	assert.Equal(t, request.StatusPending, lr.Status)
	assert.Equal(t, employee.Name, lr.UserName)

	_, err = f.requests.CreateLeave(empCtx, request.CreateLeaveRequest{
		Type: request.LeaveSick, StartDate: "2024-05-22", EndDate: "2024-05-23", Reason: "Flu",
	})
	assert.ErrorIs(t, err, request.ErrLeaveOverlap)

	_, err = f.requests.UpdateLeaveStatus(empCtx, lr.ID, request.UpdateStatusRequest{Status: request.StatusApproved})
	assert.ErrorIs(t, err, user.ErrManagerAccessRequired)

	pending, err := f.requests.ListLeave(mgrCtx, request.PendingOnly())
	require.NoError(t, err)
	require.Len(t, pending, 1)

	approved, err := f.requests.UpdateLeaveStatus(mgrCtx, lr.ID, request.UpdateStatusRequest{Status: request.StatusApproved})
	require.NoError(t, err)
	assert.Equal(t, request.StatusApproved, approved.Status)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, manager.Name, *approved.ApprovedBy)

	pending, err = f.requests.ListLeave(mgrCtx, request.PendingOnly())
	require.NoError(t, err)
	assert.Empty(t, pending)

	_, err = f.requests.UpdateLeaveStatus(mgrCtx, lr.ID, request.UpdateStatusRequest{Status: request.StatusRejected})
	assert.ErrorIs(t, err, request.ErrRequestAlreadyProcessed)

	err = f.requests.DeleteLeave(empCtx, lr.ID)
	assert.ErrorIs(t, err, request.ErrRequestNotPending)
}

func TestRequestService_ConcurrentDecisions(t *testing.T) {
	f := newFixture(t, day("10:00"))
	mgrCtx := f.as(t, manager)

	lr, err := f.requests.CreateLeave(f.as(t, employee), request.CreateLeaveRequest{
		Type: request.LeaveSick, StartDate: "2024-05-14", EndDate: "2024-05-14", Reason: "Flu",
	})
	require.NoError(t, err)

	// Act
	decisions := []request.Status{request.StatusApproved, request.StatusRejected, request.StatusApproved, request.StatusRejected}
	errs := make([]error, len(decisions))
	var wg sync.WaitGroup
	for i, to := range decisions {
		wg.Add(1)
		go func(i int, to request.Status) {
			defer wg.Done()
			_, errs[i] = f.requests.UpdateLeaveStatus(mgrCtx, lr.ID, request.UpdateStatusRequest{Status: to})
		}(i, to)
	}
	wg.Wait()

	// Assert
	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, request.ErrRequestAlreadyProcessed)
	}
	assert.Equal(t, 1, succeeded)
}

func TestRequestService_ManagerCannotDecideOwnRequest(t *testing.T) {
	f := newFixture(t, day("10:00"))
	mgrCtx := f.as(t, manager)

	lr, err := f.requests.CreateLeave(mgrCtx, request.CreateLeaveRequest{
		Type: request.LeaveAnnual, StartDate: "2024-06-10", EndDate: "2024-06-11", Reason: "Holiday",
	})
	require.NoError(t, err)

	// Act
	_, err = f.requests.UpdateLeaveStatus(mgrCtx, lr.ID, request.UpdateStatusRequest{Status: request.StatusApproved})

	// Assert
	assert.ErrorIs(t, err, request.ErrSelfDecision)
	pending, err := f.requests.ListLeave(mgrCtx, request.PendingOnly())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, request.StatusPending, pending[0].Status)
}

func TestRequestService_WithdrawPending(t *testing.T) {
	f := newFixture(t, day("10:00"))
	empCtx := f.as(t, employee)

	lr, err := f.requests.CreateLeave(empCtx, request.CreateLeaveRequest{
		Type: request.LeavePersonal, StartDate: "2024-06-03", EndDate: "2024-06-03", Reason: "Errand",
	})
	require.NoError(t, err)

	err = f.requests.DeleteLeave(f.as(t, manager), lr.ID)
	assert.ErrorIs(t, err, request.ErrNotRequestOwner)

	require.NoError(t, f.requests.DeleteLeave(empCtx, lr.ID))

	mine, err := f.requests.ListLeave(empCtx, request.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestRequestService_TimeModificationApprovalUpdatesRecord(t *testing.T) {
	f := newFixture(t, day("19:00"))
	empCtx := f.as(t, employee)

	_, err := f.attendance.Clock(empCtx, clockReq(attendance.ActionClockIn, "09:40"))
	require.NoError(t, err)

	in := day("08:50")
	out := day("18:10")
	tm, err := f.requests.CreateTimeModification(empCtx, request.CreateTimeModificationRequest{
		Date: "2024-05-13", RequestedClockIn: &in, RequestedClockOut: &out, Reason: "Badge reader was down",
	})
	require.NoError(t, err)
	require.NotNil(t, tm.OriginalClockIn)
	assert.Equal(t, day("09:40"), *tm.OriginalClockIn)

	_, err = f.requests.CreateTimeModification(empCtx, request.CreateTimeModificationRequest{
		Date: "2024-05-13", RequestedClockIn: &in, Reason: "Again",
	})
	assert.ErrorIs(t, err, request.ErrDuplicateModification)

	_, err = f.requests.UpdateTimeModificationStatus(f.as(t, manager), tm.ID, request.UpdateStatusRequest{Status: request.StatusApproved})
	require.NoError(t, err)

	rec, err := f.records.GetByUserAndDate(context.Background(), employee.ID, "2024-05-13")
	require.NoError(t, err)
	assert.Equal(t, in, *rec.ClockIn)
	assert.Equal(t, out, *rec.ClockOut)
	assert.Equal(t, attendance.StatusPresent, rec.Status)
}

func TestRequestService_TimeModificationNeedsClockIn(t *testing.T) {
	f := newFixture(t, day("19:00"))
	empCtx := f.as(t, employee)
	out := day("17:30").AddDate(0, 0, -1)

	_, err := f.requests.CreateTimeModification(empCtx, request.CreateTimeModificationRequest{
		Date: "2024-05-12", RequestedClockOut: &out, Reason: "Forgot to clock out",
	})

	assert.ErrorIs(t, err, request.ErrMissingClockIn)
	_, err = f.records.GetByUserAndDate(context.Background(), employee.ID, "2024-05-12")
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
}

func TestRequestService_ClockOutOnlyModification(t *testing.T) {
	f := newFixture(t, day("19:00"))
	empCtx := f.as(t, employee)

	_, err := f.attendance.Clock(empCtx, clockReq(attendance.ActionClockIn, "09:40"))
	require.NoError(t, err)

	out := day("18:10")
	tm, err := f.requests.CreateTimeModification(empCtx, request.CreateTimeModificationRequest{
		Date: "2024-05-13", RequestedClockOut: &out, Reason: "Forgot to clock out",
	})
	require.NoError(t, err)

	// Act
	_, err = f.requests.UpdateTimeModificationStatus(f.as(t, manager), tm.ID, request.UpdateStatusRequest{Status: request.StatusApproved})
	require.NoError(t, err)

	// Assert
	rec, err := f.records.GetByUserAndDate(context.Background(), employee.ID, "2024-05-13")
	require.NoError(t, err)
	assert.Equal(t, day("09:40"), *rec.ClockIn)
	assert.Equal(t, out, *rec.ClockOut)
	assert.Equal(t, attendance.StatusLate, rec.Status)
	require.NotNil(t, rec.TotalHours)
	assert.Equal(t, 8.5, *rec.TotalHours)
}

func TestRequestService_TimeModificationWindow(t *testing.T) {
	f := newFixture(t, day("10:00"))
	in := day("09:00")

	_, err := f.requests.CreateTimeModification(f.as(t, employee), request.CreateTimeModificationRequest{
		Date: "2024-03-01", RequestedClockIn: &in, Reason: "Old",
	})

	assert.ErrorIs(t, err, request.ErrModificationWindow)
}

func TestManagerService_DashboardAndReports(t *testing.T) {
	f := newFixture(t, day("11:00"))
	empCtx := f.as(t, employee)
	mgrCtx := f.as(t, manager)

	_, err := f.attendance.Clock(empCtx, clockReq(attendance.ActionClockIn, "09:30"))
	require.NoError(t, err)
	_, err = f.requests.CreateLeave(empCtx, request.CreateLeaveRequest{
		Type: request.LeaveAnnual, StartDate: "2024-05-27", EndDate: "2024-05-27", Reason: "Rest",
	})
	require.NoError(t, err)

	_, err = f.manager.Dashboard(empCtx)
	assert.ErrorIs(t, err, user.ErrManagerAccessRequired)

	d, err := f.manager.Dashboard(mgrCtx)
	require.NoError(t, err)
	assert.Equal(t, 1, d.TeamSize)
	assert.Equal(t, 1, d.TodayLate)
	assert.Equal(t, 0, d.TodayAbsent)
	assert.Equal(t, 1, d.UnreadAlerts)
	assert.Equal(t, 1, d.PendingApprovals)

	reports, err := f.manager.MonthlyReport(mgrCtx, report.MonthlyReportRequest{Year: 2024, Month: 5})
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "2024-05", reports[0].Month)
	assert.Equal(t, 1, reports[0].Stats.LateDays)
}
