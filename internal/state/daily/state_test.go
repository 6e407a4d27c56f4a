package daily

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/attendance-client/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-client/internal/pkg/apiclient"
)

type fakeService struct {
	mu       sync.Mutex
	today    *attendance.Record
	todayErr error
	clockFn  func(req attendance.ClockRequest) (attendance.Record, error)
	calls    int
	reloads  int
}

func (f *fakeService) Clock(_ context.Context, req attendance.ClockRequest) (attendance.Record, error) {
	f.mu.Lock()
	f.calls++
	fn := f.clockFn
	f.mu.Unlock()
	return fn(req)
}

func (f *fakeService) Today(context.Context) (*attendance.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reloads++
	return f.today.Clone(), f.todayErr
}

func (f *fakeService) History(context.Context, int, int) ([]attendance.Record, error) {
	return nil, nil
}

func (f *fakeService) Statistics(context.Context, string, string) (attendance.Stats, error) {
	return attendance.Stats{}, nil
}

func clock(hhmm string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", "2024-05-13 "+hhmm)
	if err != nil {
		panic(err)
	}
	return t
}

func ptr(t time.Time) *time.Time { return &t }

func newTestState(svc *fakeService, now string) *State {
	s := NewState(svc)
	s.now = func() time.Time { return clock(now) }
	return s
}

func TestState_InitialPredicates(t *testing.T) {
	s := newTestState(&fakeService{}, "08:00")

	assert.Nil(t, s.Record())
	assert.Equal(t, attendance.PhaseClockedOut, s.Status())
	assert.True(t, s.CanClockIn())
	assert.False(t, s.CanClockOut())
	assert.False(t, s.CanStartBreak())
	assert.False(t, s.CanEndBreak())
	assert.False(t, s.InFlight())
}

func TestState_PerformClockIn(t *testing.T) {
	svc := &fakeService{
		clockFn: func(req attendance.ClockRequest) (attendance.Record, error) {
			return attendance.Record{
				ID:      "a1",
				Date:    "2024-05-13",
				ClockIn: ptr(req.Timestamp),
				Status:  attendance.StatusLate,
			}, nil
		},
	}
	s := newTestState(svc, "09:03")

	// Act
	rec, err := s.Perform(context.Background(), attendance.ActionClockIn, nil)

	// Assert
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, clock("09:03"), *rec.ClockIn)
	assert.Equal(t, attendance.PhaseClockedIn, s.Status())
	assert.False(t, s.CanClockIn())
	assert.True(t, s.CanClockOut())
	assert.True(t, s.CanStartBreak())
	assert.False(t, s.InFlight())

	last := s.LastAction()
	require.NotNil(t, last)
	assert.Equal(t, attendance.ActionClockIn, last.Action)
}

func TestState_PerformFailureKeepsRecord(t *testing.T) {
	existing := &attendance.Record{Date: "2024-05-13", ClockIn: ptr(clock("09:00")), Status: attendance.StatusPresent}
	svc := &fakeService{
		clockFn: func(attendance.ClockRequest) (attendance.Record, error) {
			return attendance.Record{}, &apiclient.Error{Kind: apiclient.KindNetwork, Message: "request timed out", Timeout: true}
		},
	}
	s := newTestState(svc, "12:00")
	s.SetRecord(existing)

	// Act
	rec, err := s.Perform(context.Background(), attendance.ActionBreakStart, nil)

	// Assert
	require.Error(t, err)
	assert.Nil(t, rec)
	assert.True(t, apiclient.IsNetwork(err))
	assert.Equal(t, existing, s.Record())
	assert.False(t, s.InFlight())
	assert.Equal(t, 0, svc.reloads)
}

func TestState_PerformBusinessRejectionResyncs(t *testing.T) {
	serverSide := &attendance.Record{Date: "2024-05-13", ClockIn: ptr(clock("08:55")), Status: attendance.StatusPresent}
	svc := &fakeService{
		today: serverSide,
		clockFn: func(attendance.ClockRequest) (attendance.Record, error) {
			return attendance.Record{}, &apiclient.Error{Kind: apiclient.KindBusiness, StatusCode: 409, Message: "already clocked in"}
		},
	}
	s := newTestState(svc, "09:10")

	// Act
	_, err := s.Perform(context.Background(), attendance.ActionClockIn, nil)

	// Assert
	require.Error(t, err)
	assert.True(t, apiclient.IsBusiness(err))
	assert.Equal(t, 1, svc.reloads)
	assert.Equal(t, serverSide, s.Record())
	assert.False(t, s.CanClockIn())
}

func TestState_PerformRejectsWhileInFlight(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	svc := &fakeService{
		clockFn: func(req attendance.ClockRequest) (attendance.Record, error) {
			close(started)
			<-release
			return attendance.Record{Date: "2024-05-13", ClockIn: ptr(req.Timestamp), Status: attendance.StatusPresent}, nil
		},
	}
	s := newTestState(svc, "08:58")

	done := make(chan error, 1)
	go func() {
		_, err := s.Perform(context.Background(), attendance.ActionClockIn, nil)
		done <- err
	}()
	<-started

	// Act
	assert.True(t, s.InFlight())
	_, err := s.Perform(context.Background(), attendance.ActionClockIn, nil)

	// Assert
	assert.ErrorIs(t, err, attendance.ErrActionInFlight)
	close(release)
	require.NoError(t, <-done)
	assert.False(t, s.InFlight())
	assert.Equal(t, 1, svc.calls)
}

func TestState_PerformInvalidAction(t *testing.T) {
	svc := &fakeService{}
	s := newTestState(svc, "09:00")

	_, err := s.Perform(context.Background(), attendance.Action("lunch"), nil)

	assert.Error(t, err)
	assert.Equal(t, 0, svc.calls)
	assert.False(t, s.InFlight())
}

func TestState_StaleReloadDiscarded(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	stale := &attendance.Record{Date: "2024-05-13", Status: attendance.StatusAbsent}
	svc := &fakeService{today: stale}
	s := newTestState(svc, "09:00")

	slow := &blockingToday{fakeService: svc, started: started, release: release}
	s.svc = slow

	done := make(chan error, 1)
	go func() { done <- s.Reload(context.Background()) }()
	<-started

	fresh := &attendance.Record{Date: "2024-05-13", ClockIn: ptr(clock("09:00")), Status: attendance.StatusPresent}
	s.SetRecord(fresh)
	close(release)
	require.NoError(t, <-done)

	assert.Equal(t, fresh, s.Record())
}

type blockingToday struct {
	*fakeService
	started chan struct{}
	release chan struct{}
}

func (b *blockingToday) Today(ctx context.Context) (*attendance.Record, error) {
	close(b.started)
	<-b.release
	return b.fakeService.Today(ctx)
}

func TestState_ReloadFailureKeepsCache(t *testing.T) {
	existing := &attendance.Record{Date: "2024-05-13", ClockIn: ptr(clock("09:00")), Status: attendance.StatusPresent}
	svc := &fakeService{todayErr: errors.New("boom")}
	s := newTestState(svc, "10:00")
	s.SetRecord(existing)

	err := s.Reload(context.Background())

	assert.Error(t, err)
	assert.Equal(t, existing, s.Record())
}

func TestState_WorkingTimeAndClear(t *testing.T) {
	s := newTestState(&fakeService{}, "15:30")
	s.SetRecord(&attendance.Record{
		Date:       "2024-05-13",
		ClockIn:    ptr(clock("08:00")),
		BreakStart: ptr(clock("12:00")),
		BreakEnd:   ptr(clock("13:00")),
		Status:     attendance.StatusPresent,
	})

	assert.Equal(t, "6:30", s.WorkingTime().String())

	s.Clear()
	assert.Nil(t, s.Record())
	assert.Equal(t, 0, s.WorkingTime().Minutes)
	assert.Nil(t, s.LastAction())
}
