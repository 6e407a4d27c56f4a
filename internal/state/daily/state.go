package daily

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-client/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-client/internal/pkg/apiclient"
	"github.com/cmlabs-hris/attendance-client/internal/pkg/sequence"
)

const resourceToday = "time/today"

// State holds today's record as last returned by the server and the in-flight flag
// for clock actions. The local record is a cache replaced wholesale by each response.
type State struct {
	mu         sync.RWMutex
	record     *attendance.Record
	inFlight   bool
	lastAction *attendance.ClockRequest

	svc attendance.Service
	seq *sequence.Tracker
	now func() time.Time
}

func NewState(svc attendance.Service) *State {
	return &State{
		svc: svc,
		seq: sequence.NewTracker(),
		now: time.Now,
	}
}

// Record returns a copy of today's record, or nil when there is none.
func (s *State) Record() *attendance.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.record.Clone()
}

// SetRecord replaces today's record, making any outstanding response stale.
func (s *State) SetRecord(r *attendance.Record) {
	s.seq.Invalidate(resourceToday)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record = r.Clone()
}

func (s *State) Status() attendance.Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return attendance.CurrentPhase(s.record)
}

func (s *State) CanClockIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return attendance.CanClockIn(s.record)
}

func (s *State) CanClockOut() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return attendance.CanClockOut(s.record)
}

func (s *State) CanStartBreak() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return attendance.CanStartBreak(s.record)
}

func (s *State) CanEndBreak() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return attendance.CanEndBreak(s.record)
}

func (s *State) NextAction() (attendance.Action, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return attendance.NextAction(s.record)
}

// InFlight reports whether a clock action is awaiting its response.
func (s *State) InFlight() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inFlight
}

// LastAction returns the most recent clock action sent, successful or not.
func (s *State) LastAction() *attendance.ClockRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastAction == nil {
		return nil
	}
	a := *s.lastAction
	return &a
}

// WorkingTime is today's working time as of now.
func (s *State) WorkingTime() attendance.WorkingTime {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return attendance.ComputeWorkingTime(s.record, s.now())
}

// Perform sends one clock action. A second call while one is outstanding fails with
// ErrActionInFlight without sending anything. On success the record becomes the server's
// response; on failure it is left unchanged, and a business rejection triggers a resync.
func (s *State) Perform(ctx context.Context, action attendance.Action, loc *attendance.Location) (*attendance.Record, error) {
	req := attendance.ClockRequest{Action: action, Timestamp: s.now(), Location: loc}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return nil, attendance.ErrActionInFlight
	}
	s.inFlight = true
	s.lastAction = &req
	s.mu.Unlock()

	seq := s.seq.Next(resourceToday)
	rec, err := s.svc.Clock(ctx, req)

	s.mu.Lock()
	s.inFlight = false
	s.mu.Unlock()

	if err != nil {
		slog.Debug("Clock action failed", "action", action, "error", err)
		if apiclient.IsBusiness(err) {
			if reloadErr := s.Reload(ctx); reloadErr != nil {
				slog.Warn("Resync after rejected clock action failed", "error", reloadErr)
			}
		}
		return nil, fmt.Errorf("%s: %w", action, err)
	}

	applied := s.seq.Apply(resourceToday, seq, func() {
		s.mu.Lock()
		s.record = rec.Clone()
		s.mu.Unlock()
	})
	if !applied {
		slog.Debug("Discarded stale clock response", "action", action, "seq", seq)
	}
	return rec.Clone(), nil
}

// Reload replaces the record with GET /time/today. A failed reload keeps the cache.
func (s *State) Reload(ctx context.Context) error {
	seq := s.seq.Next(resourceToday)
	rec, err := s.svc.Today(ctx)
	if err != nil {
		return err
	}

	s.seq.Apply(resourceToday, seq, func() {
		s.mu.Lock()
		s.record = rec.Clone()
		s.mu.Unlock()
	})
	return nil
}

// Clear resets the state on logout.
func (s *State) Clear() {
	s.seq.Invalidate(resourceToday)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record = nil
	s.inFlight = false
	s.lastAction = nil
}
