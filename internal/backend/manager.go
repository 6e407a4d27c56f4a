package backend

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-client/internal/domain/alert"
	"github.com/cmlabs-hris/attendance-client/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-client/internal/domain/report"
	"github.com/cmlabs-hris/attendance-client/internal/domain/user"
	"github.com/cmlabs-hris/attendance-client/internal/pkg/storage"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ExportPrefix is the storage prefix and URL path under which exports are served.
const ExportPrefix = "exports"

type ManagerService struct {
	users    user.Repository
	records  attendance.Repository
	alerts   *AlertService
	requests *RequestService
	files    storage.Storage
	workday  attendance.Workday
	now      func() time.Time
}

func NewManagerService(
	users user.Repository,
	records attendance.Repository,
	alerts *AlertService,
	requests *RequestService,
	files storage.Storage,
	workday attendance.Workday,
) *ManagerService {
	return &ManagerService{
		users:    users,
		records:  records,
		alerts:   alerts,
		requests: requests,
		files:    files,
		workday:  workday,
		now:      time.Now,
	}
}

func (s *ManagerService) requireManager(ctx context.Context) (actor, error) {
	a, err := actorFromContext(ctx)
	if err != nil {
		return actor{}, err
	}
	if !a.IsManager() {
		return actor{}, user.ErrManagerAccessRequired
	}
	return a, nil
}

// team is every active user other than the manager asking.
func (s *ManagerService) team(ctx context.Context, managerID string) ([]user.User, error) {
	all, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	members := make([]user.User, 0, len(all))
	for _, u := range all {
		if u.ID != managerID && u.IsActive {
			members = append(members, u)
		}
	}
	return members, nil
}

func (s *ManagerService) Dashboard(ctx context.Context) (report.Dashboard, error) {
	a, err := s.requireManager(ctx)
	if err != nil {
		return report.Dashboard{}, err
	}

	var (
		members  []user.User
		today    []attendance.Record
		alerts   []alert.Alert
		approval int
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		members, err = s.team(gCtx, a.UserID)
		return err
	})

	g.Go(func() error {
		var err error
		today, err = s.records.ListByDate(gCtx, s.workday.Date(s.now()))
		return err
	})

	g.Go(func() error {
		var err error
		alerts, err = s.alerts.List(gCtx, 0)
		return err
	})

	g.Go(func() error {
		var err error
		approval, err = s.requests.PendingCount(gCtx)
		return err
	})

	if err := g.Wait(); err != nil {
		return report.Dashboard{}, fmt.Errorf("failed to build dashboard: %w", err)
	}

	d := report.Dashboard{
		TeamSize:         len(members),
		UnreadAlerts:     len(alert.Unread(alerts)),
		PendingApprovals: approval,
		TeamMembers:      members,
	}
	inTeam := make(map[string]bool, len(members))
	for _, m := range members {
		inTeam[m.ID] = true
	}
	seen := 0
	for _, r := range today {
		if !inTeam[r.UserID] {
			continue
		}
		switch r.Status {
		case attendance.StatusPresent, attendance.StatusEarlyLeave:
			d.TodayPresent++
			seen++
		case attendance.StatusLate:
			d.TodayLate++
			seen++
		}
	}
	d.TodayAbsent = d.TeamSize - seen
	return d, nil
}

func (s *ManagerService) Team(ctx context.Context) ([]user.User, error) {
	a, err := s.requireManager(ctx)
	if err != nil {
		return nil, err
	}
	return s.team(ctx, a.UserID)
}

func (s *ManagerService) TeamAttendance(ctx context.Context, date string) ([]attendance.Record, error) {
	if _, err := s.requireManager(ctx); err != nil {
		return nil, err
	}
	return s.records.ListByDate(ctx, date)
}

func (s *ManagerService) Alerts(ctx context.Context, limit int) ([]alert.Alert, error) {
	if _, err := s.requireManager(ctx); err != nil {
		return nil, err
	}
	return s.alerts.List(ctx, limit)
}

func (s *ManagerService) MarkAlertRead(ctx context.Context, id string) (alert.Alert, error) {
	if _, err := s.requireManager(ctx); err != nil {
		return alert.Alert{}, err
	}
	return s.alerts.MarkRead(ctx, id)
}

// MonthlyReport returns one report per team member, or only for req.UserID when set.
func (s *ManagerService) MonthlyReport(ctx context.Context, req report.MonthlyReportRequest) ([]report.MonthlyReport, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	a, err := s.requireManager(ctx)
	if err != nil {
		return nil, err
	}

	members, err := s.team(ctx, a.UserID)
	if err != nil {
		return nil, err
	}
	if req.UserID != nil {
		account, err := s.users.GetByID(ctx, *req.UserID)
		if err != nil {
			return nil, err
		}
		members = []user.User{account.User}
	}

	start, end := monthBounds(req.Year, req.Month)
	reports := make([]report.MonthlyReport, 0, len(members))
	for _, m := range members {
		records, err := s.records.ListByUser(ctx, m.ID, start, end)
		if err != nil {
			return nil, fmt.Errorf("failed to list attendance for %s: %w", m.ID, err)
		}
		reports = append(reports, report.MonthlyReport{
			UserID:   m.ID,
			UserName: m.Name,
			Month:    fmt.Sprintf("%04d-%02d", req.Year, req.Month),
			Year:     req.Year,
			Records:  records,
			Stats:    attendance.ComputeStats(start, end, records),
		})
	}
	return reports, nil
}

// Export renders the team's records in the range and stores them for download.
func (s *ManagerService) Export(ctx context.Context, req report.ExportRequest) (report.ExportResponse, error) {
	if err := req.Validate(); err != nil {
		return report.ExportResponse{}, err
	}
	a, err := s.requireManager(ctx)
	if err != nil {
		return report.ExportResponse{}, err
	}

	members, err := s.team(ctx, a.UserID)
	if err != nil {
		return report.ExportResponse{}, err
	}

	var buf bytes.Buffer
	if req.Format == report.FormatExcel {
		// UTF-8 byte order mark for spreadsheet imports.
		buf.WriteString("\ufeff")
	}
	w := csv.NewWriter(&buf)
	w.UseCRLF = req.Format == report.FormatExcel
	if err := w.Write([]string{"employeeId", "name", "date", "clockIn", "clockOut", "breakStart", "breakEnd", "totalHours", "status"}); err != nil {
		return report.ExportResponse{}, err
	}
	for _, m := range members {
		records, err := s.records.ListByUser(ctx, m.ID, req.StartDate, req.EndDate)
		if err != nil {
			return report.ExportResponse{}, fmt.Errorf("failed to list attendance for %s: %w", m.ID, err)
		}
		for _, r := range records {
			if err := w.Write(exportRow(m, r)); err != nil {
				return report.ExportResponse{}, err
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return report.ExportResponse{}, fmt.Errorf("failed to render export: %w", err)
	}

	name := fmt.Sprintf("attendance_%s_%s_%s.csv", req.StartDate, req.EndDate, uuid.NewString()[:8])
	if err := s.files.Put(ctx, path.Join(ExportPrefix, name), &buf); err != nil {
		return report.ExportResponse{}, fmt.Errorf("failed to store export: %w", err)
	}

	slog.Info("Attendance exported", "file", name, "format", req.Format, "manager_id", a.UserID)
	return report.ExportResponse{DownloadURL: "/" + ExportPrefix + "/" + name}, nil
}

// OpenExport returns a previously stored export by file name.
func (s *ManagerService) OpenExport(ctx context.Context, name string) (io.ReadCloser, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return nil, report.ErrExportNotFound
	}
	rc, err := s.files.Get(ctx, path.Join(ExportPrefix, name))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, report.ErrExportNotFound
		}
		return nil, err
	}
	return rc, nil
}

func exportRow(u user.User, r attendance.Record) []string {
	hours := ""
	if r.TotalHours != nil {
		hours = fmt.Sprintf("%.2f", *r.TotalHours)
	}
	return []string{
		u.EmployeeID,
		u.Name,
		r.Date,
		formatClock(r.ClockIn),
		formatClock(r.ClockOut),
		formatClock(r.BreakStart),
		formatClock(r.BreakEnd),
		hours,
		string(r.Status),
	}
}

func formatClock(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
