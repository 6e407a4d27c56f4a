package manager

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"

	"github.com/cmlabs-hris/attendance-client/internal/domain/alert"
	"github.com/cmlabs-hris/attendance-client/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-client/internal/domain/report"
	"github.com/cmlabs-hris/attendance-client/internal/domain/user"
	"github.com/cmlabs-hris/attendance-client/internal/pkg/apiclient"
	"github.com/cmlabs-hris/attendance-client/internal/pkg/validator"
)

// RoleSource tells whether the current session belongs to a manager.
type RoleSource interface {
	IsManager() bool
}

type ManagerServiceImpl struct {
	api  *apiclient.Client
	role RoleSource
}

func NewManagerService(api *apiclient.Client, role RoleSource) *ManagerServiceImpl {
	return &ManagerServiceImpl{api: api, role: role}
}

var _ report.ManagerService = (*ManagerServiceImpl)(nil)

func (m *ManagerServiceImpl) requireManager() error {
	if !m.role.IsManager() {
		return user.ErrManagerAccessRequired
	}
	return nil
}

func (m *ManagerServiceImpl) Dashboard(ctx context.Context) (report.Dashboard, error) {
	if err := m.requireManager(); err != nil {
		return report.Dashboard{}, err
	}
	var d report.Dashboard
	if err := m.api.Get(ctx, "/manager/dashboard", nil, &d); err != nil {
		return report.Dashboard{}, err
	}
	return d, nil
}

func (m *ManagerServiceImpl) Team(ctx context.Context) ([]user.User, error) {
	if err := m.requireManager(); err != nil {
		return nil, err
	}
	team := []user.User{}
	if err := m.api.Get(ctx, "/manager/team", nil, &team); err != nil {
		return nil, err
	}
	return team, nil
}

func (m *ManagerServiceImpl) TeamAttendance(ctx context.Context, date string) ([]attendance.Record, error) {
	if err := m.requireManager(); err != nil {
		return nil, err
	}
	if _, ok := validator.IsValidDate(date); !ok {
		return nil, validator.ValidationErrors{{Field: "date", Message: "date must be in YYYY-MM-DD format"}}
	}

	query := url.Values{}
	query.Set("date", date)

	records := []attendance.Record{}
	if err := m.api.Get(ctx, "/manager/team/attendance", query, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Alerts lists alerts newest first; limit <= 0 lists all of them.
func (m *ManagerServiceImpl) Alerts(ctx context.Context, limit int) ([]alert.Alert, error) {
	if err := m.requireManager(); err != nil {
		return nil, err
	}
	var query url.Values
	if limit > 0 {
		query = url.Values{}
		query.Set("limit", strconv.Itoa(limit))
	}
	alerts := []alert.Alert{}
	if err := m.api.Get(ctx, "/manager/alerts", query, &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}

func (m *ManagerServiceImpl) MarkAlertRead(ctx context.Context, id string) (alert.Alert, error) {
	if err := m.requireManager(); err != nil {
		return alert.Alert{}, err
	}
	var a alert.Alert
	if err := m.api.Patch(ctx, "/manager/alerts/"+url.PathEscape(id)+"/read", nil, &a); err != nil {
		return alert.Alert{}, err
	}
	return a, nil
}

func (m *ManagerServiceImpl) MonthlyReport(ctx context.Context, req report.MonthlyReportRequest) ([]report.MonthlyReport, error) {
	if err := m.requireManager(); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var query url.Values
	if req.UserID != nil {
		query = url.Values{}
		query.Set("userId", *req.UserID)
	}

	reports := []report.MonthlyReport{}
	path := fmt.Sprintf("/manager/reports/monthly/%d/%d", req.Year, req.Month)
	if err := m.api.Get(ctx, path, query, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

func (m *ManagerServiceImpl) Export(ctx context.Context, req report.ExportRequest) (report.ExportResponse, error) {
	if err := m.requireManager(); err != nil {
		return report.ExportResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return report.ExportResponse{}, err
	}

	var resp report.ExportResponse
	if err := m.api.Post(ctx, "/manager/export", req, &resp); err != nil {
		return report.ExportResponse{}, err
	}
	return resp, nil
}

// DownloadExport fetches the file behind an Export downloadUrl into w.
func (m *ManagerServiceImpl) DownloadExport(ctx context.Context, downloadURL string, w io.Writer) (int64, error) {
	if err := m.requireManager(); err != nil {
		return 0, err
	}
	if downloadURL == "" {
		return 0, report.ErrExportNotFound
	}
	return m.api.Download(ctx, downloadURL, w)
}
