package report

import (
	"context"

	"github.com/cmlabs-hris/attendance-client/internal/domain/alert"
	"github.com/cmlabs-hris/attendance-client/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-client/internal/domain/user"
)

// ManagerService is the manager-only remote API as consumed by the client.
type ManagerService interface {
	Dashboard(ctx context.Context) (Dashboard, error)
	Team(ctx context.Context) ([]user.User, error)
	TeamAttendance(ctx context.Context, date string) ([]attendance.Record, error)
	Alerts(ctx context.Context, limit int) ([]alert.Alert, error)
	MarkAlertRead(ctx context.Context, id string) (alert.Alert, error)
	MonthlyReport(ctx context.Context, req MonthlyReportRequest) ([]MonthlyReport, error)
	Export(ctx context.Context, req ExportRequest) (ExportResponse, error)
}
