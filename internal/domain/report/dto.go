package report

import (
	"fmt"

	"github.com/cmlabs-hris/attendance-client/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-client/internal/domain/user"
	"github.com/cmlabs-hris/attendance-client/internal/pkg/validator"
)

// ========================================
// MONTHLY ATTENDANCE REPORT
// ========================================

type MonthlyReportRequest struct {
	Year   int
	Month  int
	UserID *string
}

func (r *MonthlyReportRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidMonth(r.Year, r.Month) {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: fmt.Sprintf("%04d-%02d is not a valid month", r.Year, r.Month),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type MonthlyReport struct {
	UserID   string              `json:"userId"`
	UserName string              `json:"userName,omitempty"`
	Month    string              `json:"month"`
	Year     int                 `json:"year"`
	Records  []attendance.Record `json:"records"`
	Stats    attendance.Stats    `json:"stats"`
}

// ========================================
// EXPORT
// ========================================

type Format string

const (
	FormatCSV   Format = "csv"
	FormatExcel Format = "excel"
)

type ExportRequest struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Format    Format `json:"format"`
}

func (r *ExportRequest) Validate() error {
	var errs validator.ValidationErrors

	start, startOK := validator.IsValidDate(r.StartDate)
	if !startOK {
		errs = append(errs, validator.ValidationError{
			Field:   "startDate",
			Message: "startDate must be in YYYY-MM-DD format",
		})
	}
	end, endOK := validator.IsValidDate(r.EndDate)
	if !endOK {
		errs = append(errs, validator.ValidationError{
			Field:   "endDate",
			Message: "endDate must be in YYYY-MM-DD format",
		})
	}
	if startOK && endOK && end.Before(start) {
		errs = append(errs, validator.ValidationError{
			Field:   "endDate",
			Message: "endDate must not be before startDate",
		})
	}

	if r.Format == "" {
		r.Format = FormatCSV
	}
	if r.Format != FormatCSV && r.Format != FormatExcel {
		errs = append(errs, validator.ValidationError{
			Field:   "format",
			Message: "format must be csv or excel",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ExportResponse struct {
	DownloadURL string `json:"downloadUrl"`
}

// ========================================
// DASHBOARD
// ========================================

type Dashboard struct {
	TeamSize         int         `json:"teamSize"`
	TodayPresent     int         `json:"todayPresent"`
	TodayLate        int         `json:"todayLate"`
	TodayAbsent      int         `json:"todayAbsent"`
	UnreadAlerts     int         `json:"unreadAlerts"`
	PendingApprovals int         `json:"pendingApprovals"`
	TeamMembers      []user.User `json:"teamMembers"`
}
