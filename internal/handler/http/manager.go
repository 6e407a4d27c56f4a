package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-client/internal/domain/alert"
	"github.com/cmlabs-hris/attendance-client/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-client/internal/domain/report"
	"github.com/cmlabs-hris/attendance-client/internal/domain/user"
	"github.com/cmlabs-hris/attendance-client/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-client/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

// ManagerService is the part of the development API the manager handler needs.
type ManagerService interface {
	Dashboard(ctx context.Context) (report.Dashboard, error)
	Team(ctx context.Context) ([]user.User, error)
	TeamAttendance(ctx context.Context, date string) ([]attendance.Record, error)
	Alerts(ctx context.Context, limit int) ([]alert.Alert, error)
	MarkAlertRead(ctx context.Context, id string) (alert.Alert, error)
	MonthlyReport(ctx context.Context, req report.MonthlyReportRequest) ([]report.MonthlyReport, error)
	Export(ctx context.Context, req report.ExportRequest) (report.ExportResponse, error)
	OpenExport(ctx context.Context, name string) (io.ReadCloser, error)
}

type ManagerHandler interface {
	Dashboard(w http.ResponseWriter, r *http.Request)
	Team(w http.ResponseWriter, r *http.Request)
	TeamAttendance(w http.ResponseWriter, r *http.Request)
	Alerts(w http.ResponseWriter, r *http.Request)
	MarkAlertRead(w http.ResponseWriter, r *http.Request)
	MonthlyReport(w http.ResponseWriter, r *http.Request)
	Export(w http.ResponseWriter, r *http.Request)
	Download(w http.ResponseWriter, r *http.Request)
}

type managerHandlerImpl struct {
	managerService ManagerService
}

func NewManagerHandler(managerService ManagerService) ManagerHandler {
	return &managerHandlerImpl{
		managerService: managerService,
	}
}

// Dashboard implements ManagerHandler.
func (h *managerHandlerImpl) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.managerService.Dashboard(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, d)
}

// Team implements ManagerHandler.
func (h *managerHandlerImpl) Team(w http.ResponseWriter, r *http.Request) {
	team, err := h.managerService.Team(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.List(w, team)
}

// TeamAttendance implements ManagerHandler. date defaults to today.
func (h *managerHandlerImpl) TeamAttendance(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().Format(validator.DateLayout)
	} else if _, ok := validator.IsValidDate(date); !ok {
		response.HandleError(w, validator.ValidationErrors{{Field: "date", Message: "date must be in YYYY-MM-DD format"}})
		return
	}

	records, err := h.managerService.TeamAttendance(r.Context(), date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.List(w, records)
}

// Alerts implements ManagerHandler. Without limit every alert is returned.
func (h *managerHandlerImpl) Alerts(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			response.HandleError(w, validator.ValidationErrors{{Field: "limit", Message: "limit must be a non-negative number"}})
			return
		}
		limit = n
	}

	alerts, err := h.managerService.Alerts(r.Context(), limit)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if alerts == nil {
		alerts = []alert.Alert{}
	}

	response.SuccessWithMeta(w, alerts, &response.Meta{Count: len(alerts), Unread: len(alert.Unread(alerts))})
}

// MarkAlertRead implements ManagerHandler.
func (h *managerHandlerImpl) MarkAlertRead(w http.ResponseWriter, r *http.Request) {
	a, err := h.managerService.MarkAlertRead(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, a)
}

// MonthlyReport implements ManagerHandler.
func (h *managerHandlerImpl) MonthlyReport(w http.ResponseWriter, r *http.Request) {
	var errs validator.ValidationErrors
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		errs.Add("year", "year must be a number")
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil {
		errs.Add("month", "month must be a number")
	}
	if err := errs.OrNil(); err != nil {
		response.HandleError(w, err)
		return
	}

	req := report.MonthlyReportRequest{Year: year, Month: month}
	if userID := r.URL.Query().Get("userId"); userID != "" {
		req.UserID = &userID
	}

	reports, err := h.managerService.MonthlyReport(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.List(w, reports)
}

// Export implements ManagerHandler.
func (h *managerHandlerImpl) Export(w http.ResponseWriter, r *http.Request) {
	var req report.ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Export decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	resp, err := h.managerService.Export(r.Context(), req)
	if err != nil {
		slog.Error("Export service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Export ready", resp)
}

// Download implements ManagerHandler. It streams a stored export as an attachment.
func (h *managerHandlerImpl) Download(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "file")

	rc, err := h.managerService.OpenExport(r.Context(), name)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	defer rc.Close()

	contentType := "text/csv; charset=utf-8"
	if !strings.HasSuffix(name, ".csv") {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		slog.Error("Export download interrupted", "file", name, "error", err)
	}
}
