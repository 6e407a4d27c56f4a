package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/cmlabs-hris/attendance-client/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-client/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-client/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

// AttendanceService is the part of the development API the attendance handler needs.
type AttendanceService interface {
	Clock(ctx context.Context, req attendance.ClockRequest) (attendance.Record, error)
	Today(ctx context.Context) (*attendance.Record, error)
	History(ctx context.Context, year, month int) ([]attendance.Record, error)
	Statistics(ctx context.Context, startDate, endDate string) (attendance.Stats, error)
}

type AttendanceHandler interface {
	Clock(w http.ResponseWriter, r *http.Request)
	Today(w http.ResponseWriter, r *http.Request)
	History(w http.ResponseWriter, r *http.Request)
	Statistics(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService AttendanceService
}

func NewAttendanceHandler(attendanceService AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

var clockMessages = map[attendance.Action]string{
	attendance.ActionClockIn:    "Clock in successful",
	attendance.ActionClockOut:   "Clock out successful",
	attendance.ActionBreakStart: "Break started",
	attendance.ActionBreakEnd:   "Break ended",
}

// Clock implements AttendanceHandler. The action comes from the {action} path segment.
func (h *attendanceHandlerImpl) Clock(w http.ResponseWriter, r *http.Request) {
	action, ok := attendance.ActionFromPath(chi.URLParam(r, "action"))
	if !ok {
		response.NotFound(w, "Unknown clock action")
		return
	}

	var req attendance.ClockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Clock decode error", "action", action, "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.Action = action

	// Validate request
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	// Call service
	result, err := h.attendanceService.Clock(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, clockMessages[action], result)
}

// Today implements AttendanceHandler. data is null when nothing was recorded today.
func (h *attendanceHandlerImpl) Today(w http.ResponseWriter, r *http.Request) {
	rec, err := h.attendanceService.Today(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if rec == nil {
		response.SuccessWithMessage(w, "No attendance recorded today", nil)
		return
	}

	response.Success(w, rec)
}

// History implements AttendanceHandler. year and month default to the current month.
func (h *attendanceHandlerImpl) History(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	year, month := now.Year(), int(now.Month())

	var errs validator.ValidationErrors
	if v := r.URL.Query().Get("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs.Add("year", "year must be a number")
		}
		year = n
	}
	if v := r.URL.Query().Get("month"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs.Add("month", "month must be a number")
		}
		month = n
	}
	if err := errs.OrNil(); err != nil {
		response.HandleError(w, err)
		return
	}

	records, err := h.attendanceService.History(r.Context(), year, month)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.List(w, records)
}

// Statistics implements AttendanceHandler.
func (h *attendanceHandlerImpl) Statistics(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	stats, err := h.attendanceService.Statistics(r.Context(), query.Get("start"), query.Get("end"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, stats)
}
