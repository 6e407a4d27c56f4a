package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-client/internal/domain/alert"
	"github.com/cmlabs-hris/attendance-client/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-client/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-client/internal/domain/report"
	"github.com/cmlabs-hris/attendance-client/internal/domain/request"
	"github.com/cmlabs-hris/attendance-client/internal/domain/user"
	"github.com/cmlabs-hris/attendance-client/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrTokenExpired):
		Unauthorized(w, "Token expired")
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrNotAuthenticated):
		Unauthorized(w, "Invalid or expired token")

	// User domain errors
	case errors.Is(err, user.ErrUserInactive):
		Forbidden(w, "User account is inactive")
	case errors.Is(err, user.ErrManagerAccessRequired):
		Forbidden(w, "Manager access required")
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")

	// Attendance domain errors
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrAlreadyClockedIn):
		ConflictWithCode(w, "ALREADY_CLOCKED_IN", err.Error())
	case errors.Is(err, attendance.ErrNotClockedIn):
		ConflictWithCode(w, "NOT_CLOCKED_IN", err.Error())
	case errors.Is(err, attendance.ErrAlreadyClockedOut):
		ConflictWithCode(w, "ALREADY_CLOCKED_OUT", err.Error())
	case errors.Is(err, attendance.ErrBreakAlreadyTaken):
		ConflictWithCode(w, "BREAK_ALREADY_TAKEN", err.Error())
	case errors.Is(err, attendance.ErrNotOnBreak):
		ConflictWithCode(w, "NOT_ON_BREAK", err.Error())
	case errors.Is(err, attendance.ErrClockOutBeforeIn), errors.Is(err, attendance.ErrFutureTimestamp),
		errors.Is(err, attendance.ErrTimestampNotToday):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, attendance.ErrInvalidAction):
		BadRequest(w, err.Error(), nil)

	// Request domain errors
	case errors.Is(err, request.ErrRequestNotFound):
		NotFound(w, "Request not found")
	case errors.Is(err, request.ErrRequestAlreadyProcessed), errors.Is(err, request.ErrInvalidTransition):
		ConflictWithCode(w, "ALREADY_PROCESSED", "Request already processed")
	case errors.Is(err, request.ErrRequestNotPending):
		ConflictWithCode(w, "NOT_PENDING", err.Error())
	case errors.Is(err, request.ErrNotRequestOwner), errors.Is(err, request.ErrSelfDecision):
		Forbidden(w, err.Error())
	case errors.Is(err, request.ErrLeaveOverlap):
		ConflictWithCode(w, "LEAVE_OVERLAP", err.Error())
	case errors.Is(err, request.ErrModificationWindow):
		ConflictWithCode(w, "OUTSIDE_MODIFICATION_WINDOW", err.Error())
	case errors.Is(err, request.ErrDuplicateModification):
		ConflictWithCode(w, "DUPLICATE_MODIFICATION", err.Error())
	case errors.Is(err, request.ErrMissingClockIn):
		ConflictWithCode(w, "MISSING_CLOCK_IN", err.Error())

	// Manager errors
	case errors.Is(err, alert.ErrAlertNotFound):
		NotFound(w, "Alert not found")
	case errors.Is(err, report.ErrExportNotFound):
		NotFound(w, "Export not found")

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
