package attendance

import "errors"

// Attendance domain errors
var (
	ErrAlreadyClockedIn  = errors.New("you have already clocked in today")
	ErrNotClockedIn      = errors.New("you have not clocked in yet")
	ErrAlreadyClockedOut = errors.New("you have already clocked out")
	ErrBreakAlreadyTaken = errors.New("break has already been taken today")
	ErrNotOnBreak        = errors.New("you are not on a break")
	ErrClockOutBeforeIn  = errors.New("clock-out must be after clock-in")
	ErrFutureTimestamp   = errors.New("timestamp is in the future")
	ErrTimestampNotToday = errors.New("clock actions can only be recorded for the current day")
	ErrActionInFlight    = errors.New("a clock action is already in progress")
	ErrInvalidAction     = errors.New("invalid clock action")

	ErrAttendanceNotFound = errors.New("attendance record not found")
)
