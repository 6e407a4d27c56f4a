package request

import "errors"

var (
	ErrRequestNotFound         = errors.New("request not found")
	ErrRequestAlreadyProcessed = errors.New("request already processed")
	ErrRequestNotPending       = errors.New("only pending requests can be withdrawn")
	ErrNotRequestOwner         = errors.New("only the creator can withdraw a request")
	ErrInvalidTransition       = errors.New("invalid status transition")
	ErrSelfDecision            = errors.New("you cannot decide your own request")

	ErrLeaveOverlap          = errors.New("a leave request already covers part of this period")
	ErrModificationWindow    = errors.New("time can only be modified for the past 30 days")
	ErrDuplicateModification = errors.New("a pending modification already exists for this date")
	ErrMissingClockIn        = errors.New("the day has no clock-in, request a clock-in time as well")
)
