package attendance

// CurrentPhase derives where the user is in the working day from the latest record.
func CurrentPhase(r *Record) Phase {
	if r == nil || r.ClockIn == nil {
		return PhaseClockedOut
	}
	if r.ClockOut != nil {
		return PhaseClockedOut
	}
	if onBreak(r) {
		return PhaseOnBreak
	}
	return PhaseClockedIn
}

func CanClockIn(r *Record) bool {
	return r == nil || r.ClockIn == nil
}

// CanClockOut is false while a break is open; the break must be ended first.
func CanClockOut(r *Record) bool {
	return r != nil && r.ClockIn != nil && r.ClockOut == nil && !onBreak(r)
}

// CanStartBreak allows a single break per day.
func CanStartBreak(r *Record) bool {
	return r != nil && r.ClockIn != nil && r.ClockOut == nil && r.BreakStart == nil
}

// CanEndBreak requires an open break on a day that has not been clocked out.
func CanEndBreak(r *Record) bool {
	return r != nil && r.ClockIn != nil && r.ClockOut == nil && onBreak(r)
}

func onBreak(r *Record) bool {
	return r.BreakStart != nil && r.BreakEnd == nil
}

// Allowed reports whether action is legal against r.
func Allowed(r *Record, action Action) bool {
	switch action {
	case ActionClockIn:
		return CanClockIn(r)
	case ActionClockOut:
		return CanClockOut(r)
	case ActionBreakStart:
		return CanStartBreak(r)
	case ActionBreakEnd:
		return CanEndBreak(r)
	}
	return false
}

// NextAction returns the primary action for the flow
// clock_in -> break_start -> break_end -> clock_out, or false when the day is closed.
func NextAction(r *Record) (Action, bool) {
	switch {
	case CanClockIn(r):
		return ActionClockIn, true
	case CanEndBreak(r):
		return ActionBreakEnd, true
	case CanStartBreak(r):
		return ActionBreakStart, true
	case CanClockOut(r):
		return ActionClockOut, true
	}
	return "", false
}
