package request

import "fmt"

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// CheckTransition validates a decision on a request currently in from.
func CheckTransition(from, to Status) error {
	if from.Terminal() {
		return ErrRequestAlreadyProcessed
	}
	if from != StatusPending {
		return fmt.Errorf("%w: unknown current status %q", ErrInvalidTransition, from)
	}
	if !to.Terminal() {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// CheckWithdraw validates deletion of item by userID.
func CheckWithdraw(item Item, userID string) error {
	if item.OwnerID() != userID {
		return ErrNotRequestOwner
	}
	if item.CurrentStatus() != StatusPending {
		return ErrRequestNotPending
	}
	return nil
}

// Viewer is whoever is looking at a request.
type Viewer struct {
	UserID    string
	IsManager bool
}

type Control string

const (
	ControlWithdraw Control = "withdraw"
	ControlApprove  Control = "approve"
	ControlReject   Control = "reject"
)

// Controls returns the actions a view may offer v on item. Terminal requests offer none,
// and nobody is offered a decision on their own request.
func Controls(item Item, v Viewer) []Control {
	if item.CurrentStatus() != StatusPending {
		return nil
	}
	if item.OwnerID() == v.UserID {
		return []Control{ControlWithdraw}
	}
	if v.IsManager {
		return []Control{ControlApprove, ControlReject}
	}
	return nil
}

// Offers reports whether c is among the controls for v on item.
func Offers(item Item, v Viewer, c Control) bool {
	for _, got := range Controls(item, v) {
		if got == c {
			return true
		}
	}
	return false
}
