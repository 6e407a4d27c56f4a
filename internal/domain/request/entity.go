package request

import "time"

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// Kind selects the request family; its value is the endpoint segment under /requests.
type Kind string

const (
	KindLeave            Kind = "leave"
	KindTimeModification Kind = "time-modification"
)

type LeaveType string

const (
	LeaveAnnual    LeaveType = "ANNUAL"
	LeaveSick      LeaveType = "SICK"
	LeavePersonal  LeaveType = "PERSONAL"
	LeaveSpecial   LeaveType = "SPECIAL"
	LeaveMaternity LeaveType = "MATERNITY"
	LeavePaternity LeaveType = "PATERNITY"
	LeavePaid      LeaveType = "PAID"
)

var LeaveTypes = []LeaveType{
	LeaveAnnual, LeaveSick, LeavePersonal, LeaveSpecial, LeaveMaternity, LeavePaternity, LeavePaid,
}

func (t LeaveType) Valid() bool {
	for _, lt := range LeaveTypes {
		if lt == t {
			return true
		}
	}
	return false
}

type LeaveRequest struct {
	ID         string     `json:"id"`
	UserID     string     `json:"userId"`
	UserName   string     `json:"userName,omitempty"`
	Type       LeaveType  `json:"type"`
	StartDate  string     `json:"startDate"`
	EndDate    string     `json:"endDate"`
	Reason     string     `json:"reason"`
	Status     Status     `json:"status"`
	ApprovedBy *string    `json:"approvedBy,omitempty"`
	ApprovedAt *time.Time `json:"approvedAt,omitempty"`
	Comment    *string    `json:"comment,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

type TimeModificationRequest struct {
	ID                string     `json:"id"`
	UserID            string     `json:"userId"`
	UserName          string     `json:"userName,omitempty"`
	Date              string     `json:"date"`
	OriginalClockIn   *time.Time `json:"originalClockIn,omitempty"`
	OriginalClockOut  *time.Time `json:"originalClockOut,omitempty"`
	RequestedClockIn  *time.Time `json:"requestedClockIn,omitempty"`
	RequestedClockOut *time.Time `json:"requestedClockOut,omitempty"`
	Reason            string     `json:"reason"`
	Status            Status     `json:"status"`
	ApprovedBy        *string    `json:"approvedBy,omitempty"`
	ApprovedAt        *time.Time `json:"approvedAt,omitempty"`
	Comment           *string    `json:"comment,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
}

// Item is the lifecycle view shared by both request kinds.
type Item interface {
	RequestID() string
	OwnerID() string
	CurrentStatus() Status
}

func (r LeaveRequest) RequestID() string     { return r.ID }
func (r LeaveRequest) OwnerID() string       { return r.UserID }
func (r LeaveRequest) CurrentStatus() Status { return r.Status }

func (r TimeModificationRequest) RequestID() string     { return r.ID }
func (r TimeModificationRequest) OwnerID() string       { return r.UserID }
func (r TimeModificationRequest) CurrentStatus() Status { return r.Status }
