package leave

import (
	"math"
	"time"
)

// Status is the lifecycle state of a leave request.
//
//	pending  -> endorsed | rejected | returned
//	endorsed -> tm_approved | tm_rejected | tm_returned
//
// tm_approved, rejected and tm_rejected are terminal. returned and
// tm_returned re-enter pending when the owner edits the request.
type Status string

const (
	StatusPending    Status = "pending"
	StatusEndorsed   Status = "endorsed"
	StatusRejected   Status = "rejected"
	StatusReturned   Status = "returned"
	StatusTMApproved Status = "tm_approved"
	StatusTMRejected Status = "tm_rejected"
	StatusTMReturned Status = "tm_returned"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusEndorsed, StatusRejected, StatusReturned,
		StatusTMApproved, StatusTMRejected, StatusTMReturned:
		return true
	}
	return false
}

func (s Status) Terminal() bool {
	switch s {
	case StatusTMApproved, StatusRejected, StatusTMRejected:
		return true
	}
	return false
}

// Editable reports whether the owning employee may revise the request,
// which resets it to pending.
func (s Status) Editable() bool {
	return s == StatusReturned || s == StatusTMReturned
}

// Action is a workflow transition applied by the approving chain. The
// action value doubles as the resulting status.
type Action string

const (
	ActionEndorse   Action = Action(StatusEndorsed)
	ActionReject    Action = Action(StatusRejected)
	ActionReturn    Action = Action(StatusReturned)
	ActionTMApprove Action = Action(StatusTMApproved)
	ActionTMReject  Action = Action(StatusTMRejected)
	ActionTMReturn  Action = Action(StatusTMReturned)
)

func (a Action) Valid() bool {
	switch a {
	case ActionEndorse, ActionReject, ActionReturn,
		ActionTMApprove, ActionTMReject, ActionTMReturn:
		return true
	}
	return false
}

// RequiresComments reports whether the action must carry manager
// comments of at least MinCommentsLen trimmed characters.
func (a Action) RequiresComments() bool {
	switch a {
	case ActionReject, ActionReturn, ActionTMReject, ActionTMReturn:
		return true
	}
	return false
}

// FromStatus is the only status the action is legal from.
func (a Action) FromStatus() Status {
	switch a {
	case ActionEndorse, ActionReject, ActionReturn:
		return StatusPending
	default:
		return StatusEndorsed
	}
}

// TopManagement reports whether the action belongs to the final
// approval stage.
func (a Action) TopManagement() bool {
	switch a {
	case ActionTMApprove, ActionTMReject, ActionTMReturn:
		return true
	}
	return false
}

func (a Action) Status() Status {
	return Status(a)
}

const (
	MinReasonLen   = 10
	MaxReasonLen   = 500
	MinCommentsLen = 10
)

// LeaveRequest is one requested absence with its lifecycle status. The
// employee owns the content fields; the approving chain owns status,
// comments and approver once submitted.
type LeaveRequest struct {
	ID              int64      `json:"id" gorm:"primaryKey"`
	UserID          int64      `json:"user_id" gorm:"column:user_id;not null"`
	LeaveType       string     `json:"leave_type" gorm:"column:leave_type;not null"`
	StartDate       time.Time  `json:"start_date" gorm:"column:start_date;type:date;not null"`
	EndDate         time.Time  `json:"end_date" gorm:"column:end_date;type:date;not null"`
	Reason          string     `json:"reason" gorm:"not null"`
	DocumentPath    *string    `json:"document_path,omitempty" gorm:"column:document_path"`
	Status          Status     `json:"status" gorm:"column:status;default:'pending'"`
	ManagerComments *string    `json:"manager_comments,omitempty" gorm:"column:manager_comments"`
	ApproverID      *int64     `json:"approver_id,omitempty" gorm:"column:approver_id"`
	CreatedAt       time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt       time.Time  `json:"updated_at" gorm:"column:updated_at"`
}

func (LeaveRequest) TableName() string {
	return "leave_requests"
}

// DurationDays is the inclusive day count of the request.
func (lr *LeaveRequest) DurationDays() int {
	return Duration(lr.StartDate, lr.EndDate)
}

// Duration computes ceil(|end-start| in days) + 1. Both endpoints count
// as leave days: a same-day request is 1 day, Mar 20 to Mar 25 is 6.
func Duration(start, end time.Time) int {
	diff := end.Sub(start)
	if diff < 0 {
		diff = -diff
	}
	return int(math.Ceil(diff.Hours()/24)) + 1
}
