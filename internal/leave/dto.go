package leave

import (
	"strings"
	"time"

	"github.com/frahmantamala/leave-management/internal"
)

// CreateLeaveDTO represents the request payload for filing a leave request.
type CreateLeaveDTO struct {
	LeaveType    string    `json:"leave_type" validate:"required"`
	StartDate    time.Time `json:"start_date" validate:"required"`
	EndDate      time.Time `json:"end_date" validate:"required"`
	Reason       string    `json:"reason" validate:"required,min=10,max=500"`
	DocumentPath *string   `json:"document_path,omitempty"`
}

// Validate validates the CreateLeaveDTO. Remaining balance is
// deliberately not checked here; the only enforcement point is the
// final approval transaction.
func (dto CreateLeaveDTO) Validate() error {
	if _, ok := ParseType(dto.LeaveType); !ok {
		return internal.NewValidationFieldError("leave_type", "unknown leave type", internal.ErrCodeUnknownLeaveType)
	}
	if dto.StartDate.IsZero() {
		return internal.NewValidationFieldError("start_date", "start date is required", internal.ErrCodeInvalidDateRange)
	}
	if dto.EndDate.IsZero() {
		return internal.NewValidationFieldError("end_date", "end date is required", internal.ErrCodeInvalidDateRange)
	}
	if dto.EndDate.Before(dto.StartDate) {
		return internal.NewValidationFieldError("end_date", "end date must not be before start date", internal.ErrCodeInvalidDateRange)
	}
	reason := strings.TrimSpace(dto.Reason)
	if len(reason) < MinReasonLen || len(reason) > MaxReasonLen {
		return internal.NewValidationFieldError("reason", "reason must be between 10 and 500 characters", internal.ErrCodeInvalidReason)
	}
	return nil
}

// UpdateLeaveDTO carries the owner's revision of a returned request.
type UpdateLeaveDTO struct {
	LeaveType    string    `json:"leave_type" validate:"required"`
	StartDate    time.Time `json:"start_date" validate:"required"`
	EndDate      time.Time `json:"end_date" validate:"required"`
	Reason       string    `json:"reason" validate:"required,min=10,max=500"`
	DocumentPath *string   `json:"document_path,omitempty"`
}

func (dto UpdateLeaveDTO) Validate() error {
	return CreateLeaveDTO(dto).Validate()
}

// ActionDTO is the approving chain's transition request.
type ActionDTO struct {
	Action   string `json:"action" validate:"required"`
	Comments string `json:"comments,omitempty"`
}

// Validate checks the action value and the comments policy: rejecting
// and returning actions must explain themselves with at least 10
// trimmed characters.
func (dto ActionDTO) Validate() error {
	action := Action(dto.Action)
	if !action.Valid() {
		return internal.NewValidationFieldError("action", "unknown workflow action", internal.ErrCodeInvalidAction)
	}
	if action.RequiresComments() && len(strings.TrimSpace(dto.Comments)) < MinCommentsLen {
		return internal.NewValidationFieldError("manager_comments",
			"comments of at least 10 characters are required when rejecting or returning a request",
			internal.ErrCodeInvalidComments)
	}
	return nil
}
