package leave

import (
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/auth"
)

// Repository interface defines the data access methods for leave requests
type Repository interface {
	Create(lr *LeaveRequest) error
	GetByID(id int64) (*LeaveRequest, error)
	GetByUserID(userID int64, limit, offset int) ([]*LeaveRequest, error)
	GetByStatus(status Status, limit, offset int) ([]*LeaveRequest, error)
	Update(lr *LeaveRequest) error
	UpdateAction(id int64, from, to Status, comments *string, approverID *int64) error
	ApproveWithDeduction(id, userID int64, leaveType Type, days int, comments *string, approverID *int64) error
}

// EventPublisher is the post-commit notification hook. Implementations
// must be fire-and-forget: a dispatch failure is theirs to log and
// never reaches the workflow.
type EventPublisher interface {
	LeaveStatusChanged(requestID, userID int64, status Status, comments string)
}

// Service handles the leave request lifecycle and its access rules.
type Service struct {
	repo      Repository
	publisher EventPublisher
	logger    *slog.Logger
}

func NewService(repo Repository, publisher EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateLeave files a new request in pending status.
func (s *Service) CreateLeave(userID int64, dto CreateLeaveDTO) (*LeaveRequest, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("leave request validation failed", "error", err, "user_id", userID)
		return nil, err
	}

	lr := &LeaveRequest{
		UserID:       userID,
		LeaveType:    dto.LeaveType,
		StartDate:    dto.StartDate,
		EndDate:      dto.EndDate,
		Reason:       strings.TrimSpace(dto.Reason),
		DocumentPath: dto.DocumentPath,
		Status:       StatusPending,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := s.repo.Create(lr); err != nil {
		s.logger.Error("failed to create leave request", "error", err, "user_id", userID)
		return nil, err
	}

	s.logger.Info("leave request created",
		"leave_id", lr.ID,
		"user_id", userID,
		"leave_type", lr.LeaveType,
		"days", lr.DurationDays())

	return lr, nil
}

// GetLeaveByID retrieves one request. The owner always may see their
// own; the approving chain may see requests it can act on. Anyone else
// gets Forbidden.
func (s *Service) GetLeaveByID(id int64, caller *auth.SessionUser) (*LeaveRequest, error) {
	lr, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrLeaveNotFound
	}

	if lr.UserID != caller.ID && !caller.Role.CanEndorse() {
		s.logger.Warn("cross-user access to leave request denied",
			"leave_id", id, "caller_id", caller.ID, "owner_id", lr.UserID)
		return nil, internal.ErrUnauthorizedAccess
	}

	return lr, nil
}

// GetUserLeaves lists the caller's own requests.
func (s *Service) GetUserLeaves(userID int64, limit, offset int) ([]*LeaveRequest, error) {
	leaves, err := s.repo.GetByUserID(userID, limit, offset)
	if err != nil {
		s.logger.Error("failed to list leave requests", "error", err, "user_id", userID)
		return nil, err
	}
	return leaves, nil
}

// GetLeavesByStatus lists a status bucket for the approving chain.
func (s *Service) GetLeavesByStatus(status Status, caller *auth.SessionUser, limit, offset int) ([]*LeaveRequest, error) {
	if !status.Valid() {
		return nil, internal.NewValidationFieldError("status", "unknown status bucket", internal.ErrCodeInvalidLeaveStatus)
	}

	if !caller.Role.CanEndorse() {
		s.logger.Warn("status bucket listing denied", "caller_id", caller.ID, "role", caller.Role, "status", status)
		return nil, internal.ErrUnauthorizedAccess
	}

	leaves, err := s.repo.GetByStatus(status, limit, offset)
	if err != nil {
		s.logger.Error("failed to list leave requests by status", "error", err, "status", status)
		return nil, err
	}
	return leaves, nil
}

// ApplyAction drives the approval state machine. tm_approved is atomic
// with the balance decrement: both land or neither does. The
// notification afterwards is best effort and cannot undo the commit.
func (s *Service) ApplyAction(id int64, dto ActionDTO, caller *auth.SessionUser) (*LeaveRequest, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	action := Action(dto.Action)

	if action.TopManagement() {
		if !caller.Role.CanFinalize() {
			s.logger.Warn("final-stage action denied", "leave_id", id, "caller_id", caller.ID, "role", caller.Role)
			return nil, internal.ErrUnauthorizedAccess
		}
	} else if !caller.Role.CanEndorse() {
		s.logger.Warn("endorse-stage action denied", "leave_id", id, "caller_id", caller.ID, "role", caller.Role)
		return nil, internal.ErrUnauthorizedAccess
	}

	lr, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrLeaveNotFound
	}

	if lr.Status != action.FromStatus() {
		s.logger.Warn("action not legal from current status",
			"leave_id", id, "action", action, "current_status", lr.Status)
		return nil, internal.ErrInvalidLeaveStatus
	}

	comments := lr.ManagerComments
	if trimmed := strings.TrimSpace(dto.Comments); trimmed != "" {
		comments = &trimmed
	}
	approverID := &caller.ID

	if action == ActionTMApprove {
		leaveType, ok := ParseType(lr.LeaveType)
		if !ok {
			return nil, internal.ErrUnknownLeaveType
		}
		days := lr.DurationDays()

		if err := s.repo.ApproveWithDeduction(lr.ID, lr.UserID, leaveType, days, comments, approverID); err != nil {
			if appErr, ok := internal.IsAppError(err); ok {
				s.logger.Warn("approval transaction rejected",
					"leave_id", id, "code", appErr.Code, "days", days)
				return nil, appErr
			}
			s.logger.Error("approval transaction failed", "error", err, "leave_id", id)
			return nil, internal.NewTransactionFailureError(err)
		}
	} else {
		if err := s.repo.UpdateAction(lr.ID, lr.Status, action.Status(), comments, approverID); err != nil {
			if appErr, ok := internal.IsAppError(err); ok {
				return nil, appErr
			}
			s.logger.Error("failed to apply action", "error", err, "leave_id", id, "action", action)
			return nil, err
		}
	}

	lr.Status = action.Status()
	lr.ManagerComments = comments
	lr.ApproverID = approverID
	lr.UpdatedAt = time.Now()

	s.logger.Info("leave request transitioned",
		"leave_id", lr.ID,
		"action", action,
		"approver_id", caller.ID)

	s.notifyStatusChanged(lr)

	return lr, nil
}

// EditLeave lets the owner revise a returned request, resetting it to
// pending. Any other status, or any other caller, is Forbidden.
func (s *Service) EditLeave(id, userID int64, dto UpdateLeaveDTO) (*LeaveRequest, error) {
	lr, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrLeaveNotFound
	}

	if lr.UserID != userID {
		s.logger.Warn("edit denied: not the owner", "leave_id", id, "caller_id", userID, "owner_id", lr.UserID)
		return nil, internal.ErrUnauthorizedAccess
	}

	if !lr.Status.Editable() {
		s.logger.Warn("edit denied: request not returned", "leave_id", id, "status", lr.Status)
		return nil, internal.ErrCannotModifyLeave
	}

	if err := dto.Validate(); err != nil {
		return nil, err
	}

	lr.LeaveType = dto.LeaveType
	lr.StartDate = dto.StartDate
	lr.EndDate = dto.EndDate
	lr.Reason = strings.TrimSpace(dto.Reason)
	lr.DocumentPath = dto.DocumentPath
	lr.Status = StatusPending
	lr.UpdatedAt = time.Now()

	if err := s.repo.Update(lr); err != nil {
		s.logger.Error("failed to update leave request", "error", err, "leave_id", id)
		return nil, err
	}

	s.logger.Info("leave request resubmitted", "leave_id", lr.ID, "user_id", userID)

	return lr, nil
}

func (s *Service) notifyStatusChanged(lr *LeaveRequest) {
	if s.publisher == nil {
		return
	}
	comments := ""
	if lr.ManagerComments != nil {
		comments = *lr.ManagerComments
	}
	s.publisher.LeaveStatusChanged(lr.ID, lr.UserID, lr.Status, comments)
}
