package user

import (
	"log/slog"
	"strings"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/auth"
	"github.com/frahmantamala/leave-management/internal/leave"
)

// Repository interface defines the data access methods for users
type Repository interface {
	GetByID(id int64) (*User, error)
	ListByDepartment(department string, excludeID int64, search string) ([]*Subordinate, error)
	ListAll(excludeID int64, search string) ([]*Subordinate, error)
	UpdateBalances(id int64, balances map[leave.Type]Balance) error
}

// Service handles user profiles, subordinate visibility and the
// administrative balance override.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// GetProfile returns the full account row for the caller, ledger included.
func (s *Service) GetProfile(userID int64) (*User, error) {
	u, err := s.repo.GetByID(userID)
	if err != nil {
		s.logger.Error("failed to load user profile", "error", err, "user_id", userID)
		return nil, internal.ErrUserNotFound
	}
	return u, nil
}

// Subordinates lists the users the caller may see, scoped before any
// search filtering. Managers see their own department minus
// themselves; a manager without a department sees nobody; Super Admin
// sees everyone but themselves. Everyone else is Forbidden.
func (s *Service) Subordinates(caller *auth.SessionUser, search string) ([]*Subordinate, error) {
	search = strings.TrimSpace(search)

	switch {
	case caller.Role == auth.RoleSuperAdmin:
		subs, err := s.repo.ListAll(caller.ID, search)
		if err != nil {
			s.logger.Error("failed to list users", "error", err, "caller_id", caller.ID)
			return nil, err
		}
		return subs, nil

	case caller.Role == auth.RoleManager:
		// no department is not a wildcard; it scopes to nothing
		if caller.Department == "" {
			return []*Subordinate{}, nil
		}
		subs, err := s.repo.ListByDepartment(caller.Department, caller.ID, search)
		if err != nil {
			s.logger.Error("failed to list department users", "error", err,
				"caller_id", caller.ID, "department", caller.Department)
			return nil, err
		}
		return subs, nil

	default:
		s.logger.Warn("subordinate listing denied", "caller_id", caller.ID, "role", caller.Role)
		return nil, internal.ErrUnauthorizedAccess
	}
}

// UpdateBalances is the administrative override: a direct counter
// write with no linkage to any leave request or approval transaction.
func (s *Service) UpdateBalances(caller *auth.SessionUser, targetID int64, dto UpdateBalancesDTO) (*User, error) {
	if !caller.Role.CanManageBalances() {
		s.logger.Warn("balance override denied", "caller_id", caller.ID, "role", caller.Role, "target_id", targetID)
		return nil, internal.ErrUnauthorizedAccess
	}

	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByID(targetID); err != nil {
		return nil, internal.ErrUserNotFound
	}

	if err := s.repo.UpdateBalances(targetID, dto.Typed()); err != nil {
		s.logger.Error("balance override failed", "error", err, "target_id", targetID)
		return nil, err
	}

	s.logger.Info("balance override applied", "admin_id", caller.ID, "target_id", targetID)

	return s.repo.GetByID(targetID)
}
