package postgres

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/leave"
	"gorm.io/gorm"
)

// LeaveRepository implements the leave.Repository interface using GORM
type LeaveRepository struct {
	db *gorm.DB
}

// NewLeaveRepository creates a new leave request repository
func NewLeaveRepository(db *gorm.DB) leave.Repository {
	return &LeaveRepository{db: db}
}

// Create saves a new leave request to the database
func (r *LeaveRepository) Create(lr *leave.LeaveRequest) error {
	return r.db.Create(lr).Error
}

// GetByID retrieves a leave request by its ID
func (r *LeaveRepository) GetByID(id int64) (*leave.LeaveRequest, error) {
	var lr leave.LeaveRequest
	err := r.db.Where("id = ?", id).First(&lr).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrLeaveNotFound
		}
		return nil, err
	}
	return &lr, nil
}

// GetByUserID retrieves leave requests for a specific user with pagination
func (r *LeaveRepository) GetByUserID(userID int64, limit, offset int) ([]*leave.LeaveRequest, error) {
	var leaves []*leave.LeaveRequest
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&leaves).Error
	return leaves, err
}

// GetByStatus retrieves leave requests in one status bucket, oldest
// first so approvers work FIFO.
func (r *LeaveRepository) GetByStatus(status leave.Status, limit, offset int) ([]*leave.LeaveRequest, error) {
	var leaves []*leave.LeaveRequest
	err := r.db.Where("status = ?", status).
		Order("created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&leaves).Error
	return leaves, err
}

// Update saves the full record, used by the owner's edit of a returned request
func (r *LeaveRepository) Update(lr *leave.LeaveRequest) error {
	lr.UpdatedAt = time.Now()
	return r.db.Save(lr).Error
}

// UpdateAction applies a non-balance-affecting transition. The WHERE
// clause re-checks the expected from-status so a concurrent action on
// the same request cannot double-apply.
func (r *LeaveRepository) UpdateAction(id int64, from, to leave.Status, comments *string, approverID *int64) error {
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": time.Now(),
	}
	if comments != nil {
		updates["manager_comments"] = *comments
	}
	if approverID != nil {
		updates["approver_id"] = *approverID
	}

	result := r.db.Model(&leave.LeaveRequest{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrInvalidLeaveStatus
	}
	return nil
}

// ApproveWithDeduction performs the final approval as one atomic unit:
// the status flip to tm_approved and the used-counter increment both
// commit or both roll back. The counters are read inside the
// transaction and the UPDATE re-checks remaining >= days, so a
// concurrent approval of the same user cannot produce a lost update.
func (r *LeaveRepository) ApproveWithDeduction(id, userID int64, leaveType leave.Type, days int, comments *string, approverID *int64) error {
	cols, ok := leaveType.Columns()
	if !ok {
		return internal.ErrUnknownLeaveType
	}
	if days <= 0 {
		return internal.NewValidationFieldError("days", "day count must be positive", internal.ErrCodeInvalidDateRange)
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		var total, used int
		query := fmt.Sprintf("SELECT %s, %s FROM users WHERE id = ?", cols.Total, cols.Used)
		row := tx.Raw(query, userID).Row()
		if err := row.Scan(&total, &used); err != nil {
			if err == sql.ErrNoRows {
				return internal.ErrUserNotFound
			}
			return err
		}

		remaining := total - used
		if remaining < days {
			return internal.NewInsufficientBalanceError(string(leaveType), remaining, days)
		}

		deduct := tx.Exec(
			fmt.Sprintf("UPDATE users SET %s = %s + ?, updated_at = ? WHERE id = ? AND %s - %s >= ?",
				cols.Used, cols.Used, cols.Total, cols.Used),
			days, time.Now(), userID, days,
		)
		if deduct.Error != nil {
			return deduct.Error
		}
		if deduct.RowsAffected == 0 {
			// a concurrent approval consumed the balance between the
			// read above and this write
			return internal.NewInsufficientBalanceError(string(leaveType), remaining, days)
		}

		updates := map[string]interface{}{
			"status":     leave.StatusTMApproved,
			"updated_at": time.Now(),
		}
		if comments != nil {
			updates["manager_comments"] = *comments
		}
		if approverID != nil {
			updates["approver_id"] = *approverID
		}

		flip := tx.Model(&leave.LeaveRequest{}).
			Where("id = ? AND status = ?", id, leave.StatusEndorsed).
			Updates(updates)
		if flip.Error != nil {
			return flip.Error
		}
		if flip.RowsAffected == 0 {
			return internal.ErrInvalidLeaveStatus
		}

		return nil
	})
}
