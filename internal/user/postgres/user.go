package postgres

import (
	"fmt"
	"strings"
	"time"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/leave"
	"github.com/frahmantamala/leave-management/internal/user"
	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

const subordinateColumns = `id, email, name, role, department,
	vacation_total, vacation_used, mandatory_total, mandatory_used,
	sick_total, sick_used, maternity_total, maternity_used,
	paternity_total, paternity_used, special_privilege_total, special_privilege_used`

// UserRepository implements user.Repository. Writes go through GORM;
// the read-side listings use sqlx against the same pool.
type UserRepository struct {
	db  *gorm.DB
	dbx *sqlx.DB
}

func NewUserRepository(db *gorm.DB, dbx *sqlx.DB) user.Repository {
	return &UserRepository{db: db, dbx: dbx}
}

func (r *UserRepository) GetByID(id int64) (*user.User, error) {
	var u user.User
	err := r.db.Where("id = ?", id).First(&u).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// ListByDepartment scopes to one department and excludes the caller.
// The name search lands after the department predicate; it can narrow
// the scope but never widen it.
func (r *UserRepository) ListByDepartment(department string, excludeID int64, search string) ([]*user.Subordinate, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE department = ? AND id <> ?`, subordinateColumns)
	args := []interface{}{department, excludeID}

	if search != "" {
		query += ` AND LOWER(name) LIKE ?`
		args = append(args, "%"+strings.ToLower(search)+"%")
	}
	query += ` ORDER BY name ASC`

	var subs []*user.Subordinate
	if err := r.dbx.Select(&subs, r.dbx.Rebind(query), args...); err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *UserRepository) ListAll(excludeID int64, search string) ([]*user.Subordinate, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id <> ?`, subordinateColumns)
	args := []interface{}{excludeID}

	if search != "" {
		query += ` AND LOWER(name) LIKE ?`
		args = append(args, "%"+strings.ToLower(search)+"%")
	}
	query += ` ORDER BY name ASC`

	var subs []*user.Subordinate
	if err := r.dbx.Select(&subs, r.dbx.Rebind(query), args...); err != nil {
		return nil, err
	}
	return subs, nil
}

// UpdateBalances rewrites counter pairs directly. This is the admin
// override path; it is intentionally not coupled to any leave-request
// transaction.
func (r *UserRepository) UpdateBalances(id int64, balances map[leave.Type]user.Balance) error {
	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}
	for leaveType, balance := range balances {
		cols, ok := leaveType.Columns()
		if !ok {
			return internal.ErrUnknownLeaveType
		}
		updates[cols.Total] = balance.Total
		updates[cols.Used] = balance.Used
	}

	result := r.db.Model(&user.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrUserNotFound
	}
	return nil
}
