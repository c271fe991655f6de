package postgres

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/frahmantamala/leave-management/internal/auth"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetCredentialsByEmail(email string) (string, int64, error) {
	var passwordHash string
	var userID int64
	query := `SELECT id, password_hash FROM users WHERE email = ?`

	row := r.db.Raw(query, email).Row()
	if err := row.Scan(&userID, &passwordHash); err != nil {
		if err == sql.ErrNoRows {
			return "", 0, fmt.Errorf("user not found")
		}
		return "", 0, err
	}
	return passwordHash, userID, nil
}

func (r *Repository) EmailExists(email string) (bool, error) {
	var count int64
	err := r.db.Table("users").Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

// CreateUser inserts the account row; leave entitlement counters come
// from the column defaults declared in the migration.
func (r *Repository) CreateUser(email, passwordHash, name string, role auth.Role, department string) (*auth.SessionUser, error) {
	query := `INSERT INTO users (email, password_hash, name, role, department, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?)`

	now := time.Now()
	if err := r.db.Exec(query, email, passwordHash, name, string(role), department, now, now).Error; err != nil {
		return nil, err
	}

	var user auth.SessionUser
	var roleLabel string
	row := r.db.Raw(`SELECT id, email, name, role, department FROM users WHERE email = ?`, email).Row()
	if err := row.Scan(&user.ID, &user.Email, &user.Name, &roleLabel, &user.Department); err != nil {
		return nil, err
	}
	user.Role = auth.ParseRole(roleLabel)
	return &user, nil
}

// GetSessionUser resolves a token to its session row and the joined
// user in one round trip.
func (r *Repository) GetSessionUser(token string) (*auth.Session, *auth.SessionUser, error) {
	query := `SELECT s.id, s.token, s.user_id, s.expires_at, s.created_at,
	                 u.id, u.email, u.name, u.role, u.department
	          FROM sessions s
	          JOIN users u ON u.id = s.user_id
	          WHERE s.token = ?`

	var session auth.Session
	var user auth.SessionUser
	var roleLabel string

	row := r.db.Raw(query, token).Row()
	if err := row.Scan(
		&session.ID, &session.Token, &session.UserID, &session.ExpiresAt, &session.CreatedAt,
		&user.ID, &user.Email, &user.Name, &roleLabel, &user.Department,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, auth.ErrInvalidSession
		}
		return nil, nil, err
	}

	user.Role = auth.ParseRole(roleLabel)
	return &session, &user, nil
}

func (r *Repository) CreateSession(session *auth.Session) error {
	return r.db.Create(session).Error
}

func (r *Repository) DeleteSessionByToken(token string) error {
	return r.db.Where("token = ?", token).Delete(&auth.Session{}).Error
}

func (r *Repository) DeleteExpiredSessions(now time.Time) (int64, error) {
	result := r.db.Where("expires_at < ?", now).Delete(&auth.Session{})
	return result.RowsAffected, result.Error
}
