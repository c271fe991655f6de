package auth

import (
	"context"
	"errors"
	"time"
)

// SessionUser is the authenticated identity attached to request context.
// It is a slim projection of the users row, enough for access decisions.
type SessionUser struct {
	ID         int64  `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Role       Role   `json:"role"`
	Department string `json:"department"`
}

// Session is one server-side session row keyed by an opaque token. The
// token travels only in an HttpOnly cookie; nothing about the user is
// encoded in it, so logout revokes access immediately.
type Session struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Token     string    `json:"-" gorm:"uniqueIndex;not null"`
	UserID    int64     `json:"user_id" gorm:"column:user_id;not null"`
	ExpiresAt time.Time `json:"expires_at" gorm:"column:expires_at;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
}

func (Session) TableName() string {
	return "sessions"
}

func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSession     = errors.New("invalid session")
	ErrSessionExpired     = errors.New("session expired")
	ErrEmailTaken         = errors.New("email already registered")
)

type ctxKey string

const contextUserKey ctxKey = "session_user"

func ContextWithUser(ctx context.Context, user *SessionUser) context.Context {
	return context.WithValue(ctx, contextUserKey, user)
}

func UserFromContext(ctx context.Context) (*SessionUser, bool) {
	user, ok := ctx.Value(contextUserKey).(*SessionUser)
	return user, ok
}
