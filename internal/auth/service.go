package auth

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type ServiceAPI interface {
	Register(dto RegisterDTO) (*SessionUser, error)
	Authenticate(dto LoginDTO) (*Session, *SessionUser, error)
	ValidateSession(token string) (*SessionUser, error)
	Logout(token string) error
}

type RepositoryAPI interface {
	GetCredentialsByEmail(email string) (passwordHash string, userID int64, err error)
	EmailExists(email string) (bool, error)
	CreateUser(email, passwordHash, name string, role Role, department string) (*SessionUser, error)
	GetSessionUser(token string) (*Session, *SessionUser, error)
	CreateSession(session *Session) error
	DeleteSessionByToken(token string) error
	DeleteExpiredSessions(now time.Time) (int64, error)
}

// Service issues and validates server-side sessions. A session is an
// opaque token row in the database; the cookie carries only the token.
type Service struct {
	repo       RepositoryAPI
	sessionTTL time.Duration
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, sessionTTL time.Duration, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		sessionTTL: sessionTTL,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Register creates an account. The role defaults to Employee when not
// given; leave entitlements come from the column defaults on users.
func (s *Service) Register(dto RegisterDTO) (*SessionUser, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	taken, err := s.repo.EmailExists(dto.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}

	hash, err := s.HashPassword(dto.Password)
	if err != nil {
		return nil, err
	}

	role := RoleEmployee
	if dto.Role != "" {
		role = ParseRole(dto.Role)
	}

	user, err := s.repo.CreateUser(dto.Email, hash, dto.Name, role, dto.Department)
	if err != nil {
		s.logger.Error("failed to create user", "error", err, "email", dto.Email)
		return nil, err
	}

	s.logger.Info("user registered", "user_id", user.ID, "role", user.Role)
	return user, nil
}

// Authenticate validates credentials and opens a new session.
func (s *Service) Authenticate(dto LoginDTO) (*Session, *SessionUser, error) {
	if err := dto.Validate(); err != nil {
		return nil, nil, err
	}

	storedHash, userID, err := s.repo.GetCredentialsByEmail(dto.Email)
	if err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(dto.Password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	token, err := GenerateSessionToken()
	if err != nil {
		return nil, nil, err
	}

	session := &Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: time.Now().Add(s.sessionTTL),
		CreatedAt: time.Now(),
	}

	if err := s.repo.CreateSession(session); err != nil {
		s.logger.Error("failed to create session", "error", err, "user_id", userID)
		return nil, nil, err
	}

	_, user, err := s.repo.GetSessionUser(token)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("session opened", "user_id", userID, "expires_at", session.ExpiresAt)
	return session, user, nil
}

// ValidateSession resolves a cookie token to its user. Expired sessions
// are deleted on sight rather than waiting for the sweeper.
func (s *Service) ValidateSession(token string) (*SessionUser, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}

	session, user, err := s.repo.GetSessionUser(token)
	if err != nil {
		return nil, ErrInvalidSession
	}

	if session.Expired(time.Now()) {
		if err := s.repo.DeleteSessionByToken(token); err != nil {
			s.logger.Warn("failed to delete expired session", "error", err)
		}
		return nil, ErrSessionExpired
	}

	return user, nil
}

// Logout revokes the session row; the cookie becomes worthless.
func (s *Service) Logout(token string) error {
	if token == "" {
		return nil
	}
	return s.repo.DeleteSessionByToken(token)
}

// SweepExpiredSessions removes sessions past their expiry.
func (s *Service) SweepExpiredSessions() (int64, error) {
	return s.repo.DeleteExpiredSessions(time.Now())
}

// HashPassword creates a bcrypt hash of the password
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// GenerateSessionToken generates a cryptographically secure random token
func GenerateSessionToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
