package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/deployment-portal/internal/metrics"
	"github.com/rxtech-lab/deployment-portal/internal/models"
	"github.com/rxtech-lab/deployment-portal/internal/store"
	"go.uber.org/zap"
)

// DefaultSessionTTL is the idle timeout applied to new sessions.
const DefaultSessionTTL = 12 * time.Hour

// SessionInfo describes the user bound to a session.
type SessionInfo struct {
	Username  string `json:"username"`
	Role      string `json:"role"`
	SessionID string `json:"sessionId"`
}

// IsSuperAdmin reports whether the session belongs to a superadmin.
func (s *SessionInfo) IsSuperAdmin() bool {
	return s != nil && s.Role == models.RoleSuperAdmin
}

// AuthService checks credentials and manages server side sessions
type AuthService interface {
	Login(ctx context.Context, username, password string) (*SessionInfo, error)
	Logout(ctx context.Context, sessionID string) error
	CurrentUser(ctx context.Context, sessionID string) (*SessionInfo, error)
	SweepExpired(ctx context.Context) (int64, error)
}

type authService struct {
	users    store.UserStore
	sessions store.SessionStore
	ttl      time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewAuthService creates a new AuthService. A non-positive ttl selects DefaultSessionTTL.
func NewAuthService(users store.UserStore, sessions store.SessionStore, ttl time.Duration, logger *zap.Logger) AuthService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &authService{
		users:    users,
		sessions: sessions,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
}

// Login compares the password verbatim with the stored one and opens a session.
func (s *authService) Login(ctx context.Context, username, password string) (*SessionInfo, error) {
	user, err := s.users.Get(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		metrics.LoginFailureCount.Inc()
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user.Password != password {
		metrics.LoginFailureCount.Inc()
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	session := &models.Session{
		ID:         uuid.New().String(),
		Username:   user.Username,
		Role:       user.Role,
		CreatedAt:  now,
		LastSeenAt: now,
		ExpiresAt:  now.Add(s.ttl),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	metrics.LoginSuccessCount.Inc()
	s.logger.Info("user logged in", zap.String("username", user.Username), zap.String("role", user.Role))
	return sessionInfo(session), nil
}

// Logout removes the session. Unknown sessions are ignored.
func (s *authService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	err := s.sessions.Delete(ctx, sessionID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// CurrentUser resolves a session and slides its idle deadline forward.
func (s *authService) CurrentUser(ctx context.Context, sessionID string) (*SessionInfo, error) {
	if sessionID == "" {
		return nil, ErrNoActiveSession
	}
	session, err := s.sessions.Get(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNoActiveSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	now := s.now()
	if session.Expired(now) {
		if err := s.sessions.Delete(ctx, sessionID); err != nil && !errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("failed to delete expired session", zap.Error(err))
		}
		return nil, ErrNoActiveSession
	}

	if err := s.sessions.Touch(ctx, sessionID, now, now.Add(s.ttl)); err != nil {
		s.logger.Warn("failed to refresh session", zap.String("username", session.Username), zap.Error(err))
	}
	return sessionInfo(session), nil
}

// SweepExpired deletes every session past its idle deadline.
func (s *authService) SweepExpired(ctx context.Context) (int64, error) {
	removed, err := s.sessions.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to sweep sessions: %w", err)
	}
	metrics.SessionsSweptCount.Add(float64(removed))
	return removed, nil
}

func sessionInfo(session *models.Session) *SessionInfo {
	return &SessionInfo{
		Username:  session.Username,
		Role:      models.NormalizeRole(session.Role),
		SessionID: session.ID,
	}
}
