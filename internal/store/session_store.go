package store

import (
	"context"
	"time"

	"github.com/rxtech-lab/deployment-portal/internal/models"
	"gorm.io/gorm"
)

// SessionStore persists login sessions keyed by their opaque token.
type SessionStore interface {
	Create(ctx context.Context, session *models.Session) error
	Get(ctx context.Context, id string) (*models.Session, error)
	// Touch moves the idle deadline of a session forward.
	Touch(ctx context.Context, id string, lastSeen, expiresAt time.Time) error
	Delete(ctx context.Context, id string) error
	// DeleteExpired removes every session whose deadline is not after now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type sessionStore struct {
	crud[models.Session, string]
}

// NewSessionStore creates a new SessionStore
func NewSessionStore(db *gorm.DB) SessionStore {
	return &sessionStore{crud: newCrud[models.Session, string](db, "id", "session")}
}

func (s *sessionStore) Create(ctx context.Context, session *models.Session) (err error) {
	defer func(start time.Time) { s.observe("Create", start, err) }(time.Now())

	return s.db.WithContext(ctx).Create(session).Error
}

func (s *sessionStore) Touch(ctx context.Context, id string, lastSeen, expiresAt time.Time) (err error) {
	defer func(start time.Time) { s.observe("Touch", start, err) }(time.Now())

	return s.db.WithContext(ctx).Model(&models.Session{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_seen_at": lastSeen,
			"expires_at":   expiresAt,
		}).Error
}

func (s *sessionStore) DeleteExpired(ctx context.Context, now time.Time) (_ int64, err error) {
	defer func(start time.Time) { s.observe("DeleteExpired", start, err) }(time.Now())

	result := s.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&models.Session{})
	return result.RowsAffected, result.Error
}
