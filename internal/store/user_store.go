package store

import (
	"context"

	"github.com/rxtech-lab/deployment-portal/internal/models"
	"gorm.io/gorm"
)

// UserStore persists portal accounts keyed by username.
type UserStore interface {
	Get(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Save(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, username string) error
	Exists(ctx context.Context, username string) (bool, error)
	Count(ctx context.Context) (int64, error)
}

type userStore struct {
	crud[models.User, string]
}

// NewUserStore creates a new UserStore
func NewUserStore(db *gorm.DB) UserStore {
	return &userStore{crud: newCrud[models.User, string](db, "username", "user")}
}
