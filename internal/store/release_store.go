package store

import (
	"context"
	"time"

	"github.com/rxtech-lab/deployment-portal/internal/models"
	"gorm.io/gorm"
)

// ReleaseStore persists release trains keyed by id.
type ReleaseStore interface {
	Get(ctx context.Context, id uint) (*models.Release, error)
	List(ctx context.Context) ([]models.Release, error)
	Save(ctx context.Context, release *models.Release) error
	Delete(ctx context.Context, id uint) error
	Exists(ctx context.Context, id uint) (bool, error)
	Count(ctx context.Context) (int64, error)

	// FindByName returns ErrNotFound when no release has exactly this name.
	FindByName(ctx context.Context, name string) (*models.Release, error)
	// ListByNameDesc returns all releases, newest YYYY-MM first.
	ListByNameDesc(ctx context.Context) ([]models.Release, error)
}

type releaseStore struct {
	crud[models.Release, uint]
}

// NewReleaseStore creates a new ReleaseStore
func NewReleaseStore(db *gorm.DB) ReleaseStore {
	return &releaseStore{crud: newCrud[models.Release, uint](db, "id", "release")}
}

func (s *releaseStore) FindByName(ctx context.Context, name string) (_ *models.Release, err error) {
	defer func(start time.Time) { s.observe("FindByName", start, err) }(time.Now())

	var release models.Release
	err = s.db.WithContext(ctx).Where("name = ?", name).First(&release).Error
	if err != nil {
		return nil, notFound(err, "release", name)
	}
	return &release, nil
}

func (s *releaseStore) ListByNameDesc(ctx context.Context) (_ []models.Release, err error) {
	defer func(start time.Time) { s.observe("ListByNameDesc", start, err) }(time.Now())

	var releases []models.Release
	err = s.db.WithContext(ctx).Order("name DESC").Find(&releases).Error
	return releases, err
}
