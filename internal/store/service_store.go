package store

import (
	"context"
	"strings"
	"time"

	"github.com/rxtech-lab/deployment-portal/internal/models"
	"gorm.io/gorm"
)

// ServiceStore persists the deployable service catalog keyed by id.
type ServiceStore interface {
	Get(ctx context.Context, id uint) (*models.Service, error)
	List(ctx context.Context) ([]models.Service, error)
	Save(ctx context.Context, service *models.Service) error
	Delete(ctx context.Context, id uint) error
	Exists(ctx context.Context, id uint) (bool, error)
	Count(ctx context.Context) (int64, error)

	// ListByName returns the catalog sorted by name ascending.
	ListByName(ctx context.Context) ([]models.Service, error)
	// SearchByName returns services whose name contains query, ignoring case.
	SearchByName(ctx context.Context, query string) ([]models.Service, error)
	// FindByName returns ErrNotFound when no service has exactly this name.
	FindByName(ctx context.Context, name string) (*models.Service, error)
}

type serviceStore struct {
	crud[models.Service, uint]
}

// NewServiceStore creates a new ServiceStore
func NewServiceStore(db *gorm.DB) ServiceStore {
	return &serviceStore{crud: newCrud[models.Service, uint](db, "id", "service")}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (s *serviceStore) ListByName(ctx context.Context) (_ []models.Service, err error) {
	defer func(start time.Time) { s.observe("ListByName", start, err) }(time.Now())

	var services []models.Service
	err = s.db.WithContext(ctx).Order("name ASC").Find(&services).Error
	return services, err
}

func (s *serviceStore) SearchByName(ctx context.Context, query string) (_ []models.Service, err error) {
	defer func(start time.Time) { s.observe("SearchByName", start, err) }(time.Now())

	pattern := "%" + likeEscaper.Replace(strings.ToLower(query)) + "%"
	var services []models.Service
	err = s.db.WithContext(ctx).Where(`LOWER(name) LIKE ? ESCAPE '\'`, pattern).Order("id").Find(&services).Error
	return services, err
}

func (s *serviceStore) FindByName(ctx context.Context, name string) (*models.Service, error) {
	var service models.Service
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&service).Error
	if err != nil {
		return nil, notFound(err, "service", name)
	}
	return &service, nil
}
