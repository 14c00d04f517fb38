package store

import (
	"context"

	"github.com/rxtech-lab/deployment-portal/internal/models"
	"gorm.io/gorm"
)

// DeploymentStore persists deployment requests keyed by id.
type DeploymentStore interface {
	Get(ctx context.Context, id uint) (*models.Deployment, error)
	List(ctx context.Context) ([]models.Deployment, error)
	Save(ctx context.Context, deployment *models.Deployment) error
	Delete(ctx context.Context, id uint) error
	Exists(ctx context.Context, id uint) (bool, error)
	Count(ctx context.Context) (int64, error)
}

type deploymentStore struct {
	crud[models.Deployment, uint]
}

// NewDeploymentStore creates a new DeploymentStore
func NewDeploymentStore(db *gorm.DB) DeploymentStore {
	return &deploymentStore{crud: newCrud[models.Deployment, uint](db, "id", "deployment")}
}
