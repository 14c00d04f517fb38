package services

import (
	"context"
	"fmt"

	"github.com/rxtech-lab/deployment-portal/internal/models"
	"github.com/rxtech-lab/deployment-portal/internal/store"
)

// CatalogService gives read access to the deployable service catalog
type CatalogService interface {
	List(ctx context.Context) ([]models.Service, error)
	Search(ctx context.Context, query string) ([]models.Service, error)
}

type catalogService struct {
	services store.ServiceStore
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(services store.ServiceStore) CatalogService {
	return &catalogService{services: services}
}

// List returns the catalog sorted A-Z
func (s *catalogService) List(ctx context.Context) ([]models.Service, error) {
	services, err := s.services.ListByName(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return services, nil
}

// Search returns services whose name contains query, ignoring case
func (s *catalogService) Search(ctx context.Context, query string) ([]models.Service, error) {
	services, err := s.services.SearchByName(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search services: %w", err)
	}
	return services, nil
}
