package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/deployment-portal/internal/models"
	"github.com/rxtech-lab/deployment-portal/internal/store"
	"go.uber.org/zap"
)

// CreateReleaseArgs is the input of ReleaseService.Create.
type CreateReleaseArgs struct {
	Name        string `json:"name" validate:"notblank,releasename"`
	Description string `json:"description" validate:"notblank"`
}

// ReleaseService manages the release train catalog
type ReleaseService interface {
	List(ctx context.Context) ([]models.Release, error)
	Create(ctx context.Context, args CreateReleaseArgs) (*models.Release, error)
}

type releaseService struct {
	releases  store.ReleaseStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewReleaseService creates a new ReleaseService
func NewReleaseService(releases store.ReleaseStore, logger *zap.Logger) ReleaseService {
	return &releaseService{
		releases:  releases,
		validator: NewValidator(),
		logger:    logger,
	}
}

// List returns all releases, newest first.
func (s *releaseService) List(ctx context.Context) ([]models.Release, error) {
	releases, err := s.releases.ListByNameDesc(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list releases: %w", err)
	}
	return releases, nil
}

// Create validates and stores a release. The YYYY-MM check is purely textual,
// so "2025-13" is accepted.
func (s *releaseService) Create(ctx context.Context, args CreateReleaseArgs) (*models.Release, error) {
	if err := s.validate(args); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(args.Name)
	_, err := s.releases.FindByName(ctx, name)
	if err == nil {
		return nil, ErrDuplicateRelease
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up release: %w", err)
	}

	release := &models.Release{
		Name:        name,
		Description: strings.TrimSpace(args.Description),
	}
	if err := s.releases.Save(ctx, release); err != nil {
		return nil, fmt.Errorf("failed to save release: %w", err)
	}

	s.logger.Info("release created", zap.String("name", release.Name))
	return release, nil
}

// validate reports the first failure in the order name, description, format.
func (s *releaseService) validate(args CreateReleaseArgs) error {
	err := s.validator.Struct(args)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	var missingDescription, badFormat bool
	for _, fieldErr := range validationErrors {
		switch {
		case fieldErr.Field() == "Name" && fieldErr.Tag() == "notblank":
			return ErrMissingName
		case fieldErr.Field() == "Description":
			missingDescription = true
		case fieldErr.Field() == "Name":
			badFormat = true
		}
	}
	if missingDescription {
		return ErrMissingDescription
	}
	if badFormat {
		return ErrBadReleaseFormat
	}
	return &ValidationError{Message: validationErrors.Error()}
}
