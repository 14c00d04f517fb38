// Package seed loads reference data (accounts, the service catalog and
// release trains) from a YAML file into the portal database.
package seed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rxtech-lab/deployment-portal/internal/models"
	"github.com/rxtech-lab/deployment-portal/internal/services"
	"github.com/rxtech-lab/deployment-portal/internal/store"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type File struct {
	Users    []models.User `yaml:"users"`
	Services []string      `yaml:"services"`
	Releases []Release     `yaml:"releases"`
}

type Release struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Result counts what Apply wrote
type Result struct {
	Users           int
	Services        int
	Releases        int
	SkippedServices int
	SkippedReleases int
}

// Load reads and parses a seed file
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*File, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	for i, user := range file.Users {
		if strings.TrimSpace(user.Username) == "" {
			return nil, fmt.Errorf("user #%d has no username", i+1)
		}
	}
	return &file, nil
}

type Seeder struct {
	users    store.UserStore
	services store.ServiceStore
	releases services.ReleaseService
	logger   *zap.Logger
}

func NewSeeder(users store.UserStore, catalog store.ServiceStore, releases services.ReleaseService, logger *zap.Logger) *Seeder {
	return &Seeder{users: users, services: catalog, releases: releases, logger: logger}
}

// Apply upserts users, adds missing catalog services and creates releases.
// Existing services and releases are left untouched.
func (s *Seeder) Apply(ctx context.Context, file *File) (Result, error) {
	var result Result

	for i := range file.Users {
		user := file.Users[i]
		if err := s.users.Save(ctx, &user); err != nil {
			return result, fmt.Errorf("failed to save user %s: %w", user.Username, err)
		}
		result.Users++
	}

	for _, name := range file.Services {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		_, err := s.services.FindByName(ctx, name)
		if err == nil {
			result.SkippedServices++
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return result, fmt.Errorf("failed to look up service %s: %w", name, err)
		}
		if err := s.services.Save(ctx, &models.Service{Name: name}); err != nil {
			return result, fmt.Errorf("failed to save service %s: %w", name, err)
		}
		result.Services++
	}

	for _, release := range file.Releases {
		_, err := s.releases.Create(ctx, services.CreateReleaseArgs{
			Name:        release.Name,
			Description: release.Description,
		})
		if errors.Is(err, services.ErrDuplicateRelease) {
			result.SkippedReleases++
			continue
		}
		if err != nil {
			return result, fmt.Errorf("failed to create release %q: %w", release.Name, err)
		}
		result.Releases++
	}

	s.logger.Info("seed applied",
		zap.Int("users", result.Users),
		zap.Int("services", result.Services),
		zap.Int("releases", result.Releases),
		zap.Int("skipped_services", result.SkippedServices),
		zap.Int("skipped_releases", result.SkippedReleases))
	return result, nil
}
