package server

import (
	"context"
	"time"

	"github.com/rxtech-lab/deployment-portal/internal/api"
	"github.com/rxtech-lab/deployment-portal/internal/services"
	"github.com/rxtech-lab/deployment-portal/internal/store"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Stores groups the repositories backed by one database
type Stores struct {
	Users       store.UserStore
	Deployments store.DeploymentStore
	Releases    store.ReleaseStore
	Services    store.ServiceStore
	Sessions    store.SessionStore
}

func InitializeStores(db *gorm.DB) Stores {
	return Stores{
		Users:       store.NewUserStore(db),
		Deployments: store.NewDeploymentStore(db),
		Releases:    store.NewReleaseStore(db),
		Services:    store.NewServiceStore(db),
		Sessions:    store.NewSessionStore(db),
	}
}

func InitializeServices(stores Stores, sessionTTL time.Duration, logger *zap.Logger) api.Dependencies {
	return api.Dependencies{
		Auth:        services.NewAuthService(stores.Users, stores.Sessions, sessionTTL, logger.Named("auth")),
		Deployments: services.NewDeploymentService(stores.Deployments, logger.Named("deployments")),
		Releases:    services.NewReleaseService(stores.Releases, logger.Named("releases")),
		Catalog:     services.NewCatalogService(stores.Services),
		Reports:     services.NewReportService(stores.Deployments, logger.Named("reports")),
	}
}

// StartSessionJanitor removes expired sessions every interval until ctx is
// cancelled. The returned channel is closed once the janitor has stopped.
func StartSessionJanitor(ctx context.Context, auth services.AuthService, interval time.Duration, logger *zap.Logger) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed, err := auth.SweepExpired(ctx)
				if err != nil {
					if ctx.Err() == nil {
						logger.Warn("failed to sweep expired sessions", zap.Error(err))
					}
					continue
				}
				if removed > 0 {
					logger.Debug("swept expired sessions", zap.Int64("removed", removed))
				}
			}
		}
	}()
	return done
}
