package handler

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/rxtech-lab/deployment-portal/internal/api"
	"github.com/rxtech-lab/deployment-portal/internal/config"
	"github.com/rxtech-lab/deployment-portal/internal/logging"
	"github.com/rxtech-lab/deployment-portal/internal/server"
	"github.com/rxtech-lab/deployment-portal/internal/store"
)

var (
	apiServer *api.APIServer
	initOnce  sync.Once
	initErr   error
)

// Handler is the main Vercel function handler
func Handler(w http.ResponseWriter, r *http.Request) {
	// Initialize the API server only once
	initOnce.Do(func() {
		initErr = initializeAPIServer()
	})
	if initErr != nil {
		log.Printf("Failed to initialize API server: %v", initErr)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	adaptor.FiberApp(apiServer.GetFiberApp())(w, r)
}

// initializeAPIServer wires the portal the same way the serve command does
func initializeAPIServer() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	// In Vercel, only /tmp is writable
	if os.Getenv("VERCEL") == "1" && cfg.DatabaseDriver == store.DriverSqlite {
		cfg.DatabasePath = "/tmp/deployportal.db"
	}

	logger, err := logging.New(cfg.LogLevel, false)
	if err != nil {
		return err
	}

	dbService, err := store.NewDBService(cfg.DatabaseDriver, cfg.DSN(), store.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	deps := server.InitializeServices(server.InitializeStores(dbService.GetDB()), cfg.SessionTTL, logger)
	apiServer = api.NewAPIServer(deps, api.Options{
		CORSOrigins:  cfg.CORSOrigins,
		CookieSecure: cfg.SessionCookieSecure,
	}, logger.Named("api"))

	// Add a root route for Vercel
	apiServer.GetFiberApp().Get("/", func(c *fiber.Ctx) error {
		return c.JSON(map[string]interface{}{
			"message": "Deployment Portal API",
			"status":  "running",
		})
	})

	return nil
}
