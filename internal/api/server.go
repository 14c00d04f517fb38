package api

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rxtech-lab/deployment-portal/internal/api/middleware"
	"github.com/rxtech-lab/deployment-portal/internal/services"
	"go.uber.org/zap"
)

// Dependencies are the services the HTTP handlers delegate to.
type Dependencies struct {
	Auth        services.AuthService
	Deployments services.DeploymentService
	Releases    services.ReleaseService
	Catalog     services.CatalogService
	Reports     services.ReportService
}

// Options tune the HTTP surface.
type Options struct {
	// CORSOrigins lists the frontends allowed to call the API with credentials
	CORSOrigins  []string
	CookieName   string
	CookieSecure bool
	// AccessLog enables fiber's request logger
	AccessLog bool
}

type APIServer struct {
	app       *fiber.App
	deps      Dependencies
	options   Options
	logger    *zap.Logger
	validator *validator.Validate
	port      int
}

func NewAPIServer(deps Dependencies, options Options, zapLogger *zap.Logger) *APIServer {
	if options.CookieName == "" {
		options.CookieName = middleware.DefaultCookieName
	}
	if len(options.CORSOrigins) == 0 {
		options.CORSOrigins = []string{"http://localhost:4200"}
	}

	server := &APIServer{
		deps:      deps,
		options:   options,
		logger:    zapLogger,
		validator: services.NewValidator(),
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          server.handleError,
	})

	// Add middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(options.CORSOrigins, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowCredentials: true,
		MaxAge:           3600,
	}))
	if options.AccessLog {
		app.Use(logger.New(logger.Config{
			Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
			TimeFormat: "15:04:05",
			TimeZone:   "Local",
		}))
	}

	server.app = app
	server.setupRoutes()
	return server
}

func (s *APIServer) setupRoutes() {
	requireSession := middleware.SessionMiddleware(s.sessionConfig(false))
	optionalSession := middleware.SessionMiddleware(s.sessionConfig(true))

	api := s.app.Group("/api")

	// Authentication
	api.Post("/login", s.handleLogin)
	api.Post("/logout", s.handleLogout)
	api.Get("/session", s.handleSession)

	// Release trains
	api.Get("/releases", s.handleListReleases)
	api.Post("/releases", s.handleCreateRelease)

	// Deployment requests
	api.Get("/deployments", s.handleListDeployments)
	api.Get("/deployments/all", s.handleListAllDeployments)
	api.Post("/deployments", optionalSession, s.handleCreateDeployment)
	api.Put("/deployments/:id", requireSession, s.handleUpdateDeployment)
	api.Delete("/deployments/:id", s.handleDeleteDeployment)

	// Reports
	api.Get("/reports/general", s.handleGeneralReport)

	// Service catalog
	api.Get("/services", s.handleListServices)
	api.Get("/services/search", s.handleSearchServices)

	// Health check
	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(map[string]string{"status": "ok"})
	})

	// Prometheus metrics
	s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}

func (s *APIServer) sessionConfig(optional bool) middleware.SessionConfig {
	return middleware.SessionConfig{
		CookieName: s.options.CookieName,
		HeaderName: middleware.DefaultHeaderName,
		Resolver:   s.deps.Auth.CurrentUser,
		Optional:   optional,
	}
}

// Start starts the server on the given port, or on a random available port
// when port is nil or zero.
func (s *APIServer) Start(port *int) (int, error) {
	var listener net.Listener
	var err error
	if port != nil && *port != 0 {
		listener, err = net.Listen("tcp", fmt.Sprintf(":%d", *port))
	} else {
		listener, err = net.Listen("tcp", ":0")
	}
	if err != nil {
		return 0, fmt.Errorf("failed to listen: %w", err)
	}

	s.port = listener.Addr().(*net.TCPAddr).Port

	go func() {
		if err := s.app.Listener(listener); err != nil {
			s.logger.Error("API server stopped", zap.Error(err))
		}
	}()

	return s.port, nil
}

// Shutdown waits up to timeout for in-flight requests to finish.
func (s *APIServer) Shutdown(timeout time.Duration) error {
	return s.app.ShutdownWithTimeout(timeout)
}

func (s *APIServer) GetPort() int {
	return s.port
}

// GetFiberApp exposes the underlying fiber application
func (s *APIServer) GetFiberApp() *fiber.App {
	return s.app
}

// handleError is the fiber error handler for errors no handler translated.
func (s *APIServer) handleError(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
	}
	s.logger.Error("request failed",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
}
