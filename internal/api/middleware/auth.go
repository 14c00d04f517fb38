package middleware

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rxtech-lab/deployment-portal/internal/services"
)

const (
	// DefaultCookieName carries the session token for browser clients
	DefaultCookieName = "DEPLOYPORTAL_SESSION"
	// DefaultHeaderName carries the session token for API clients
	DefaultHeaderName = "X-Session-Id"

	sessionLocalKey = "session"
)

// SessionConfig holds configuration for the session middleware
type SessionConfig struct {
	CookieName string
	HeaderName string
	// Resolver maps a session token to its user. It should return
	// services.ErrNoActiveSession for unknown or expired tokens.
	Resolver func(ctx context.Context, sessionID string) (*services.SessionInfo, error)
	// Optional lets requests without a valid session through unauthenticated
	Optional bool
}

// DefaultSessionConfig provides default configuration
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		CookieName: DefaultCookieName,
		HeaderName: DefaultHeaderName,
		Resolver: func(ctx context.Context, sessionID string) (*services.SessionInfo, error) {
			// Default implementation - should be overridden
			return nil, services.ErrNoActiveSession
		},
	}
}

// SessionMiddleware returns a Fiber middleware that resolves the caller's session
func SessionMiddleware(config ...SessionConfig) fiber.Handler {
	cfg := DefaultSessionConfig()
	if len(config) > 0 {
		cfg = config[0]
		if cfg.CookieName == "" {
			cfg.CookieName = DefaultCookieName
		}
		if cfg.HeaderName == "" {
			cfg.HeaderName = DefaultHeaderName
		}
	}

	return func(c *fiber.Ctx) error {
		sessionID := SessionID(c, cfg.CookieName, cfg.HeaderName)
		if sessionID == "" {
			if cfg.Optional {
				return c.Next()
			}
			return unauthorized(c)
		}

		info, err := cfg.Resolver(c.UserContext(), sessionID)
		if err != nil {
			if !errors.Is(err, services.ErrNoActiveSession) {
				return err
			}
			if cfg.Optional {
				return c.Next()
			}
			return unauthorized(c)
		}

		// Store authenticated session in context
		c.Locals(sessionLocalKey, info)
		return c.Next()
	}
}

// SessionID extracts the session token from the cookie, falling back to the header
func SessionID(c *fiber.Ctx, cookieName, headerName string) string {
	if id := c.Cookies(cookieName); id != "" {
		return id
	}
	return c.Get(headerName)
}

// GetSession retrieves the authenticated session from Fiber context
// Returns nil if no session is found or if it is not of the correct type
func GetSession(c *fiber.Ctx) *services.SessionInfo {
	info, ok := c.Locals(sessionLocalKey).(*services.SessionInfo)
	if !ok {
		return nil
	}
	return info
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "Unauthorized",
	})
}
