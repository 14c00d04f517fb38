package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rxtech-lab/deployment-portal/internal/api/middleware"
	"github.com/rxtech-lab/deployment-portal/internal/services"
)

type loginRequest struct {
	Username string `json:"username" validate:"notblank"`
	Password string `json:"password" validate:"required"`
}

// handleLogin checks credentials and starts a session cookie
func (s *APIServer) handleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := s.validator.Struct(req); err != nil {
		return s.respondError(c, services.ErrInvalidCredentials)
	}

	info, err := s.deps.Auth.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return s.respondError(c, err)
	}

	// No Max-Age: the browser keeps the cookie for its session and the server
	// enforces the sliding idle deadline
	c.Cookie(s.sessionCookie(info.SessionID, time.Time{}))
	return c.JSON(info)
}

// handleLogout ends the caller's session, if any, and clears the cookie
func (s *APIServer) handleLogout(c *fiber.Ctx) error {
	sessionID := middleware.SessionID(c, s.options.CookieName, middleware.DefaultHeaderName)
	if err := s.deps.Auth.Logout(c.UserContext(), sessionID); err != nil {
		return s.respondError(c, err)
	}

	// An expiry in the past tells the browser to drop the cookie
	c.Cookie(s.sessionCookie("", time.Unix(0, 0)))
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

// handleSession reports the user bound to the caller's session
func (s *APIServer) handleSession(c *fiber.Ctx) error {
	sessionID := middleware.SessionID(c, s.options.CookieName, middleware.DefaultHeaderName)
	info, err := s.deps.Auth.CurrentUser(c.UserContext(), sessionID)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(info)
}

func (s *APIServer) sessionCookie(value string, expires time.Time) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     s.options.CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   s.options.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
}
