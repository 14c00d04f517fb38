package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rxtech-lab/deployment-portal/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(optional bool) *fiber.App {
	resolver := func(ctx context.Context, sessionID string) (*services.SessionInfo, error) {
		switch sessionID {
		case "valid":
			return &services.SessionInfo{Username: "alice", Role: "superadmin", SessionID: sessionID}, nil
		case "broken":
			return nil, errors.New("database is closed")
		}
		return nil, services.ErrNoActiveSession
	}

	app := fiber.New()
	app.Get("/", SessionMiddleware(SessionConfig{Resolver: resolver, Optional: optional}), func(c *fiber.Ctx) error {
		if session := GetSession(c); session != nil {
			return c.SendString(session.Username)
		}
		return c.SendString("anonymous")
	})
	return app
}

func send(t *testing.T, app *fiber.App, cookie, header string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: cookie})
	}
	if header != "" {
		req.Header.Set(DefaultHeaderName, header)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestSessionMiddlewareRequired(t *testing.T) {
	app := newTestApp(false)

	status, body := send(t, app, "valid", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alice", body)

	status, _ = send(t, app, "", "valid")
	assert.Equal(t, http.StatusOK, status)

	status, body = send(t, app, "", "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, body)

	status, _ = send(t, app, "expired", "")
	assert.Equal(t, http.StatusUnauthorized, status)

	// Resolver failures other than a missing session surface as server errors
	status, _ = send(t, app, "broken", "")
	assert.Equal(t, http.StatusInternalServerError, status)
}

func TestSessionMiddlewareOptional(t *testing.T) {
	app := newTestApp(true)

	status, body := send(t, app, "", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "anonymous", body)

	status, body = send(t, app, "expired", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "anonymous", body)

	status, body = send(t, app, "", "valid")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alice", body)
}

func TestCookieWinsOverHeader(t *testing.T) {
	app := newTestApp(false)
	status, body := send(t, app, "valid", "expired")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alice", body)
}
