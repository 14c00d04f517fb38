package services

import (
	"context"
	"testing"
	"time"

	"github.com/rxtech-lab/deployment-portal/internal/models"
	"github.com/rxtech-lab/deployment-portal/internal/store"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type AuthServiceTestSuite struct {
	suite.Suite
	ctx      context.Context
	db       store.DBService
	sessions store.SessionStore
	service  *authService
	clock    time.Time
}

func (suite *AuthServiceTestSuite) SetupTest() {
	db, err := store.NewSqliteDBService(":memory:")
	suite.Require().NoError(err)
	suite.db = db
	suite.ctx = context.Background()

	users := store.NewUserStore(db.GetDB())
	suite.Require().NoError(users.Save(suite.ctx, &models.User{Username: "alice", Password: "s3cret", Role: "superadmin"}))
	suite.Require().NoError(users.Save(suite.ctx, &models.User{Username: "bob", Password: "hunter2", Role: "user"}))

	suite.sessions = store.NewSessionStore(db.GetDB())
	suite.clock = time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	suite.service = NewAuthService(users, suite.sessions, 12*time.Hour, zap.NewNop()).(*authService)
	suite.service.now = func() time.Time { return suite.clock }
}

func (suite *AuthServiceTestSuite) TearDownTest() {
	suite.db.Close()
}

func (suite *AuthServiceTestSuite) TestLoginSuccess() {
	info, err := suite.service.Login(suite.ctx, "alice", "s3cret")
	suite.Require().NoError(err)
	suite.Equal("alice", info.Username)
	suite.Equal(models.RoleSuperAdmin, info.Role)
	suite.NotEmpty(info.SessionID)

	session, err := suite.sessions.Get(suite.ctx, info.SessionID)
	suite.Require().NoError(err)
	suite.True(suite.clock.Add(12 * time.Hour).Equal(session.ExpiresAt))
}

func (suite *AuthServiceTestSuite) TestLegacyRoleIsPresentedAsDeveloper() {
	info, err := suite.service.Login(suite.ctx, "bob", "hunter2")
	suite.Require().NoError(err)
	suite.Equal(models.RoleDeveloper, info.Role)
}

func (suite *AuthServiceTestSuite) TestLoginRejectsBadCredentials() {
	_, err := suite.service.Login(suite.ctx, "alice", "wrong")
	suite.ErrorIs(err, ErrInvalidCredentials)

	_, err = suite.service.Login(suite.ctx, "alice", "S3CRET")
	suite.ErrorIs(err, ErrInvalidCredentials)

	_, err = suite.service.Login(suite.ctx, "nobody", "s3cret")
	suite.ErrorIs(err, ErrInvalidCredentials)

	_, err = suite.service.Login(suite.ctx, "", "")
	suite.ErrorIs(err, ErrInvalidCredentials)
}

func (suite *AuthServiceTestSuite) TestCurrentUser() {
	info, err := suite.service.Login(suite.ctx, "alice", "s3cret")
	suite.Require().NoError(err)

	current, err := suite.service.CurrentUser(suite.ctx, info.SessionID)
	suite.Require().NoError(err)
	suite.Equal(info, current)

	_, err = suite.service.CurrentUser(suite.ctx, "")
	suite.ErrorIs(err, ErrNoActiveSession)

	_, err = suite.service.CurrentUser(suite.ctx, "unknown-session")
	suite.ErrorIs(err, ErrNoActiveSession)
}

func (suite *AuthServiceTestSuite) TestLogoutEndsSession() {
	info, err := suite.service.Login(suite.ctx, "alice", "s3cret")
	suite.Require().NoError(err)

	suite.Require().NoError(suite.service.Logout(suite.ctx, info.SessionID))
	_, err = suite.service.CurrentUser(suite.ctx, info.SessionID)
	suite.ErrorIs(err, ErrNoActiveSession)

	// Logging out twice is harmless
	suite.NoError(suite.service.Logout(suite.ctx, info.SessionID))
	suite.NoError(suite.service.Logout(suite.ctx, ""))
}

func (suite *AuthServiceTestSuite) TestIdleTimeoutSlides() {
	info, err := suite.service.Login(suite.ctx, "alice", "s3cret")
	suite.Require().NoError(err)

	// Activity within the idle window keeps the session alive
	suite.clock = suite.clock.Add(11 * time.Hour)
	_, err = suite.service.CurrentUser(suite.ctx, info.SessionID)
	suite.Require().NoError(err)

	suite.clock = suite.clock.Add(11 * time.Hour)
	_, err = suite.service.CurrentUser(suite.ctx, info.SessionID)
	suite.Require().NoError(err)

	suite.clock = suite.clock.Add(12 * time.Hour)
	_, err = suite.service.CurrentUser(suite.ctx, info.SessionID)
	suite.ErrorIs(err, ErrNoActiveSession)

	_, err = suite.sessions.Get(suite.ctx, info.SessionID)
	suite.ErrorIs(err, store.ErrNotFound)
}

func (suite *AuthServiceTestSuite) TestSweepExpired() {
	first, err := suite.service.Login(suite.ctx, "alice", "s3cret")
	suite.Require().NoError(err)

	suite.clock = suite.clock.Add(6 * time.Hour)
	second, err := suite.service.Login(suite.ctx, "bob", "hunter2")
	suite.Require().NoError(err)

	suite.clock = suite.clock.Add(7 * time.Hour)
	removed, err := suite.service.SweepExpired(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal(int64(1), removed)

	_, err = suite.service.CurrentUser(suite.ctx, first.SessionID)
	suite.ErrorIs(err, ErrNoActiveSession)
	_, err = suite.service.CurrentUser(suite.ctx, second.SessionID)
	suite.NoError(err)
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
