package server

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rxtech-lab/deployment-portal/internal/models"
	"github.com/rxtech-lab/deployment-portal/internal/services"
	"github.com/rxtech-lab/deployment-portal/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type sweepCounter struct {
	services.AuthService
	calls atomic.Int32
	err   error
}

func (s *sweepCounter) SweepExpired(ctx context.Context) (int64, error) {
	s.calls.Add(1)
	return 1, s.err
}

func TestStartSessionJanitor(t *testing.T) {
	counter := &sweepCounter{}
	ctx, cancel := context.WithCancel(context.Background())

	done := StartSessionJanitor(ctx, counter, 5*time.Millisecond, zap.NewNop())
	assert.Eventually(t, func() bool { return counter.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}

func TestSessionJanitorSurvivesErrors(t *testing.T) {
	counter := &sweepCounter{err: errors.New("database is locked")}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	StartSessionJanitor(ctx, counter, 5*time.Millisecond, zap.NewNop())
	assert.Eventually(t, func() bool { return counter.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
}

func TestInitializeServices(t *testing.T) {
	db, err := store.NewSqliteDBService(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	stores := InitializeStores(db.GetDB())
	require.NoError(t, stores.Users.Save(ctx, &models.User{Username: "alice", Password: "s3cret", Role: models.RoleAdmin}))

	deps := InitializeServices(stores, time.Hour, zap.NewNop())
	info, err := deps.Auth.Login(ctx, "alice", "s3cret")
	require.NoError(t, err)

	current, err := deps.Auth.CurrentUser(ctx, info.SessionID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, current.Role)

	serial, err := deps.Deployments.GenerateSerialNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, "MSDR0000001", serial)
}
