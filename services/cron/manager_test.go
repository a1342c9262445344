package cron

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sahilchouksey/mentor-hub-api/database"
	"github.com/sahilchouksey/mentor-hub-api/database/dbtest"
	"github.com/sahilchouksey/mentor-hub-api/model"
	"github.com/sahilchouksey/mentor-hub-api/services"
	"github.com/sahilchouksey/mentor-hub-api/utils/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerRegistersJobs(t *testing.T) {
	m := NewCronManager(dbtest.File(t), nil)
	require.NoError(t, m.Start())
	assert.Len(t, m.cron.Entries(), 2)
	m.Stop()
}

func TestCleanupRevokedTokensJob(t *testing.T) {
	store := dbtest.File(t)
	svc, err := services.New(store, services.Options{
		JWT: auth.NewJWTManager(auth.JWTConfig{Secret: "cron-secret"}),
	})
	require.NoError(t, err)

	ctx := context.Background()
	bl := auth.NewBlacklistService(database.MustRepository[model.RevokedToken](store, database.RevokedTokens), nil)
	require.NoError(t, bl.RevokeToken(ctx, &auth.Claims{RegisteredClaims: jwt.RegisteredClaims{
		ID: "jti-old", ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}}, "logout"))

	m := NewCronManager(store, svc.Auth)
	m.CleanupRevokedTokens()
	m.CheckStorageHealth()

	revoked, err := database.MustRepository[model.RevokedToken](store, database.RevokedTokens).Find(ctx, database.Filter{})
	require.NoError(t, err)
	assert.Empty(t, revoked)
}
