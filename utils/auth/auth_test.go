package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sahilchouksey/mentor-hub-api/database"
	"github.com/sahilchouksey/mentor-hub-api/database/dbtest"
	"github.com/sahilchouksey/mentor-hub-api/model"
	"github.com/sahilchouksey/mentor-hub-api/utils/auth"
	"github.com/sahilchouksey/mentor-hub-api/utils/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestTokenRoundTrip(t *testing.T) {
	m := auth.NewJWTManager(auth.JWTConfig{Secret: "s3cret", Issuer: "mentor-hub"})
	assert.Equal(t, auth.DefaultExpiry, m.Expiry())

	token, claims, err := m.GenerateAccessToken("usr_1", "admin", model.RoleAdmin)
	require.NoError(t, err)
	require.NotEmpty(t, claims.ID)

	parsed, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "usr_1", parsed.UserID)
	assert.Equal(t, model.RoleAdmin, parsed.Role)
	assert.Equal(t, claims.ID, parsed.ID)

	other := auth.NewJWTManager(auth.JWTConfig{Secret: "different"})
	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestExpiredToken(t *testing.T) {
	m := auth.NewJWTManager(auth.JWTConfig{Secret: "s3cret", Expiry: time.Millisecond})
	token, _, err := m.GenerateAccessToken("usr_1", "admin", model.RoleAdmin)
	require.NoError(t, err)

	time.Sleep(1100 * time.Millisecond)
	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, auth.ErrExpiredToken)
}

func TestPasswordHashing(t *testing.T) {
	auth.Cost = bcrypt.MinCost
	t.Cleanup(func() { auth.Cost = auth.DefaultCost })

	_, err := auth.HashPassword("12345")
	assert.ErrorIs(t, err, auth.ErrPasswordTooShort)

	hash, err := auth.HashPassword("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)
	assert.NoError(t, auth.VerifyPassword(hash, "secret1"))
	assert.ErrorIs(t, auth.VerifyPassword(hash, "secret2"), auth.ErrPasswordMismatch)
}

func TestBlacklist(t *testing.T) {
	ctx := context.Background()
	repo := database.MustRepository[model.RevokedToken](dbtest.File(t), database.RevokedTokens)
	bl := auth.NewBlacklistService(repo, cache.NewMemoryCache())

	live := &auth.Claims{UserID: "usr_1", RegisteredClaims: jwt.RegisteredClaims{
		ID: "jti-live", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	stale := &auth.Claims{UserID: "usr_1", RegisteredClaims: jwt.RegisteredClaims{
		ID: "jti-stale", ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}}
	require.NoError(t, bl.RevokeToken(ctx, live, "logout"))
	require.NoError(t, bl.RevokeToken(ctx, stale, "logout"))
	assert.ErrorIs(t, bl.RevokeToken(ctx, &auth.Claims{}, "logout"), auth.ErrInvalidClaims)

	revoked, err := bl.IsTokenRevoked(ctx, "jti-live")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = bl.IsTokenRevoked(ctx, "jti-stale")
	require.NoError(t, err)
	assert.False(t, revoked, "an expired token needs no revocation")

	removed, err := bl.CleanupExpiredTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	left, err := repo.Find(ctx, database.Filter{})
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "jti-live", left[0].TokenID)
}
