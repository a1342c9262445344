package app

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/sahilchouksey/mentor-hub-api/config"
	"github.com/sahilchouksey/mentor-hub-api/database"
	"github.com/sahilchouksey/mentor-hub-api/model"
	"github.com/sahilchouksey/mentor-hub-api/utils/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testEnv(t *testing.T) *config.EnviornmentVariable {
	t.Helper()
	return &config.EnviornmentVariable{
		STORAGE_MODE:   "file",
		DATA_DIR:       t.TempDir(),
		UPLOAD_DIR:     t.TempDir(),
		JWT_ISSUER:     "mentor-hub-test",
		ADMIN_PASSWORD: "bootstrap1",
		NOTIFY_RATE:    100,
	}
}

func TestNewWiresFileBackend(t *testing.T) {
	auth.Cost = bcrypt.MinCost
	t.Cleanup(func() { auth.Cost = auth.DefaultCost })

	a, err := New(context.Background(), testEnv(t))
	require.NoError(t, err)
	t.Cleanup(a.Close)

	assert.Equal(t, database.ModeFile, a.Store.Mode())
	assert.Nil(t, a.Cron, "cron stays off unless enabled")

	_, err = a.Services.Auth.Login(context.Background(), model.BootstrapAdminUsername, "bootstrap1")
	assert.NoError(t, err)

	resp, err := a.Server.GetEngine().Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestProductionRequiresJWTSecret(t *testing.T) {
	env := testEnv(t)
	env.GO_ENV = "production"
	_, err := resolveJWTSecret(env)
	assert.Error(t, err)

	env.GO_ENV = ""
	secret, err := resolveJWTSecret(env)
	require.NoError(t, err)
	assert.Len(t, secret, 64)

	env.JWT_SECRET = "fixed"
	secret, _ = resolveJWTSecret(env)
	assert.Equal(t, "fixed", secret)
}

func TestNewCacheFallsBackToMemory(t *testing.T) {
	c := NewCache("")
	require.NotNil(t, c)
	assert.NoError(t, c.Close())
}
