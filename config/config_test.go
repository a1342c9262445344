package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "STORAGE_MODE", "DB_CONNECT_TIMEOUT", "NOTIFY_RATE", "CRON_ENABLED", "GO_ENV"} {
		t.Setenv(k, "")
	}

	env, err := Get()
	require.NoError(t, err)
	assert.Equal(t, 5000, env.PORT)
	assert.Equal(t, "auto", env.STORAGE_MODE)
	assert.Equal(t, 5*time.Second, env.DB_CONNECT_TIMEOUT)
	assert.Equal(t, float64(10), env.NOTIFY_RATE)
	assert.True(t, env.CRON_ENABLED)
	assert.False(t, env.IsProduction())
}

func TestGetOverrides(t *testing.T) {
	t.Setenv("GO_ENV", "production")
	t.Setenv("PORT", "8080")
	t.Setenv("STORAGE_MODE", "file")
	t.Setenv("DB_CONNECT_TIMEOUT", "3")
	t.Setenv("DB_QUERY_TIMEOUT", "1500ms")
	t.Setenv("NOTIFY_RATE", "-1")
	t.Setenv("CRON_ENABLED", "false")

	env, err := Get()
	require.NoError(t, err)
	assert.True(t, env.IsProduction())
	assert.Equal(t, 8080, env.PORT)
	assert.Equal(t, "file", env.STORAGE_MODE)
	assert.Equal(t, 3*time.Second, env.DB_CONNECT_TIMEOUT)
	assert.Equal(t, 1500*time.Millisecond, env.DB_QUERY_TIMEOUT)
	assert.Equal(t, float64(10), env.NOTIFY_RATE, "a non-positive rate falls back")
	assert.False(t, env.CRON_ENABLED)
}
