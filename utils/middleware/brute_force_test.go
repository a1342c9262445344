package middleware

import (
	"context"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/mentor-hub-api/utils/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockoutFor(t *testing.T) {
	tests := []struct {
		attempts int64
		want     time.Duration
	}{
		{0, 0},
		{4, 0},
		{5, 2 * time.Minute},
		{9, 2 * time.Minute},
		{10, time.Hour},
		{24, time.Hour},
		{25, 24 * time.Hour},
		{100, 24 * time.Hour},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LockoutFor(tt.attempts), "attempts=%d", tt.attempts)
	}
}

func TestBruteForceLocksAfterFiveFailures(t *testing.T) {
	ctx := context.Background()
	bf := NewBruteForceProtection(cache.NewMemoryCache())

	var ip string
	app := fiber.New()
	app.Post("/login", bf.Check(), func(c *fiber.Ctx) error {
		ip = c.IP()
		if c.Query("password") != "secret1" {
			_ = bf.RecordFailedAttempt(c.UserContext(), c.IP(), "admin")
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		_ = bf.RecordSuccessfulAttempt(c.UserContext(), c.IP())
		return c.SendString("ok")
	})

	login := func(password string) int {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/login?password="+password, nil))
		require.NoError(t, err)
		return resp.StatusCode
	}

	for i := 0; i < 4; i++ {
		assert.Equal(t, fiber.StatusUnauthorized, login("wrong"))
	}
	assert.Equal(t, fiber.StatusOK, login("secret1"), "a success before the lockout resets the count")

	count, err := bf.AttemptCount(ctx, ip)
	require.NoError(t, err)
	assert.Zero(t, count)

	for i := 0; i < 5; i++ {
		assert.Equal(t, fiber.StatusUnauthorized, login("wrong"))
	}
	count, err = bf.AttemptCount(ctx, ip)
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/login?password=secret1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode, "locked out even with the right password")
	retry, err := strconv.Atoi(resp.Header.Get(fiber.HeaderRetryAfter))
	require.NoError(t, err)
	assert.Greater(t, retry, 0)
	assert.LessOrEqual(t, retry, 120)
}

func TestNormalizeOrigins(t *testing.T) {
	assert.Equal(t, "http://localhost:3000,http://localhost:5173", normalizeOrigins(""))
	assert.Equal(t, "http://localhost:3000,http://localhost:5173", normalizeOrigins(" * "))
	assert.Equal(t, "https://a.example,https://b.example", normalizeOrigins("https://a.example, *, https://b.example"))
}
