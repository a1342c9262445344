package middleware

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsUseRoutePatterns(t *testing.T) {
	m := NewMetrics()
	app := fiber.New()
	app.Use(m.Instrument())
	app.Get("/metrics", m.Handler())
	app.Get("/api/internships/:id", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNotFound)
	})

	for _, id := range []string{"int_1", "int_2"} {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/internships/"+id, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	}

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(body)
	assert.Contains(t, text, `http_requests_total{method="GET",path="/api/internships/:id",status="404"} 2`)
	assert.NotContains(t, text, "int_1")
}
