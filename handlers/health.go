package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/mentor-hub-api/database"
	"github.com/sahilchouksey/mentor-hub-api/utils/response"
)

// HealthHandler reports liveness and the active storage backend.
type HealthHandler struct {
	store database.Storage
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(store database.Storage) *HealthHandler {
	return &HealthHandler{store: store}
}

// Check handles GET /api/health. A failing backend degrades the status but still answers 200.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
	defer cancel()

	status := "ok"
	if err := h.store.HealthCheck(ctx); err != nil {
		status = "degraded"
	}
	return response.Success(c, fiber.Map{
		"status":  status,
		"storage": string(h.store.Mode()),
		"time":    time.Now().UTC(),
	})
}
