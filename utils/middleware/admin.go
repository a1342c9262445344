package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/mentor-hub-api/model"
	"github.com/sahilchouksey/mentor-hub-api/services"
)

// AdminAuditLog records every mutating admin request once the handler has run. GETs are
// not logged.
func AdminAuditLog(audit *services.AuditService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodGet || c.Method() == fiber.MethodHead || c.Method() == fiber.MethodOptions {
			return c.Next()
		}

		err := c.Next()

		user := CurrentUser(c)
		if user == nil {
			return err
		}

		resource, action := auditTarget(c)
		entry := &model.AdminAuditLog{
			AdminID:     user.ID,
			AdminName:   user.Username,
			Action:      action,
			Resource:    resource,
			ResourceID:  c.Params("id"),
			Status:      c.Response().StatusCode(),
			IPAddress:   c.IP(),
			UserAgent:   c.Get(fiber.HeaderUserAgent),
			Description: c.Method() + " " + c.Path(),
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if recErr := audit.Record(ctx, entry); recErr != nil {
			log.Warn("failed to record audit log", "action", action, "resource", resource, "err", recErr)
		}
		return err
	}
}

// auditTarget derives (resource, action) from the route, e.g.
// PATCH /api/admin/quotes/:id/feature -> ("quotes", "feature").
func auditTarget(c *fiber.Ctx) (string, string) {
	route := strings.TrimPrefix(c.Route().Path, "/api/admin/")
	parts := strings.Split(strings.Trim(route, "/"), "/")
	resource := parts[0]

	action := map[string]string{
		fiber.MethodPost:   "create",
		fiber.MethodPut:    "update",
		fiber.MethodPatch:  "update",
		fiber.MethodDelete: "delete",
	}[c.Method()]
	if last := parts[len(parts)-1]; len(parts) > 1 && !strings.HasPrefix(last, ":") {
		action = last
	}
	return resource, action
}
