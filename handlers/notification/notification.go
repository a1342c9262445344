package notification

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/mentor-hub-api/handlers"
	"github.com/sahilchouksey/mentor-hub-api/services"
	"github.com/sahilchouksey/mentor-hub-api/utils/response"
)

// NotificationHandler broadcasts notification templates
type NotificationHandler struct {
	notifications *services.NotificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// Send handles POST /api/admin/notification-templates/:id/send
func (h *NotificationHandler) Send(c *fiber.Ctx) error {
	req, err := services.ParseSendRequest(c.Body())
	if err != nil {
		return handlers.RespondError(c, err)
	}

	entry, err := h.notifications.Send(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return handlers.RespondError(c, err)
	}

	message := "Notification sent"
	if entry.FailedCount > 0 {
		message = "Notification sent with failures"
	}
	return response.SuccessWithMessage(c, message, entry)
}
