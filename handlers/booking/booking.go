package booking

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/mentor-hub-api/handlers"
	"github.com/sahilchouksey/mentor-hub-api/services"
	"github.com/sahilchouksey/mentor-hub-api/utils/response"
)

// BookingHandler handles booking status changes
type BookingHandler struct {
	bookings *services.BookingService
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookings *services.BookingService) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

// StatusRequest is the body of a status change
type StatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles PATCH /api/admin/bookings/:id/status
func (h *BookingHandler) UpdateStatus(c *fiber.Ctx) error {
	var req StatusRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	booking, err := h.bookings.UpdateStatus(c.UserContext(), c.Params("id"), req.Status)
	if err != nil {
		return handlers.RespondError(c, err)
	}
	return response.SuccessWithMessage(c, "Booking marked as "+string(booking.Status), booking)
}
