// Package public serves the unauthenticated site endpoints. Only active records are visible.
package public

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/mentor-hub-api/handlers"
	"github.com/sahilchouksey/mentor-hub-api/services"
	"github.com/sahilchouksey/mentor-hub-api/utils/response"
)

// PublicHandler handles the public site routes
type PublicHandler struct {
	svc *services.Services
}

// NewPublicHandler creates a new public handler
func NewPublicHandler(svc *services.Services) *PublicHandler {
	return &PublicHandler{svc: svc}
}

// ListInternships handles GET /api/internships
func (h *PublicHandler) ListInternships(c *fiber.Ctx) error {
	internships, err := h.svc.Internships.List(c.UserContext(), true)
	if err != nil {
		return handlers.RespondError(c, err)
	}
	return response.Success(c, internships)
}

// SearchInternships handles GET /api/internships/search?q=. An empty query returns nothing.
func (h *PublicHandler) SearchInternships(c *fiber.Ctx) error {
	internships, err := h.svc.Internships.Search(c.UserContext(), c.Query("q"), services.ScopePublic)
	if err != nil {
		return handlers.RespondError(c, err)
	}
	return response.Success(c, internships)
}

// GetInternship handles GET /api/internships/:id
func (h *PublicHandler) GetInternship(c *fiber.Ctx) error {
	internship, err := h.svc.Internships.GetPublic(c.UserContext(), c.Params("id"))
	if err != nil {
		return handlers.RespondError(c, err)
	}
	return response.Success(c, internship)
}

// ListQuotes handles GET /api/quotes
func (h *PublicHandler) ListQuotes(c *fiber.Ctx) error {
	quotes, err := h.svc.Quotes.List(c.UserContext(), true)
	if err != nil {
		return handlers.RespondError(c, err)
	}
	return response.Success(c, quotes)
}

// FeaturedQuote handles GET /api/quotes/featured
func (h *PublicHandler) FeaturedQuote(c *fiber.Ctx) error {
	quote, err := h.svc.Quotes.Featured(c.UserContext())
	if err != nil {
		return handlers.RespondError(c, err)
	}
	return response.Success(c, quote)
}

// ListAchievements handles GET /api/achievements
func (h *PublicHandler) ListAchievements(c *fiber.Ctx) error {
	achievements, err := h.svc.Achievements.List(c.UserContext(), true)
	if err != nil {
		return handlers.RespondError(c, err)
	}
	return response.Success(c, achievements)
}

// ListAudio handles GET /api/audio
func (h *PublicHandler) ListAudio(c *fiber.Ctx) error {
	tracks, err := h.svc.Audio.List(c.UserContext(), true)
	if err != nil {
		return handlers.RespondError(c, err)
	}
	return response.Success(c, tracks)
}

// SubmitBooking handles POST /api/bookings
func (h *PublicHandler) SubmitBooking(c *fiber.Ctx) error {
	booking, err := h.svc.Bookings.Submit(c.UserContext(), c.Body())
	if err != nil {
		return handlers.RespondError(c, err)
	}
	return response.Created(c, "Booking request received", booking)
}
