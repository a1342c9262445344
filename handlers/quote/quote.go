package quote

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/mentor-hub-api/handlers"
	"github.com/sahilchouksey/mentor-hub-api/services"
	"github.com/sahilchouksey/mentor-hub-api/utils/response"
)

// QuoteHandler handles quote actions beyond plain CRUD
type QuoteHandler struct {
	quotes *services.QuoteService
}

// NewQuoteHandler creates a new quote handler
func NewQuoteHandler(quotes *services.QuoteService) *QuoteHandler {
	return &QuoteHandler{quotes: quotes}
}

// Feature handles PATCH /api/admin/quotes/:id/feature
func (h *QuoteHandler) Feature(c *fiber.Ctx) error {
	quote, err := h.quotes.SetFeatured(c.UserContext(), c.Params("id"))
	if err != nil {
		return handlers.RespondError(c, err)
	}
	return response.SuccessWithMessage(c, "Quote set as featured", quote)
}
