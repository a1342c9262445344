package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/mentor-hub-api/services"
	"github.com/sahilchouksey/mentor-hub-api/utils/response"
)

// RespondError maps a service error onto the response envelope. Unknown errors are
// returned so the app ErrorHandler logs them and answers 500.
func RespondError(c *fiber.Ctx, err error) error {
	var (
		validationErr *services.ValidationError
		notFoundErr   *services.NotFoundError
		conflictErr   *services.ConflictError
	)
	switch {
	case errors.As(err, &validationErr):
		return response.ValidationError(c, validationErr.Fields)
	case errors.As(err, &notFoundErr):
		return response.NotFound(c, notFoundErr.Error())
	case errors.As(err, &conflictErr):
		return response.Conflict(c, conflictErr.Message)
	case errors.Is(err, services.ErrInvalidCredentials):
		return response.Unauthorized(c, "Invalid username or password")
	case errors.Is(err, services.ErrAccountDisabled):
		return response.Unauthorized(c, "Account is disabled")
	default:
		return err
	}
}
