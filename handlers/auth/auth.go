package auth

import (
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/mentor-hub-api/handlers"
	"github.com/sahilchouksey/mentor-hub-api/services"
	"github.com/sahilchouksey/mentor-hub-api/utils/middleware"
	"github.com/sahilchouksey/mentor-hub-api/utils/response"
	"github.com/sahilchouksey/mentor-hub-api/utils/validation"
)

// AuthHandler handles admin sessions
type AuthHandler struct {
	auth         *services.AuthService
	bruteForce   *middleware.BruteForceProtection
	secureCookie bool
	validator    *validation.Validator
}

// NewAuthHandler creates a new auth handler. bruteForce may be nil.
func NewAuthHandler(authService *services.AuthService, bruteForce *middleware.BruteForceProtection, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		auth:         authService,
		bruteForce:   bruteForce,
		secureCookie: secureCookie,
		validator:    validation.NewValidator(),
	}
}

// LoginRequest represents an admin login request
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login handles POST /api/admin/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if fields := h.validator.Check(&req); len(fields) > 0 {
		return response.ValidationError(c, fields)
	}

	ctx := c.UserContext()
	result, err := h.auth.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) && h.bruteForce != nil {
			if recErr := h.bruteForce.RecordFailedAttempt(ctx, c.IP(), req.Username); recErr != nil {
				log.Warn("failed to record login attempt", "err", recErr)
			}
		}
		return handlers.RespondError(c, err)
	}

	if h.bruteForce != nil {
		if err := h.bruteForce.RecordSuccessfulAttempt(ctx, c.IP()); err != nil {
			log.Warn("failed to clear login attempts", "err", err)
		}
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    result.Token,
		Path:     "/",
		Expires:  result.ExpiresAt,
		MaxAge:   int(result.ExpiresIn),
		HTTPOnly: true,
		Secure:   h.secureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	log.Info("admin login", "username", result.User.Username)
	return response.SuccessWithMessage(c, "Login successful", result)
}

// Logout handles POST /api/admin/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if claims := middleware.CurrentClaims(c); claims != nil {
		if err := h.auth.Logout(c.UserContext(), claims); err != nil {
			return err
		}
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   h.secureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return response.SuccessWithMessage(c, "Logged out successfully", nil)
}

// CheckAuth handles GET /api/admin/check-auth
func (h *AuthHandler) CheckAuth(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return response.Unauthorized(c, "Authentication required")
	}
	return response.Success(c, fiber.Map{
		"authenticated": true,
		"user":          user.ToResponse(),
	})
}
