package middleware

import (
	"errors"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/mentor-hub-api/model"
	"github.com/sahilchouksey/mentor-hub-api/services"
	"github.com/sahilchouksey/mentor-hub-api/utils/auth"
	"github.com/sahilchouksey/mentor-hub-api/utils/response"
)

// TokenCookie is the HttpOnly cookie the login handler sets.
const TokenCookie = "admin_token"

// Locals keys set by Required.
const (
	LocalClaims = "claims"
	LocalUser   = "user"
)

// AuthMiddleware handles JWT authentication
type AuthMiddleware struct {
	auth *services.AuthService
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(authService *services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{auth: authService}
}

// ExtractToken reads the bearer token from the Authorization header, falling back to the
// admin_token cookie.
func ExtractToken(c *fiber.Ctx) (string, bool) {
	if header := c.Get(fiber.HeaderAuthorization); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return "", false
		}
		return strings.TrimSpace(parts[1]), true
	}
	if cookie := c.Cookies(TokenCookie); cookie != "" {
		return cookie, true
	}
	return "", false
}

// Required is middleware that requires a valid, unrevoked token of an active account
func (m *AuthMiddleware) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := ExtractToken(c)
		if !ok {
			return response.Unauthorized(c, "Authentication required")
		}

		claims, err := m.auth.Authenticate(c.UserContext(), token)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				return response.Unauthorized(c, "Token has expired")
			case errors.Is(err, auth.ErrRevokedToken):
				return response.Unauthorized(c, "Token has been revoked")
			case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrInvalidClaims):
				return response.Unauthorized(c, "Invalid token")
			default:
				log.Error("failed to check token status", "err", err)
				return response.InternalServerError(c, "Failed to check token status")
			}
		}

		user, err := m.auth.CurrentUser(c.UserContext(), claims)
		if err != nil {
			if services.IsNotFound(err) {
				return response.Unauthorized(c, "User not found")
			}
			return response.InternalServerError(c, "Failed to load user")
		}
		if !user.IsActive {
			return response.Unauthorized(c, "Account is disabled")
		}

		c.Locals(LocalClaims, claims)
		c.Locals(LocalUser, user)
		return c.Next()
	}
}

// RequireAdmin rejects authenticated users without the admin role. It must run after Required.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return response.Unauthorized(c, "Authentication required")
		}
		if !user.IsAdmin() {
			return response.Forbidden(c, "Admin access required")
		}
		return c.Next()
	}
}

// CurrentUser returns the user stored by Required, or nil.
func CurrentUser(c *fiber.Ctx) *model.User {
	user, _ := c.Locals(LocalUser).(*model.User)
	return user
}

// CurrentClaims returns the claims stored by Required, or nil.
func CurrentClaims(c *fiber.Ctx) *auth.Claims {
	claims, _ := c.Locals(LocalClaims).(*auth.Claims)
	return claims
}
