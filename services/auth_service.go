package services

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sahilchouksey/mentor-hub-api/model"
	"github.com/sahilchouksey/mentor-hub-api/utils/auth"
)

// LoginResult is what a successful login hands back to the client.
type LoginResult struct {
	Token     string             `json:"token"`
	ExpiresIn int64              `json:"expires_in"`
	ExpiresAt time.Time          `json:"expires_at"`
	User      model.UserResponse `json:"user"`
}

// AuthService exchanges credentials for signed admin tokens.
type AuthService struct {
	users     *UserService
	jwt       *auth.JWTManager
	blacklist *auth.BlacklistService
	now       func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(users *UserService, jwt *auth.JWTManager, blacklist *auth.BlacklistService) *AuthService {
	return &AuthService{users: users, jwt: jwt, blacklist: blacklist, now: time.Now}
}

// Login verifies username and password. Unknown users and wrong passwords both yield
// ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := auth.VerifyPassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	token, claims, err := s.jwt.GenerateAccessToken(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	user.LastLogin = &now
	if err := s.users.Save(ctx, user); err != nil {
		// login still succeeds with a stale last_login
		log.Warn("failed to record last login", "user", user.Username, "err", err)
	}

	return &LoginResult{
		Token:     token,
		ExpiresIn: int64(s.jwt.Expiry().Seconds()),
		ExpiresAt: claims.ExpiresAt.Time,
		User:      user.ToResponse(),
	}, nil
}

// Authenticate validates a token and rejects revoked ones.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	if s.blacklist != nil {
		revoked, err := s.blacklist.IsTokenRevoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, auth.ErrRevokedToken
		}
	}
	return claims, nil
}

// Logout revokes the token described by claims.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if s.blacklist == nil {
		return nil
	}
	return s.blacklist.RevokeToken(ctx, claims, "logout")
}

// CurrentUser loads the account behind claims.
func (s *AuthService) CurrentUser(ctx context.Context, claims *auth.Claims) (*model.User, error) {
	return s.users.Get(ctx, claims.UserID)
}

// CleanupRevokedTokens drops revocations whose tokens have expired anyway.
func (s *AuthService) CleanupRevokedTokens(ctx context.Context) (int, error) {
	if s.blacklist == nil {
		return 0, nil
	}
	return s.blacklist.CleanupExpiredTokens(ctx)
}
