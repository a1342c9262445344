package auth

import (
	"context"
	"time"

	"github.com/sahilchouksey/mentor-hub-api/database"
	"github.com/sahilchouksey/mentor-hub-api/model"
	"github.com/sahilchouksey/mentor-hub-api/utils/cache"
)

const revokedKeyPrefix = "revoked_token:"

// BlacklistService handles JWT token revocation. Revocations are persisted in the active
// storage backend and mirrored into the cache so the auth middleware rarely hits storage.
type BlacklistService struct {
	repo  database.Repository[model.RevokedToken]
	cache cache.Cache
}

// NewBlacklistService creates a new blacklist service. c may be nil.
func NewBlacklistService(repo database.Repository[model.RevokedToken], c cache.Cache) *BlacklistService {
	return &BlacklistService{repo: repo, cache: c}
}

// RevokeToken adds a token to the blacklist
func (s *BlacklistService) RevokeToken(ctx context.Context, claims *Claims, reason string) error {
	if claims == nil || claims.ID == "" {
		return ErrInvalidClaims
	}

	expiresAt := time.Now().Add(DefaultExpiry)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	entry := &model.RevokedToken{
		TokenID:   claims.ID,
		UserID:    claims.UserID,
		Reason:    reason,
		ExpiresAt: expiresAt.UTC(),
	}
	entry.ApplyDefaults()
	if err := s.repo.Create(ctx, entry); err != nil {
		return err
	}

	if s.cache != nil {
		if ttl := time.Until(expiresAt); ttl > 0 {
			_ = s.cache.Set(ctx, revokedKeyPrefix+claims.ID, reason, ttl)
		}
	}
	return nil
}

// IsTokenRevoked checks if a token is in the blacklist
func (s *BlacklistService) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	if s.cache != nil {
		if revoked, err := s.cache.Exists(ctx, revokedKeyPrefix+jti); err == nil && revoked {
			return true, nil
		}
	}

	entries, err := s.repo.Find(ctx, database.Filter{Where: map[string]any{"token_id": jti}})
	if err != nil {
		return false, err
	}
	now := time.Now()
	for _, e := range entries {
		if e.ExpiresAt.After(now) {
			return true, nil
		}
	}
	return false, nil
}

// CleanupExpiredTokens removes expired entries from the blacklist and returns how many went.
func (s *BlacklistService) CleanupExpiredTokens(ctx context.Context) (int, error) {
	entries, err := s.repo.Find(ctx, database.Filter{})
	if err != nil {
		return 0, err
	}

	now := time.Now()
	removed := 0
	for _, e := range entries {
		if e.ExpiresAt.After(now) {
			continue
		}
		if err := s.repo.Delete(ctx, e.ID); err != nil && err != database.ErrNotFound {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
