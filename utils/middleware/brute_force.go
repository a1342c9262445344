package middleware

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/mentor-hub-api/utils/cache"
	"github.com/sahilchouksey/mentor-hub-api/utils/response"
)

// AttemptWindow is how long failed attempts are remembered.
const AttemptWindow = 15 * time.Minute

// BruteForceProtection locks an IP out of the login endpoint after repeated failures.
type BruteForceProtection struct {
	cache cache.Cache
}

// NewBruteForceProtection creates a new brute force protection instance
func NewBruteForceProtection(c cache.Cache) *BruteForceProtection {
	return &BruteForceProtection{cache: c}
}

func attemptKey(ip string) string { return "brute_force:attempts:" + ip }
func lockKey(ip string) string    { return "brute_force:lock:" + ip }

// LockoutFor returns the lockout applied after attempts failures; zero means none yet.
func LockoutFor(attempts int64) time.Duration {
	switch {
	case attempts >= 25:
		return 24 * time.Hour
	case attempts >= 10:
		return time.Hour
	case attempts >= 5:
		return 2 * time.Minute
	default:
		return 0
	}
}

// Check rejects requests from a locked IP with 429 and a Retry-After header.
func (b *BruteForceProtection) Check() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		key := lockKey(c.IP())

		locked, err := b.cache.Exists(ctx, key)
		if err != nil {
			// cache outage does not block logins
			log.Warn("brute force check failed", "err", err)
			return c.Next()
		}
		if !locked {
			return c.Next()
		}

		ttl, _ := b.cache.TTL(ctx, key)
		retryAfter := int(ttl.Seconds())
		if retryAfter <= 0 {
			retryAfter = 60
		}
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfter))
		return response.TooManyRequests(c, fmt.Sprintf("Too many failed attempts. Try again in %d seconds", retryAfter))
	}
}

// RecordFailedAttempt counts a failed login and applies progressive lockouts.
func (b *BruteForceProtection) RecordFailedAttempt(ctx context.Context, ip, username string) error {
	attempts, err := b.cache.Increment(ctx, attemptKey(ip))
	if err != nil {
		return err
	}
	if attempts == 1 {
		if err := b.cache.Expire(ctx, attemptKey(ip), AttemptWindow); err != nil {
			return err
		}
	}

	lock := LockoutFor(attempts)
	if lock == 0 {
		return nil
	}
	log.Warn("login locked out", "ip", ip, "username", username, "attempts", attempts, "for", lock)
	return b.cache.Set(ctx, lockKey(ip), "locked", lock)
}

// RecordSuccessfulAttempt clears failed attempts on successful login
func (b *BruteForceProtection) RecordSuccessfulAttempt(ctx context.Context, ip string) error {
	return b.cache.Delete(ctx, attemptKey(ip), lockKey(ip))
}

// AttemptCount returns the current attempt count for an IP
func (b *BruteForceProtection) AttemptCount(ctx context.Context, ip string) (int, error) {
	val, err := b.cache.Get(ctx, attemptKey(ip))
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return strconv.Atoi(val)
}
