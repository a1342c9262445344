package cron

import (
	"context"
	"fmt"
	"time"
)

// CleanupRevokedTokens removes revoked-token entries whose tokens have expired.
func (m *CronManager) CleanupRevokedTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	jobName := "cleanup_revoked_tokens"
	if m.auth == nil {
		m.logJobComplete(jobName, "auth service not configured")
		return
	}

	removed, err := m.auth.CleanupRevokedTokens(ctx)
	if err != nil {
		m.logJobError(jobName, fmt.Errorf("failed to cleanup revoked tokens: %w", err))
		return
	}
	m.logJobComplete(jobName, fmt.Sprintf("removed %d expired entries", removed))
}

// CheckStorageHealth pings the active storage backend.
func (m *CronManager) CheckStorageHealth() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	jobName := "storage_health_check"
	if err := m.store.HealthCheck(ctx); err != nil {
		m.logJobError(jobName, fmt.Errorf("%s storage unhealthy: %w", m.store.Mode(), err))
		return
	}
	m.logJobComplete(jobName, fmt.Sprintf("%s storage healthy", m.store.Mode()))
}
