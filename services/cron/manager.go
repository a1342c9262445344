package cron

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"
	"github.com/sahilchouksey/mentor-hub-api/database"
	"github.com/sahilchouksey/mentor-hub-api/services"
)

// Job schedules (seconds precision).
const (
	CleanupRevokedTokensSchedule = "0 */15 * * * *"
	StorageHealthSchedule        = "0 */5 * * * *"
)

// CronManager manages all scheduled cron jobs
type CronManager struct {
	cron  *cron.Cron
	store database.Storage
	auth  *services.AuthService
}

// NewCronManager creates a new cron manager
func NewCronManager(store database.Storage, auth *services.AuthService) *CronManager {
	// Create cron with seconds precision
	c := cron.New(cron.WithSeconds())

	return &CronManager{
		cron:  c,
		store: store,
		auth:  auth,
	}
}

// Start starts all cron jobs
func (m *CronManager) Start() error {
	log.Info("starting cron jobs")

	// Register all jobs
	if err := m.registerJobs(); err != nil {
		return err
	}

	// Start the cron scheduler
	m.cron.Start()

	log.Info("cron jobs started", "count", len(m.cron.Entries()))
	return nil
}

// Stop stops all cron jobs
func (m *CronManager) Stop() {
	log.Info("stopping cron jobs")
	ctx := m.cron.Stop()
	<-ctx.Done()
	log.Info("cron jobs stopped")
}

// registerJobs registers all cron jobs with their schedules
func (m *CronManager) registerJobs() error {
	// Every 15 minutes: drop revocations of tokens that expired anyway
	_, err := m.cron.AddFunc(CleanupRevokedTokensSchedule, func() {
		m.logJobStart("cleanup_revoked_tokens")
		m.CleanupRevokedTokens()
	})
	if err != nil {
		return err
	}

	// Every 5 minutes: report storage backend health
	_, err = m.cron.AddFunc(StorageHealthSchedule, func() {
		m.logJobStart("storage_health_check")
		m.CheckStorageHealth()
	})
	if err != nil {
		return err
	}

	log.Info("all cron jobs registered")
	return nil
}

// logJobStart logs the start of a cron job
func (m *CronManager) logJobStart(jobName string) {
	log.Info("cron job started", "job", jobName, "at", time.Now().Format(time.RFC3339))
}

// logJobComplete logs successful completion of a cron job
func (m *CronManager) logJobComplete(jobName string, message string) {
	log.Info("cron job completed", "job", jobName, "result", message)
}

// logJobError logs a cron job error
func (m *CronManager) logJobError(jobName string, err error) {
	log.Error("cron job failed", "job", jobName, "err", err)
}
