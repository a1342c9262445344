package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// This function will Load the ENVIORNMENT VARIABLES from .env if GO_ENV variable is not set
func LoadENV() error {
	goEnv := os.Getenv("GO_ENV")

	if goEnv == "" || goEnv == "development" {
		// .env is optional in development; the process env wins either way
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	return nil
}

type EnviornmentVariable struct {
	// All variables
	GO_ENV    string
	PORT      int
	LOG_LEVEL string
	// Storage Configuration
	STORAGE_MODE       string // auto, database, file
	DATA_DIR           string
	DB_USER_NAME       string
	DB_PASSWORD        string
	DB_NAME            string
	DB_HOST            string
	DB_PORT            string
	DB_SSL_MODE        string
	DB_CONNECT_TIMEOUT time.Duration
	DB_QUERY_TIMEOUT   time.Duration
	// JWT Configuration
	JWT_SECRET string
	JWT_ISSUER string
	// Bootstrap admin
	ADMIN_PASSWORD string
	ADMIN_EMAIL    string
	// Redis Configuration
	REDIS_URL string
	// HTTP
	ALLOWED_ORIGINS string
	UPLOAD_DIR      string
	// DigitalOcean Spaces Configuration
	DO_SPACES_ACCESS_KEY   string
	DO_SPACES_SECRET_KEY   string
	DO_SPACES_BUCKET       string
	DO_SPACES_REGION       string
	DO_SPACES_ENDPOINT     string
	DO_SPACES_CDN_ENDPOINT string
	// SMTP for notification broadcasts
	SMTP_HOST     string
	SMTP_PORT     int
	SMTP_USERNAME string
	SMTP_PASSWORD string
	SMTP_FROM     string
	// Background jobs
	CRON_ENABLED bool
	// Notification broadcast pacing (messages per second)
	NOTIFY_RATE float64
}

// IsProduction reports whether the service runs with GO_ENV=production.
func (e *EnviornmentVariable) IsProduction() bool {
	return e.GO_ENV == "production"
}

func Get() (*EnviornmentVariable, error) {

	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil {
		port = 5000
	}

	smtpPort, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		smtpPort = 587
	}

	notifyRate, err := strconv.ParseFloat(os.Getenv("NOTIFY_RATE"), 64)
	if err != nil || notifyRate <= 0 {
		notifyRate = 10
	}

	envVariables := &EnviornmentVariable{
		GO_ENV:    os.Getenv("GO_ENV"),
		PORT:      port,
		LOG_LEVEL: getOrDefault("LOG_LEVEL", "info"),
		// Storage
		STORAGE_MODE:       getOrDefault("STORAGE_MODE", "auto"),
		DATA_DIR:           getOrDefault("DATA_DIR", "data"),
		DB_USER_NAME:       os.Getenv("DB_USER_NAME"),
		DB_PASSWORD:        os.Getenv("DB_PASSWORD"),
		DB_NAME:            getOrDefault("DB_NAME", "mentor_hub"),
		DB_HOST:            getOrDefault("DB_HOST", "localhost"),
		DB_PORT:            getOrDefault("DB_PORT", "5432"),
		DB_SSL_MODE:        getOrDefault("DB_SSL_MODE", "disable"),
		DB_CONNECT_TIMEOUT: durationOrDefault("DB_CONNECT_TIMEOUT", 5*time.Second),
		DB_QUERY_TIMEOUT:   durationOrDefault("DB_QUERY_TIMEOUT", 10*time.Second),
		// JWT
		JWT_SECRET: os.Getenv("JWT_SECRET"),
		JWT_ISSUER: getOrDefault("JWT_ISSUER", "mentor-hub-api"),
		// Admin
		ADMIN_PASSWORD: os.Getenv("ADMIN_PASSWORD"),
		ADMIN_EMAIL:    os.Getenv("ADMIN_EMAIL"),
		// Redis
		REDIS_URL: os.Getenv("REDIS_URL"),
		// HTTP
		ALLOWED_ORIGINS: getOrDefault("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173"),
		UPLOAD_DIR:      getOrDefault("UPLOAD_DIR", "uploads"),
		// DigitalOcean
		DO_SPACES_ACCESS_KEY:   os.Getenv("DO_SPACES_ACCESS_KEY"),
		DO_SPACES_SECRET_KEY:   os.Getenv("DO_SPACES_SECRET_KEY"),
		DO_SPACES_BUCKET:       os.Getenv("DO_SPACES_BUCKET"),
		DO_SPACES_REGION:       os.Getenv("DO_SPACES_REGION"),
		DO_SPACES_ENDPOINT:     os.Getenv("DO_SPACES_ENDPOINT"),
		DO_SPACES_CDN_ENDPOINT: os.Getenv("DO_SPACES_CDN_ENDPOINT"),
		// SMTP
		SMTP_HOST:     getOrDefault("SMTP_HOST", "smtp.gmail.com"),
		SMTP_PORT:     smtpPort,
		SMTP_USERNAME: os.Getenv("SMTP_USERNAME"),
		SMTP_PASSWORD: os.Getenv("SMTP_PASSWORD"),
		SMTP_FROM:     getOrDefault("SMTP_FROM", "noreply@mentorhub.app"),
		// Cron defaults to enabled
		CRON_ENABLED: os.Getenv("CRON_ENABLED") != "false",
		NOTIFY_RATE:  notifyRate,
	}

	return envVariables, nil
}

func getOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// durationOrDefault accepts Go durations ("5s") or plain seconds ("5").
func durationOrDefault(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
