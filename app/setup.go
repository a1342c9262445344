package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/sahilchouksey/mentor-hub-api/api"
	"github.com/sahilchouksey/mentor-hub-api/config"
	"github.com/sahilchouksey/mentor-hub-api/database"
	"github.com/sahilchouksey/mentor-hub-api/router"
	"github.com/sahilchouksey/mentor-hub-api/services"
	"github.com/sahilchouksey/mentor-hub-api/services/cron"
	"github.com/sahilchouksey/mentor-hub-api/utils"
	"github.com/sahilchouksey/mentor-hub-api/utils/auth"
	"github.com/sahilchouksey/mentor-hub-api/utils/cache"
	"github.com/sahilchouksey/mentor-hub-api/utils/middleware"
)

// Application is a fully wired server.
type Application struct {
	Server   *api.APIServer
	Store    database.Storage
	Services *services.Services
	Cache    cache.Cache
	Cron     *cron.CronManager
}

// New opens storage and wires services and routes. It does not start listening.
func New(ctx context.Context, env *config.EnviornmentVariable) (*Application, error) {
	store, err := database.Open(ctx, env)
	if err != nil {
		return nil, err
	}

	jwtSecret, err := resolveJWTSecret(env)
	if err != nil {
		store.Close()
		return nil, err
	}

	c := NewCache(env.REDIS_URL)
	media := services.NewMediaStore(env)

	svc, err := services.New(store, services.Options{
		JWT:        auth.NewJWTManager(auth.JWTConfig{Secret: jwtSecret, Issuer: env.JWT_ISSUER}),
		Cache:      c,
		Sender:     services.NewSender(env),
		Media:      media,
		NotifyRate: env.NOTIFY_RATE,
	})
	if err != nil {
		store.Close()
		return nil, err
	}

	if _, err := services.NewSeeder(svc).EnsureAdminUser(ctx, env.ADMIN_PASSWORD, env.ADMIN_EMAIL); err != nil {
		store.Close()
		return nil, err
	}

	uploadDir := ""
	if local, ok := media.(*services.LocalMediaStore); ok {
		uploadDir = local.Dir()
	}

	server := api.NewAPIServer(fmt.Sprintf(":%d", env.PORT), env.IsProduction())
	router.SetupRoutes(server.GetEngine(), svc, router.Config{
		AllowedOrigins:    env.ALLOWED_ORIGINS,
		Production:        env.IsProduction(),
		UploadDir:         uploadDir,
		RateLimitRequests: 300,
		AccessLog:         true,
		Cache:             c,
		Metrics:           middleware.NewMetrics(),
	})

	a := &Application{Server: server, Store: store, Services: svc, Cache: c}
	if env.CRON_ENABLED {
		a.Cron = cron.NewCronManager(store, svc.Auth)
	}
	return a, nil
}

// NewCache connects to Redis when redisURL is set and falls back to an in-process cache.
func NewCache(redisURL string) cache.Cache {
	if redisURL == "" {
		return cache.NewMemoryCache()
	}
	redisCache, err := cache.NewRedisCache(redisURL)
	if err != nil {
		log.Warn("redis unavailable, using in-memory cache", "err", err)
		return cache.NewMemoryCache()
	}
	log.Info("connected to redis")
	return redisCache
}

// resolveJWTSecret requires JWT_SECRET in production and generates a per-process secret
// otherwise.
func resolveJWTSecret(env *config.EnviornmentVariable) (string, error) {
	if env.JWT_SECRET != "" {
		return env.JWT_SECRET, nil
	}
	if env.IsProduction() {
		return "", errors.New("JWT_SECRET environment variable is not set")
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	log.Warn("JWT_SECRET not set, tokens will not survive a restart")
	return hex.EncodeToString(buf), nil
}

// Close stops background work and releases the backend.
func (a *Application) Close() {
	if a.Cron != nil {
		a.Cron.Stop()
	}
	if err := a.Cache.Close(); err != nil {
		log.Warn("failed to close cache", "err", err)
	}
	if err := a.Store.Close(); err != nil {
		log.Warn("failed to close storage", "err", err)
	}
}

func SetupAndRunServer() error {
	if err := config.LoadENV(); err != nil {
		return err
	}

	env, err := config.Get()
	if err != nil {
		return err
	}
	utils.SetupLogger(env.LOG_LEVEL, env.IsProduction())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := New(ctx, env)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.Cron != nil {
		if err := a.Cron.Start(); err != nil {
			// the API keeps serving without background jobs
			log.Warn("failed to start cron jobs", "err", err)
		}
	}

	errCh := make(chan error, 1)
	go func() { errCh <- a.Server.Run() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info("shutting down")
		return a.Server.Shutdown()
	}
}
