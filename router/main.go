package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/mentor-hub-api/handlers"
	audio_handlers "github.com/sahilchouksey/mentor-hub-api/handlers/audio"
	auth_handlers "github.com/sahilchouksey/mentor-hub-api/handlers/auth"
	booking_handlers "github.com/sahilchouksey/mentor-hub-api/handlers/booking"
	"github.com/sahilchouksey/mentor-hub-api/handlers/crud"
	notification_handlers "github.com/sahilchouksey/mentor-hub-api/handlers/notification"
	public_handlers "github.com/sahilchouksey/mentor-hub-api/handlers/public"
	quote_handlers "github.com/sahilchouksey/mentor-hub-api/handlers/quote"
	"github.com/sahilchouksey/mentor-hub-api/model"
	"github.com/sahilchouksey/mentor-hub-api/services"
	"github.com/sahilchouksey/mentor-hub-api/utils/cache"
	"github.com/sahilchouksey/mentor-hub-api/utils/listing"
	"github.com/sahilchouksey/mentor-hub-api/utils/middleware"
)

// Config carries what the routes need besides the services.
type Config struct {
	AllowedOrigins string
	Production     bool
	// UploadDir is served at /uploads when audio is stored locally; empty disables it.
	UploadDir string
	// RateLimitRequests per minute and IP; zero disables the limiter.
	RateLimitRequests int
	AccessLog         bool
	Cache             cache.Cache
	Metrics           *middleware.Metrics
}

// SetupRoutes registers middleware and every route.
func SetupRoutes(app *fiber.App, svc *services.Services, cfg Config) {
	if cfg.Metrics != nil {
		app.Use(cfg.Metrics.Instrument())
		app.Get("/metrics", cfg.Metrics.Handler())
	}

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    cfg.AllowedOrigins,
		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitWindow:   time.Minute,
		AccessLog:         cfg.AccessLog,
	})

	if cfg.UploadDir != "" {
		app.Static("/uploads", cfg.UploadDir)
	}

	api := app.Group("/api")

	// Public routes
	api.Get("/health", handlers.NewHealthHandler(svc.Store).Check)

	public := public_handlers.NewPublicHandler(svc)
	api.Get("/internships", public.ListInternships)
	api.Get("/internships/search", public.SearchInternships)
	api.Get("/internships/:id", public.GetInternship)
	api.Get("/quotes", public.ListQuotes)
	api.Get("/quotes/featured", public.FeaturedQuote)
	api.Get("/achievements", public.ListAchievements)
	api.Get("/audio", public.ListAudio)
	api.Post("/bookings", public.SubmitBooking)

	admin := api.Group("/admin")
	setupAdminRoutes(admin, svc, cfg)
}

func setupAdminRoutes(admin fiber.Router, svc *services.Services, cfg Config) {
	var bruteForce *middleware.BruteForceProtection
	if cfg.Cache != nil {
		bruteForce = middleware.NewBruteForceProtection(cfg.Cache)
	}

	authMiddleware := middleware.NewAuthMiddleware(svc.Auth)
	authHandler := auth_handlers.NewAuthHandler(svc.Auth, bruteForce, cfg.Production)

	// Session routes
	if bruteForce != nil {
		admin.Post("/login", bruteForce.Check(), authHandler.Login)
	} else {
		admin.Post("/login", authHandler.Login)
	}
	admin.Post("/logout", authMiddleware.Required(), authHandler.Logout)
	admin.Get("/check-auth", authMiddleware.Required(), authHandler.CheckAuth)

	// Everything below requires an admin token
	protected := admin.Group("", authMiddleware.Required(), middleware.RequireAdmin(), middleware.AdminAuditLog(svc.Audit))

	sorter := listing.NewSorter()

	crud.NewHandler[model.Internship](svc.Internships, sorter).Mount(protected.Group("/internships"))

	crud.NewHandler[model.User](svc.Users, sorter,
		crud.WithPresenter[model.User](func(u *model.User) any { return u.ToResponse() }),
	).Mount(protected.Group("/users"))

	quotes := protected.Group("/quotes")
	quotes.Patch("/:id/feature", quote_handlers.NewQuoteHandler(svc.Quotes).Feature)
	crud.NewHandler[model.Quote](svc.Quotes, sorter).Mount(quotes)

	crud.NewHandler[model.Achievement](svc.Achievements, sorter).Mount(protected.Group("/achievements"))

	audio := protected.Group("/audio")
	if svc.Uploads != nil {
		audio.Post("/upload", audio_handlers.NewUploadHandler(svc.Uploads).Upload)
	}
	crud.NewHandler[model.Audio](svc.Audio, sorter).Mount(audio)

	templates := protected.Group("/notification-templates")
	templates.Post("/:id/send", notification_handlers.NewNotificationHandler(svc.Notifications).Send)
	crud.NewHandler[model.NotificationTemplate](svc.Notifications, sorter).Mount(templates)
	crud.NewHandler[model.NotificationLog](svc.Notifications.Logs, sorter).MountReadOnly(protected.Group("/notification-logs"))

	bookings := protected.Group("/bookings")
	bookings.Patch("/:id/status", booking_handlers.NewBookingHandler(svc.Bookings).UpdateStatus)
	crud.NewHandler[model.Booking](svc.Bookings, sorter).Mount(bookings)

	crud.NewHandler[model.AdminAuditLog](svc.Audit, sorter).MountReadOnly(protected.Group("/audit-logs"))
}
