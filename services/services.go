package services

import (
	"github.com/sahilchouksey/mentor-hub-api/database"
	"github.com/sahilchouksey/mentor-hub-api/model"
	"github.com/sahilchouksey/mentor-hub-api/utils/auth"
	"github.com/sahilchouksey/mentor-hub-api/utils/cache"
)

// Options carries the collaborators that are not derived from the storage backend.
type Options struct {
	JWT        *auth.JWTManager
	Cache      cache.Cache
	Sender     Sender
	Media      MediaStore
	NotifyRate float64
}

// Services holds every service, all bound to one storage backend.
type Services struct {
	Store         database.Storage
	Internships   *InternshipService
	Users         *UserService
	Quotes        *QuoteService
	Achievements  *CRUDService[model.Achievement, *model.Achievement]
	Audio         *CRUDService[model.Audio, *model.Audio]
	Notifications *NotificationService
	Bookings      *BookingService
	Audit         *AuditService
	Auth          *AuthService
	Uploads       *UploadService
}

// New wires the services over store.
func New(store database.Storage, opts Options) (*Services, error) {
	internships, err := database.NewRepository[model.Internship](store, database.Internships)
	if err != nil {
		return nil, err
	}
	users := database.MustRepository[model.User](store, database.Users)
	bookings := database.MustRepository[model.Booking](store, database.Bookings)

	s := &Services{
		Store:       store,
		Internships: NewInternshipService(internships),
		Users:       NewUserService(users),
		Quotes:      NewQuoteService(database.MustRepository[model.Quote](store, database.Quotes)),
		Achievements: NewAchievementService(
			database.MustRepository[model.Achievement](store, database.Achievements),
		),
		Audio: NewAudioService(database.MustRepository[model.Audio](store, database.AudioTracks)),
		Notifications: NewNotificationService(
			database.MustRepository[model.NotificationTemplate](store, database.NotificationTemplates),
			database.MustRepository[model.NotificationLog](store, database.NotificationLogs),
			opts.Sender,
			opts.NotifyRate,
		),
		Bookings: NewBookingService(bookings, internships),
		Audit:    NewAuditService(database.MustRepository[model.AdminAuditLog](store, database.AuditLogs)),
	}

	if opts.JWT != nil {
		blacklist := auth.NewBlacklistService(
			database.MustRepository[model.RevokedToken](store, database.RevokedTokens),
			opts.Cache,
		)
		s.Auth = NewAuthService(s.Users, opts.JWT, blacklist)
	}
	if opts.Media != nil {
		s.Uploads = NewUploadService(opts.Media)
	}
	return s, nil
}
