package services

import (
	"context"
	"errors"
	"strings"

	"github.com/sahilchouksey/mentor-hub-api/database"
	"github.com/sahilchouksey/mentor-hub-api/model"
)

// BookingService manages session requests.
type BookingService struct {
	*CRUDService[model.Booking, *model.Booking]
	internships database.Repository[model.Internship]
}

// NewBookingService creates a new booking service. internships resolves the mentor and
// program names when a request only carries an internship id.
func NewBookingService(repo database.Repository[model.Booking], internships database.Repository[model.Internship]) *BookingService {
	return &BookingService{
		CRUDService: NewCRUDService[model.Booking, *model.Booking](repo, Resource[model.Booking]{
			Name: "Booking",
			Extras: func(records []model.Booking) Stats {
				byStatus := make(map[string]int, len(model.BookingStatuses))
				for _, st := range model.BookingStatuses {
					byStatus[string(st)] = 0
				}
				for _, b := range records {
					byStatus[string(b.Status)]++
				}
				return Stats{"by_status": byStatus}
			},
		}),
		internships: internships,
	}
}

// Submit records a public booking request. The status is always pending.
func (s *BookingService) Submit(ctx context.Context, payload []byte) (*model.Booking, error) {
	booking, err := s.Decode(payload)
	if err != nil {
		return nil, err
	}
	booking.Status = model.BookingStatusPending
	booking.IsActive = true

	if id := strings.TrimSpace(booking.InternshipID); id != "" && s.internships != nil {
		internship, err := s.internships.FindByID(ctx, id)
		if err != nil && !errors.Is(err, database.ErrNotFound) {
			return nil, err
		}
		if internship == nil || !internship.IsActive {
			return nil, NewValidationError("internship_id", "internship_id does not match an active internship")
		}
		if booking.MentorName == "" {
			booking.MentorName = internship.MentorName
		}
		if booking.ProgramTitle == "" && len(internship.Programs) > 0 {
			booking.ProgramTitle = internship.Programs[0].Title
		}
	}

	return s.Insert(ctx, booking)
}

// UpdateStatus moves a booking to status.
func (s *BookingService) UpdateStatus(ctx context.Context, id, status string) (*model.Booking, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if !model.ValidBookingStatus(status) {
		return nil, NewValidationError("status", "status must be one of: pending confirmed completed cancelled")
	}

	booking, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	booking.Status = model.BookingStatus(status)
	if err := s.Save(ctx, booking); err != nil {
		return nil, err
	}
	return booking, nil
}
