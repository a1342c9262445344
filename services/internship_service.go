package services

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sahilchouksey/mentor-hub-api/database"
	"github.com/sahilchouksey/mentor-hub-api/model"
)

// InternshipService manages mentor listings.
type InternshipService struct {
	*CRUDService[model.Internship, *model.Internship]
}

// NewInternshipService creates a new internship service
func NewInternshipService(repo database.Repository[model.Internship]) *InternshipService {
	crud := NewCRUDService[model.Internship, *model.Internship](repo, Resource[model.Internship]{
		Name:   "Internship",
		Extras: internshipStats,
	})
	crud.validator.RegisterStructRule(validateProgram, model.Program{})
	return &InternshipService{CRUDService: crud}
}

// validateProgram requires a fee on every program and rejects fee input that did not parse.
func validateProgram(sl validator.StructLevel) {
	p := sl.Current().Interface().(model.Program)
	switch {
	case p.FeesMalformed():
		sl.ReportError(p.Fees, "fees", "Fees", "number", "")
	case p.Fees == nil:
		sl.ReportError(p.Fees, "fees", "Fees", "required", "")
	}
}

// GetPublic returns an active internship; inactive ones are reported as not found.
func (s *InternshipService) GetPublic(ctx context.Context, id string) (*model.Internship, error) {
	internship, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !internship.IsActive {
		return nil, s.notFound(id)
	}
	return internship, nil
}

func internshipStats(records []model.Internship) Stats {
	mentors := make(map[string]struct{})
	cities := make(map[string]struct{})
	programs, multiCity := 0, 0
	for _, r := range records {
		if name := strings.ToLower(strings.TrimSpace(r.MentorName)); name != "" {
			mentors[name] = struct{}{}
		}
		if city := strings.ToLower(strings.TrimSpace(r.City)); city != "" {
			cities[city] = struct{}{}
		}
		programs += len(r.Programs)
		if r.IsMultipleCity {
			multiCity++
		}
	}
	return Stats{
		"mentors":        len(mentors),
		"cities":         len(cities),
		"total_programs": programs,
		"multi_city":     multiCity,
	}
}
