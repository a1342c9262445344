package services

import (
	"context"

	"github.com/sahilchouksey/mentor-hub-api/database"
	"github.com/sahilchouksey/mentor-hub-api/model"
)

// NewAchievementService creates the achievements service.
func NewAchievementService(repo database.Repository[model.Achievement]) *CRUDService[model.Achievement, *model.Achievement] {
	return NewCRUDService[model.Achievement, *model.Achievement](repo, Resource[model.Achievement]{
		Name: "Achievement",
		Extras: func(records []model.Achievement) Stats {
			return Stats{"by_category": CountBy(records, func(a *model.Achievement) string { return a.Category })}
		},
	})
}

// NewAudioService creates the audio library service.
func NewAudioService(repo database.Repository[model.Audio]) *CRUDService[model.Audio, *model.Audio] {
	return NewCRUDService[model.Audio, *model.Audio](repo, Resource[model.Audio]{
		Name: "Audio",
		Extras: func(records []model.Audio) Stats {
			total := 0
			for _, a := range records {
				total += a.DurationSeconds
			}
			return Stats{
				"by_category":            CountBy(records, func(a *model.Audio) string { return a.Category }),
				"total_duration_seconds": total,
			}
		},
	})
}

// QuoteService manages quotes and the single featured quote.
type QuoteService struct {
	*CRUDService[model.Quote, *model.Quote]
}

// NewQuoteService creates a new quote service
func NewQuoteService(repo database.Repository[model.Quote]) *QuoteService {
	return &QuoteService{
		CRUDService: NewCRUDService[model.Quote, *model.Quote](repo, Resource[model.Quote]{
			Name: "Quote",
			Extras: func(records []model.Quote) Stats {
				featured := 0
				for _, q := range records {
					if q.IsFeatured {
						featured++
					}
				}
				return Stats{
					"featured":    featured,
					"by_category": CountBy(records, func(q *model.Quote) string { return q.Category }),
				}
			},
		}),
	}
}

// Create inserts a quote; a featured quote takes the flag from every other quote.
func (s *QuoteService) Create(ctx context.Context, payload []byte) (*model.Quote, error) {
	quote, err := s.CRUDService.Create(ctx, payload)
	if err != nil {
		return nil, err
	}
	if quote.IsFeatured {
		if err := s.clearFeatured(ctx, quote.ID); err != nil {
			return nil, err
		}
	}
	return quote, nil
}

// Update patches a quote, keeping at most one featured quote.
func (s *QuoteService) Update(ctx context.Context, id string, patch []byte) (*model.Quote, error) {
	quote, err := s.CRUDService.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	if quote.IsFeatured {
		if err := s.clearFeatured(ctx, quote.ID); err != nil {
			return nil, err
		}
	}
	return quote, nil
}

// SetFeatured marks id as the featured quote and clears the flag everywhere else.
func (s *QuoteService) SetFeatured(ctx context.Context, id string) (*model.Quote, error) {
	quote, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !quote.IsFeatured {
		quote.IsFeatured = true
		if err := s.Save(ctx, quote); err != nil {
			return nil, err
		}
	}
	if err := s.clearFeatured(ctx, id); err != nil {
		return nil, err
	}
	return quote, nil
}

// Featured returns the featured active quote, or the newest active quote when none is
// featured.
func (s *QuoteService) Featured(ctx context.Context) (*model.Quote, error) {
	quotes, err := s.List(ctx, true)
	if err != nil {
		return nil, err
	}
	if len(quotes) == 0 {
		return nil, s.notFound("")
	}
	for i := range quotes {
		if quotes[i].IsFeatured {
			return &quotes[i], nil
		}
	}
	return &quotes[0], nil
}

func (s *QuoteService) clearFeatured(ctx context.Context, keep string) error {
	featured, err := s.Find(ctx, map[string]any{"is_featured": true}, false)
	if err != nil {
		return err
	}
	for i := range featured {
		if featured[i].ID == keep {
			continue
		}
		featured[i].IsFeatured = false
		if err := s.Save(ctx, &featured[i]); err != nil {
			return err
		}
	}
	return nil
}
