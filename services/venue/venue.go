package venue

import (
	"context"
	"fmt"

	venueRepo "venuebook/database/repository/venue"
	"venuebook/models"
)

// CatalogService resolves venues and searches for alternatives.
type CatalogService interface {
	GetByID(ctx context.Context, venueID string) (*models.Venue, error)
	FindAlternatives(ctx context.Context, q models.SearchQuery) ([]models.Venue, error)
}

// DefaultCatalogService implements CatalogService on top of the venue
// repository.
type DefaultCatalogService struct {
	Repo venueRepo.VenueRepository
}

func (s *DefaultCatalogService) GetByID(ctx context.Context, venueID string) (*models.Venue, error) {
	venue, err := s.Repo.GetByID(ctx, venueID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch venue: %w", err)
	}
	return venue, nil
}

// FindAlternatives searches the catalog by the blocked draft's location and
// venue type. Date is carried in the query for services that filter by
// calendar; the base catalog search is location/type only.
func (s *DefaultCatalogService) FindAlternatives(ctx context.Context, q models.SearchQuery) ([]models.Venue, error) {
	venues, err := s.Repo.Search(ctx, q.Location, q.VenueType)
	if err != nil {
		return nil, fmt.Errorf("alternative search failed: %w", err)
	}
	return venues, nil
}
