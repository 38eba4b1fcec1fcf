package availability

import (
	"context"
	"fmt"

	ledgerRepo "venuebook/database/repository/ledger"
	venueRepo "venuebook/database/repository/venue"
)

// DefaultAvailabilityService answers the one-shot slot check against the
// booking ledger: a slot is available when the venue is open for the window
// and no confirmed booking overlaps it. Results are never cached; every
// confirm attempt checks again.
type DefaultAvailabilityService struct {
	Venues venueRepo.VenueRepository
	Ledger ledgerRepo.LedgerRepository
}

func (s *DefaultAvailabilityService) CheckAvailability(ctx context.Context, venueID, date string, startMinute, durationHours int) (bool, error) {
	venue, err := s.Venues.GetByID(ctx, venueID)
	if err != nil {
		return false, fmt.Errorf("failed to fetch venue for availability check: %w", err)
	}

	endMinute := startMinute + durationHours*60
	if startMinute < venue.OpenMinute || endMinute > venue.CloseMinute {
		return false, nil
	}

	overlapping, err := s.Ledger.FindOverlapping(ctx, venueID, date, startMinute, endMinute)
	if err != nil {
		return false, fmt.Errorf("failed to query overlapping bookings: %w", err)
	}
	return len(overlapping) == 0, nil
}
