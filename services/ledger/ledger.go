package ledger

import (
	"context"
	"fmt"

	ledgerRepo "venuebook/database/repository/ledger"
	"venuebook/models"

	"go.uber.org/zap"
)

// DefaultLedgerService records confirmed bookings in the system of record.
// It receives exactly one write per successful payment attempt.
type DefaultLedgerService struct {
	Repo   ledgerRepo.LedgerRepository
	Logger *zap.Logger
}

func NewLedgerService(repo ledgerRepo.LedgerRepository, logger *zap.Logger) *DefaultLedgerService {
	return &DefaultLedgerService{Repo: repo, Logger: logger}
}

// RecordBooking persists the booking and returns its ledger ID.
func (s *DefaultLedgerService) RecordBooking(ctx context.Context, booking *models.Booking) (string, error) {
	id, err := s.Repo.Create(ctx, booking)
	if err != nil {
		return "", fmt.Errorf("failed to record booking: %w", err)
	}
	s.Logger.Info("booking recorded",
		zap.String("bookingID", id),
		zap.String("venueID", booking.VenueID),
		zap.String("date", booking.Date),
	)
	return id, nil
}

// GetBooking returns a previously recorded booking.
func (s *DefaultLedgerService) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	booking, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch booking: %w", err)
	}
	return booking, nil
}
