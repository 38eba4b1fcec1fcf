package quote

import (
	"context"
	"fmt"
	"strconv"
	"time"

	venueRepo "venuebook/database/repository/venue"
	"venuebook/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// cacheTTL is deliberately shorter than the watcher interval so repeated
// ticks within one pricing window share a cached rate without masking a
// genuine rate change for long.
const cacheTTL = 3 * time.Second

// DefaultQuoteService computes the hourly quote for a venue from its
// current rate card, with a short-lived Redis cache in front of Mongo.
type DefaultQuoteService struct {
	Venues      venueRepo.VenueRepository
	CacheClient *redis.Client
	Logger      *zap.Logger
}

func NewQuoteService(venues venueRepo.VenueRepository, cache *redis.Client, logger *zap.Logger) *DefaultQuoteService {
	return &DefaultQuoteService{
		Venues:      venues,
		CacheClient: cache,
		Logger:      logger,
	}
}

// GetQuote returns the venue's current hourly rate. Duration is part of the
// contract so rate cards with duration tiers can price against it; the base
// implementation charges a flat hourly rate.
func (s *DefaultQuoteService) GetQuote(ctx context.Context, venueID string, durationHours int) (models.Money, error) {
	cacheKey := fmt.Sprintf("quote:%s:%d", venueID, durationHours)

	if s.CacheClient != nil {
		cached, err := s.CacheClient.Get(ctx, cacheKey).Result()
		if err == nil {
			if amount, perr := strconv.ParseFloat(cached, 64); perr == nil {
				currency, _ := s.CacheClient.Get(ctx, cacheKey+":cur").Result()
				if currency != "" {
					return models.Money{Amount: amount, Currency: currency}, nil
				}
			}
		} else if err != redis.Nil {
			s.Logger.Debug("quote cache read failed", zap.Error(err))
		}
	}

	venue, err := s.Venues.GetByID(ctx, venueID)
	if err != nil {
		return models.Money{}, fmt.Errorf("failed to fetch venue for quote: %w", err)
	}

	rate := models.Money{Amount: venue.HourlyRate, Currency: venue.Currency}

	if s.CacheClient != nil {
		if err := s.CacheClient.Set(ctx, cacheKey, strconv.FormatFloat(rate.Amount, 'f', -1, 64), cacheTTL).Err(); err != nil {
			s.Logger.Debug("quote cache write failed", zap.Error(err))
		}
		_ = s.CacheClient.Set(ctx, cacheKey+":cur", rate.Currency, cacheTTL).Err()
	}

	return rate, nil
}
