package ledgerRepo

import (
	"context"
	"errors"
	"time"

	"venuebook/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Create inserts a confirmed booking and returns its ID.
func (r *mongoLedgerRepo) Create(ctx context.Context, booking *models.Booking) (string, error) {
	if booking.ID == "" {
		booking.ID = uuid.New().String()
	}
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = time.Now()
	}

	_, err := r.coll.InsertOne(ctx, booking)
	if err != nil {
		return "", err
	}
	return booking.ID, nil
}

// GetByID returns a booking by its ID.
func (r *mongoLedgerRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errors.New("booking not found")
		}
		return nil, err
	}
	return &booking, nil
}

// FindOverlapping returns confirmed bookings for the venue and date whose
// time window intersects [startMinute, endMinute).
func (r *mongoLedgerRepo) FindOverlapping(ctx context.Context, venueID, date string, startMinute, endMinute int) ([]models.Booking, error) {
	filter := bson.M{
		"venue_id":     venueID,
		"date":         date,
		"status":       "Confirmed",
		"start_minute": bson.M{"$lt": endMinute},
		"end_minute":   bson.M{"$gt": startMinute},
	}

	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}
