package venueRepo

import (
	"context"
	"errors"
	"fmt"

	"venuebook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// GetByID returns a venue by its ID.
func (r *mongoVenueRepo) GetByID(ctx context.Context, id string) (*models.Venue, error) {
	var venue models.Venue
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&venue)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("venue %s not found", id)
		}
		return nil, err
	}
	return &venue, nil
}

// Search returns venues matching the given location and venue type. Empty
// filter values match everything.
func (r *mongoVenueRepo) Search(ctx context.Context, location, venueType string) ([]models.Venue, error) {
	filter := bson.M{}
	if location != "" {
		filter["location"] = location
	}
	if venueType != "" {
		filter["venue_type"] = venueType
	}

	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var venues []models.Venue
	if err := cursor.All(ctx, &venues); err != nil {
		return nil, err
	}
	return venues, nil
}
