package venueRepo

import (
	"context"

	"venuebook/database"
	"venuebook/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// VenueRepository exposes the venue catalog.
type VenueRepository interface {
	GetByID(ctx context.Context, id string) (*models.Venue, error)
	Search(ctx context.Context, location, venueType string) ([]models.Venue, error)
}

type mongoVenueRepo struct {
	coll *mongo.Collection
}

// NewMongoVenueRepo returns a VenueRepository backed by MongoDB.
func NewMongoVenueRepo() VenueRepository {
	db := database.MongoClient.Database("venuebook")
	return &mongoVenueRepo{
		coll: db.Collection("venues"),
	}
}
