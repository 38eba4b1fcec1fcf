package ledgerRepo

import (
	"context"

	"venuebook/database"
	"venuebook/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// LedgerRepository is the system of record for confirmed bookings.
type LedgerRepository interface {
	Create(ctx context.Context, booking *models.Booking) (string, error)
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	FindOverlapping(ctx context.Context, venueID, date string, startMinute, endMinute int) ([]models.Booking, error)
}

type mongoLedgerRepo struct {
	coll *mongo.Collection
}

// NewMongoLedgerRepo returns a LedgerRepository backed by MongoDB.
func NewMongoLedgerRepo() LedgerRepository {
	db := database.MongoClient.Database("venuebook")
	return &mongoLedgerRepo{
		coll: db.Collection("bookings"),
	}
}
