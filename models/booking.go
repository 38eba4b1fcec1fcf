package models

import "time"

// Booking is the confirmed reservation written to the ledger. Exactly one
// of these is recorded per successful payment attempt.
type Booking struct {
	ID            string    `bson:"id" json:"id"`
	VenueID       string    `bson:"venue_id" json:"venueId"`
	VenueName     string    `bson:"venue_name" json:"venueName"`
	UserID        string    `bson:"user_id" json:"userId"`
	Date          string    `bson:"date" json:"date"` // "YYYY-MM-DD"
	StartMinute   int       `bson:"start_minute" json:"startMinute"`
	EndMinute     int       `bson:"end_minute" json:"endMinute"`
	DurationHours int       `bson:"duration_hours" json:"durationHours"`
	HourlyRate    Money     `bson:"hourly_rate" json:"hourlyRate"`
	TotalPrice    Money     `bson:"total_price" json:"totalPrice"`
	Status        string    `bson:"status" json:"status"` // e.g. "Confirmed"
	CreatedAt     time.Time `bson:"created_at" json:"createdAt"`
}

// ReminderPayload is what the reminder worker receives for a confirmed
// booking.
type ReminderPayload struct {
	BookingID string `json:"bookingId"`
	UserID    string `json:"userId"`
	VenueName string `json:"venueName"`
	Date      string `json:"date"`
	FireDate  string `json:"fireDate"`
}
