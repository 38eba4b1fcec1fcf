package models

import "time"

// BookingDraft is the unconfirmed reservation under construction. Identity
// fields stay stable for the life of the flow; only date, start time and
// duration may change, and only through an explicit user edit before the
// payment step (or via the overbooking recovery path).
type BookingDraft struct {
	VenueID       string `json:"venueId"`
	Date          string `json:"date"` // "YYYY-MM-DD"
	StartMinute   int    `json:"startMinute"`
	DurationHours int    `json:"durationHours"`

	// Denormalized display fields, captured at flow entry.
	VenueName  string `json:"venueName"`
	VenueImage string `json:"venueImage,omitempty"`
	Location   string `json:"location"`
	VenueType  string `json:"venueType"`

	CreatedAt time.Time `json:"createdAt"`
}

// EndMinute returns the draft's end time in minutes from midnight.
func (d BookingDraft) EndMinute() int {
	return d.StartMinute + d.DurationHours*60
}
