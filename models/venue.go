package models

// Venue is a bookable space in the catalog.
type Venue struct {
	ID          string  `bson:"id" json:"id"`
	Name        string  `bson:"name" json:"name"`
	Image       string  `bson:"image,omitempty" json:"image,omitempty"`
	Location    string  `bson:"location" json:"location"`
	VenueType   string  `bson:"venue_type" json:"venueType"`
	HourlyRate  float64 `bson:"hourly_rate" json:"hourlyRate"`
	Currency    string  `bson:"currency" json:"currency"`
	OpenMinute  int     `bson:"open_minute" json:"openMinute"`   // minutes from midnight
	CloseMinute int     `bson:"close_minute" json:"closeMinute"` // minutes from midnight
}

// SearchQuery is what gets handed to the search collaborator when a user
// asks for alternatives after an overbooking block.
type SearchQuery struct {
	Location  string `json:"location"`
	Date      string `json:"date"` // "YYYY-MM-DD"
	VenueType string `json:"venueType"`
}
