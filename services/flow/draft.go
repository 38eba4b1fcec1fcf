package flow

import (
	"time"

	"venuebook/models"
)

// newDraft captures the venue's display fields and the requested slot at
// flow entry. Identity fields are stable from here on unless the user
// explicitly edits the schedule from the review step.
func newDraft(venue *models.Venue, date string, startMinute, durationHours int) *models.BookingDraft {
	return &models.BookingDraft{
		VenueID:       venue.ID,
		Date:          date,
		StartMinute:   startMinute,
		DurationHours: durationHours,
		VenueName:     venue.Name,
		VenueImage:    venue.Image,
		Location:      venue.Location,
		VenueType:     venue.VenueType,
		CreatedAt:     time.Now(),
	}
}

// EditSchedule changes the draft's date, start time or duration. Only the
// review step may do this, which is also where the "adjust time"
// overbooking recovery lands the user. Venue identity never changes.
func (f *Flow) EditSchedule(date string, startMinute, durationHours int) (*models.FlowSnapshot, error) {
	if err := validateSlot(date, startMinute, durationHours); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.draft == nil {
		return nil, ErrNoActiveDraft
	}
	if f.state.Step != models.StepReview {
		return f.snapshotLocked(), ErrScheduleLocked
	}
	f.touchLocked()
	f.draft.Date = date
	f.draft.StartMinute = startMinute
	f.draft.DurationHours = durationHours
	f.state.OverbookingDetected = false
	return f.snapshotLocked(), nil
}

func validateSlot(date string, startMinute, durationHours int) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return &FlowError{Code: "invalidSlot", Message: "date must be YYYY-MM-DD"}
	}
	if startMinute < 0 || startMinute >= 24*60 {
		return &FlowError{Code: "invalidSlot", Message: "start time must fall within the day"}
	}
	if durationHours < 1 || durationHours > 12 {
		return &FlowError{Code: "invalidSlot", Message: "duration must be between 1 and 12 hours"}
	}
	return nil
}
