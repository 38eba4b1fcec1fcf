package flow

import (
	"context"
	"time"

	"venuebook/models"
)

// QuoteService supplies the hourly price for a venue. Called once at flow
// entry and again on every price watcher tick.
type QuoteService interface {
	GetQuote(ctx context.Context, venueID string, durationHours int) (models.Money, error)
}

// AvailabilityService answers the one-shot slot check performed right
// before payment. The result is valid only for the instant it was computed;
// every confirm attempt asks again.
type AvailabilityService interface {
	CheckAvailability(ctx context.Context, venueID, date string, startMinute, durationHours int) (bool, error)
}

// PaymentGateway drives a single charge. A decline is reported as a
// *DeclinedError; the flow applies its own deadline around the call.
type PaymentGateway interface {
	Charge(ctx context.Context, req models.ChargeRequest) (*models.ChargeReceipt, error)
}

// AuthProvider resolves the caller's identity from a bearer token. A flow
// can be walked through review and payment anonymously; only the final
// confirm action requires a signed-in user.
type AuthProvider interface {
	IsAuthenticated(ctx context.Context, token string) (userID string, ok bool)
}

// BookingLedger is the system of record for completed bookings. It receives
// exactly one write per successful payment attempt.
type BookingLedger interface {
	RecordBooking(ctx context.Context, booking *models.Booking) (string, error)
}

// AlternativeFinder receives the draft's location/date/venue type when the
// user chooses "view alternatives" from an overbooking block.
type AlternativeFinder interface {
	FindAlternatives(ctx context.Context, q models.SearchQuery) ([]models.Venue, error)
}

// VenueCatalog resolves the denormalized display fields captured into the
// draft at flow entry.
type VenueCatalog interface {
	GetByID(ctx context.Context, venueID string) (*models.Venue, error)
}

// ReminderScheduler queues a pre-slot reminder for a confirmed booking.
// Optional; a nil scheduler simply skips reminders.
type ReminderScheduler interface {
	ScheduleBookingReminder(ctx context.Context, booking *models.Booking) error
}

// Collaborators bundles every external contract the flow consumes.
type Collaborators struct {
	Venues       VenueCatalog
	Quotes       QuoteService
	Availability AvailabilityService
	Gateway      PaymentGateway
	Auth         AuthProvider
	Ledger       BookingLedger
	Search       AlternativeFinder
	Reminders    ReminderScheduler
}

// Options tunes the flow's timers.
type Options struct {
	QuoteInterval   time.Duration // price watcher tick interval
	PaymentDeadline time.Duration // hard bound on a single payment attempt
	FlowTTL         time.Duration // idle flows older than this are swept
}

// FlowService manages the lifecycle of booking confirmation flows.
type FlowService interface {
	Enter(ctx context.Context, venueID, date string, startMinute, durationHours int) (*models.FlowSnapshot, error)
	Get(flowID string) (*models.FlowSnapshot, error)
	Next(flowID string) (*models.FlowSnapshot, error)
	Back(flowID string) (*models.FlowSnapshot, error)
	EditSchedule(flowID, date string, startMinute, durationHours int) (*models.FlowSnapshot, error)
	SelectPaymentMethod(flowID, method string) (*models.FlowSnapshot, error)
	AcceptPriceChange(flowID string) (*models.FlowSnapshot, error)
	RejectPriceChange(flowID string) (*models.FlowSnapshot, error)
	Confirm(ctx context.Context, flowID, authToken string) (*models.FlowSnapshot, error)
	Alternatives(ctx context.Context, flowID string) ([]models.Venue, error)
	Cancel(flowID string) error
}
