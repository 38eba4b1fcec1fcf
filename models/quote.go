package models

// PriceQuote tracks the hourly price shown to the user. Original is the
// accepted baseline; Current is the latest re-quote. While PendingDrift is
// set the booking is blocked from payment until the user accepts or rejects
// the change. Accepting promotes Current to Original, so a later drift is
// detected against the newly accepted baseline rather than the price at
// flow entry.
type PriceQuote struct {
	Original     Money `json:"original"`
	Current      Money `json:"current"`
	PendingDrift bool  `json:"pendingDrift"`
}

// Accepted reports whether the quote is in an accepted state, i.e. payment
// may proceed at the Current price.
func (q PriceQuote) Accepted() bool {
	return !q.PendingDrift
}

// Subtotal is the quoted total for the given duration at the current price.
func (q PriceQuote) Subtotal(durationHours int) Money {
	return q.Current.Times(durationHours)
}
