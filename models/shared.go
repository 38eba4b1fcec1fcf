package models

import "fmt"

// Money is an amount in a specific currency. Hourly quotes and charge
// amounts are both carried as Money.
type Money struct {
	Amount   float64 `bson:"amount" json:"amount"`
	Currency string  `bson:"currency" json:"currency"`
}

// Equal reports whether two Money values are the same amount in the same currency.
func (m Money) Equal(other Money) bool {
	return m.Amount == other.Amount && m.Currency == other.Currency
}

// Times scales the amount, e.g. an hourly rate by a duration.
func (m Money) Times(n int) Money {
	return Money{Amount: m.Amount * float64(n), Currency: m.Currency}
}

func (m Money) String() string {
	return fmt.Sprintf("%.2f %s", m.Amount, m.Currency)
}
