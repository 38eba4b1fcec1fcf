package models

import "time"

// AttemptStatus classifies a single payment attempt. Exactly one of the
// terminal statuses wins; anything still pending when the deadline fires is
// discarded.
type AttemptStatus string

const (
	AttemptPending   AttemptStatus = "pending"
	AttemptSucceeded AttemptStatus = "succeeded"
	AttemptFailed    AttemptStatus = "failed"
	AttemptTimedOut  AttemptStatus = "timedOut"
)

// PaymentAttempt is ephemeral: one per confirm click, never reused across
// retries.
type PaymentAttempt struct {
	Status        AttemptStatus `json:"status"`
	FailureReason string        `json:"failureReason,omitempty"`
	StartedAt     time.Time     `json:"startedAt"`
	Deadline      time.Time     `json:"deadline"`
}

// ChargeRequest is the payload handed to the payment gateway.
type ChargeRequest struct {
	UserID      string
	Amount      Money
	Method      string // e.g. "card"
	Description string
	Idempotency string
}

// ChargeReceipt is the gateway's positive outcome.
type ChargeReceipt struct {
	PaymentID string
	Status    string
}
