package models

// Step is the wizard's step cursor.
type Step int

const (
	StepReview  Step = 1
	StepPayment Step = 2
	StepConfirm Step = 3
)

func (s Step) String() string {
	switch s {
	case StepReview:
		return "review"
	case StepPayment:
		return "payment"
	case StepConfirm:
		return "confirm"
	}
	return "unknown"
}

// ConfirmPhase is the sub-state of the Confirm step.
type ConfirmPhase string

const (
	PhaseIdle                 ConfirmPhase = "idle"
	PhaseCheckingAvailability ConfirmPhase = "checkingAvailability"
	PhaseProcessing           ConfirmPhase = "processing"
	PhaseSucceeded            ConfirmPhase = "succeeded"
	PhaseFailed               ConfirmPhase = "failed"
	PhaseOverbookingBlocked   ConfirmPhase = "overbookingBlocked"
)

// FlowState is the step cursor plus the transient UI flags. Owned
// exclusively by the flow; handlers only ever see copies.
type FlowState struct {
	Step                   Step         `json:"step"`
	Phase                  ConfirmPhase `json:"phase"`
	IsCheckingAvailability bool         `json:"isCheckingAvailability"`
	IsProcessingPayment    bool         `json:"isProcessingPayment"`
	OverbookingDetected    bool         `json:"overbookingDetected"`
	PaymentError           string       `json:"paymentError,omitempty"`
	SignInRequired         bool         `json:"signInRequired"`
}

// FlowSnapshot is the read-only view of a flow returned to callers. Every
// error state the flow can reach leaves ChargeMade false until a payment
// attempt actually succeeds.
type FlowSnapshot struct {
	FlowID     string        `json:"flowId"`
	State      FlowState     `json:"state"`
	Draft      *BookingDraft `json:"draft,omitempty"`
	Quote      PriceQuote    `json:"quote"`
	Subtotal   Money         `json:"subtotal"`
	Attempt    *PaymentAttempt `json:"attempt,omitempty"`
	BookingID  string        `json:"bookingId,omitempty"`
	ChargeMade bool          `json:"chargeMade"`
}
