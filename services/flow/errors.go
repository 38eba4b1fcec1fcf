package flow

import "fmt"

// FlowError is a structured, user-surfaceable error. Every kind the flow
// raises is recoverable: the draft survives all of them.
type FlowError struct {
	Code    string
	Message string
}

func (e *FlowError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

var (
	ErrFlowNotFound      = &FlowError{Code: "flowNotFound", Message: "no active booking flow with that id"}
	ErrNoActiveDraft     = &FlowError{Code: "noActiveDraft", Message: "no active draft"}
	ErrInvalidStep       = &FlowError{Code: "invalidStep", Message: "action not valid for the current step"}
	ErrScheduleLocked    = &FlowError{Code: "scheduleLocked", Message: "return to review before editing the schedule"}
	ErrConfirmInFlight   = &FlowError{Code: "confirmInFlight", Message: "a confirm attempt is already in progress"}
	ErrPriceDriftPending = &FlowError{Code: "priceDriftPending", Message: "the quoted price changed; accept or reject the new price before paying"}
	ErrNotAuthenticated  = &FlowError{Code: "notAuthenticated", Message: "sign in to complete this booking; your draft is preserved"}
)

// DeclinedError is returned by a payment gateway when the charge resolves
// negatively before the deadline.
type DeclinedError struct {
	Reason string
}

func (e *DeclinedError) Error() string {
	return fmt.Sprintf("payment declined: %s", e.Reason)
}
