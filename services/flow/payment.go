package flow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"venuebook/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const ledgerWriteTimeout = 10 * time.Second

func (f *Flow) buildChargeRequestLocked(d models.BookingDraft) models.ChargeRequest {
	method := f.paymentMethod
	if method == "" {
		method = "card"
	}
	return models.ChargeRequest{
		UserID:      f.userID,
		Amount:      f.quote.Subtotal(d.DurationHours),
		Method:      method,
		Description: fmt.Sprintf("%s on %s", d.VenueName, d.Date),
		Idempotency: uuid.New().String(),
	}
}

// executePayment drives exactly one charge, racing it against the flow's
// payment deadline. First to resolve wins; everything else pending for this
// attempt is discarded. The ledger sees exactly one write on success and
// none otherwise.
func (f *Flow) executePayment(ctx context.Context, req models.ChargeRequest) {
	chargeCtx, cancelCharge := context.WithCancel(ctx)
	defer cancelCharge()

	type chargeResult struct {
		receipt *models.ChargeReceipt
		err     error
	}
	resCh := make(chan chargeResult, 1)
	go func() {
		receipt, err := f.deps.Gateway.Charge(chargeCtx, req)
		resCh <- chargeResult{receipt: receipt, err: err}
	}()

	deadline := time.NewTimer(f.opts.PaymentDeadline)
	defer deadline.Stop()

	select {
	case <-ctx.Done():
		// Backward navigation or teardown cancelled the attempt; the timer
		// is stopped and whatever the gateway eventually answers is ignored.
		return
	case <-deadline.C:
		cancelCharge()
		f.resolveAttempt(ctx, models.AttemptTimedOut,
			"payment timed out; no charge was made and your draft is preserved")
	case res := <-resCh:
		if res.err != nil {
			var declined *DeclinedError
			reason := "payment failed; no charge was made and your draft is preserved"
			if errors.As(res.err, &declined) {
				reason = fmt.Sprintf("payment declined (%s); no charge was made and your draft is preserved", declined.Reason)
			}
			f.log.Warn("payment attempt failed", zap.String("flowID", f.id), zap.Error(res.err))
			f.resolveAttempt(ctx, models.AttemptFailed, reason)
			return
		}
		f.settleSuccess(ctx, req, res.receipt)
	}
}

// resolveAttempt records a non-success outcome. The draft is preserved and
// any drift queued during the attempt becomes visible now.
func (f *Flow) resolveAttempt(ctx context.Context, status models.AttemptStatus, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ctx.Err() != nil || f.attempt == nil {
		return
	}
	f.attempt.Status = status
	if status == models.AttemptFailed || status == models.AttemptTimedOut {
		f.attempt.FailureReason = message
	}
	f.state.IsProcessingPayment = false
	f.state.Phase = models.PhaseFailed
	f.state.PaymentError = message
	f.flushPendingRequoteLocked()
}

// settleSuccess writes the single ledger record and terminates the flow.
// Success destroys the draft; subsequent snapshots show no active draft.
func (f *Flow) settleSuccess(ctx context.Context, req models.ChargeRequest, receipt *models.ChargeReceipt) {
	f.mu.Lock()
	if ctx.Err() != nil || f.draft == nil || f.attempt == nil {
		f.mu.Unlock()
		return
	}
	d := *f.draft
	rate := f.quote.Current
	f.mu.Unlock()

	now := time.Now()
	booking := &models.Booking{
		ID:            uuid.New().String(),
		VenueID:       d.VenueID,
		VenueName:     d.VenueName,
		UserID:        req.UserID,
		Date:          d.Date,
		StartMinute:   d.StartMinute,
		EndMinute:     d.EndMinute(),
		DurationHours: d.DurationHours,
		HourlyRate:    rate,
		TotalPrice:    req.Amount,
		Status:        "Confirmed",
		CreatedAt:     now,
	}

	// The charge already went through, so the write is not tied to the
	// attempt context: it must land even if the user navigates away now.
	writeCtx, cancel := context.WithTimeout(context.Background(), ledgerWriteTimeout)
	bookingID, err := f.deps.Ledger.RecordBooking(writeCtx, booking)
	cancel()

	if err == nil && f.deps.Reminders != nil {
		remCtx, remCancel := context.WithTimeout(context.Background(), ledgerWriteTimeout)
		if rerr := f.deps.Reminders.ScheduleBookingReminder(remCtx, booking); rerr != nil {
			f.log.Warn("failed to schedule booking reminder", zap.String("bookingID", booking.ID), zap.Error(rerr))
		}
		remCancel()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		// Charged but not recorded. Surface for follow-up rather than
		// pretending the booking exists.
		f.log.Error("ledger write failed after successful charge",
			zap.String("flowID", f.id),
			zap.String("paymentID", receipt.PaymentID),
			zap.Error(err))
		if f.attempt != nil {
			f.attempt.Status = models.AttemptFailed
			f.attempt.FailureReason = "booking could not be recorded"
		}
		f.state.IsProcessingPayment = false
		f.state.Phase = models.PhaseFailed
		f.state.PaymentError = "your payment went through but the booking could not be recorded; support has been notified"
		return
	}

	if f.attempt != nil {
		f.attempt.Status = models.AttemptSucceeded
	}
	f.bookingID = bookingID
	f.chargeMade = true
	f.state.IsProcessingPayment = false
	f.state.Phase = models.PhaseSucceeded
	f.draft = nil
	f.pendingRequote = nil
	f.stopWatcherLocked()
	f.log.Info("booking confirmed",
		zap.String("flowID", f.id),
		zap.String("bookingID", bookingID),
		zap.String("total", req.Amount.String()),
	)
}
