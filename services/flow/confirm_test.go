package flow

import (
	"context"
	"testing"
	"time"

	"venuebook/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirmOnlyAtConfirmStep(t *testing.T) {
	env := newFlowEnv()
	id := env.enter(t)

	_, err := env.svc.Confirm(context.Background(), id, "tok")
	assert.ErrorIs(t, err, ErrInvalidStep)
	assert.Zero(t, env.avail.callCount())
}

func TestConfirmSuccessWritesLedgerOnce(t *testing.T) {
	env := newFlowEnv()
	id := env.enter(t)
	env.toConfirmStep(t, id)

	_, err := env.svc.Confirm(context.Background(), id, "tok")
	require.NoError(t, err)

	snap := env.waitPhase(t, id, models.PhaseSucceeded)
	assert.True(t, snap.ChargeMade)
	assert.NotEmpty(t, snap.BookingID)
	assert.Nil(t, snap.Draft, "success destroys the draft")
	require.NotNil(t, snap.Attempt)
	assert.Equal(t, models.AttemptSucceeded, snap.Attempt.Status)

	require.Equal(t, 1, env.ledger.count())
	booking := env.ledger.last()
	assert.Equal(t, "venue-1", booking.VenueID)
	assert.Equal(t, "user-1", booking.UserID)
	assert.Equal(t, "Confirmed", booking.Status)
	assert.Equal(t, 200.0, booking.TotalPrice.Amount)
	assert.Equal(t, 12*60, booking.EndMinute)
}

func TestConfirmIsNotReentrant(t *testing.T) {
	env := newFlowEnv()
	env.avail.release = make(chan struct{})
	id := env.enter(t)
	env.toConfirmStep(t, id)

	_, err := env.svc.Confirm(context.Background(), id, "tok")
	require.NoError(t, err)

	// A second click while the check is outstanding does nothing.
	_, err = env.svc.Confirm(context.Background(), id, "tok")
	assert.ErrorIs(t, err, ErrConfirmInFlight)

	close(env.avail.release)
	env.waitPhase(t, id, models.PhaseSucceeded)
	assert.Equal(t, 1, env.avail.callCount())
	assert.Equal(t, 1, env.gateway.callCount())
	assert.Equal(t, 1, env.ledger.count())
}

func TestConfirmBlockedByPendingDrift(t *testing.T) {
	env := newFlowEnv()
	id := env.enter(t)

	_, err := env.svc.Next(id)
	require.NoError(t, err)
	env.quotes.setRate(110)
	waitDrift(t, env, id, true)

	_, err = env.svc.Next(id)
	require.NoError(t, err)
	_, err = env.svc.Confirm(context.Background(), id, "tok")
	assert.ErrorIs(t, err, ErrPriceDriftPending)
	assert.Zero(t, env.avail.callCount())

	_, err = env.svc.AcceptPriceChange(id)
	require.NoError(t, err)
	_, err = env.svc.Confirm(context.Background(), id, "tok")
	require.NoError(t, err)

	env.waitPhase(t, id, models.PhaseSucceeded)
	require.Equal(t, 1, env.ledger.count())
	assert.Equal(t, 220.0, env.ledger.last().TotalPrice.Amount,
		"ledger records the accepted price")
}

func TestConfirmUnauthenticated(t *testing.T) {
	env := newFlowEnv()
	env.auth.ok = false
	id := env.enter(t)
	env.toConfirmStep(t, id)
	before := env.snapshot(t, id)

	snap, err := env.svc.Confirm(context.Background(), id, "")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.True(t, snap.State.SignInRequired)
	assert.Zero(t, env.avail.callCount(), "availability gate never entered")
	assert.Zero(t, env.gateway.callCount())

	// The draft is byte-for-byte what it was before the attempt.
	after := env.snapshot(t, id)
	require.NotNil(t, after.Draft)
	assert.Equal(t, *before.Draft, *after.Draft)

	// There is no auto-resume: the user signs in and confirms again.
	env.auth.allow("user-1")
	_, err = env.svc.Confirm(context.Background(), id, "tok")
	require.NoError(t, err)

	snap = env.waitPhase(t, id, models.PhaseSucceeded)
	assert.False(t, snap.State.SignInRequired)
	assert.Equal(t, 1, env.ledger.count())
}

func TestOverbookingBlocksWithoutCharge(t *testing.T) {
	env := newFlowEnv()
	env.avail.available = false
	id := env.enter(t)
	env.toConfirmStep(t, id)

	_, err := env.svc.Confirm(context.Background(), id, "tok")
	require.NoError(t, err)

	snap := env.waitPhase(t, id, models.PhaseOverbookingBlocked)
	assert.True(t, snap.State.OverbookingDetected)
	assert.False(t, snap.ChargeMade)
	assert.NotNil(t, snap.Draft)
	assert.Zero(t, env.gateway.callCount())
	assert.Zero(t, env.ledger.count())
}

func TestOverbookingAdjustTimeRecovery(t *testing.T) {
	env := newFlowEnv()
	env.avail.available = false
	id := env.enter(t)
	env.toConfirmStep(t, id)

	_, err := env.svc.Confirm(context.Background(), id, "tok")
	require.NoError(t, err)
	env.waitPhase(t, id, models.PhaseOverbookingBlocked)

	// Adjust time: back to review, pick a different slot at the same venue.
	_, err = env.svc.Back(id)
	require.NoError(t, err)
	_, err = env.svc.Back(id)
	require.NoError(t, err)
	snap, err := env.svc.EditSchedule(id, "2026-09-12", 16*60, 2)
	require.NoError(t, err)
	assert.False(t, snap.State.OverbookingDetected)
	assert.Equal(t, "venue-1", snap.Draft.VenueID, "venue identity survives recovery")

	env.avail.available = true
	env.toConfirmStep(t, id)
	_, err = env.svc.Confirm(context.Background(), id, "tok")
	require.NoError(t, err)

	env.waitPhase(t, id, models.PhaseSucceeded)
	assert.Equal(t, 2, env.avail.callCount())
	assert.Equal(t, 1, env.ledger.count())
	assert.Equal(t, 16*60, env.ledger.last().StartMinute)
}

func TestOverbookingAlternativesQuery(t *testing.T) {
	env := newFlowEnv()
	env.avail.available = false
	env.search.venues = []models.Venue{{ID: "venue-2", Name: "Quayside Loft"}}
	id := env.enter(t)
	env.toConfirmStep(t, id)

	_, err := env.svc.Confirm(context.Background(), id, "tok")
	require.NoError(t, err)
	env.waitPhase(t, id, models.PhaseOverbookingBlocked)

	alts, err := env.svc.Alternatives(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, alts, 1)
	assert.Equal(t, "venue-2", alts[0].ID)
	assert.Equal(t, "Dockside", env.search.lastQ.Location)
	assert.Equal(t, "2026-09-12", env.search.lastQ.Date)
	assert.Equal(t, "hall", env.search.lastQ.VenueType)

	// Viewing alternatives does not discard the draft.
	assert.NotNil(t, env.snapshot(t, id).Draft)
}

func TestPaymentTimeoutThenFreshRetry(t *testing.T) {
	env := newFlowEnv()
	env.gateway.delay = time.Second // well past the deadline
	id := env.enter(t)
	env.toConfirmStep(t, id)

	_, err := env.svc.Confirm(context.Background(), id, "tok")
	require.NoError(t, err)

	snap := env.waitPhase(t, id, models.PhaseFailed)
	require.NotNil(t, snap.Attempt)
	assert.Equal(t, models.AttemptTimedOut, snap.Attempt.Status)
	assert.Contains(t, snap.State.PaymentError, "no charge was made")
	assert.False(t, snap.ChargeMade)
	assert.NotNil(t, snap.Draft)
	assert.Zero(t, env.ledger.count())

	// Retry is a full re-entry: the availability gate runs again.
	env.gateway.mu.Lock()
	env.gateway.delay = 0
	env.gateway.mu.Unlock()
	_, err = env.svc.Confirm(context.Background(), id, "tok")
	require.NoError(t, err)

	env.waitPhase(t, id, models.PhaseSucceeded)
	assert.Equal(t, 2, env.avail.callCount())
	assert.Equal(t, 1, env.ledger.count())
}

func TestPaymentDeclinedThenNewMethod(t *testing.T) {
	env := newFlowEnv()
	env.gateway.err = &DeclinedError{Reason: "card_declined"}
	id := env.enter(t)
	env.toConfirmStep(t, id)

	_, err := env.svc.SelectPaymentMethod(id, "pm_old")
	require.NoError(t, err)
	_, err = env.svc.Confirm(context.Background(), id, "tok")
	require.NoError(t, err)

	snap := env.waitPhase(t, id, models.PhaseFailed)
	require.NotNil(t, snap.Attempt)
	assert.Equal(t, models.AttemptFailed, snap.Attempt.Status)
	assert.Contains(t, snap.Attempt.FailureReason, "card_declined")
	assert.False(t, snap.ChargeMade)
	assert.NotNil(t, snap.Draft)

	env.gateway.mu.Lock()
	env.gateway.err = nil
	env.gateway.mu.Unlock()
	_, err = env.svc.SelectPaymentMethod(id, "pm_new")
	require.NoError(t, err)
	_, err = env.svc.Confirm(context.Background(), id, "tok")
	require.NoError(t, err)

	env.waitPhase(t, id, models.PhaseSucceeded)
	assert.Equal(t, "pm_new", env.gateway.lastRequest().Method)
	assert.Equal(t, 1, env.ledger.count())
}

func TestDriftDuringPaymentIsQueued(t *testing.T) {
	env := newFlowEnv()
	env.gateway.delay = 60 * time.Millisecond
	env.gateway.err = &DeclinedError{Reason: "card_declined"}
	id := env.enter(t)
	env.toConfirmStep(t, id)

	_, err := env.svc.Confirm(context.Background(), id, "tok")
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		snap, gerr := env.svc.Get(id)
		return gerr == nil && snap.State.IsProcessingPayment
	}, 2*time.Second, time.Millisecond)

	// The price moves while the attempt is in flight; the attempt must not
	// be interrupted.
	env.quotes.setRate(140)
	snap := env.snapshot(t, id)
	assert.False(t, snap.Quote.PendingDrift)
	assert.Equal(t, 100.0, snap.Quote.Current.Amount)

	snap = env.waitPhase(t, id, models.PhaseFailed)
	waitDrift(t, env, id, true)
	snap = env.snapshot(t, id)
	assert.Equal(t, 140.0, snap.Quote.Current.Amount)
	assert.Equal(t, 100.0, snap.Quote.Original.Amount)
}

func TestBackFromConfirmCancelsAttempt(t *testing.T) {
	env := newFlowEnv()
	env.gateway.delay = 300 * time.Millisecond
	id := env.enter(t)
	env.toConfirmStep(t, id)

	_, err := env.svc.Confirm(context.Background(), id, "tok")
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		snap, gerr := env.svc.Get(id)
		return gerr == nil && snap.State.IsProcessingPayment
	}, 2*time.Second, time.Millisecond)

	snap, err := env.svc.Back(id)
	require.NoError(t, err)
	assert.Equal(t, models.StepPayment, snap.State.Step)
	assert.False(t, snap.State.IsProcessingPayment)
	assert.Nil(t, snap.Attempt)

	// The cancelled attempt never resolves: no ledger write, no late
	// failure state.
	time.Sleep(400 * time.Millisecond)
	snap = env.snapshot(t, id)
	assert.Zero(t, env.ledger.count())
	assert.Equal(t, models.PhaseIdle, snap.State.Phase)
	assert.False(t, snap.ChargeMade)
}

func TestAvailabilityErrorPreservesDraft(t *testing.T) {
	env := newFlowEnv()
	env.avail.err = assert.AnError
	id := env.enter(t)
	env.toConfirmStep(t, id)

	_, err := env.svc.Confirm(context.Background(), id, "tok")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		snap, gerr := env.svc.Get(id)
		return gerr == nil && snap.State.PaymentError != ""
	}, 2*time.Second, 5*time.Millisecond)

	snap := env.snapshot(t, id)
	assert.Equal(t, models.PhaseIdle, snap.State.Phase)
	assert.NotNil(t, snap.Draft)
	assert.Zero(t, env.gateway.callCount())
}

func TestLedgerFailureAfterCharge(t *testing.T) {
	env := newFlowEnv()
	env.ledger.err = assert.AnError
	id := env.enter(t)
	env.toConfirmStep(t, id)

	_, err := env.svc.Confirm(context.Background(), id, "tok")
	require.NoError(t, err)

	snap := env.waitPhase(t, id, models.PhaseFailed)
	require.NotNil(t, snap.Attempt)
	assert.Equal(t, models.AttemptFailed, snap.Attempt.Status)
	assert.Contains(t, snap.State.PaymentError, "could not be recorded")
	assert.False(t, snap.ChargeMade)
}
