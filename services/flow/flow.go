package flow

import (
	"context"
	"sync"
	"time"

	"venuebook/models"

	"go.uber.org/zap"
)

const availabilityCallTimeout = 10 * time.Second

// Flow owns one booking attempt from entry to a terminal state. All state
// is guarded by mu; the price watcher and the confirm chain run on their
// own goroutines but never touch flow state without the lock, so no two
// pieces of flow logic ever run at once.
type Flow struct {
	mu   sync.Mutex
	id   string
	deps Collaborators
	opts Options
	log  *zap.Logger

	// ctx lives as long as the flow; teardown cancels it and with it every
	// outstanding timer and collaborator call.
	ctx    context.Context
	cancel context.CancelFunc

	draft   *models.BookingDraft // nil once the flow is terminal
	quote   models.PriceQuote
	state   models.FlowState
	attempt *models.PaymentAttempt
	userID  string

	// paymentMethod is whatever the payment step collected, passed through
	// to the gateway verbatim. Changing it is the "change payment method"
	// recovery after a declined attempt.
	paymentMethod string

	// attemptCtx spans one confirm chain (availability check + payment
	// attempt). Backward navigation and teardown cancel it, which kills the
	// deadline timer and discards whatever was still pending.
	attemptCtx    context.Context
	attemptCancel context.CancelFunc

	// A re-quote that arrived while a payment attempt was in flight. It is
	// never allowed to alter the running attempt; it is applied when the
	// attempt resolves.
	pendingRequote *models.Money

	watcher *priceWatcher

	bookingID  string
	chargeMade bool
	lastTouch  time.Time
}

func (f *Flow) snapshotLocked() *models.FlowSnapshot {
	snap := &models.FlowSnapshot{
		FlowID:     f.id,
		State:      f.state,
		Quote:      f.quote,
		BookingID:  f.bookingID,
		ChargeMade: f.chargeMade,
	}
	if f.draft != nil {
		d := *f.draft
		snap.Draft = &d
		snap.Subtotal = f.quote.Subtotal(d.DurationHours)
	}
	if f.attempt != nil {
		a := *f.attempt
		snap.Attempt = &a
	}
	return snap
}

// Snapshot returns a read-only copy of the flow's current state.
func (f *Flow) Snapshot() *models.FlowSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked()
}

func (f *Flow) touchLocked() {
	f.lastTouch = time.Now()
}

// Next advances the step cursor. Review -> Payment starts the price
// watcher; Payment -> Confirm arms the confirm sub-state. The confirm
// action itself is Confirm, not a step transition.
func (f *Flow) Next() (*models.FlowSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.draft == nil {
		return nil, ErrNoActiveDraft
	}
	f.touchLocked()
	switch f.state.Step {
	case models.StepReview:
		f.state.Step = models.StepPayment
		f.startWatcherLocked()
	case models.StepPayment:
		f.state.Step = models.StepConfirm
		f.state.Phase = models.PhaseIdle
	default:
		return f.snapshotLocked(), ErrInvalidStep
	}
	return f.snapshotLocked(), nil
}

// Back moves one step backward. Always permitted; it clears any in-flight
// attempt state and, when leaving the watched steps, stops the price
// watcher without discarding its findings.
func (f *Flow) Back() (*models.FlowSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.draft == nil {
		return nil, ErrNoActiveDraft
	}
	f.touchLocked()
	switch f.state.Step {
	case models.StepConfirm:
		f.cancelAttemptLocked()
		f.state.Step = models.StepPayment
		f.state.Phase = models.PhaseIdle
		f.state.OverbookingDetected = false
		f.state.PaymentError = ""
	case models.StepPayment:
		f.stopWatcherLocked()
		f.state.Step = models.StepReview
	default:
		return f.snapshotLocked(), ErrInvalidStep
	}
	return f.snapshotLocked(), nil
}

// SelectPaymentMethod records the payment instrument to charge. Permitted
// at the payment and confirm steps while no attempt is in flight.
func (f *Flow) SelectPaymentMethod(method string) (*models.FlowSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.draft == nil {
		return nil, ErrNoActiveDraft
	}
	f.touchLocked()
	if f.state.Step == models.StepReview {
		return f.snapshotLocked(), ErrInvalidStep
	}
	if f.state.IsCheckingAvailability || f.state.IsProcessingPayment {
		return f.snapshotLocked(), ErrConfirmInFlight
	}
	f.paymentMethod = method
	return f.snapshotLocked(), nil
}

// AcceptPriceChange promotes the drifted price to the new accepted
// baseline. A later identical re-quote raises no new drift.
func (f *Flow) AcceptPriceChange() (*models.FlowSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.draft == nil {
		return nil, ErrNoActiveDraft
	}
	f.touchLocked()
	if f.quote.PendingDrift {
		f.quote.Original = f.quote.Current
		f.quote.PendingDrift = false
	}
	return f.snapshotLocked(), nil
}

// RejectPriceChange reverts to the accepted baseline without promoting.
func (f *Flow) RejectPriceChange() (*models.FlowSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.draft == nil {
		return nil, ErrNoActiveDraft
	}
	f.touchLocked()
	if f.quote.PendingDrift {
		f.quote.Current = f.quote.Original
		f.quote.PendingDrift = false
	}
	return f.snapshotLocked(), nil
}

// Confirm is the guarded final action: authentication gate, then the
// one-shot availability check, then a single deadline-bounded payment
// attempt. The chain past the gate runs asynchronously; callers poll the
// snapshot for the outcome.
func (f *Flow) Confirm(ctx context.Context, authToken string) (*models.FlowSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.draft == nil {
		return nil, ErrNoActiveDraft
	}
	f.touchLocked()
	if f.state.Step != models.StepConfirm {
		return f.snapshotLocked(), ErrInvalidStep
	}
	// Non-reentrant: a second click while a check or charge is outstanding
	// does nothing.
	if f.state.IsCheckingAvailability || f.state.IsProcessingPayment {
		return f.snapshotLocked(), ErrConfirmInFlight
	}
	if f.quote.PendingDrift {
		return f.snapshotLocked(), ErrPriceDriftPending
	}

	// Authentication gate. On failure nothing else happens: the availability
	// service is never called and the draft is untouched. The caller must
	// re-invoke Confirm after signing in.
	userID, ok := f.deps.Auth.IsAuthenticated(ctx, authToken)
	if !ok {
		f.state.SignInRequired = true
		return f.snapshotLocked(), ErrNotAuthenticated
	}
	f.state.SignInRequired = false
	f.userID = userID

	f.state.IsCheckingAvailability = true
	f.state.Phase = models.PhaseCheckingAvailability
	f.state.OverbookingDetected = false
	f.state.PaymentError = ""
	f.attempt = nil
	f.attemptCtx, f.attemptCancel = context.WithCancel(f.ctx)

	go f.runConfirmChain(f.attemptCtx)
	return f.snapshotLocked(), nil
}

// runConfirmChain performs the availability gate and, if the slot is still
// free, hands off to the payment executor. There is deliberately no hold or
// lock between the check and the charge; the slot can still be lost in that
// window and the charge-side conflict is surfaced as a payment failure.
func (f *Flow) runConfirmChain(ctx context.Context) {
	f.mu.Lock()
	if f.draft == nil || ctx.Err() != nil {
		f.state.IsCheckingAvailability = false
		f.mu.Unlock()
		return
	}
	d := *f.draft
	f.mu.Unlock()

	checkCtx, cancel := context.WithTimeout(ctx, availabilityCallTimeout)
	available, err := f.deps.Availability.CheckAvailability(checkCtx, d.VenueID, d.Date, d.StartMinute, d.DurationHours)
	cancel()

	f.mu.Lock()
	f.state.IsCheckingAvailability = false
	if f.draft == nil || ctx.Err() != nil {
		// Torn down or navigated away mid-check; the result is discarded.
		f.mu.Unlock()
		return
	}
	if err != nil {
		f.log.Error("availability check failed", zap.String("flowID", f.id), zap.Error(err))
		f.state.Phase = models.PhaseIdle
		f.state.PaymentError = "availability check failed; no charge was made and your draft is preserved"
		f.mu.Unlock()
		return
	}
	if !available {
		f.state.OverbookingDetected = true
		f.state.Phase = models.PhaseOverbookingBlocked
		f.mu.Unlock()
		return
	}
	// A drift notification may have landed while the check was outstanding;
	// payment must not start against an unaccepted price.
	if f.quote.PendingDrift {
		f.state.Phase = models.PhaseIdle
		f.mu.Unlock()
		return
	}

	req := f.buildChargeRequestLocked(d)
	now := time.Now()
	f.attempt = &models.PaymentAttempt{
		Status:    models.AttemptPending,
		StartedAt: now,
		Deadline:  now.Add(f.opts.PaymentDeadline),
	}
	f.state.IsProcessingPayment = true
	f.state.Phase = models.PhaseProcessing
	f.mu.Unlock()

	f.executePayment(ctx, req)
}

// AlternativesQuery exposes what the search collaborator needs after an
// overbooking block. The draft itself is left intact.
func (f *Flow) AlternativesQuery() (models.SearchQuery, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.draft == nil {
		return models.SearchQuery{}, ErrNoActiveDraft
	}
	f.touchLocked()
	return models.SearchQuery{
		Location:  f.draft.Location,
		Date:      f.draft.Date,
		VenueType: f.draft.VenueType,
	}, nil
}

func (f *Flow) cancelAttemptLocked() {
	if f.attemptCancel != nil {
		f.attemptCancel()
		f.attemptCancel = nil
	}
	f.attempt = nil
	f.state.IsCheckingAvailability = false
	f.state.IsProcessingPayment = false
}

// Teardown cancels every outstanding timer and collaborator call and
// discards the draft. Nothing owned by the flow fires afterwards.
func (f *Flow) Teardown() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelAttemptLocked()
	f.stopWatcherLocked()
	f.draft = nil
	f.pendingRequote = nil
	f.cancel()
}
