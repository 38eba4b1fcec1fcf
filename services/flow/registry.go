package flow

import (
	"context"
	"sync"
	"time"

	"venuebook/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultFlowService keeps every live flow in memory, keyed by a generated
// flow id. A flow exists from entry until success, explicit cancel, or the
// idle sweep.
type DefaultFlowService struct {
	mu    sync.Mutex
	flows map[string]*Flow
	deps  Collaborators
	opts  Options
	log   *zap.Logger
}

func NewFlowService(deps Collaborators, opts Options, logger *zap.Logger) *DefaultFlowService {
	if opts.QuoteInterval <= 0 {
		opts.QuoteInterval = 5 * time.Second
	}
	if opts.PaymentDeadline <= 0 {
		opts.PaymentDeadline = 5 * time.Second
	}
	if opts.FlowTTL <= 0 {
		opts.FlowTTL = 30 * time.Minute
	}
	return &DefaultFlowService{
		flows: make(map[string]*Flow),
		deps:  deps,
		opts:  opts,
		log:   logger,
	}
}

// Enter creates a flow for the requested slot: resolves the venue, fixes
// the original quote, and parks the flow at the review step.
func (s *DefaultFlowService) Enter(ctx context.Context, venueID, date string, startMinute, durationHours int) (*models.FlowSnapshot, error) {
	if err := validateSlot(date, startMinute, durationHours); err != nil {
		return nil, err
	}
	venue, err := s.deps.Venues.GetByID(ctx, venueID)
	if err != nil {
		return nil, &FlowError{Code: "venueNotFound", Message: "venue not found"}
	}
	rate, err := s.deps.Quotes.GetQuote(ctx, venueID, durationHours)
	if err != nil {
		return nil, &FlowError{Code: "quoteUnavailable", Message: "could not fetch a price quote for this venue"}
	}

	f := &Flow{
		id:    uuid.New().String(),
		deps:  s.deps,
		opts:  s.opts,
		log:   s.log,
		draft: newDraft(venue, date, startMinute, durationHours),
		quote: models.PriceQuote{Original: rate, Current: rate},
		state: models.FlowState{Step: models.StepReview, Phase: models.PhaseIdle},
	}
	f.ctx, f.cancel = context.WithCancel(context.Background())
	f.lastTouch = time.Now()

	s.mu.Lock()
	s.flows[f.id] = f
	s.mu.Unlock()

	s.log.Info("booking flow entered",
		zap.String("flowID", f.id),
		zap.String("venueID", venueID),
		zap.String("date", date),
		zap.String("rate", rate.String()),
	)
	return f.Snapshot(), nil
}

func (s *DefaultFlowService) lookup(flowID string) (*Flow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.flows[flowID]
	if !ok {
		return nil, ErrFlowNotFound
	}
	return f, nil
}

func (s *DefaultFlowService) Get(flowID string) (*models.FlowSnapshot, error) {
	f, err := s.lookup(flowID)
	if err != nil {
		return nil, err
	}
	return f.Snapshot(), nil
}

func (s *DefaultFlowService) Next(flowID string) (*models.FlowSnapshot, error) {
	f, err := s.lookup(flowID)
	if err != nil {
		return nil, err
	}
	return f.Next()
}

func (s *DefaultFlowService) Back(flowID string) (*models.FlowSnapshot, error) {
	f, err := s.lookup(flowID)
	if err != nil {
		return nil, err
	}
	return f.Back()
}

func (s *DefaultFlowService) EditSchedule(flowID, date string, startMinute, durationHours int) (*models.FlowSnapshot, error) {
	f, err := s.lookup(flowID)
	if err != nil {
		return nil, err
	}
	return f.EditSchedule(date, startMinute, durationHours)
}

func (s *DefaultFlowService) SelectPaymentMethod(flowID, method string) (*models.FlowSnapshot, error) {
	f, err := s.lookup(flowID)
	if err != nil {
		return nil, err
	}
	return f.SelectPaymentMethod(method)
}

func (s *DefaultFlowService) AcceptPriceChange(flowID string) (*models.FlowSnapshot, error) {
	f, err := s.lookup(flowID)
	if err != nil {
		return nil, err
	}
	return f.AcceptPriceChange()
}

func (s *DefaultFlowService) RejectPriceChange(flowID string) (*models.FlowSnapshot, error) {
	f, err := s.lookup(flowID)
	if err != nil {
		return nil, err
	}
	return f.RejectPriceChange()
}

func (s *DefaultFlowService) Confirm(ctx context.Context, flowID, authToken string) (*models.FlowSnapshot, error) {
	f, err := s.lookup(flowID)
	if err != nil {
		return nil, err
	}
	return f.Confirm(ctx, authToken)
}

func (s *DefaultFlowService) Alternatives(ctx context.Context, flowID string) ([]models.Venue, error) {
	f, err := s.lookup(flowID)
	if err != nil {
		return nil, err
	}
	q, err := f.AlternativesQuery()
	if err != nil {
		return nil, err
	}
	return s.deps.Search.FindAlternatives(ctx, q)
}

// Cancel tears the flow down and forgets it. Explicit cancel is the only
// non-success path that discards the draft.
func (s *DefaultFlowService) Cancel(flowID string) error {
	s.mu.Lock()
	f, ok := s.flows[flowID]
	if ok {
		delete(s.flows, flowID)
	}
	s.mu.Unlock()
	if !ok {
		return ErrFlowNotFound
	}
	f.Teardown()
	s.log.Info("booking flow cancelled", zap.String("flowID", flowID))
	return nil
}

// StartSweeper evicts flows idle for longer than the configured TTL.
// Succeeded flows linger until swept so the caller can still read the
// confirmation snapshot.
func (s *DefaultFlowService) StartSweeper(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *DefaultFlowService) sweep() {
	cutoff := time.Now().Add(-s.opts.FlowTTL)
	var stale []*Flow

	s.mu.Lock()
	for id, f := range s.flows {
		f.mu.Lock()
		idle := f.lastTouch.Before(cutoff)
		f.mu.Unlock()
		if idle {
			delete(s.flows, id)
			stale = append(stale, f)
		}
	}
	s.mu.Unlock()

	for _, f := range stale {
		f.Teardown()
		s.log.Info("swept idle booking flow", zap.String("flowID", f.id))
	}
}
