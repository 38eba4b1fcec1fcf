package flow

import (
	"context"
	"time"

	"venuebook/models"

	"go.uber.org/zap"
)

const quoteCallTimeout = 3 * time.Second

// priceWatcher periodically re-quotes the draft's venue while the flow sits
// in the payment or confirm step. It is started on entering step two and
// stopped on leaving the watched steps, on teardown and on any terminal
// state; a stopped watcher never ticks again.
type priceWatcher struct {
	flow *Flow
	stop chan struct{}
}

func (f *Flow) startWatcherLocked() {
	if f.watcher != nil {
		return
	}
	w := &priceWatcher{flow: f, stop: make(chan struct{})}
	f.watcher = w
	go w.run(f.opts.QuoteInterval)
}

// stopWatcherLocked halts ticking but keeps the watcher's findings: an
// unacknowledged drift survives backward navigation.
func (f *Flow) stopWatcherLocked() {
	if f.watcher == nil {
		return
	}
	close(f.watcher.stop)
	f.watcher = nil
}

func (w *priceWatcher) run(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-w.stop:
			return
		case <-w.flow.ctx.Done():
			return
		case <-ticker.C:
			w.requote()
		}
	}
}

func (w *priceWatcher) requote() {
	f := w.flow

	f.mu.Lock()
	if f.draft == nil || f.watcher != w {
		f.mu.Unlock()
		return
	}
	venueID := f.draft.VenueID
	hours := f.draft.DurationHours
	f.mu.Unlock()

	ctx, cancel := context.WithTimeout(f.ctx, quoteCallTimeout)
	fresh, err := f.deps.Quotes.GetQuote(ctx, venueID, hours)
	cancel()
	if err != nil {
		f.log.Debug("re-quote failed", zap.String("flowID", f.id), zap.Error(err))
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	// The watcher may have been replaced or stopped while the quote call was
	// in flight; a stale tick must not mutate the flow.
	if f.draft == nil || f.watcher != w {
		return
	}
	f.applyRequoteLocked(fresh)
}

func (f *Flow) applyRequoteLocked(fresh models.Money) {
	// Same value as currently displayed: no drift.
	if fresh.Equal(f.quote.Current) {
		return
	}
	// Never interrupt an in-flight payment attempt; queue the finding and
	// re-evaluate once the attempt resolves.
	if f.state.IsProcessingPayment {
		v := fresh
		f.pendingRequote = &v
		return
	}
	f.quote.Current = fresh
	f.quote.PendingDrift = true
	f.log.Info("price drift detected",
		zap.String("flowID", f.id),
		zap.String("original", f.quote.Original.String()),
		zap.String("current", fresh.String()),
	)
}

func (f *Flow) flushPendingRequoteLocked() {
	if f.pendingRequote == nil {
		return
	}
	fresh := *f.pendingRequote
	f.pendingRequote = nil
	if f.draft == nil {
		return
	}
	if !fresh.Equal(f.quote.Current) {
		f.quote.Current = fresh
		f.quote.PendingDrift = true
	}
}
