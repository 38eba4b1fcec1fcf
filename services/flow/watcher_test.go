package flow

import (
	"testing"
	"time"

	"venuebook/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitDrift(t *testing.T, env *flowEnv, flowID string, pending bool) *models.FlowSnapshot {
	t.Helper()
	require.Eventually(t, func() bool {
		snap, err := env.svc.Get(flowID)
		return err == nil && snap.Quote.PendingDrift == pending
	}, 2*time.Second, 5*time.Millisecond)
	return env.snapshot(t, flowID)
}

func TestIdenticalRequoteRaisesNoDrift(t *testing.T) {
	env := newFlowEnv()
	id := env.enter(t)

	_, err := env.svc.Next(id)
	require.NoError(t, err)

	// Let several watcher ticks land with the price unchanged.
	require.Eventually(t, func() bool {
		return env.quotes.callCount() >= 4
	}, 2*time.Second, 5*time.Millisecond)

	snap := env.snapshot(t, id)
	assert.False(t, snap.Quote.PendingDrift)
	assert.Equal(t, 100.0, snap.Quote.Current.Amount)
	assert.Equal(t, 100.0, snap.Quote.Original.Amount)
}

func TestDriftDetectedOnRequote(t *testing.T) {
	env := newFlowEnv()
	id := env.enter(t)

	_, err := env.svc.Next(id)
	require.NoError(t, err)

	env.quotes.setRate(110)
	snap := waitDrift(t, env, id, true)
	assert.Equal(t, 100.0, snap.Quote.Original.Amount)
	assert.Equal(t, 110.0, snap.Quote.Current.Amount)
	assert.False(t, snap.Quote.Accepted())
}

func TestAcceptPromotesBaseline(t *testing.T) {
	env := newFlowEnv()
	id := env.enter(t)

	_, err := env.svc.Next(id)
	require.NoError(t, err)

	env.quotes.setRate(110)
	waitDrift(t, env, id, true)

	snap, err := env.svc.AcceptPriceChange(id)
	require.NoError(t, err)
	assert.Equal(t, 110.0, snap.Quote.Original.Amount)
	assert.Equal(t, 110.0, snap.Quote.Current.Amount)
	assert.True(t, snap.Quote.Accepted())
	assert.Equal(t, 220.0, snap.Subtotal.Amount)

	// The price holds steady at the new baseline; further ticks raise
	// nothing.
	before := env.quotes.callCount()
	require.Eventually(t, func() bool {
		return env.quotes.callCount() >= before+3
	}, 2*time.Second, 5*time.Millisecond)
	snap = env.snapshot(t, id)
	assert.False(t, snap.Quote.PendingDrift)
	assert.Equal(t, 110.0, snap.Quote.Original.Amount)
}

func TestRejectRevertsToBaseline(t *testing.T) {
	env := newFlowEnv()
	id := env.enter(t)

	_, err := env.svc.Next(id)
	require.NoError(t, err)

	env.quotes.setRate(110)
	waitDrift(t, env, id, true)
	env.quotes.setRate(100)

	snap, err := env.svc.RejectPriceChange(id)
	require.NoError(t, err)
	assert.Equal(t, 100.0, snap.Quote.Original.Amount)
	assert.Equal(t, 100.0, snap.Quote.Current.Amount)
	assert.True(t, snap.Quote.Accepted())
}

func TestDriftSurvivesBackwardNavigation(t *testing.T) {
	env := newFlowEnv()
	id := env.enter(t)

	_, err := env.svc.Next(id)
	require.NoError(t, err)

	env.quotes.setRate(125)
	waitDrift(t, env, id, true)

	snap, err := env.svc.Back(id)
	require.NoError(t, err)
	assert.Equal(t, models.StepReview, snap.State.Step)
	assert.True(t, snap.Quote.PendingDrift)
	assert.Equal(t, 125.0, snap.Quote.Current.Amount)
}

func TestWatcherStopsOnCancel(t *testing.T) {
	env := newFlowEnv()
	id := env.enter(t)

	_, err := env.svc.Next(id)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return env.quotes.callCount() >= 2
	}, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, env.svc.Cancel(id))

	settled := env.quotes.callCount()
	time.Sleep(80 * time.Millisecond)
	assert.LessOrEqual(t, env.quotes.callCount(), settled+1,
		"watcher kept ticking after cancel")
}

func TestWatcherStopsAtReviewAndRestarts(t *testing.T) {
	env := newFlowEnv()
	id := env.enter(t)

	_, err := env.svc.Next(id)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return env.quotes.callCount() >= 2
	}, 2*time.Second, 5*time.Millisecond)

	_, err = env.svc.Back(id)
	require.NoError(t, err)

	settled := env.quotes.callCount()
	time.Sleep(80 * time.Millisecond)
	assert.LessOrEqual(t, env.quotes.callCount(), settled+1,
		"watcher kept ticking at the review step")

	// Re-entering the payment step resumes polling.
	_, err = env.svc.Next(id)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return env.quotes.callCount() > settled+1
	}, 2*time.Second, 5*time.Millisecond)
}
