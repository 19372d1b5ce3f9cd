package cli

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"luxury-tycoon/internal/economy"
	"luxury-tycoon/internal/errors"
	"luxury-tycoon/internal/session"
)

func newSimSession(t *testing.T, seed int64) *session.Session {
	t.Helper()
	eng, err := economy.NewDefault()
	require.NoError(t, err)
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	sess, err := session.New(context.Background(), session.Options{
		Engine: eng,
		Seed:   seed,
		Logger: zerolog.Nop(),
		Clock:  func() time.Time { return now },
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sess.Close(context.Background()) })
	return sess
}

func TestRunSimulationValidates(t *testing.T) {
	sess := newSimSession(t, 1)
	tests := []SimOptions{
		{Ticks: 0, Strategy: StrategyIdle},
		{Ticks: -3, Strategy: StrategyHold},
		{Ticks: 10, Strategy: "martingale"},
	}
	for _, opts := range tests {
		_, err := RunSimulation(context.Background(), sess, opts)
		assert.True(t, errors.Is(err, errors.ErrConfigInvalid), "%+v", opts)
	}
	assert.Zero(t, sess.State().Version)
}

func TestRunSimulationSameSeedSameOutcome(t *testing.T) {
	opts := SimOptions{Ticks: 60, Strategy: StrategyMomentum, Daily: true, Collect: true}

	a, err := RunSimulation(context.Background(), newSimSession(t, 99), opts)
	require.NoError(t, err)
	b, err := RunSimulation(context.Background(), newSimSession(t, 99), opts)
	require.NoError(t, err)

	assert.True(t, a.NetWorth.Equal(b.NetWorth))
	assert.Equal(t, a.Actions, b.Actions)
	assert.Equal(t, a.Owned, b.Owned)
	assert.NotEqual(t, a.Session, b.Session)
}

func TestRunSimulationIdleCollect(t *testing.T) {
	sess := newSimSession(t, 5)
	summary, err := RunSimulation(context.Background(), sess, SimOptions{
		Ticks: 3, Strategy: StrategyIdle, Collect: true,
	})
	require.NoError(t, err)

	// 10000 buys the watch, the coupe stays out of reach.
	assert.Equal(t, []string{"vintage-watch"}, summary.Owned)
	assert.Empty(t, summary.Holdings)
	assert.Equal(t, "5000", summary.Primary.String())
	assert.Equal(t, "10000", summary.NetWorth.String())
	assert.True(t, summary.Change.IsZero())
	assert.Equal(t, 4, summary.Actions)
	assert.Equal(t, uint64(4), sess.State().Version)
}

func TestRunSimulationHold(t *testing.T) {
	sess := newSimSession(t, 3)
	summary, err := RunSimulation(context.Background(), sess, SimOptions{
		Ticks: 10, Strategy: StrategyHold,
	})
	require.NoError(t, err)

	require.Len(t, summary.Holdings, 8)
	for i := 1; i < len(summary.Holdings); i++ {
		assert.Less(t, summary.Holdings[i-1].InstrumentID, summary.Holdings[i].InstrumentID)
	}
	assert.Zero(t, summary.Rejected)
	assert.True(t, summary.Primary.LessThan(summary.StartNetWorth))
	assert.True(t, summary.NetWorth.Equal(summary.Primary.Add(summary.Portfolio)))
}

func TestRunSimulationDaily(t *testing.T) {
	sess := newSimSession(t, 11)
	summary, err := RunSimulation(context.Background(), sess, SimOptions{
		Ticks: 1, Strategy: StrategyIdle, Daily: true,
	})
	require.NoError(t, err)

	state := sess.State()
	assert.True(t, state.Flags.DailyRewardClaimed)
	assert.True(t, state.Flags.DailySpinUsed)
	assert.Equal(t, 3, summary.Actions)
	assert.True(t, summary.Primary.GreaterThanOrEqual(summary.StartNetWorth.Add(economy.DefaultRules().DailyReward)))
}

func TestRunSimulationStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := RunSimulation(ctx, newSimSession(t, 2), SimOptions{Ticks: 5, Strategy: StrategyIdle})
	assert.ErrorIs(t, err, context.Canceled)
}
