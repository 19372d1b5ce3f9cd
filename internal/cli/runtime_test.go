package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"luxury-tycoon/internal/config"
	"luxury-tycoon/internal/economy"
	"luxury-tycoon/internal/store"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRuntimeAnnouncesUnlocks(t *testing.T) {
	var logs syncBuffer
	cfg := config.Default(t.TempDir())

	rt, err := NewRuntime(context.Background(), cfg, zerolog.New(&logs),
		RuntimeOptions{Seed: 3, Journal: store.NewMemoryJournal()})
	require.NoError(t, err)
	defer func() { _ = rt.Close(context.Background()) }()

	state := rt.Session.State()
	already := len(economy.UnlockedIDs(state))
	require.Less(t, already, len(state.Items))

	res := rt.Session.Dispatch(context.Background(), economy.AddPrimary{Amount: decimal.NewFromInt(100_000_000)})
	require.True(t, res.Accepted, res.Reason)

	want := len(state.Items) - already
	assert.Eventually(t, func() bool {
		return strings.Count(logs.String(), "Item unlocked") == want
	}, 2*time.Second, 10*time.Millisecond, logs.String())
	assert.Contains(t, logs.String(), `"component":"unlocks"`)
	assert.Contains(t, logs.String(), `"session":"`+rt.Session.ID()+`"`)

	// Ticks leave the unlock set alone.
	rt.Session.Dispatch(context.Background(), economy.Tick{})
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, want, strings.Count(logs.String(), "Item unlocked"))
}
