package store

import (
	"bytes"
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJournals(t *testing.T) map[string]Journal {
	t.Helper()

	j, err := NewSQLiteJournal(filepath.Join(t.TempDir(), "nested", "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	return map[string]Journal{
		"sqlite": j,
		"memory": NewMemoryJournal(),
	}
}

func TestSQLiteSchemaCreated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := NewSQLiteJournal(path)
	require.NoError(t, err)
	require.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table' AND name IN ('sessions','actions','net_worth')`)
	require.NoError(t, err)
	defer rows.Close()

	found := map[string]bool{}
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		found[name] = true
	}
	require.NoError(t, rows.Err())

	assert.True(t, found["sessions"])
	assert.True(t, found["actions"])
	assert.True(t, found["net_worth"])
}

func TestJournals(t *testing.T) {
	for name, j := range newTestJournals(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			t0 := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

			require.NoError(t, j.StartSession(ctx, SessionRecord{ID: "s1", Seed: 1, StartedAt: t0}))
			require.NoError(t, j.StartSession(ctx, SessionRecord{ID: "s2", Seed: 2, StartedAt: t0.Add(time.Hour)}))

			sessions, err := j.ListSessions(ctx, 0)
			require.NoError(t, err)
			require.Len(t, sessions, 2)
			assert.Equal(t, "s2", sessions[0].ID, "newest first")
			assert.Equal(t, int64(1), sessions[1].Seed)

			records := []ActionRecord{
				{SessionID: "s1", Kind: "buy", Payload: `{}`, Accepted: true, Version: 1, Primary: decimal.NewFromInt(9000), Premium: decimal.NewFromInt(25), CreatedAt: t0},
				{SessionID: "s1", Kind: "sell", Payload: `{}`, Accepted: false, Reason: "insufficient shares", Version: 1, Primary: decimal.NewFromInt(9000), Premium: decimal.NewFromInt(25), CreatedAt: t0.Add(time.Second)},
				{SessionID: "s2", Kind: "tick", Payload: `{}`, Accepted: true, Version: 1, Primary: decimal.NewFromInt(10000), Premium: decimal.NewFromInt(25), CreatedAt: t0.Add(2 * time.Second)},
				{SessionID: "s1", Kind: "sell", Payload: `{}`, Accepted: true, Version: 2, Primary: decimal.RequireFromString("10011.00"), Premium: decimal.NewFromInt(25), CreatedAt: t0.Add(3 * time.Second)},
			}
			for _, rec := range records {
				require.NoError(t, j.RecordAction(ctx, rec))
			}

			all, err := j.ListActions(ctx, ActionFilter{SessionID: "s1"})
			require.NoError(t, err)
			require.Len(t, all, 3)
			assert.Equal(t, "buy", all[0].Kind)
			assert.Equal(t, "insufficient shares", all[1].Reason)
			assert.True(t, all[2].Primary.Equal(decimal.NewFromInt(10011)))
			assert.NotEmpty(t, all[0].ID)

			sells, err := j.ListActions(ctx, ActionFilter{SessionID: "s1", Kind: "sell", AcceptedOnly: true})
			require.NoError(t, err)
			require.Len(t, sells, 1)
			assert.Equal(t, uint64(2), sells[0].Version)

			last, err := j.ListActions(ctx, ActionFilter{Limit: 2})
			require.NoError(t, err)
			require.Len(t, last, 2)
			assert.Equal(t, "tick", last[0].Kind)
			assert.Equal(t, "sell", last[1].Kind)

			for v := uint64(1); v <= 3; v++ {
				require.NoError(t, j.RecordSnapshot(ctx, NetWorthRecord{
					SessionID: "s1",
					Version:   v,
					Primary:   decimal.NewFromInt(9000),
					Premium:   decimal.NewFromInt(25),
					Portfolio: decimal.NewFromInt(int64(1000 + v)),
					NetWorth:  decimal.NewFromInt(int64(10000 + v)),
					CreatedAt: t0.Add(time.Duration(v) * time.Second),
				}))
			}

			snaps, err := j.ListSnapshots(ctx, "s1", 2)
			require.NoError(t, err)
			require.Len(t, snaps, 2)
			assert.Equal(t, uint64(2), snaps[0].Version)
			assert.Equal(t, uint64(3), snaps[1].Version)
			assert.True(t, snaps[1].NetWorth.Equal(decimal.NewFromInt(10003)))

			none, err := j.ListSnapshots(ctx, "missing", 0)
			require.NoError(t, err)
			assert.Empty(t, none)
		})
	}
}

func TestWriteActionsCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteActionsCSV(&buf, []ActionRecord{{
		SessionID: "s1",
		Kind:      "buy",
		Accepted:  true,
		Version:   1,
		Primary:   decimal.NewFromInt(9000),
		Premium:   decimal.NewFromInt(25),
		Payload:   `{"shares":10}`,
		CreatedAt: time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC),
	}})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "time,session,version,action,accepted,reason,primary,premium,payload", lines[0])
	assert.Contains(t, lines[1], "2026-10-15T09:00:00Z,s1,1,buy,true,,9000.00,25.00,")
}

func TestWriteSnapshotsCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteSnapshotsCSV(&buf, []NetWorthRecord{{
		SessionID: "s1",
		Version:   4,
		Primary:   decimal.NewFromInt(9000),
		Premium:   decimal.Zero,
		Portfolio: decimal.RequireFromString("1011"),
		NetWorth:  decimal.RequireFromString("10011"),
		CreatedAt: time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC),
	}})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "time,session,version,primary,premium,portfolio,net_worth", lines[0])
	assert.Equal(t, "2026-10-15T09:00:00Z,s1,4,9000.00,0.00,1011.00,10011.00", lines[1])
}
