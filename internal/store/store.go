// Package store provides the append-only action journal.
//
// The journal is an audit trail. Nothing in it is ever read back into
// engine state: a new session always starts from the initial state.
package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Journal records sessions, dispatched actions and net-worth snapshots.
type Journal interface {
	StartSession(ctx context.Context, rec SessionRecord) error
	RecordAction(ctx context.Context, rec ActionRecord) error
	RecordSnapshot(ctx context.Context, rec NetWorthRecord) error

	ListSessions(ctx context.Context, limit int) ([]SessionRecord, error)
	ListActions(ctx context.Context, filter ActionFilter) ([]ActionRecord, error)
	ListSnapshots(ctx context.Context, sessionID string, limit int) ([]NetWorthRecord, error)

	Close() error
}

// SessionRecord identifies one run of the game.
type SessionRecord struct {
	ID        string    `json:"id"`
	Seed      int64     `json:"seed"`
	StartedAt time.Time `json:"started_at"`
}

// ActionRecord is one dispatched action, accepted or rejected.
type ActionRecord struct {
	ID        string          `json:"id"`
	SessionID string          `json:"session_id"`
	Kind      string          `json:"kind"`
	Payload   string          `json:"payload"` // JSON encoded action
	Accepted  bool            `json:"accepted"`
	Reason    string          `json:"reason,omitempty"`
	Version   uint64          `json:"version"`
	Primary   decimal.Decimal `json:"primary"`
	Premium   decimal.Decimal `json:"premium"`
	CreatedAt time.Time       `json:"created_at"`
}

// NetWorthRecord is a valuation of the session state after an accepted action.
type NetWorthRecord struct {
	SessionID string          `json:"session_id"`
	Version   uint64          `json:"version"`
	Primary   decimal.Decimal `json:"primary"`
	Premium   decimal.Decimal `json:"premium"`
	Portfolio decimal.Decimal `json:"portfolio"`
	NetWorth  decimal.Decimal `json:"net_worth"`
	CreatedAt time.Time       `json:"created_at"`
}

// ActionFilter narrows ListActions. Zero values match everything.
type ActionFilter struct {
	SessionID    string
	Kind         string
	AcceptedOnly bool
	Limit        int
}

func (f ActionFilter) matches(rec ActionRecord) bool {
	if f.SessionID != "" && rec.SessionID != f.SessionID {
		return false
	}
	if f.Kind != "" && rec.Kind != f.Kind {
		return false
	}
	if f.AcceptedOnly && !rec.Accepted {
		return false
	}
	return true
}
