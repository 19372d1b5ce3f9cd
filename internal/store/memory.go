package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryJournal keeps the journal in process memory. It is used when the
// SQLite journal is disabled and by tests.
type MemoryJournal struct {
	mu        sync.RWMutex
	sessions  []SessionRecord
	actions   []ActionRecord
	snapshots []NetWorthRecord
}

// NewMemoryJournal creates an empty in-memory journal.
func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{}
}

// StartSession implements Journal.
func (m *MemoryJournal) StartSession(_ context.Context, rec SessionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = append(m.sessions, rec)
	return nil
}

// RecordAction implements Journal.
func (m *MemoryJournal) RecordAction(_ context.Context, rec ActionRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actions = append(m.actions, rec)
	return nil
}

// RecordSnapshot implements Journal.
func (m *MemoryJournal) RecordSnapshot(_ context.Context, rec NetWorthRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots = append(m.snapshots, rec)
	return nil
}

// ListSessions implements Journal.
func (m *MemoryJournal) ListSessions(_ context.Context, limit int) ([]SessionRecord, error) {
	m.mu.RLock()
	out := append([]SessionRecord(nil), m.sessions...)
	m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ListActions implements Journal.
func (m *MemoryJournal) ListActions(_ context.Context, filter ActionFilter) ([]ActionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []ActionRecord
	for _, rec := range m.actions {
		if filter.matches(rec) {
			out = append(out, rec)
		}
	}
	return tail(out, filter.Limit), nil
}

// ListSnapshots implements Journal.
func (m *MemoryJournal) ListSnapshots(_ context.Context, sessionID string, limit int) ([]NetWorthRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []NetWorthRecord
	for _, rec := range m.snapshots {
		if rec.SessionID == sessionID {
			out = append(out, rec)
		}
	}
	return tail(out, limit), nil
}

// Close implements Journal.
func (m *MemoryJournal) Close() error {
	return nil
}

// tail returns the last n elements of s, or all of s when n <= 0.
func tail[T any](s []T, n int) []T {
	if n > 0 && len(s) > n {
		return s[len(s)-n:]
	}
	return s
}
