package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"luxury-tycoon/internal/errors"
)

// SQLiteJournal implements Journal using SQLite.
type SQLiteJournal struct {
	db *sql.DB
}

// NewSQLiteJournal opens or creates the journal database at dbPath.
func NewSQLiteJournal(dbPath string) (*SQLiteJournal, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.NewStoreError("open", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, errors.NewStoreError("open", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	j := &SQLiteJournal{db: db}
	if err := j.initSchema(); err != nil {
		db.Close()
		return nil, errors.NewStoreError("init schema", err)
	}

	return j, nil
}

// initSchema creates all required tables and indexes.
func (j *SQLiteJournal) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		started_at DATETIME NOT NULL
	);

	-- Every dispatched action, rejected ones included
	CREATE TABLE IF NOT EXISTS actions (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		payload TEXT NOT NULL,
		accepted INTEGER NOT NULL,
		reason TEXT,
		version INTEGER NOT NULL,
		primary_balance TEXT NOT NULL,
		premium_balance TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS net_worth (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		version INTEGER NOT NULL,
		primary_balance TEXT NOT NULL,
		premium_balance TEXT NOT NULL,
		portfolio TEXT NOT NULL,
		net_worth TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_actions_session ON actions(session_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_actions_kind ON actions(kind);
	CREATE INDEX IF NOT EXISTS idx_net_worth_session ON net_worth(session_id, version);
	`

	_, err := j.db.Exec(schema)
	return err
}

// StartSession records the start of a session.
func (j *SQLiteJournal) StartSession(ctx context.Context, rec SessionRecord) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO sessions (id, seed, started_at) VALUES (?, ?, ?)`,
		rec.ID, rec.Seed, rec.StartedAt.UTC())
	if err != nil {
		return errors.NewStoreError("start session", err)
	}
	return nil
}

// RecordAction appends an action. An empty ID is filled with a new UUID.
func (j *SQLiteJournal) RecordAction(ctx context.Context, rec ActionRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO actions (id, session_id, kind, payload, accepted, reason, version,
			primary_balance, premium_balance, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.SessionID, rec.Kind, rec.Payload, rec.Accepted, rec.Reason, int64(rec.Version),
		rec.Primary.String(), rec.Premium.String(), rec.CreatedAt.UTC())
	if err != nil {
		return errors.NewStoreError("record action", err)
	}
	return nil
}

// RecordSnapshot appends a net-worth valuation.
func (j *SQLiteJournal) RecordSnapshot(ctx context.Context, rec NetWorthRecord) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO net_worth (session_id, version, primary_balance, premium_balance,
			portfolio, net_worth, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.SessionID, int64(rec.Version), rec.Primary.String(), rec.Premium.String(),
		rec.Portfolio.String(), rec.NetWorth.String(), rec.CreatedAt.UTC())
	if err != nil {
		return errors.NewStoreError("record snapshot", err)
	}
	return nil
}

// ListSessions returns the most recent sessions first.
func (j *SQLiteJournal) ListSessions(ctx context.Context, limit int) ([]SessionRecord, error) {
	query := `SELECT id, seed, started_at FROM sessions ORDER BY started_at DESC, rowid DESC`
	var args []interface{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewStoreError("list sessions", err)
	}
	defer rows.Close()

	var out []SessionRecord
	for rows.Next() {
		var rec SessionRecord
		if err := rows.Scan(&rec.ID, &rec.Seed, &rec.StartedAt); err != nil {
			return nil, errors.NewStoreError("scan session", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListActions returns matching actions in the order they were recorded.
// With a limit, the most recent matching actions are returned.
func (j *SQLiteJournal) ListActions(ctx context.Context, filter ActionFilter) ([]ActionRecord, error) {
	var conds []string
	var args []interface{}

	if filter.SessionID != "" {
		conds = append(conds, "session_id = ?")
		args = append(args, filter.SessionID)
	}
	if filter.Kind != "" {
		conds = append(conds, "kind = ?")
		args = append(args, filter.Kind)
	}
	if filter.AcceptedOnly {
		conds = append(conds, "accepted = 1")
	}

	query := `SELECT id, session_id, kind, payload, accepted, reason, version,
		primary_balance, premium_balance, created_at FROM actions`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY rowid DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewStoreError("list actions", err)
	}
	defer rows.Close()

	var out []ActionRecord
	for rows.Next() {
		var (
			rec     ActionRecord
			reason  sql.NullString
			version int64
		)
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.Kind, &rec.Payload, &rec.Accepted,
			&reason, &version, &rec.Primary, &rec.Premium, &rec.CreatedAt); err != nil {
			return nil, errors.NewStoreError("scan action", err)
		}
		rec.Reason = reason.String
		rec.Version = uint64(version)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStoreError("list actions", err)
	}
	reverse(out)
	return out, nil
}

// ListSnapshots returns net-worth valuations of a session in version order.
// With a limit, the most recent valuations are returned.
func (j *SQLiteJournal) ListSnapshots(ctx context.Context, sessionID string, limit int) ([]NetWorthRecord, error) {
	query := `SELECT session_id, version, primary_balance, premium_balance, portfolio,
		net_worth, created_at FROM net_worth WHERE session_id = ? ORDER BY id DESC`
	args := []interface{}{sessionID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewStoreError("list snapshots", err)
	}
	defer rows.Close()

	var out []NetWorthRecord
	for rows.Next() {
		var (
			rec     NetWorthRecord
			version int64
		)
		if err := rows.Scan(&rec.SessionID, &version, &rec.Primary, &rec.Premium,
			&rec.Portfolio, &rec.NetWorth, &rec.CreatedAt); err != nil {
			return nil, errors.NewStoreError("scan snapshot", err)
		}
		rec.Version = uint64(version)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStoreError("list snapshots", err)
	}
	reverse(out)
	return out, nil
}

// reverse flips newest-first query results into recording order.
func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// Close closes the database.
func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
