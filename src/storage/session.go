package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
)

// GetSessionState retrieves the state for a session, returning a fresh empty
// state when the session has never been seen.
func (d *DB) GetSessionState(ctx context.Context, sessionID string) (*SessionState, error) {
	query := `SELECT id, messages, config, created_at, updated_at FROM sessions WHERE id = ?`
	var s SessionState
	err := sqlscan.Get(ctx, d.db, &s, query, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			now := time.Now().UTC()
			return &SessionState{
				SessionID: sessionID,
				Messages:  MessageList{},
				Config:    ConfigMap{},
				CreatedAt: now,
				UpdatedAt: now,
			}, nil
		}
		return nil, err
	}
	if s.Messages == nil {
		s.Messages = MessageList{}
	}
	if s.Config == nil {
		s.Config = ConfigMap{}
	}
	return &s, nil
}

// SaveSessionState atomically replaces the stored state for a session.
// Last write wins; the single-writer guarantee comes from the per-session
// actor upstream, not from this store.
func (d *DB) SaveSessionState(ctx context.Context, state *SessionState) error {
	state.UpdatedAt = time.Now().UTC()
	if state.CreatedAt.IsZero() {
		state.CreatedAt = state.UpdatedAt
	}

	query := `
	INSERT INTO sessions (id, messages, config, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		messages = excluded.messages,
		config = excluded.config,
		updated_at = excluded.updated_at`
	_, err := d.db.ExecContext(ctx, query,
		state.SessionID, state.Messages, state.Config, state.CreatedAt, state.UpdatedAt)
	return err
}

// Ping verifies database connectivity.
func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}
