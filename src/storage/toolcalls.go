package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"

	"github.com/skela-dev/skela/src/toolcall"
)

// ErrInvalidTransition is returned when a status update would move a tool
// call backward or skip a lifecycle stage.
var ErrInvalidTransition = errors.New("invalid tool call status transition")

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// toolCallRow is the database shape of a tool call.
type toolCallRow struct {
	ID         string         `db:"id"`
	SessionID  string         `db:"session_id"`
	ToolName   string         `db:"tool_name"`
	Parameters ParamsMap      `db:"parameters"`
	Status     string         `db:"status"`
	Result     sql.NullString `db:"result"`
	Error      sql.NullString `db:"error"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

func (r *toolCallRow) toDomain() *toolcall.ToolCall {
	return &toolcall.ToolCall{
		ID:         r.ID,
		ToolName:   r.ToolName,
		Parameters: r.Parameters,
		Status:     toolcall.Status(r.Status),
		Result:     r.Result.String,
		Error:      r.Error.String,
		Timestamp:  r.CreatedAt,
	}
}

// InsertToolCall records a freshly parsed tool call for a session.
func (d *DB) InsertToolCall(ctx context.Context, sessionID string, call *toolcall.ToolCall) error {
	if call.Timestamp.IsZero() {
		call.Timestamp = time.Now().UTC()
	}

	query := `
	INSERT INTO tool_calls (id, session_id, tool_name, parameters, status, result, error, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := d.db.ExecContext(ctx, query,
		call.ID, sessionID, call.ToolName, ParamsMap(call.Parameters),
		string(call.Status), call.Result, call.Error, call.Timestamp, call.Timestamp)
	return err
}

// GetToolCall retrieves a tool call by id.
func (d *DB) GetToolCall(ctx context.Context, id string) (*toolcall.ToolCall, error) {
	query := `SELECT id, session_id, tool_name, parameters, status, result, error, created_at, updated_at
	FROM tool_calls WHERE id = ?`
	var row toolCallRow
	err := sqlscan.Get(ctx, d.db, &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return row.toDomain(), nil
}

// ListToolCalls returns all tool calls for a session, oldest first.
func (d *DB) ListToolCalls(ctx context.Context, sessionID string) ([]*toolcall.ToolCall, error) {
	query := `SELECT id, session_id, tool_name, parameters, status, result, error, created_at, updated_at
	FROM tool_calls WHERE session_id = ? ORDER BY created_at, id`
	var rows []*toolCallRow
	if err := sqlscan.Select(ctx, d.db, &rows, query, sessionID); err != nil {
		return nil, err
	}
	calls := make([]*toolcall.ToolCall, 0, len(rows))
	for _, row := range rows {
		calls = append(calls, row.toDomain())
	}
	return calls, nil
}

// UpdateToolCallStatus advances a tool call through its lifecycle, rejecting
// backward or skipping transitions.
func (d *DB) UpdateToolCallStatus(ctx context.Context, id string, to toolcall.Status, result, errMsg string) error {
	current, err := d.GetToolCall(ctx, id)
	if err != nil {
		return err
	}

	if !current.Status.CanTransition(to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, to)
	}

	query := `UPDATE tool_calls SET status = ?, result = ?, error = ?, updated_at = ? WHERE id = ? AND status = ?`
	res, err := d.db.ExecContext(ctx, query,
		string(to), result, errMsg, time.Now().UTC(), id, string(current.Status))
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: concurrent status change on %s", ErrInvalidTransition, id)
	}
	return nil
}
