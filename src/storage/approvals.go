package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"

	"github.com/skela-dev/skela/src/approval"
)

// ErrAlreadyDecided is returned when an operator decision targets an
// approval that is no longer pending.
var ErrAlreadyDecided = errors.New("approval already decided")

// approvalRow is the database shape of a pending approval.
type approvalRow struct {
	ID          string         `db:"id"`
	AgentID     string         `db:"agent_id"`
	SessionID   string         `db:"session_id"`
	UserID      sql.NullString `db:"user_id"`
	ToolCallID  string         `db:"tool_call_id"`
	ToolName    string         `db:"tool_name"`
	Parameters  ParamsMap      `db:"parameters"`
	Description string         `db:"description"`
	Status      string         `db:"status"`
	ApprovedBy  sql.NullString `db:"approved_by"`
	ApprovedAt  sql.NullTime   `db:"approved_at"`
	CreatedAt   time.Time      `db:"created_at"`
}

func (r *approvalRow) toDomain() *approval.PendingApproval {
	pa := &approval.PendingApproval{
		ID:          r.ID,
		AgentID:     r.AgentID,
		SessionID:   r.SessionID,
		UserID:      r.UserID.String,
		ToolCallID:  r.ToolCallID,
		ToolName:    r.ToolName,
		Parameters:  r.Parameters,
		Description: r.Description,
		Status:      approval.Status(r.Status),
		ApprovedBy:  r.ApprovedBy.String,
		Timestamp:   r.CreatedAt,
	}
	if r.ApprovedAt.Valid {
		t := r.ApprovedAt.Time
		pa.ApprovedAt = &t
	}
	return pa
}

const approvalColumns = `id, agent_id, session_id, user_id, tool_call_id, tool_name,
	parameters, description, status, approved_by, approved_at, created_at`

// InsertPendingApproval persists a new pending approval record.
func (d *DB) InsertPendingApproval(ctx context.Context, pa *approval.PendingApproval) error {
	query := `
	INSERT INTO pending_approvals (` + approvalColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := d.db.ExecContext(ctx, query,
		pa.ID, pa.AgentID, pa.SessionID, nullable(pa.UserID), pa.ToolCallID, pa.ToolName,
		ParamsMap(pa.Parameters), pa.Description, string(pa.Status),
		nullable(pa.ApprovedBy), pa.ApprovedAt, pa.Timestamp)
	return err
}

// GetPendingApproval retrieves an approval by id.
func (d *DB) GetPendingApproval(ctx context.Context, id string) (*approval.PendingApproval, error) {
	query := `SELECT ` + approvalColumns + ` FROM pending_approvals WHERE id = ?`
	var row approvalRow
	err := sqlscan.Get(ctx, d.db, &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return row.toDomain(), nil
}

// ListPendingApprovals returns approvals filtered by status, newest first.
// An empty status returns everything.
func (d *DB) ListPendingApprovals(ctx context.Context, status approval.Status) ([]*approval.PendingApproval, error) {
	var rows []*approvalRow
	var err error
	if status == "" {
		query := `SELECT ` + approvalColumns + ` FROM pending_approvals ORDER BY created_at DESC, id`
		err = sqlscan.Select(ctx, d.db, &rows, query)
	} else {
		query := `SELECT ` + approvalColumns + ` FROM pending_approvals WHERE status = ? ORDER BY created_at DESC, id`
		err = sqlscan.Select(ctx, d.db, &rows, query, string(status))
	}
	if err != nil {
		return nil, err
	}

	out := make([]*approval.PendingApproval, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// DecideApproval records an operator decision on a pending approval. Only a
// pending approval may be decided; the guard is enforced in the UPDATE so
// concurrent decisions cannot both win.
func (d *DB) DecideApproval(ctx context.Context, id string, approved bool, decidedBy string) (*approval.PendingApproval, error) {
	status := approval.StatusRejected
	if approved {
		status = approval.StatusApproved
	}

	query := `
	UPDATE pending_approvals
	SET status = ?, approved_by = ?, approved_at = ?
	WHERE id = ? AND status = ?`
	res, err := d.db.ExecContext(ctx, query,
		string(status), decidedBy, time.Now().UTC(), id, string(approval.StatusPending))
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		if _, err := d.GetPendingApproval(ctx, id); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s", ErrAlreadyDecided, id)
	}

	return d.GetPendingApproval(ctx, id)
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
