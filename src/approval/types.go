// Package approval implements the human-in-the-loop checkpoint a sensitive
// tool call must clear before it may execute.
package approval

import (
	"time"
)

// Status of a pending approval.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// PendingApproval is the durable record created for each tool call whose
// tool requires approval. ToolName and Parameters are immutable copies of
// the originating call's.
type PendingApproval struct {
	ID          string                 `json:"id"`
	AgentID     string                 `json:"agent_id"`
	SessionID   string                 `json:"session_id"`
	UserID      string                 `json:"user_id,omitempty"`
	ToolCallID  string                 `json:"tool_call_id"`
	ToolName    string                 `json:"tool_name"`
	Parameters  map[string]interface{} `json:"parameters"`
	Description string                 `json:"description"`
	Status      Status                 `json:"status"`
	ApprovedBy  string                 `json:"approved_by,omitempty"`
	ApprovedAt  *time.Time             `json:"approved_at,omitempty"`
	Timestamp   time.Time              `json:"timestamp"`
}
