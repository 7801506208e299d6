package approval

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/skela-dev/skela/src/toolcall"
)

// Store persists pending approvals. Implemented by the storage package.
type Store interface {
	InsertPendingApproval(ctx context.Context, pa *PendingApproval) error
}

// Gate converts a parsed tool call that requires approval into a durable
// pending-approval record. It never authorizes execution itself; callers
// must only execute a call once its approval reaches StatusApproved.
type Gate struct {
	registry *toolcall.Registry
	store    Store
	logger   *slog.Logger
}

// NewGate creates an approval gate over the given registry and store.
func NewGate(registry *toolcall.Registry, store Store, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{
		registry: registry,
		store:    store,
		logger:   logger.With("component", "approval_gate"),
	}
}

// CreatePendingApproval builds and persists the approval record for a tool
// call. Unknown tools are admitted with an explicit "Unknown tool"
// description so an operator can reject them rather than having them
// silently executed or dropped.
func (g *Gate) CreatePendingApproval(ctx context.Context, agentID, sessionID, userID string, call *toolcall.ToolCall) (*PendingApproval, error) {
	pa := &PendingApproval{
		ID:          uuid.New().String(),
		AgentID:     agentID,
		SessionID:   sessionID,
		UserID:      userID,
		ToolCallID:  call.ID,
		ToolName:    call.ToolName,
		Parameters:  copyParameters(call.Parameters),
		Description: g.describe(call),
		Status:      StatusPending,
		Timestamp:   call.Timestamp,
	}
	if pa.Timestamp.IsZero() {
		pa.Timestamp = time.Now().UTC()
	}

	if err := g.store.InsertPendingApproval(ctx, pa); err != nil {
		return nil, fmt.Errorf("failed to persist pending approval: %w", err)
	}

	g.logger.Info("pending approval created",
		"approval_id", pa.ID,
		"tool", pa.ToolName,
		"session_id", sessionID)
	return pa, nil
}

// describe renders the human-readable summary shown to the operator.
func (g *Gate) describe(call *toolcall.ToolCall) string {
	def, ok := g.registry.Tool(call.ToolName)
	if !ok {
		return fmt.Sprintf("Unknown tool: %s", call.ToolName)
	}

	params, err := json.Marshal(call.Parameters)
	if err != nil {
		params = []byte("{}")
	}
	return fmt.Sprintf("%s with parameters: %s", def.Description, params)
}

// copyParameters makes the approval's parameter map independent of the
// originating call.
func copyParameters(params map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(params))
	for k, v := range params {
		out[k] = v
	}
	return out
}
