package storage

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skela-dev/skela/src/aisdk"
	"github.com/skela-dev/skela/src/approval"
	"github.com/skela-dev/skela/src/toolcall"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestGetSessionStateDefault(t *testing.T) {
	db := openTestDB(t)

	state, err := db.GetSessionState(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", state.SessionID)
	assert.Empty(t, state.Messages)
	assert.Empty(t, state.Config)
}

func TestSaveAndGetSessionState(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	state := &SessionState{
		SessionID: "sess-1",
		Messages: MessageList{
			{Role: aisdk.RoleUser, Content: "hi", CreatedAt: time.Now().UTC()},
			{Role: aisdk.RoleAssistant, Content: "Hello!", CreatedAt: time.Now().UTC()},
		},
		Config: ConfigMap{ConfigSuggestedTemplateKey: "tabs"},
	}
	require.NoError(t, db.SaveSessionState(ctx, state))

	loaded, err := db.GetSessionState(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, loaded.Messages, 2)
	assert.Equal(t, "hi", loaded.Messages[0].Content)
	assert.Equal(t, aisdk.RoleAssistant, loaded.Messages[1].Role)
	assert.Equal(t, "tabs", loaded.SuggestedTemplateSlug())
}

func TestSaveSessionStateLastWriteWins(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	first := &SessionState{SessionID: "sess-1", Messages: MessageList{{Role: aisdk.RoleUser, Content: "one"}}}
	require.NoError(t, db.SaveSessionState(ctx, first))

	second := &SessionState{SessionID: "sess-1", Messages: MessageList{{Role: aisdk.RoleUser, Content: "two"}}}
	require.NoError(t, db.SaveSessionState(ctx, second))

	loaded, err := db.GetSessionState(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, loaded.Messages, 1)
	assert.Equal(t, "two", loaded.Messages[0].Content)
}

func newTestCall() *toolcall.ToolCall {
	return &toolcall.ToolCall{
		ID:         uuid.New().String(),
		ToolName:   "writeFile",
		Parameters: map[string]interface{}{"path": "a.go"},
		Status:     toolcall.StatusPending,
		Timestamp:  time.Now().UTC(),
	}
}

func TestToolCallLifecycle(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	call := newTestCall()
	require.NoError(t, db.InsertToolCall(ctx, "sess-1", call))

	loaded, err := db.GetToolCall(ctx, call.ID)
	require.NoError(t, err)
	assert.Equal(t, toolcall.StatusPending, loaded.Status)
	assert.Equal(t, "a.go", loaded.Parameters["path"])

	require.NoError(t, db.UpdateToolCallStatus(ctx, call.ID, toolcall.StatusApproved, "", ""))
	require.NoError(t, db.UpdateToolCallStatus(ctx, call.ID, toolcall.StatusExecuted, "ok", ""))

	loaded, err = db.GetToolCall(ctx, call.ID)
	require.NoError(t, err)
	assert.Equal(t, toolcall.StatusExecuted, loaded.Status)
	assert.Equal(t, "ok", loaded.Result)
}

func TestToolCallInvalidTransitions(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	call := newTestCall()
	require.NoError(t, db.InsertToolCall(ctx, "sess-1", call))

	// pending cannot skip directly to executed
	err := db.UpdateToolCallStatus(ctx, call.ID, toolcall.StatusExecuted, "", "")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// rejected is terminal
	require.NoError(t, db.UpdateToolCallStatus(ctx, call.ID, toolcall.StatusRejected, "", ""))
	err = db.UpdateToolCallStatus(ctx, call.ID, toolcall.StatusExecuted, "", "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestToolCallNotFound(t *testing.T) {
	db := openTestDB(t)

	_, err := db.GetToolCall(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func newTestApproval(sessionID string) *approval.PendingApproval {
	return &approval.PendingApproval{
		ID:          uuid.New().String(),
		AgentID:     "skela",
		SessionID:   sessionID,
		ToolCallID:  uuid.New().String(),
		ToolName:    "deleteFile",
		Parameters:  map[string]interface{}{"path": "old.go"},
		Description: "Delete a file with parameters: {\"path\":\"old.go\"}",
		Status:      approval.StatusPending,
		Timestamp:   time.Now().UTC(),
	}
}

func TestApprovalDecision(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	pa := newTestApproval("sess-1")
	require.NoError(t, db.InsertPendingApproval(ctx, pa))

	pending, err := db.ListPendingApprovals(ctx, approval.StatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	decided, err := db.DecideApproval(ctx, pa.ID, true, "operator@example.com")
	require.NoError(t, err)
	assert.Equal(t, approval.StatusApproved, decided.Status)
	assert.Equal(t, "operator@example.com", decided.ApprovedBy)
	require.NotNil(t, decided.ApprovedAt)

	// Tool name and parameters are untouched by the decision.
	assert.Equal(t, pa.ToolName, decided.ToolName)
	assert.Equal(t, "old.go", decided.Parameters["path"])
}

func TestApprovalDecidedOnlyOnce(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	pa := newTestApproval("sess-1")
	require.NoError(t, db.InsertPendingApproval(ctx, pa))

	_, err := db.DecideApproval(ctx, pa.ID, false, "op1")
	require.NoError(t, err)

	_, err = db.DecideApproval(ctx, pa.ID, true, "op2")
	assert.ErrorIs(t, err, ErrAlreadyDecided)

	loaded, err := db.GetPendingApproval(ctx, pa.ID)
	require.NoError(t, err)
	assert.Equal(t, approval.StatusRejected, loaded.Status)
	assert.Equal(t, "op1", loaded.ApprovedBy)
}

func TestListApprovalsFilters(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	a := newTestApproval("sess-1")
	b := newTestApproval("sess-2")
	require.NoError(t, db.InsertPendingApproval(ctx, a))
	require.NoError(t, db.InsertPendingApproval(ctx, b))

	_, err := db.DecideApproval(ctx, a.ID, true, "op")
	require.NoError(t, err)

	pending, err := db.ListPendingApprovals(ctx, approval.StatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, b.ID, pending[0].ID)

	all, err := db.ListPendingApprovals(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
