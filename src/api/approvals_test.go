package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skela-dev/skela/src/approval"
	"github.com/skela-dev/skela/src/storage"
	"github.com/skela-dev/skela/src/toolcall"
)

type apiFixture struct {
	db     *storage.DB
	router chi.Router
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	db, err := storage.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	router := chi.NewRouter()
	NewApprovalsHandler(db, nil).RegisterRoutes(router)
	return &apiFixture{db: db, router: router}
}

// seedApproval inserts a pending tool call and its approval record.
func (f *apiFixture) seedApproval(t *testing.T, toolName string) *approval.PendingApproval {
	t.Helper()
	ctx := context.Background()

	call := &toolcall.ToolCall{
		ID:         uuid.New().String(),
		ToolName:   toolName,
		Parameters: map[string]any{"path": "main.go"},
		Status:     toolcall.StatusPending,
		Timestamp:  time.Now().UTC(),
	}
	require.NoError(t, f.db.InsertToolCall(ctx, "sess-1", call))

	pa := &approval.PendingApproval{
		ID:         uuid.New().String(),
		AgentID:    "skela",
		SessionID:  "sess-1",
		ToolCallID: call.ID,
		ToolName:   toolName,
		Parameters: call.Parameters,
		Status:     approval.StatusPending,
		Timestamp:  time.Now().UTC(),
	}
	require.NoError(t, f.db.InsertPendingApproval(ctx, pa))
	return pa
}

func (f *apiFixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestListApprovals(t *testing.T) {
	fx := newAPIFixture(t)
	fx.seedApproval(t, "writeFile")
	fx.seedApproval(t, "deleteFile")

	rec := fx.do(t, http.MethodGet, "/api/approvals/?status=pending", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Approvals []*approval.PendingApproval `json:"approvals"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Approvals, 2)
}

func TestListApprovalsRejectsUnknownStatus(t *testing.T) {
	fx := newAPIFixture(t)

	rec := fx.do(t, http.MethodGet, "/api/approvals/?status=bogus", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestApproveUpdatesApprovalAndToolCall(t *testing.T) {
	fx := newAPIFixture(t)
	pa := fx.seedApproval(t, "writeFile")
	ctx := context.Background()

	rec := fx.do(t, http.MethodPost, "/api/approvals/"+pa.ID+"/approve", `{"decidedBy":"operator"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var decided approval.PendingApproval
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decided))
	assert.Equal(t, approval.StatusApproved, decided.Status)
	assert.Equal(t, "operator", decided.ApprovedBy)
	require.NotNil(t, decided.ApprovedAt)

	call, err := fx.db.GetToolCall(ctx, pa.ToolCallID)
	require.NoError(t, err)
	assert.Equal(t, toolcall.StatusApproved, call.Status)
}

func TestRejectUpdatesApprovalAndToolCall(t *testing.T) {
	fx := newAPIFixture(t)
	pa := fx.seedApproval(t, "deleteFile")
	ctx := context.Background()

	rec := fx.do(t, http.MethodPost, "/api/approvals/"+pa.ID+"/reject", "")
	require.Equal(t, http.StatusOK, rec.Code)

	call, err := fx.db.GetToolCall(ctx, pa.ToolCallID)
	require.NoError(t, err)
	assert.Equal(t, toolcall.StatusRejected, call.Status)
}

func TestDecideTwiceConflicts(t *testing.T) {
	fx := newAPIFixture(t)
	pa := fx.seedApproval(t, "writeFile")

	rec := fx.do(t, http.MethodPost, "/api/approvals/"+pa.ID+"/approve", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = fx.do(t, http.MethodPost, "/api/approvals/"+pa.ID+"/reject", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestDecideUnknownApproval(t *testing.T) {
	fx := newAPIFixture(t)

	rec := fx.do(t, http.MethodPost, "/api/approvals/"+uuid.New().String()+"/approve", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
