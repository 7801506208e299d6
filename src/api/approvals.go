// Package api provides the HTTP endpoints for reviewing pending approvals.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/skela-dev/skela/src/approval"
	"github.com/skela-dev/skela/src/storage"
	"github.com/skela-dev/skela/src/toolcall"
)

// ApprovalStore is the storage surface the approvals API needs.
type ApprovalStore interface {
	ListPendingApprovals(ctx context.Context, status approval.Status) ([]*approval.PendingApproval, error)
	DecideApproval(ctx context.Context, id string, approved bool, decidedBy string) (*approval.PendingApproval, error)
	UpdateToolCallStatus(ctx context.Context, id string, to toolcall.Status, result, errMsg string) error
}

// ApprovalsHandler serves the approval review endpoints.
type ApprovalsHandler struct {
	store  ApprovalStore
	logger *slog.Logger
}

// NewApprovalsHandler creates an approvals handler.
func NewApprovalsHandler(store ApprovalStore, logger *slog.Logger) *ApprovalsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ApprovalsHandler{
		store:  store,
		logger: logger.With("component", "api"),
	}
}

// RegisterRoutes registers the approval routes.
func (h *ApprovalsHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/approvals", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/{id}/approve", h.Approve)
		r.Post("/{id}/reject", h.Reject)
	})
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// decisionRequest is the optional body of a decision request.
type decisionRequest struct {
	DecidedBy string `json:"decidedBy"`
}

// List returns pending approvals, optionally filtered by the status
// query parameter. No filter returns every approval.
func (h *ApprovalsHandler) List(w http.ResponseWriter, r *http.Request) {
	status := approval.Status(r.URL.Query().Get("status"))
	switch status {
	case "", approval.StatusPending, approval.StatusApproved, approval.StatusRejected:
	default:
		Error(w, http.StatusBadRequest, "unknown status filter: "+string(status))
		return
	}

	approvals, err := h.store.ListPendingApprovals(r.Context(), status)
	if err != nil {
		h.logger.Error("failed to list approvals", "error", err)
		Error(w, http.StatusInternalServerError, "failed to list approvals")
		return
	}

	JSON(w, http.StatusOK, map[string]any{"approvals": approvals})
}

// Approve marks an approval approved and releases its tool call for
// execution.
func (h *ApprovalsHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, true)
}

// Reject marks an approval rejected and terminally rejects its tool call.
func (h *ApprovalsHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, false)
}

func (h *ApprovalsHandler) decide(w http.ResponseWriter, r *http.Request, approved bool) {
	id := chi.URLParam(r, "id")
	logger := h.logger.With("approval_id", id, "approved", approved)

	var req decisionRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			Error(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	pa, err := h.store.DecideApproval(r.Context(), id, approved, req.DecidedBy)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			Error(w, http.StatusNotFound, "approval not found")
		case errors.Is(err, storage.ErrAlreadyDecided):
			Error(w, http.StatusConflict, "approval already decided")
		default:
			logger.Error("failed to decide approval", "error", err)
			Error(w, http.StatusInternalServerError, "failed to decide approval")
		}
		return
	}

	// The decision carries through to the originating tool call so the
	// executor sees it without consulting the approval table.
	next := toolcall.StatusApproved
	if !approved {
		next = toolcall.StatusRejected
	}
	if err := h.store.UpdateToolCallStatus(r.Context(), pa.ToolCallID, next, "", ""); err != nil {
		logger.Error("failed to update tool call status", "tool_call_id", pa.ToolCallID, "error", err)
	}

	logger.Info("approval decided", "tool", pa.ToolName)
	JSON(w, http.StatusOK, pa)
}
