package orchestrator

import (
	"context"
	"log/slog"

	"github.com/skela-dev/skela/src/aisdk"
	"github.com/skela-dev/skela/src/approval"
	"github.com/skela-dev/skela/src/router"
	"github.com/skela-dev/skela/src/storage"
	"github.com/skela-dev/skela/src/templates"
	"github.com/skela-dev/skela/src/toolcall"
)

// Store is the durable state backing the orchestrator writes to.
type Store interface {
	GetSessionState(ctx context.Context, sessionID string) (*storage.SessionState, error)
	SaveSessionState(ctx context.Context, state *storage.SessionState) error
	InsertToolCall(ctx context.Context, sessionID string, call *toolcall.ToolCall) error
}

// Gate creates durable pending approvals for sensitive tool calls.
type Gate interface {
	CreatePendingApproval(ctx context.Context, agentID, sessionID, userID string, call *toolcall.ToolCall) (*approval.PendingApproval, error)
}

// ModelProvider hands out clients bound to a model identifier.
type ModelProvider interface {
	Model(model string) aisdk.ModelClient
}

// Catalog provides the template metadata rendered into the system prompt.
type Catalog interface {
	Metadata(ctx context.Context) ([]templates.TemplateMeta, error)
}

// Config assembles a Service.
type Config struct {
	AgentID  string
	Store    Store
	Gate     Gate
	Provider ModelProvider
	Registry *toolcall.Registry
	Parser   *toolcall.Parser
	Catalog  Catalog
	// Models maps each tier to a model identifier.
	Models map[router.Tier]string
	Logger *slog.Logger
}

// Service composes the router, store, parser and gate into a turn runner.
type Service struct {
	agentID  string
	store    Store
	gate     Gate
	provider ModelProvider
	registry *toolcall.Registry
	parser   *toolcall.Parser
	catalog  Catalog
	models   map[router.Tier]string
	logger   *slog.Logger
}

// NewService creates the orchestrator service.
func NewService(cfg Config) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		agentID:  cfg.AgentID,
		store:    cfg.Store,
		gate:     cfg.Gate,
		provider: cfg.Provider,
		registry: cfg.Registry,
		parser:   cfg.Parser,
		catalog:  cfg.Catalog,
		models:   cfg.Models,
		logger:   logger.With("component", "orchestrator"),
	}
}

// modelFor resolves the model identifier for a tier, falling back to the
// chat tier when a mapping is missing.
func (s *Service) modelFor(tier router.Tier) string {
	if model, ok := s.models[tier]; ok && model != "" {
		return model
	}
	return s.models[router.TierChat]
}
