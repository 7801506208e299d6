package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/skela-dev/skela/src/aisdk"
	"github.com/skela-dev/skela/src/router"
	"github.com/skela-dev/skela/src/skelagent"
	"github.com/skela-dev/skela/src/storage"
)

// ErrEmptyMessage is returned when a turn is started with blank content.
var ErrEmptyMessage = errors.New("chat message content is empty")

// suggestPattern matches the template-suggestion marker in model output.
var suggestPattern = regexp.MustCompile(`SUGGEST_TEMPLATE:\s*([A-Za-z0-9_-]+)`)

// RunTurn processes one user message for a session: appends it to the log,
// routes a tier, streams the model response through sink, extracts tool
// calls and the template suggestion, and persists the updated state.
//
// Exactly one terminal event reaches sink. On any model failure the partial
// response is discarded and nothing is persisted, so the session log only
// ever grows by a complete user/assistant pair.
func (s *Service) RunTurn(ctx context.Context, sessionID, content string, sink EventSink) error {
	logger := s.logger.With("session_id", sessionID)

	if strings.TrimSpace(content) == "" {
		sink.Error("message content must not be empty")
		return ErrEmptyMessage
	}

	state, err := s.store.GetSessionState(ctx, sessionID)
	if err != nil {
		logger.Error("failed to load session state", "error", err)
		sink.Error("failed to load session state")
		return err
	}

	state.Messages = append(state.Messages, aisdk.Message{
		Role:      aisdk.RoleUser,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	})

	turn := stateAwaitingModel
	tier := router.Route(content)
	model := s.modelFor(tier)
	logger = logger.With("tier", tier, "model", model)
	logger.Debug("turn started", "state", turn)

	metas, err := s.catalog.Metadata(ctx)
	if err != nil {
		logger.Error("failed to load template catalog", "error", err)
		sink.Error("failed to load template catalog")
		return err
	}

	systemPrompt := skelagent.BuildSystemPrompt(skelagent.PromptInput{
		Tier:      tier,
		Templates: metas,
		Tools:     s.registry.Tools(),
	})

	messages := make([]*aisdk.Message, 0, len(state.Messages)+1)
	messages = append(messages, &aisdk.Message{Role: aisdk.RoleSystem, Content: systemPrompt})
	for i := range state.Messages {
		messages = append(messages, &state.Messages[i])
	}

	stream, err := s.provider.Model(model).CreateChatCompletionStream(ctx, &aisdk.ChatCompletionRequest{
		Messages: messages,
		Stream:   true,
	})
	if err != nil {
		logger.Error("model invocation failed", "error", err)
		sink.Error(err.Error())
		return err
	}

	turn = stateStreaming
	var accumulator strings.Builder
	err = aisdk.StreamToCallback(stream, func(chunk *aisdk.StreamChunk) error {
		delta := chunk.DeltaText()
		if delta == "" {
			return nil
		}
		accumulator.WriteString(delta)
		sink.Chunk(delta)
		return nil
	})
	if err != nil {
		// Discard the partial accumulator; no assistant message is kept.
		logger.Error("model stream failed", "error", err, "state", turn)
		sink.Error(err.Error())
		return err
	}

	turn = stateFinalizing
	logger.Debug("stream complete", "state", turn)
	response := accumulator.String()
	suggested := s.finalize(ctx, sessionID, state, response, logger)

	state.Messages = append(state.Messages, aisdk.Message{
		Role:      aisdk.RoleAssistant,
		Content:   response,
		CreatedAt: time.Now().UTC(),
	})

	if err := s.store.SaveSessionState(ctx, state); err != nil {
		logger.Error("failed to persist session state", "error", err)
		sink.Error("failed to persist session state")
		return err
	}

	logger.Info("turn complete",
		"response_len", len(response),
		"suggested_template", suggested)
	sink.Done(suggested)
	return nil
}

// finalize scans the full response for the template-suggestion marker and
// embedded tool calls, persisting calls and creating pending approvals for
// those whose tool requires one. Returns the suggested slug, if any.
func (s *Service) finalize(ctx context.Context, sessionID string, state *storage.SessionState, response string, logger *slog.Logger) string {
	suggested := ""
	if m := suggestPattern.FindStringSubmatch(response); m != nil {
		suggested = m[1]
		if state.Config == nil {
			state.Config = storage.ConfigMap{}
		}
		state.Config[storage.ConfigSuggestedTemplateKey] = suggested
	}

	for _, call := range s.parser.Parse(response) {
		call := call
		if err := s.store.InsertToolCall(ctx, sessionID, &call); err != nil {
			logger.Error("failed to persist tool call", "tool", call.ToolName, "error", err)
			continue
		}

		if !s.registry.RequiresApproval(call.ToolName) {
			continue
		}
		if _, err := s.gate.CreatePendingApproval(ctx, s.agentID, sessionID, "", &call); err != nil {
			// The call stays pending and unexecutable without its approval
			// record; surface the failure in logs only.
			logger.Error("failed to create pending approval", "tool", call.ToolName, "error", err)
		}
	}

	return suggested
}
