package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

// Handler upgrades chat connections to WebSocket and bridges frames to
// the session manager. One connection serves one session: the id comes
// from the "session" query parameter, or a fresh one is minted so the
// client can reconnect to the same history later.
type Handler struct {
	manager *SessionManager
	logger  *slog.Logger
}

// NewHandler creates a WebSocket chat handler.
func NewHandler(manager *SessionManager, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		manager: manager,
		logger:  logger.With("component", "gateway"),
	}
}

// wsSink delivers turn events to one connection. A mutex serializes
// writes because pong replies from the read loop interleave with turn
// events from the session worker.
type wsSink struct {
	conn   *websocket.Conn
	ctx    context.Context
	logger *slog.Logger

	mu sync.Mutex
}

func (s *wsSink) send(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("failed to encode event", "type", event.Type, "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.Write(s.ctx, websocket.MessageText, data); err != nil {
		if s.ctx.Err() == nil {
			s.logger.Debug("websocket write failed", "type", event.Type, "error", err)
		}
	}
}

func (s *wsSink) Chunk(content string)          { s.send(ChunkEvent(content)) }
func (s *wsSink) Done(suggestedTemplate string) { s.send(DoneEvent(suggestedTemplate)) }
func (s *wsSink) Error(message string)          { s.send(ErrorEvent(message)) }

// ServeHTTP implements http.Handler for the WebSocket upgrade.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		sessionID = uuid.New().String()
	}
	logger := h.logger.With("session_id", sessionID)
	logger.Info("websocket connection request", "remote", r.RemoteAddr)

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		logger.Error("failed to accept websocket", "error", err)
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "connection closed")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sink := &wsSink{conn: conn, ctx: ctx, logger: logger}
	h.readLoop(ctx, conn, sessionID, sink, logger)
	logger.Info("websocket connection closed")
}

// readLoop dispatches inbound frames until the client disconnects. A
// malformed frame gets an error event and the loop continues.
func (h *Handler) readLoop(ctx context.Context, conn *websocket.Conn, sessionID string, sink *wsSink, logger *slog.Logger) {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 || ctx.Err() != nil {
				logger.Debug("websocket closed by client")
			} else {
				logger.Warn("websocket read error", "error", err)
			}
			return
		}

		msg, err := DecodeInbound(data)
		if err != nil {
			sink.Error(err.Error())
			continue
		}

		switch msg.Type {
		case TypePing:
			sink.send(PongEvent())
		case TypeChat:
			if err := h.manager.Enqueue(ctx, sessionID, msg.Content, sink); err != nil {
				if errors.Is(err, ErrMailboxFull) {
					sink.Error("too many pending messages, try again after the current response")
					continue
				}
				sink.Error("session is shutting down")
				return
			}
		}
	}
}
