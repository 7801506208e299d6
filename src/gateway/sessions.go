package gateway

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/skela-dev/skela/src/orchestrator"
)

const (
	// defaultMailboxSize bounds how many chat messages may queue behind an
	// in-flight turn before new ones are rejected.
	defaultMailboxSize = 16

	defaultTurnTimeout = 120 * time.Second
)

// ErrMailboxFull is returned when a session's queue of pending chat
// messages is at capacity.
var ErrMailboxFull = errors.New("session mailbox is full")

// ErrManagerClosed is returned when a message arrives after shutdown.
var ErrManagerClosed = errors.New("session manager is closed")

// TurnRunner executes one chat turn. Implemented by the orchestrator.
type TurnRunner interface {
	RunTurn(ctx context.Context, sessionID, content string, sink orchestrator.EventSink) error
}

// turnRequest is one queued chat message together with the connection
// context and sink it arrived on.
type turnRequest struct {
	ctx     context.Context
	content string
	sink    orchestrator.EventSink
}

type sessionWorker struct {
	mailbox chan turnRequest
}

// SessionManagerConfig configures a SessionManager.
type SessionManagerConfig struct {
	Runner TurnRunner
	Logger *slog.Logger
	// MailboxSize overrides the per-session queue bound. Zero uses the
	// default.
	MailboxSize int
	// TurnTimeout bounds a single turn end to end. Zero uses the default.
	TurnTimeout time.Duration
}

// SessionManager serializes turns per session. Each session gets one
// worker goroutine draining a bounded mailbox, so a message arriving
// mid-turn waits its turn instead of interleaving with the stream in
// progress.
type SessionManager struct {
	runner      TurnRunner
	logger      *slog.Logger
	mailboxSize int
	turnTimeout time.Duration

	mu       sync.Mutex
	sessions map[string]*sessionWorker
	wg       sync.WaitGroup
	closed   bool
}

// NewSessionManager creates a session manager.
func NewSessionManager(cfg SessionManagerConfig) *SessionManager {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	size := cfg.MailboxSize
	if size <= 0 {
		size = defaultMailboxSize
	}
	timeout := cfg.TurnTimeout
	if timeout <= 0 {
		timeout = defaultTurnTimeout
	}
	return &SessionManager{
		runner:      cfg.Runner,
		logger:      logger.With("component", "sessions"),
		mailboxSize: size,
		turnTimeout: timeout,
		sessions:    make(map[string]*sessionWorker),
	}
}

// Enqueue queues one chat message for the session, starting its worker
// if needed. It never blocks: a full mailbox returns ErrMailboxFull and
// the caller reports that to the client.
func (m *SessionManager) Enqueue(ctx context.Context, sessionID, content string, sink orchestrator.EventSink) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrManagerClosed
	}
	worker, ok := m.sessions[sessionID]
	if !ok {
		worker = &sessionWorker{
			mailbox: make(chan turnRequest, m.mailboxSize),
		}
		m.sessions[sessionID] = worker
		m.wg.Add(1)
		go m.run(sessionID, worker)
	}

	// The send stays under the lock so Close cannot close the mailbox
	// between the closed check and the send. It never blocks.
	select {
	case worker.mailbox <- turnRequest{ctx: ctx, content: content, sink: sink}:
		return nil
	default:
		return ErrMailboxFull
	}
}

// run drains one session's mailbox, executing turns strictly in order.
func (m *SessionManager) run(sessionID string, worker *sessionWorker) {
	defer m.wg.Done()
	logger := m.logger.With("session_id", sessionID)

	for req := range worker.mailbox {
		// The connection backing a queued message may be gone by the time
		// its turn comes up.
		if req.ctx.Err() != nil {
			logger.Debug("dropping queued message from closed connection")
			continue
		}

		ctx, cancel := context.WithTimeout(req.ctx, m.turnTimeout)
		if err := m.runner.RunTurn(ctx, sessionID, req.content, req.sink); err != nil {
			logger.Warn("turn failed", "error", err)
		}
		cancel()
	}
}

// Close stops accepting messages and waits for in-flight turns to end.
func (m *SessionManager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	for _, worker := range m.sessions {
		close(worker.mailbox)
	}
	m.mu.Unlock()
	m.wg.Wait()
}
