// Package orchestrator drives one conversational turn end to end: routing,
// prompt construction, streamed model invocation, tool-call extraction,
// approval gating, and session state persistence.
package orchestrator

// EventSink receives the outbound events of a turn, in generation order.
// A turn emits zero or more chunks followed by exactly one terminal event:
// either Done or Error.
type EventSink interface {
	// Chunk delivers one incremental content delta.
	Chunk(content string)

	// Done signals normal turn completion. suggestedTemplate is the slug the
	// model suggested, or empty.
	Done(suggestedTemplate string)

	// Error signals abnormal turn termination.
	Error(message string)
}

// turnState tracks where a turn is in its lifecycle. Used for logging; the
// transitions themselves are the straight-line flow of RunTurn.
type turnState string

const (
	stateIdle          turnState = "idle"
	stateAwaitingModel turnState = "awaiting_model"
	stateStreaming     turnState = "streaming"
	stateFinalizing    turnState = "finalizing"
)
