package gateway

import "encoding/json"

// Inbound message types accepted from clients.
const (
	TypeChat = "chat"
	TypePing = "ping"
)

// Outbound event types sent to clients.
const (
	TypeChatChunk = "chat_chunk"
	TypeChatDone  = "chat_done"
	TypeError     = "error"
	TypePong      = "pong"
)

// InboundMessage is the envelope for every client-to-server frame. Type
// selects the variant; fields outside the variant are ignored.
type InboundMessage struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
}

// Event is the envelope for every server-to-client frame.
type Event struct {
	Type              string `json:"type"`
	Content           string `json:"content,omitempty"`
	SuggestedTemplate string `json:"suggestedTemplate,omitempty"`
	Message           string `json:"message,omitempty"`
}

// ChunkEvent carries one streamed fragment of assistant output.
func ChunkEvent(content string) Event {
	return Event{Type: TypeChatChunk, Content: content}
}

// DoneEvent marks the successful end of a turn. The suggested template
// slug is empty when the response carried no suggestion.
func DoneEvent(suggestedTemplate string) Event {
	return Event{Type: TypeChatDone, SuggestedTemplate: suggestedTemplate}
}

// ErrorEvent reports a failed turn or a malformed inbound frame. The
// connection stays open after an error event.
func ErrorEvent(message string) Event {
	return Event{Type: TypeError, Message: message}
}

// PongEvent answers a ping.
func PongEvent() Event {
	return Event{Type: TypePong}
}

// DecodeInbound parses a client frame. It returns an error for invalid
// JSON or an unrecognized type so the caller can answer with an error
// event without closing the connection.
func DecodeInbound(data []byte) (*InboundMessage, error) {
	var msg InboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, &ProtocolError{Reason: "invalid JSON"}
	}
	switch msg.Type {
	case TypeChat, TypePing:
		return &msg, nil
	default:
		return nil, &ProtocolError{Reason: "unknown message type: " + msg.Type}
	}
}

// ProtocolError describes a client frame the server could not accept.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string {
	return e.Reason
}
