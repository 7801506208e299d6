package toolcall

import (
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// callMarker introduces a tool invocation in model output, followed by the
// tool name and a JSON object of parameters.
const callMarker = "TOOL_CALL:"

// Parser extracts tool calls from free-form model output.
type Parser struct {
	registry *Registry
	logger   *slog.Logger
}

// NewParser creates a parser over the given registry.
func NewParser(registry *Registry, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{
		registry: registry,
		logger:   logger.With("component", "toolcall_parser"),
	}
}

// Parse scans text for all non-overlapping tool invocations, in order.
// A malformed parameter object drops that single match and scanning
// continues; the parse as a whole never fails.
func (p *Parser) Parse(text string) []ToolCall {
	var calls []ToolCall

	pos := 0
	for {
		idx := strings.Index(text[pos:], callMarker)
		if idx < 0 {
			break
		}
		start := pos + idx + len(callMarker)

		name, nameEnd := scanIdentifier(text, start)
		if name == "" {
			pos = start
			continue
		}

		raw, objEnd := scanJSONObject(text, nameEnd)
		if raw == "" {
			p.logger.Warn("tool call without parameter object", "tool", name)
			pos = nameEnd
			continue
		}
		pos = objEnd

		var params map[string]interface{}
		if err := json.Unmarshal([]byte(raw), &params); err != nil {
			p.logger.Warn("skipping tool call with malformed parameters", "tool", name, "error", err)
			continue
		}

		calls = append(calls, ToolCall{
			ID:         uuid.New().String(),
			ToolName:   name,
			Parameters: params,
			Status:     StatusPending,
			Timestamp:  time.Now().UTC(),
		})
	}

	return calls
}

// scanIdentifier reads an identifier ([A-Za-z0-9_]+) starting at pos.
func scanIdentifier(text string, pos int) (string, int) {
	end := pos
	for end < len(text) {
		c := text[end]
		if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' {
			end++
			continue
		}
		break
	}
	return text[pos:end], end
}

// scanJSONObject reads a brace-balanced JSON object literal starting at pos,
// tracking string literals and escapes so nested braces inside values do not
// terminate the scan early. Returns the raw object text and the index just
// past it, or "" if no well-delimited object starts at pos.
func scanJSONObject(text string, pos int) (string, int) {
	if pos >= len(text) || text[pos] != '{' {
		return "", pos
	}

	depth := 0
	inString := false
	escaped := false

	for i := pos; i < len(text); i++ {
		c := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[pos : i+1], i + 1
			}
		}
	}

	// Unterminated object
	return "", pos
}
