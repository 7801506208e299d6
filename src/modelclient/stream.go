package modelclient

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/skela-dev/skela/src/aisdk"
)

const (
	ssePrefix   = "data: "
	sseDoneMark = "[DONE]"
)

// createChatCompletionStream sends a streaming chat completion request and
// returns a stream of decoded chunks.
func (c *Client) createChatCompletionStream(ctx context.Context, req *aisdk.ChatCompletionRequest) (aisdk.StreamInterface, error) {
	logger := c.logger.With("method", "CreateChatCompletionStream", "model", req.Model)
	logger.Debug("sending streaming chat completion request")

	req.Stream = true
	body, err := json.Marshal(req)
	if err != nil {
		logger.Error("failed to marshal request", "error", err)
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := c.newRequest(ctx, http.MethodPost, "/chat/completions", body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "text/event-stream")

	// Streams outlive the buffered-request timeout; cancellation is the
	// caller's context.
	streamClient := &http.Client{Transport: c.httpClient.Transport}
	resp, err := streamClient.Do(httpReq)
	if err != nil {
		logger.Error("stream request failed", "error", err)
		return nil, fmt.Errorf("stream request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		logger.Error("received error response", "status_code", resp.StatusCode)
		return nil, c.handleError(resp)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	return &sseStream{
		body:    resp.Body,
		scanner: scanner,
		logger:  logger,
	}, nil
}

var _ aisdk.StreamInterface = (*sseStream)(nil)

// sseStream decodes a line-oriented SSE body into stream chunks. Lines
// beginning with "data: " carry a JSON chunk; "[DONE]" ends the stream;
// anything else, including malformed JSON, is skipped.
type sseStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	logger  interface {
		Debug(msg string, args ...any)
	}
	closed bool
}

// Read returns the next decoded chunk, or io.EOF at end of stream.
func (s *sseStream) Read() (*aisdk.StreamChunk, error) {
	if s.closed {
		return nil, ErrStreamClosed
	}

	for s.scanner.Scan() {
		line := strings.TrimSpace(s.scanner.Text())
		if !strings.HasPrefix(line, ssePrefix) {
			continue
		}

		payload := strings.TrimPrefix(line, ssePrefix)
		if payload == sseDoneMark {
			return nil, io.EOF
		}

		var chunk aisdk.StreamChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			s.logger.Debug("skipping malformed stream record", "error", err)
			continue
		}

		return &chunk, nil
	}

	if err := s.scanner.Err(); err != nil {
		return nil, fmt.Errorf("stream read failed: %w", err)
	}
	return nil, io.EOF
}

// Close closes the underlying response body.
func (s *sseStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.body.Close()
}
