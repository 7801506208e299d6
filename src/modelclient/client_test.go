package modelclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skela-dev/skela/src/aisdk"
)

func newTestClient(serverURL string) *Client {
	return NewClient(Config{
		APIKey:     "sk-or-test",
		BaseURL:    serverURL,
		RetryCount: 2,
		RetryDelay: time.Millisecond,
	})
}

func chatRequest(content string) *aisdk.ChatCompletionRequest {
	return &aisdk.ChatCompletionRequest{
		Messages: []*aisdk.Message{{Role: aisdk.RoleUser, Content: content}},
	}
}

func TestCreateChatCompletion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-or-test", r.Header.Get("Authorization"))

		var req aisdk.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test/model", req.Model)
		assert.False(t, req.Stream)

		json.NewEncoder(w).Encode(aisdk.ChatCompletionResponse{
			Choices: []aisdk.Choice{{Message: aisdk.Message{
				Role:    aisdk.RoleAssistant,
				Content: "Hello!",
			}}},
		})
	}))
	defer server.Close()

	resp, err := newTestClient(server.URL).Model("test/model").CreateChatCompletion(context.Background(), chatRequest("hi"))
	require.NoError(t, err)
	assert.Equal(t, "Hello!", resp.Choices[0].Message.Content)
}

func TestCreateChatCompletionEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(aisdk.ChatCompletionResponse{})
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Model("test/model").CreateChatCompletion(context.Background(), chatRequest("hi"))
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestRetryOnServerError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(aisdk.ChatCompletionResponse{
			Choices: []aisdk.Choice{{Message: aisdk.Message{Content: "ok"}}},
		})
	}))
	defer server.Close()

	resp, err := newTestClient(server.URL).Model("test/model").CreateChatCompletion(context.Background(), chatRequest("hi"))
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Choices[0].Message.Content)
	assert.Equal(t, int32(2), calls.Load())
}

func TestNoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"bad key","type":"auth_error"}}`)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Model("test/model").CreateChatCompletion(context.Background(), chatRequest("hi"))
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.True(t, apiErr.IsAuthError())
	assert.Equal(t, int32(1), calls.Load())
}

// sseHandler writes the given SSE lines and closes the stream.
func sseHandler(t *testing.T, lines []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))

		var req aisdk.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Stream)

		w.Header().Set("Content-Type", "text/event-stream")
		for _, line := range lines {
			fmt.Fprintf(w, "%s\n", line)
		}
	}
}

func sseChunk(t *testing.T, delta string) string {
	data, err := json.Marshal(aisdk.StreamChunk{
		Choices: []aisdk.Choice{{Delta: &aisdk.Message{Content: delta}}},
	})
	require.NoError(t, err)
	return "data: " + string(data)
}

func TestCreateChatCompletionStream(t *testing.T) {
	server := httptest.NewServer(sseHandler(t, []string{
		sseChunk(t, "Hel"),
		"",
		": keepalive comment",
		sseChunk(t, "lo!"),
		"data: {not json",
		"data: [DONE]",
		sseChunk(t, "ignored after done"),
	}))
	defer server.Close()

	stream, err := newTestClient(server.URL).Model("test/model").CreateChatCompletionStream(context.Background(), chatRequest("hi"))
	require.NoError(t, err)

	content, err := aisdk.CollectStreamContent(stream)
	require.NoError(t, err)
	assert.Equal(t, "Hello!", content)
}

func TestStreamEndsWithoutDoneMark(t *testing.T) {
	server := httptest.NewServer(sseHandler(t, []string{
		sseChunk(t, "partial"),
	}))
	defer server.Close()

	stream, err := newTestClient(server.URL).Model("test/model").CreateChatCompletionStream(context.Background(), chatRequest("hi"))
	require.NoError(t, err)
	defer stream.Close()

	chunk, err := stream.Read()
	require.NoError(t, err)
	assert.Equal(t, "partial", chunk.DeltaText())

	_, err = stream.Read()
	assert.ErrorIs(t, err, io.EOF)
}

func TestStreamReadAfterClose(t *testing.T) {
	server := httptest.NewServer(sseHandler(t, []string{"data: [DONE]"}))
	defer server.Close()

	stream, err := newTestClient(server.URL).Model("test/model").CreateChatCompletionStream(context.Background(), chatRequest("hi"))
	require.NoError(t, err)
	require.NoError(t, stream.Close())

	_, err = stream.Read()
	assert.ErrorIs(t, err, ErrStreamClosed)
}

func TestStreamErrorResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"message":"slow down","type":"rate_limit"}}`)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Model("test/model").CreateChatCompletionStream(context.Background(), chatRequest("hi"))
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsRateLimit())
}
