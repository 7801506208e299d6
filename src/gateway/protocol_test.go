package gateway

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeInbound(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    *InboundMessage
		wantErr string
	}{
		{
			name: "chat message",
			data: `{"type":"chat","content":"hi"}`,
			want: &InboundMessage{Type: TypeChat, Content: "hi"},
		},
		{
			name: "ping",
			data: `{"type":"ping"}`,
			want: &InboundMessage{Type: TypePing},
		},
		{
			name:    "invalid JSON",
			data:    `{"type":`,
			wantErr: "invalid JSON",
		},
		{
			name:    "unknown type",
			data:    `{"type":"subscribe"}`,
			wantErr: "unknown message type: subscribe",
		},
		{
			name:    "missing type",
			data:    `{"content":"hi"}`,
			wantErr: "unknown message type: ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeInbound([]byte(tt.data))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEventEncoding(t *testing.T) {
	data, err := json.Marshal(DoneEvent(""))
	require.NoError(t, err)
	// Absent suggestion is omitted, not sent as an empty string.
	assert.JSONEq(t, `{"type":"chat_done"}`, string(data))

	data, err = json.Marshal(DoneEvent("tabs"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"chat_done","suggestedTemplate":"tabs"}`, string(data))

	data, err = json.Marshal(ChunkEvent("Hel"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"chat_chunk","content":"Hel"}`, string(data))

	data, err = json.Marshal(ErrorEvent("boom"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"error","message":"boom"}`, string(data))
}
