package router

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoute(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected Tier
	}{
		{
			name:     "short greeting routes fast",
			content:  "hi",
			expected: TierFast,
		},
		{
			name:     "short question routes fast",
			content:  "what should I name my app?",
			expected: TierFast,
		},
		{
			name:     "long message routes complex",
			content:  strings.Repeat("tell me about software architecture ", 20),
			expected: TierComplex,
		},
		{
			name:     "keyword heavy message routes complex",
			content:  "compare the api schema with the database schema for this class",
			expected: TierComplex,
		},
		{
			name:     "action verb with keyword routes code",
			content:  "write a function that parses dates",
			expected: TierCode,
		},
		{
			name:     "action verb case insensitive",
			content:  "Generate an API client for me please",
			expected: TierCode,
		},
		{
			name:     "action verb without keyword falls through",
			content:  "create a list of ideas for my weekend project, something fun",
			expected: TierChat,
		},
		{
			name:     "medium message without keywords routes chat",
			content:  "I want to build something for tracking my reading habits over time",
			expected: TierChat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Route(tt.content))
		})
	}
}

func TestRouteDeterministic(t *testing.T) {
	content := "write a function to sort users by signup date"
	first := Route(content)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Route(content))
	}
}

func TestRouteBoundaries(t *testing.T) {
	// Exactly 500 chars is not "long"; 501 is.
	at := strings.Repeat("a", 500)
	over := strings.Repeat("a", 501)
	assert.Equal(t, TierChat, Route(at))
	assert.Equal(t, TierComplex, Route(over))

	// Exactly 3 keyword hits is not "keyword heavy" on its own.
	assert.Equal(t, TierChat, Route("the api and the database and the schema are documented elsewhere"))
}
