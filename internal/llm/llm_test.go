package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSuggestPrompt(t *testing.T) {
	t.Run("with path", func(t *testing.T) {
		system, user := buildSuggestPrompt("src/main.py", "def f():\n    return 1")

		assert.Contains(t, system, "SUGGESTION: ")
		assert.Contains(t, system, "documentation")
		assert.Contains(t, user, "File: src/main.py")
		assert.Contains(t, user, "```python\ndef f():\n    return 1\n```")
	})

	t.Run("without path", func(t *testing.T) {
		_, user := buildSuggestPrompt("", "x = 1\n")

		assert.NotContains(t, user, "File:")
		assert.Contains(t, user, "x = 1\n```")
	})
}

func TestParseSuggestions(t *testing.T) {
	text := `Here are my thoughts:
SUGGESTION: Use a list comprehension
  SUGGESTION:   Add documentation for calculate_sum
SUGGESTION:
not a suggestion
SUGGESTION: Rename variable x`

	got := ParseSuggestions(text)
	assert.Equal(t, []string{
		"Use a list comprehension",
		"Add documentation for calculate_sum",
		"Rename variable x",
	}, got)

	assert.Nil(t, ParseSuggestions("nothing useful"))
}

func TestSuggest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var req map[string]any
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "test-model", req["model"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "test-model",
			"content": [{"type": "text", "text": "SUGGESTION: Add type hints\nSUGGESTION: Add documentation"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 5}
		}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", "test-model", option.WithBaseURL(srv.URL+"/"), option.WithMaxRetries(0))
	got, err := c.Suggest(context.Background(), "a.py", "x = 1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Add type hints", "Add documentation"}, got)
}

func TestSuggest_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"invalid_request_error","message":"bad"}}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", "test-model", option.WithBaseURL(srv.URL+"/"), option.WithMaxRetries(0))
	_, err := c.Suggest(context.Background(), "a.py", "x = 1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic API call")
}

func TestNewClient_DefaultModel(t *testing.T) {
	assert.Equal(t, anthropic.Model(DefaultModel), NewClient("k", "").model)
	assert.Equal(t, anthropic.Model("claude-opus-4-1"), NewClient("k", "claude-opus-4-1").model)
}
