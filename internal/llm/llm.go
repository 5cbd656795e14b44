package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "claude-haiku-4-5-20251001"

// suggestionPrefix marks one suggestion per line in the model's reply.
const suggestionPrefix = "SUGGESTION:"

// Client wraps the Anthropic API for code-improvement suggestions.
type Client struct {
	api       *anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

// NewClient creates an LLM client with the given API key and model, or
// DefaultModel when model is empty. Extra request options (base URL,
// retries) are passed through to the SDK.
func NewClient(apiKey, model string, opts ...option.RequestOption) *Client {
	if model == "" {
		model = DefaultModel
	}
	reqOpts := []option.RequestOption{}
	if apiKey != "" {
		reqOpts = append(reqOpts, option.WithAPIKey(apiKey))
	}
	reqOpts = append(reqOpts, opts...)
	client := anthropic.NewClient(reqOpts...)
	return &Client{
		api:       &client,
		model:     anthropic.Model(model),
		maxTokens: 1024,
	}
}

// buildSuggestPrompt constructs the system and user prompts for one chunk of source.
func buildSuggestPrompt(path, code string) (system string, user string) {
	system = `You review Python code and suggest improvements for readability, performance, and best practices.

Rules:
- Focus on concrete, actionable suggestions
- Write each suggestion on its own line starting with 'SUGGESTION: '
- Mention the word "documentation" when a suggestion is about docstrings or comments
- Do not repeat the code, do not add any other text`

	var sb strings.Builder
	if path != "" {
		sb.WriteString("File: ")
		sb.WriteString(path)
		sb.WriteString("\n\n")
	}
	sb.WriteString("```python\n")
	sb.WriteString(code)
	if !strings.HasSuffix(code, "\n") {
		sb.WriteString("\n")
	}
	sb.WriteString("```\n")
	user = sb.String()
	return
}

// ParseSuggestions extracts the text of every line starting with the
// suggestion marker, in reply order. Empty suggestions are dropped.
func ParseSuggestions(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, suggestionPrefix) {
			continue
		}
		s := strings.TrimSpace(strings.TrimPrefix(line, suggestionPrefix))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Suggest sends a chunk of code to the LLM and returns its suggestions.
func (c *Client) Suggest(ctx context.Context, path, code string) ([]string, error) {
	systemPrompt, userPrompt := buildSuggestPrompt(path, code)

	msg, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic API call: %w", err)
	}

	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}

	if text == "" {
		return nil, fmt.Errorf("no text content in API response")
	}

	return ParseSuggestions(text), nil
}
