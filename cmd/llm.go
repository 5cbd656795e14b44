package cmd

import (
	"github.com/spf13/viper"

	"github.com/joescharf/prscore/internal/llm"
)

// newLLMClient returns the client behind AI suggestions, or nil when no
// Anthropic key is configured.
func newLLMClient() *llm.Client {
	key := envFallback("anthropic.api_key", "ANTHROPIC_API_KEY")
	if key == "" {
		return nil
	}
	return llm.NewClient(key, viper.GetString("anthropic.model"))
}
