package llm

import (
	"context"
	"fmt"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

type CompletionOptions struct {
	Temperature float64
	MaxTokens   int
}

// Completer sends one prompt to a model provider and returns the raw reply text.
// Implementations never retry; a failed call is reported as a *ProviderError.
type Completer interface {
	Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error)
	Model() string
}

// New builds the client for the named provider. An empty model selects the
// provider's default.
func New(provider, apiKey, model string) (Completer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("missing API key for provider %q", provider)
	}

	switch provider {
	case ProviderOpenAI, "":
		return NewOpenAIClient(apiKey, model), nil
	case ProviderAnthropic:
		return NewAnthropicClient(apiKey, model), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q (valid: openai, anthropic)", provider)
	}
}
