package models

import (
	"context"
	"fmt"
	"strings"
)

// NewLLMProvider returns a concrete Agent for the named provider.
func NewLLMProvider(ctx context.Context, provider, model string) (Agent, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "openai":
		return NewOpenAILLM(model), nil
	case "anthropic", "claude":
		return NewAnthropicLLM(model), nil
	case "gemini", "google":
		return NewGeminiLLM(ctx, model)
	case "ollama":
		return NewOllamaLLM(model)
	default:
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
}
