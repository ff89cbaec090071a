// Package llm abstracts the text-generation service behind a small client
// interface with interchangeable providers (OpenAI, Google Gemini).
package llm

import (
	"context"
	"fmt"
)

// Provider constants for client selection.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config holds text generator configuration.
type Config struct {
	Provider     string // "openai" or "gemini"; empty picks by available key
	Model        string // provider model name; empty uses the provider default
	OpenAIAPIKey string
	GeminiAPIKey string
}

// Request is a single-turn completion request.
type Request struct {
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Client produces a raw text completion for a single user prompt.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
	Model() string
}

// New creates a Client for the configured provider. When no provider is
// named, the first one with a configured key wins, OpenAI before Gemini.
func New(cfg Config) (Client, error) {
	provider := cfg.Provider
	if provider == "" {
		switch {
		case cfg.OpenAIAPIKey != "":
			provider = ProviderOpenAI
		case cfg.GeminiAPIKey != "":
			provider = ProviderGemini
		default:
			return nil, fmt.Errorf("no text generator API key configured")
		}
	}

	switch provider {
	case ProviderOpenAI:
		return newOpenAIClient(cfg)
	case ProviderGemini:
		return newGeminiClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported text generator provider: %s", provider)
	}
}
