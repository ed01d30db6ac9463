// Package ai provides the content summarization boundary. Providers turn
// raw release notes into a budgeted bullet list; they are best-effort and
// non-deterministic, so callers always re-verify lengths and fall back to
// extractive formatting on failure.
package ai

import (
	"context"
	"fmt"
)

// Summarizer is the interface all LLM providers implement.
type Summarizer interface {
	// Summarize condenses release notes into a plain-text bullet list
	// bounded to req.Budget characters. The budget is an instruction, not
	// a guarantee; the formatter enforces the real limit.
	Summarize(ctx context.Context, req Request) (string, error)
}

// NewSummarizer creates the appropriate provider based on config.
func NewSummarizer(cfg ProviderConfig) (Summarizer, error) {
	switch cfg.Provider {
	case "anthropic":
		return NewAnthropicProvider(cfg.APIKey, cfg.Model), nil
	case "openai":
		return NewOpenAIProvider(cfg.APIKey, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", cfg.Provider)
	}
}
