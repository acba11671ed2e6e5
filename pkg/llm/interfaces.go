// Package llm provides chat-completion clients for the providers sqlchat can talk to.
package llm

import (
	"context"
)

// LLMClient defines the interface for LLM operations.
// Both the SQL synthesis and answer synthesis stages depend only on this interface.
// Use this interface for dependency injection to enable mocking in tests.
type LLMClient interface {
	// GenerateResponse sends a single system+user exchange and returns the
	// model's text together with token usage.
	GenerateResponse(ctx context.Context, prompt string, systemMessage string, temperature float64) (*GenerateResponseResult, error)

	// GetModel returns the configured model name.
	GetModel() string

	// GetEndpoint returns the configured endpoint.
	GetEndpoint() string
}

// GenerateResponseResult holds the completion text and usage numbers.
// Providers that do not report usage leave the token counts at zero.
type GenerateResponseResult struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Ensure all providers implement LLMClient at compile time.
var (
	_ LLMClient = (*Client)(nil)
	_ LLMClient = (*AnthropicClient)(nil)
	_ LLMClient = (*GeminiClient)(nil)
)
