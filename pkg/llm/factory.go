package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Akul0725/sqlchat/pkg/apperrors"
	"github.com/Akul0725/sqlchat/pkg/config"
)

// Per-provider defaults applied when the config leaves endpoint or model empty.
const (
	DefaultOpenAIEndpoint = "https://api.groq.com/openai/v1"
	DefaultOpenAIModel    = "llama-3.3-70b-versatile"
	DefaultAnthropicModel = "claude-sonnet-4-5-20250929"
	DefaultGeminiModel    = "gemini-2.5-flash"
)

// NewClientFromConfig creates the LLM client selected by cfg.Provider.
// The same client backs every LLM-driven stage of a pipeline.
func NewClientFromConfig(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (LLMClient, error) {
	clientCfg := &Config{
		Endpoint:  cfg.BaseURL,
		Model:     cfg.Model,
		APIKey:    cfg.APIKey,
		MaxTokens: cfg.MaxTokens,
	}

	var (
		client LLMClient
		err    error
	)

	switch cfg.Provider {
	case config.ProviderOpenAI, "":
		if clientCfg.Endpoint == "" {
			clientCfg.Endpoint = DefaultOpenAIEndpoint
		}
		if clientCfg.Model == "" {
			clientCfg.Model = DefaultOpenAIModel
		}
		client, err = NewClient(clientCfg, logger)
	case config.ProviderAnthropic:
		if clientCfg.Model == "" {
			clientCfg.Model = DefaultAnthropicModel
		}
		client, err = NewAnthropicClient(clientCfg, logger)
	case config.ProviderGemini:
		if clientCfg.Model == "" {
			clientCfg.Model = DefaultGeminiModel
		}
		client, err = NewGeminiClient(ctx, clientCfg, logger)
	default:
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownProvider, cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s client: %w", cfg.Provider, err)
	}

	logger.Info("LLM client configured",
		zap.String("provider", cfg.Provider),
		zap.String("model", client.GetModel()))

	return client, nil
}
