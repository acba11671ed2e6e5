package llm

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GeminiClient talks to the Gemini API through the google genai SDK.
type GeminiClient struct {
	client    *genai.Client
	endpoint  string
	model     string
	maxTokens int
	logger    *zap.Logger
}

// NewGeminiClient creates a Gemini API client. Creation does not contact the service.
func NewGeminiClient(ctx context.Context, cfg *Config, logger *zap.Logger) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.Endpoint != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.Endpoint}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiClient{
		client:    client,
		endpoint:  cfg.Endpoint,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		logger:    logger.Named("llm.gemini"),
	}, nil
}

// GenerateResponse generates content for a single user turn with a system instruction.
func (c *GeminiClient) GenerateResponse(
	ctx context.Context,
	prompt string,
	systemMessage string,
	temperature float64,
) (*GenerateResponseResult, error) {
	c.logger.Debug("LLM request",
		zap.String("model", c.model),
		zap.Int("prompt_len", len(prompt)),
		zap.Float64("temperature", temperature))

	start := time.Now()

	genConfig := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr(float32(temperature)),
		SystemInstruction: genai.NewContentFromText(systemMessage, genai.RoleUser),
	}
	if c.maxTokens > 0 {
		genConfig.MaxOutputTokens = int32(c.maxTokens)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), genConfig)
	if err != nil {
		c.logger.Error("LLM request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		llmErr := ClassifyError(err)
		llmErr.Model = c.model
		llmErr.Endpoint = c.endpoint
		return nil, llmErr
	}

	content := resp.Text()
	if content == "" {
		return nil, NewErrorWithContext(ErrorTypeUnknown, "no text content in response", false, nil, c.model, c.endpoint, 0)
	}

	result := &GenerateResponseResult{Content: content}
	if usage := resp.UsageMetadata; usage != nil {
		result.PromptTokens = int(usage.PromptTokenCount)
		result.CompletionTokens = int(usage.CandidatesTokenCount)
		result.TotalTokens = int(usage.TotalTokenCount)
	}

	c.logger.Info("LLM request completed",
		zap.String("model", c.model),
		zap.Int("prompt_tokens", result.PromptTokens),
		zap.Int("completion_tokens", result.CompletionTokens),
		zap.Duration("elapsed", time.Since(start)))

	return result, nil
}

// GetModel returns the configured model name.
func (c *GeminiClient) GetModel() string {
	return c.model
}

// GetEndpoint returns the configured endpoint, empty for the SDK default.
func (c *GeminiClient) GetEndpoint() string {
	return c.endpoint
}
