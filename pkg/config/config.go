package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/Akul0725/sqlchat/pkg/apperrors"
)

// DefaultPath is the config file read when no explicit path is given.
const DefaultPath = "config.yaml"

// Supported LLM providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// Config holds all configuration for sqlchat.
// Configuration can come from a YAML file or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (API keys, session secret) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"5000"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	Version  string `yaml:"-"` // Set at load time, not from config

	LLM      LLMConfig      `yaml:"llm"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Database DatabaseConfig `yaml:"database"`
	Session  SessionConfig  `yaml:"session"`
}

// LLMConfig selects the model used by both LLM-backed stages.
// The same model and provider serve SQL synthesis and answer synthesis.
type LLMConfig struct {
	// Provider is one of "openai" (any OpenAI-compatible endpoint), "anthropic" or "gemini".
	Provider string `yaml:"provider" env:"LLM_PROVIDER" env-default:"openai"`
	// BaseURL and Model fall back to per-provider defaults when empty
	// (Groq's OpenAI-compatible endpoint with llama-3.3-70b-versatile for "openai").
	BaseURL   string `yaml:"base_url" env:"LLM_BASE_URL" env-default:""`
	Model     string `yaml:"model" env:"LLM_MODEL" env-default:""`
	MaxTokens int    `yaml:"max_tokens" env:"LLM_MAX_TOKENS" env-default:"1024"`
	APIKey    string `yaml:"-" env:"LLM_API_KEY"` // Secret - not in YAML
}

// PipelineConfig tunes how much database content reaches the prompts.
type PipelineConfig struct {
	// SampleRows is the number of example rows rendered per table in the schema description.
	SampleRows int `yaml:"sample_rows" env:"PIPELINE_SAMPLE_ROWS" env-default:"3"`
	// MaxResultRows caps the rows rendered into the execution result text.
	MaxResultRows int `yaml:"max_result_rows" env:"PIPELINE_MAX_RESULT_ROWS" env-default:"100"`
}

// DatabaseConfig limits the databases remote callers can point the server at.
// The ask command is not affected: its operator names the database directly.
type DatabaseConfig struct {
	// AllowedHosts lists the hosts a chat or MCP client may name in a
	// connection URI. Empty allows any host.
	AllowedHosts []string `yaml:"allowed_hosts" env:"DATABASE_ALLOWED_HOSTS" env-separator:","`
}

// SessionConfig holds the cookie session settings for the web layer.
type SessionConfig struct {
	Secret string `yaml:"-" env:"SESSION_SECRET"` // Secret - not in YAML
	MaxAge int    `yaml:"max_age" env:"SESSION_MAX_AGE" env-default:"86400"`
	Secure bool   `yaml:"secure" env:"SESSION_SECURE" env-default:"false"`
}

// Load reads configuration from the YAML file at path with environment variable overrides.
// An empty path means DefaultPath. A missing file is not an error: env vars and
// defaults are used instead.
func Load(version, path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else if errors.Is(err, os.ErrNotExist) {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	} else {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks fields that cleanenv cannot express as tags.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderOpenAI:
		// Local OpenAI-compatible servers often run without a key.
	case ProviderAnthropic, ProviderGemini:
		if c.LLM.APIKey == "" {
			return fmt.Errorf("LLM_API_KEY is required for provider %q", c.LLM.Provider)
		}
	default:
		return fmt.Errorf("%w: %q", apperrors.ErrUnknownProvider, c.LLM.Provider)
	}

	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("llm.max_tokens must be positive")
	}
	if c.Pipeline.SampleRows < 0 {
		return fmt.Errorf("pipeline.sample_rows must not be negative")
	}
	if c.Pipeline.MaxResultRows <= 0 {
		return fmt.Errorf("pipeline.max_result_rows must be positive")
	}
	return nil
}

// ListenAddr returns the host:port the HTTP server binds to.
func (c *Config) ListenAddr() string {
	return c.BindAddr + ":" + c.Port
}
