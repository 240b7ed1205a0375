package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"gopkg.in/yaml.v3"
)

type Provider string

const (
	ProviderBedrock Provider = "bedrock"
	ProviderOpenAI  Provider = "openai"
	ProviderYandex  Provider = "yandex"
	ProviderGemini  Provider = "gemini"
)

const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// DefaultModels is used when ModelID is empty for the selected provider.
var DefaultModels = map[Provider]string{
	ProviderBedrock: "us.anthropic.claude-sonnet-4-20250514-v1:0",
	ProviderOpenAI:  "gpt-4o-mini",
	ProviderYandex:  "yandexgpt-lite",
	ProviderGemini:  "gemini-2.0-flash",
}

type Config struct {
	// LLM settings
	Provider    Provider `env:"JOKE_PROVIDER" yaml:"provider"`
	ModelID     string   `env:"JOKE_MODEL_ID" yaml:"model_id"`
	MaxTokens   int      `env:"JOKE_MAX_TOKENS" yaml:"max_tokens"`
	Temperature float32  `env:"JOKE_TEMPERATURE" yaml:"temperature"`
	TopP        float32  `env:"JOKE_TOP_P" yaml:"top_p"`

	// Resilience
	Timeout     time.Duration `env:"JOKE_TIMEOUT" yaml:"timeout"`
	MaxAttempts int           `env:"JOKE_MAX_ATTEMPTS" yaml:"max_attempts"`
	BackoffBase time.Duration `env:"JOKE_BACKOFF_BASE" yaml:"backoff_base"`
	BackoffMax  time.Duration `env:"JOKE_BACKOFF_MAX" yaml:"backoff_max"`

	// AWS Bedrock
	AWSProfile string `env:"AWS_PROFILE" yaml:"aws_profile"`
	AWSRegion  string `env:"AWS_DEFAULT_REGION" yaml:"aws_region"`

	// OpenAI-compatible endpoints
	OpenAIAPIKey  string `env:"OPENAI_API_KEY" yaml:"openai_api_key"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL" yaml:"openai_base_url"`

	// YandexGPT
	YandexOAuthToken string `env:"YANDEX_OAUTH_TOKEN" yaml:"yandex_oauth_token"`
	YandexFolderID   string `env:"YANDEX_FOLDER_ID" yaml:"yandex_folder_id"`

	// Gemini
	GeminiAPIKey string `env:"GEMINI_API_KEY" yaml:"gemini_api_key"`

	// Storage
	StoreBackend string `env:"JOKE_STORE_BACKEND" yaml:"store_backend"`
	StorePath    string `env:"JOKE_STORE_PATH" yaml:"store_path"`
	SQLitePath   string `env:"JOKE_SQLITE_PATH" yaml:"sqlite_path"`

	// Feedback prompt
	MaxRatingPrompts int `env:"JOKE_MAX_RATING_PROMPTS" yaml:"max_rating_prompts"`

	// Diagnostics
	Debug       bool   `env:"JOKE_CLI_DEBUG" yaml:"debug"`
	LogFilePath string `env:"JOKE_LOG_FILE" yaml:"log_file"`
}

// Dir is the per-user directory holding feedback and logs.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = "."
	}
	return filepath.Join(home, ".joke_cli")
}

// DefaultPath is where Load looks for a YAML file when none is given.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

func Default() *Config {
	dir := Dir()
	return &Config{
		Provider:     ProviderBedrock,
		MaxTokens:    200,
		Temperature:  0.7,
		TopP:         0.9,
		Timeout:      10 * time.Second,
		MaxAttempts:  3,
		BackoffBase:  time.Second,
		BackoffMax:   8 * time.Second,
		AWSRegion:    "us-east-1",
		StoreBackend: BackendJSON,
		StorePath:    filepath.Join(dir, "joke_feedback.json"),
		SQLitePath:   filepath.Join(dir, "feedback.db"),
		LogFilePath:  filepath.Join(dir, "logs", "joke_cli.log"),
	}
}

// Load layers defaults, the YAML file at path and the environment.
// An empty path falls back to JOKE_CLI_CONFIG and then DefaultPath; a missing
// default file is fine, a missing explicit file is not.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		if p := os.Getenv("JOKE_CLI_CONFIG"); p != "" {
			path, explicit = p, true
		} else {
			path = DefaultPath()
		}
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.StorePath = expandHome(cfg.StorePath)
	cfg.SQLitePath = expandHome(cfg.SQLitePath)
	cfg.LogFilePath = expandHome(cfg.LogFilePath)
	cfg.Provider = Provider(strings.ToLower(string(cfg.Provider)))
	return cfg, nil
}

// Model returns the configured model id or the provider default.
func (c *Config) Model() string {
	if c.ModelID != "" {
		return c.ModelID
	}
	return DefaultModels[c.Provider]
}

func (c *Config) Validate() error {
	if _, ok := DefaultModels[c.Provider]; !ok {
		return fmt.Errorf("unknown llm provider: %s", c.Provider)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be at least 1, got %d", c.MaxAttempts)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.BackoffBase < 0 || c.BackoffMax < 0 {
		return fmt.Errorf("backoff durations must not be negative")
	}
	if c.MaxTokens <= 0 || c.MaxTokens > 4000 {
		return fmt.Errorf("max_tokens must be in 1..4000, got %d", c.MaxTokens)
	}
	if c.Temperature < 0 || c.Temperature > 1 {
		return fmt.Errorf("temperature must be in [0,1], got %v", c.Temperature)
	}
	if c.TopP < 0 || c.TopP > 1 {
		return fmt.Errorf("top_p must be in [0,1], got %v", c.TopP)
	}
	switch c.StoreBackend {
	case BackendJSON, BackendSQLite:
	default:
		return fmt.Errorf("unknown store backend: %s", c.StoreBackend)
	}
	if c.MaxRatingPrompts < 0 {
		return fmt.Errorf("max_rating_prompts must not be negative")
	}
	return nil
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	return p
}
