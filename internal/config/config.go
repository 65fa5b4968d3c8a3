package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration.
type Config struct {
	// Port the HTTP server listens on.
	Port string `yaml:"port"`

	// AllowedOrigins is the CORS and WebSocket origin allowlist.
	AllowedOrigins []string `yaml:"allowed_origins"`

	LLM     LLMConfig     `yaml:"llm"`
	Auth    AuthConfig    `yaml:"auth"`
	Limits  LimitsConfig  `yaml:"limits"`
	Logging LoggingConfig `yaml:"logging"`
}

// LLMConfig selects and tunes the model provider.
type LLMConfig struct {
	// Provider is "openai" or "gemini".
	Provider      string  `yaml:"provider"`
	OpenAIAPIKey  string  `yaml:"openai_api_key"`
	OpenAIModel   string  `yaml:"openai_model"`
	OpenAIBaseURL string  `yaml:"openai_base_url"`
	GeminiAPIKey  string  `yaml:"gemini_api_key"`
	GeminiModel   string  `yaml:"gemini_model"`
	Temperature   float32 `yaml:"temperature"`
	MaxTokens     int     `yaml:"max_tokens"`

	// Timeout bounds one model call. Zero leaves it to the transport.
	Timeout time.Duration `yaml:"timeout"`
}

// AuthConfig selects how bearer tokens are verified.
type AuthConfig struct {
	// Mode is "static" or "remote".
	Mode string `yaml:"mode"`

	// StaticTokens maps token -> "uid:email", for development.
	StaticTokens map[string]string `yaml:"static_tokens"`

	// VerifyURL receives GET with the caller's bearer token and answers
	// {"uid": ..., "email": ...} for valid tokens.
	VerifyURL string `yaml:"verify_url"`
}

// LimitsConfig bounds what a single client can ask for.
type LimitsConfig struct {
	RateLimitPerMinute int   `yaml:"rate_limit_per_minute"`
	RateLimitBurst     int   `yaml:"rate_limit_burst"`
	MaxBodyBytes       int64 `yaml:"max_body_bytes"`
	MaxBoardObjects    int   `yaml:"max_board_objects"`
	MaxCommandChars    int   `yaml:"max_command_chars"`
	MaxBulkCount       int   `yaml:"max_bulk_count"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Port:           "8080",
		AllowedOrigins: []string{"http://localhost:5173"},
		LLM: LLMConfig{
			Provider:    "openai",
			OpenAIModel: "gpt-4-turbo",
			GeminiModel: "gemini-2.0-flash",
			Temperature: 0.3,
			MaxTokens:   4096,
		},
		Auth: AuthConfig{
			Mode: "static",
		},
		Limits: LimitsConfig{
			RateLimitPerMinute: 10,
			RateLimitBurst:     5,
			MaxBodyBytes:       1 << 20,
			MaxBoardObjects:    5000,
			MaxCommandChars:    4000,
			MaxBulkCount:       500,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration: defaults, then the YAML file named by
// CONFIG_FILE (if any), then environment variables. A .env file in the
// working directory is loaded into the environment first when present.
func Load() (*Config, error) {
	cfg, err := LoadUnchecked()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadUnchecked loads like Load but skips Validate. Commands that never call
// the model or verify tokens use it.
func LoadUnchecked() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return build(os.LookupEnv)
}

func load(lookup func(string) (string, bool)) (*Config, error) {
	cfg, err := build(lookup)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func build(lookup func(string) (string, bool)) (*Config, error) {
	cfg := DefaultConfig()

	if path, ok := lookup("CONFIG_FILE"); ok && path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeFile overlays the YAML file at path onto cfg. Keys absent from the
// file keep their current values.
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	var errs []error
	num := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}

	str("PORT", &c.Port)

	// DOMAINS is the older name for the origin allowlist
	if v, ok := lookup("DOMAINS"); ok && v != "" {
		c.AllowedOrigins = splitList(v)
	}
	if v, ok := lookup("ALLOWED_ORIGINS"); ok && v != "" {
		c.AllowedOrigins = splitList(v)
	}

	str("LLM_PROVIDER", &c.LLM.Provider)
	str("OPENAI_API_KEY", &c.LLM.OpenAIAPIKey)
	str("OPENAI_MODEL", &c.LLM.OpenAIModel)
	str("OPENAI_BASE_URL", &c.LLM.OpenAIBaseURL)
	str("GEMINI_API_KEY", &c.LLM.GeminiAPIKey)
	str("GEMINI_MODEL", &c.LLM.GeminiModel)
	num("LLM_MAX_TOKENS", &c.LLM.MaxTokens)
	if v, ok := lookup("LLM_TEMPERATURE"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 32)
		if err != nil {
			errs = append(errs, fmt.Errorf("LLM_TEMPERATURE: %w", err))
		} else {
			c.LLM.Temperature = float32(f)
		}
	}
	if v, ok := lookup("LLM_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("LLM_TIMEOUT: %w", err))
		} else {
			c.LLM.Timeout = d
		}
	}

	str("AUTH_MODE", &c.Auth.Mode)
	str("AUTH_VERIFY_URL", &c.Auth.VerifyURL)
	if v, ok := lookup("AUTH_STATIC_TOKENS"); ok && v != "" {
		tokens, err := parseTokenTable(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("AUTH_STATIC_TOKENS: %w", err))
		} else {
			c.Auth.StaticTokens = tokens
		}
	}

	num("RATE_LIMIT_PER_MINUTE", &c.Limits.RateLimitPerMinute)
	num("RATE_LIMIT_BURST", &c.Limits.RateLimitBurst)
	num("MAX_BOARD_OBJECTS", &c.Limits.MaxBoardObjects)
	num("MAX_COMMAND_CHARS", &c.Limits.MaxCommandChars)
	num("MAX_BULK_COUNT", &c.Limits.MaxBulkCount)
	if v, ok := lookup("MAX_BODY_BYTES"); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("MAX_BODY_BYTES: %w", err))
		} else {
			c.Limits.MaxBodyBytes = n
		}
	}

	str("LOG_LEVEL", &c.Logging.Level)
	str("LOG_FORMAT", &c.Logging.Format)

	return errors.Join(errs...)
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case "openai":
		if c.LLM.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for the openai provider")
		}
	case "gemini":
		if c.LLM.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for the gemini provider")
		}
	default:
		return fmt.Errorf("unknown LLM provider %q (use: openai, gemini)", c.LLM.Provider)
	}

	switch c.Auth.Mode {
	case "static":
	case "remote":
		if c.Auth.VerifyURL == "" {
			return fmt.Errorf("AUTH_VERIFY_URL is required for remote auth")
		}
	default:
		return fmt.Errorf("unknown auth mode %q (use: static, remote)", c.Auth.Mode)
	}

	if c.Limits.MaxBodyBytes <= 0 {
		return fmt.Errorf("max body bytes must be positive")
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("LLM max tokens must be positive")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseTokenTable parses "token=uid:email,token2=uid2:email2".
func parseTokenTable(s string) (map[string]string, error) {
	out := make(map[string]string)
	for _, entry := range splitList(s) {
		token, identity, ok := strings.Cut(entry, "=")
		if !ok || token == "" || identity == "" {
			return nil, fmt.Errorf("malformed entry %q (want token=uid:email)", entry)
		}
		out[token] = identity
	}
	return out, nil
}
