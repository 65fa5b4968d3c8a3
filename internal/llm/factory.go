package llm

import (
	"context"
	"fmt"
	"net/http"

	"collabboard/internal/config"
)

// NewProvider returns the Client selected by cfg.Provider ("openai" or
// "gemini"). Empty defaults to openai.
func NewProvider(ctx context.Context, cfg config.LLMConfig) (Client, error) {
	provider := cfg.Provider
	if provider == "" {
		provider = "openai"
	}
	switch provider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("openai provider requires OPENAI_API_KEY")
		}
		client := &http.Client{Timeout: cfg.Timeout}
		return NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL, client), nil
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("gemini provider requires GEMINI_API_KEY")
		}
		return NewGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q (use: openai, gemini)", provider)
	}
}
