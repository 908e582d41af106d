package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/kevinmichaelchen/gitfolio/internal/config"
)

var ErrMissingAPIKey = errors.New("an API key for the generation service is required")

// NewAnalyzer builds the Analyzer selected by cfg.LLMProvider.
func NewAnalyzer(ctx context.Context, cfg *config.Config) (Analyzer, error) {
	if cfg.AnalysisAPIKey() == "" {
		return nil, ErrMissingAPIKey
	}
	switch cfg.LLMProvider {
	case config.ProviderGemini, "":
		return NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiBaseURL)
	case config.ProviderOpenAI:
		return NewOpenAIClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.LLMProvider)
	}
}
