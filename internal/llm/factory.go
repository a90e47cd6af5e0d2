package llm

import (
	"context"
	"fmt"

	"studypath_backend/internal/config"
)

// NewProvider creates a Provider from configuration, wrapped with
// logging and retry middleware: caller → retry → logging → vendor.
func NewProvider(ctx context.Context, cfg config.LLMConfig) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "openai":
		base, err = NewOpenAIProvider(cfg)
	case "anthropic":
		base, err = NewAnthropicProvider(cfg)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	return WithRetry(WithLogging(base), cfg.Retry), nil
}
