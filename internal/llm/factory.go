package llm

import (
	"context"
	"fmt"
	"time"
)

// NewProvider builds the configured provider wrapped as
// timeout -> retry -> metered -> base. It returns nil, nil when AI is
// disabled.
func NewProvider(ctx context.Context, cfg Config, meter Meter) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !cfg.Enabled() {
		return nil, nil
	}

	var base Provider
	var err error
	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	return WithTimeout(Wrap(base, meter, cfg.Retry), cfg.Timeout), nil
}

// Wrap applies metering and retries to base.
func Wrap(base Provider, meter Meter, retry RetryConfig) Provider {
	return WithRetry(WithMetering(base, meter), retry)
}

type timeoutProvider struct {
	Provider
	d time.Duration
}

// WithTimeout bounds each Generate call, retries included, to d. A
// non-positive d returns p unchanged.
func WithTimeout(p Provider, d time.Duration) Provider {
	if d <= 0 {
		return p
	}
	return &timeoutProvider{Provider: p, d: d}
}

func (t *timeoutProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.Provider.Generate(ctx, req)
}
