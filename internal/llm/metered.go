package llm

import (
	"context"
	"errors"
	"time"

	"github.com/abhisek/gameiq/internal/apperr"
	"github.com/abhisek/gameiq/internal/ledger"
)

// Meter gates and records metered calls; *ledger.Ledger implements it.
type Meter interface {
	Run(ctx context.Context, userID, purpose string, fn func(ctx context.Context) (ledger.Usage, error)) error
}

// MeteredProvider checks the caller's budget before each request and
// records its token usage afterwards. The user comes from WithUser.
type MeteredProvider struct {
	inner Provider
	meter Meter
}

// WithMetering wraps p so every request is paid for by the context's user.
func WithMetering(p Provider, m Meter) Provider {
	return &MeteredProvider{inner: p, meter: m}
}

func (m *MeteredProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	userID := UserFrom(ctx)
	if userID == "" {
		return nil, apperr.Validation("AI call without a paying user")
	}

	var resp *Response
	err := m.meter.Run(ctx, userID, PurposeFrom(ctx), func(ctx context.Context) (ledger.Usage, error) {
		start := time.Now()
		var err error
		resp, err = m.inner.Generate(ctx, req)

		u := ledger.Usage{
			Provider: m.inner.Name(),
			Model:    m.inner.ModelID(),
			Latency:  time.Since(start),
		}
		var tokens Usage
		if resp != nil {
			tokens = resp.Usage
			if resp.Model != "" {
				u.Model = resp.Model
			}
		} else {
			// Invalid output still cost tokens.
			var pe *Error
			if errors.As(err, &pe) {
				tokens = pe.Usage
			}
		}
		u.InputTokens = int64(tokens.InputTokens)
		u.OutputTokens = int64(tokens.OutputTokens)
		return u, err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (m *MeteredProvider) Name() string    { return m.inner.Name() }
func (m *MeteredProvider) ModelID() string { return m.inner.ModelID() }
