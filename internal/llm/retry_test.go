package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/abhisek/gameiq/internal/apperr"
)

func retryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: 1 * time.Millisecond,
		MaxWait:     10 * time.Millisecond,
		Multiplier:  2.0,
	}
}

var okContent = json.RawMessage(`{"ok":true}`)

func TestRetry_SucceedsOnFirstAttempt(t *testing.T) {
	fake := NewFakeProvider(FakeResponse{Content: okContent})
	p := WithRetry(fake, retryConfig())

	resp, err := p.Generate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != `{"ok":true}` {
		t.Fatalf("unexpected content: %s", resp.Content)
	}
	if fake.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", fake.CallCount())
	}
}

func TestRetry_TransientThenSuccess(t *testing.T) {
	fake := NewFakeProvider(
		FakeResponse{Err: &Error{Kind: ErrUnavailable, Err: errors.New("down")}},
		FakeResponse{Err: &Error{Kind: ErrRateLimited}},
		FakeResponse{Content: okContent},
	)
	p := WithRetry(fake, retryConfig())

	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fake.CallCount() != 3 {
		t.Fatalf("expected 3 calls, got %d", fake.CallCount())
	}
}

func TestRetry_AllAttemptsFail(t *testing.T) {
	down := FakeResponse{Err: &Error{Kind: ErrUnavailable, Err: errors.New("down")}}
	fake := NewFakeProvider(down, down, down, down)
	p := WithRetry(fake, retryConfig())

	_, err := p.Generate(context.Background(), Request{})
	if kind, ok := KindOf(err); !ok || kind != ErrUnavailable {
		t.Fatalf("expected unavailable, got %v", err)
	}
	if fake.CallCount() != 3 {
		t.Fatalf("expected 3 calls, got %d", fake.CallCount())
	}
}

func TestRetry_NotRetried(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"rejected", &Error{Kind: ErrRejected}},
		{"truncated", &Error{Kind: ErrTruncated}},
		{"budget exceeded", apperr.BudgetExceeded(300, 300)},
		{"subscription required", apperr.SubscriptionRequired()},
		{"canceled", context.Canceled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := NewFakeProvider(FakeResponse{Err: tt.err}, FakeResponse{Content: okContent})
			p := WithRetry(fake, retryConfig())

			_, err := p.Generate(context.Background(), Request{})
			if !errors.Is(err, tt.err) {
				t.Fatalf("expected %v, got %v", tt.err, err)
			}
			if fake.CallCount() != 1 {
				t.Fatalf("expected 1 call, got %d", fake.CallCount())
			}
		})
	}
}

func TestRetry_InvalidResponseRetriedOnce(t *testing.T) {
	bad := FakeResponse{Err: invalidResponse(nil, "garbage")}
	fake := NewFakeProvider(bad, bad, FakeResponse{Content: okContent})
	p := WithRetry(fake, RetryConfig{MaxAttempts: 5, InitialWait: time.Millisecond, MaxWait: time.Millisecond, Multiplier: 1})

	_, err := p.Generate(context.Background(), Request{})
	if kind, _ := KindOf(err); kind != ErrInvalidResponse {
		t.Fatalf("expected invalid response, got %v", err)
	}
	if fake.CallCount() != 2 {
		t.Fatalf("expected 2 calls, got %d", fake.CallCount())
	}
}

func TestRetry_HonoursRetryAfter(t *testing.T) {
	r := &RetryProvider{config: retryConfig()}
	got := r.backoff(0, &Error{Kind: ErrRateLimited, RetryAfter: 7 * time.Second})
	if got != 7*time.Second {
		t.Fatalf("expected 7s, got %v", got)
	}
}

func TestRetry_BackoffCapped(t *testing.T) {
	r := &RetryProvider{config: RetryConfig{InitialWait: time.Second, MaxWait: 2 * time.Second, Multiplier: 10}}
	for attempt := range 5 {
		got := r.backoff(attempt, errors.New("x"))
		if got > 2400*time.Millisecond {
			t.Fatalf("attempt %d: backoff %v exceeds cap plus jitter", attempt, got)
		}
	}
}

func TestRetry_ContextCancelledWhileWaiting(t *testing.T) {
	down := FakeResponse{Err: &Error{Kind: ErrUnavailable}}
	fake := NewFakeProvider(down, down)
	p := WithRetry(fake, RetryConfig{MaxAttempts: 2, InitialWait: time.Hour, MaxWait: time.Hour, Multiplier: 1})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := p.Generate(ctx, Request{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if fake.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", fake.CallCount())
	}
}

func TestWithTimeout_BoundsRetries(t *testing.T) {
	down := FakeResponse{Err: &Error{Kind: ErrUnavailable}}
	fake := NewFakeProvider(down, down)
	p := WithTimeout(WithRetry(fake, RetryConfig{MaxAttempts: 2, InitialWait: time.Hour, MaxWait: time.Hour, Multiplier: 1}), 10*time.Millisecond)

	_, err := p.Generate(context.Background(), Request{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if p.Name() != "fake" {
		t.Fatalf("expected name to pass through, got %q", p.Name())
	}
}

func TestWithTimeout_ZeroIsNoop(t *testing.T) {
	fake := NewFakeProvider()
	if WithTimeout(fake, 0) != Provider(fake) {
		t.Fatal("expected the provider to be returned unchanged")
	}
}
