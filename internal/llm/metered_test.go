package llm

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/abhisek/gameiq/internal/apperr"
	"github.com/abhisek/gameiq/internal/ledger"
	"github.com/abhisek/gameiq/internal/store"
)

func newMeteredFixture(t *testing.T, tier store.Tier) (*store.Store, *ledger.Ledger) {
	t.Helper()
	ctx := context.Background()
	s, err := store.Open(ctx, store.Config{DSN: filepath.Join(t.TempDir(), "llm.db")})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if err := s.UpsertUser(ctx, store.User{ID: "u1", Tier: tier}); err != nil {
		t.Fatalf("upsert user: %v", err)
	}
	return s, ledger.New(s, zerolog.Nop())
}

// 100k input + 20k output tokens cost 60 cents.
var sixtyCentUsage = Usage{InputTokens: 100000, OutputTokens: 20000}

func TestMetered_RecordsUsage(t *testing.T) {
	s, l := newMeteredFixture(t, store.TierBasic)
	fake := NewFakeProvider(FakeResponse{Text: "hello", Usage: sixtyCentUsage})
	p := WithMetering(fake, l)

	ctx := ForUser(context.Background(), "u1", ledger.PurposeChat)
	resp, err := p.Generate(ctx, Request{Messages: UserMessage("hi")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "hello" {
		t.Fatalf("unexpected text %q", resp.Text)
	}

	recent, err := s.RecentUsage(ctx, "u1", 10)
	if err != nil {
		t.Fatalf("recent usage: %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("expected 1 usage record, got %d", len(recent))
	}
	r := recent[0]
	if r.Purpose != ledger.PurposeChat || r.Provider != "fake" || r.CostCents != 60 || !r.Success {
		t.Fatalf("unexpected record %+v", r)
	}
}

func TestMetered_InvalidOutputStillCharged(t *testing.T) {
	s, l := newMeteredFixture(t, store.TierPremium)
	fake := NewFakeProvider(FakeResponse{Content: json.RawMessage(`{"drill":"x"}`), Usage: sixtyCentUsage})
	p := WithMetering(fake, l)

	ctx := ForUser(context.Background(), "u1", ledger.PurposeQuizGeneration)
	_, err := p.Generate(ctx, Request{Messages: UserMessage("x"), Schema: testSchema()})
	if kind, _ := KindOf(err); kind != ErrInvalidResponse {
		t.Fatalf("expected invalid response, got %v", err)
	}

	recent, _ := s.RecentUsage(ctx, "u1", 10)
	if len(recent) != 1 || recent[0].Success || recent[0].CostCents != 60 {
		t.Fatalf("expected one failed 60 cent record, got %+v", recent)
	}
}

func TestMetered_BudgetExhausted(t *testing.T) {
	_, l := newMeteredFixture(t, store.TierBasic)
	fake := NewFakeProvider()
	for range 6 {
		fake.AddResponse(FakeResponse{Text: "ok", Usage: sixtyCentUsage})
	}
	p := WithRetry(WithMetering(fake, l), retryConfig())
	ctx := ForUser(context.Background(), "u1", ledger.PurposeChat)

	for i := range 5 {
		if _, err := p.Generate(ctx, Request{Messages: UserMessage("x")}); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	_, err := p.Generate(ctx, Request{Messages: UserMessage("x")})
	if !apperr.Is(err, apperr.KindBudgetExceeded) {
		t.Fatalf("expected budget exceeded, got %v", err)
	}
	if fake.CallCount() != 5 {
		t.Fatalf("rejected call should not reach the provider, got %d calls", fake.CallCount())
	}
}

func TestMetered_NoSubscriptionRejected(t *testing.T) {
	_, l := newMeteredFixture(t, store.TierNone)
	fake := NewFakeProvider(FakeResponse{Text: "ok"})
	p := WithMetering(fake, l)

	_, err := p.Generate(ForUser(context.Background(), "u1", ledger.PurposeChat), Request{})
	if !apperr.Is(err, apperr.KindSubscriptionRequired) {
		t.Fatalf("expected subscription required, got %v", err)
	}
	if fake.CallCount() != 0 {
		t.Fatal("provider should not be called")
	}
}

func TestMetered_RequiresUser(t *testing.T) {
	_, l := newMeteredFixture(t, store.TierPremium)
	p := WithMetering(NewFakeProvider(), l)

	_, err := p.Generate(context.Background(), Request{})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPurposeFrom(t *testing.T) {
	if got := PurposeFrom(context.Background()); got != "unknown" {
		t.Fatalf("expected unknown, got %q", got)
	}
	ctx := ForUser(context.Background(), "u9", ledger.PurposeWorkoutGeneration)
	if PurposeFrom(ctx) != ledger.PurposeWorkoutGeneration || UserFrom(ctx) != "u9" {
		t.Fatalf("unexpected context values %q %q", PurposeFrom(ctx), UserFrom(ctx))
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil || cfg.Enabled() {
		t.Fatalf("default config should be valid and disabled: %v", err)
	}
	cfg.Provider = "anthropic"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected missing key error")
	}
	cfg.Anthropic.APIKey = "k"
	if err := cfg.Validate(); err != nil || !cfg.Enabled() {
		t.Fatalf("expected valid enabled config: %v", err)
	}
	cfg.Provider = "mystery"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected unknown provider error")
	}
}

func TestNewProvider_Disabled(t *testing.T) {
	p, err := NewProvider(context.Background(), DefaultConfig(), nil)
	if err != nil || p != nil {
		t.Fatalf("expected nil provider, got %v, %v", p, err)
	}
}
