// Package ledger meters AI calls per user and enforces the monthly spend
// cap of the user's subscription tier.
package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/abhisek/gameiq/internal/apperr"
	"github.com/abhisek/gameiq/internal/store"
)

// Monthly caps in cents.
const (
	BasicCapCents   int64 = 300
	PremiumCapCents int64 = 1000
)

// Purposes of metered calls.
const (
	PurposeChat              = "chat"
	PurposeQuizGeneration    = "quiz-generation"
	PurposeWorkoutGeneration = "workout-generation"
)

// Per-token prices in cents.
var (
	inputCentsPerToken  = decimal.RequireFromString("0.0003")
	outputCentsPerToken = decimal.RequireFromString("0.0015")
)

// CapCents returns the monthly cap for a tier. NONE has no AI access.
func CapCents(tier store.Tier) (int64, bool) {
	switch tier {
	case store.TierBasic:
		return BasicCapCents, true
	case store.TierPremium:
		return PremiumCapCents, true
	}
	return 0, false
}

// CostCents prices a call, rounding half away from zero to whole cents.
func CostCents(inputTokens, outputTokens int64) int64 {
	in := decimal.NewFromInt(inputTokens).Mul(inputCentsPerToken)
	out := decimal.NewFromInt(outputTokens).Mul(outputCentsPerToken)
	return in.Add(out).Round(0).IntPart()
}

// MonthStart is the first instant of t's calendar month in t's location.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// Usage describes one finished AI call.
type Usage struct {
	Provider     string
	Model        string
	InputTokens  int64
	OutputTokens int64
	Latency      time.Duration
	Err          error
}

// Summary is a user's spend for the current month.
type Summary struct {
	UserID         string              `json:"userId"`
	Tier           store.Tier          `json:"tier"`
	CapCents       int64               `json:"capCents"`
	SpentCents     int64               `json:"spentCents"`
	RemainingCents int64               `json:"remainingCents"`
	Calls          int64               `json:"calls"`
	InputTokens    int64               `json:"inputTokens"`
	OutputTokens   int64               `json:"outputTokens"`
	PeriodStart    time.Time           `json:"periodStart"`
	Recent         []store.UsageRecord `json:"recent,omitempty"`
}

// Ledger checks budgets and records usage.
type Ledger struct {
	store  *store.Store
	locker Locker
	log    zerolog.Logger
	now    func() time.Time
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock replaces time.Now. The clock's location decides month
// boundaries.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithLocker replaces the in-process per-user lock.
func WithLocker(lk Locker) Option {
	return func(l *Ledger) {
		if lk != nil {
			l.locker = lk
		}
	}
}

// New creates a Ledger.
func New(s *store.Store, log zerolog.Logger, opts ...Option) *Ledger {
	l := &Ledger{
		store:  s,
		locker: NewLocalLocker(),
		log:    log.With().Str("component", "ledger").Logger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// CheckBudget returns nil when the user may make another AI call, a
// SubscriptionRequired error for tier NONE and a BudgetExceeded error once
// this month's spend reached the cap.
func (l *Ledger) CheckBudget(ctx context.Context, userID string) error {
	u, err := l.user(ctx, userID)
	if err != nil {
		return err
	}
	capCents, ok := CapCents(u.Tier)
	if !ok {
		l.log.Info().Str("user_id", userID).Msg("ai call rejected: no subscription")
		return apperr.SubscriptionRequired()
	}
	totals, err := l.store.UsageSince(ctx, userID, MonthStart(l.now()))
	if err != nil {
		return err
	}
	if totals.CostCents >= capCents {
		l.log.Info().
			Str("user_id", userID).
			Int64("spent_cents", totals.CostCents).
			Int64("cap_cents", capCents).
			Msg("ai call rejected: budget exhausted")
		return apperr.BudgetExceeded(totals.CostCents, capCents)
	}
	return nil
}

// RecordUsage appends a usage record and returns its cost in cents. Failed
// calls are recorded too.
func (l *Ledger) RecordUsage(ctx context.Context, userID, purpose string, u Usage) (int64, error) {
	rec := &store.UsageRecord{
		ID:           uuid.NewString(),
		UserID:       userID,
		Purpose:      purpose,
		Provider:     u.Provider,
		Model:        u.Model,
		InputTokens:  u.InputTokens,
		OutputTokens: u.OutputTokens,
		CostCents:    CostCents(u.InputTokens, u.OutputTokens),
		LatencyMs:    u.Latency.Milliseconds(),
		Success:      u.Err == nil,
		CreatedAt:    l.now(),
	}
	if u.Err != nil {
		rec.ErrorMessage = u.Err.Error()
	}
	if err := l.store.InsertUsage(ctx, rec); err != nil {
		return 0, err
	}
	l.log.Debug().
		Str("user_id", userID).
		Str("purpose", purpose).
		Str("model", u.Model).
		Int64("input_tokens", u.InputTokens).
		Int64("output_tokens", u.OutputTokens).
		Int64("cost_cents", rec.CostCents).
		Bool("success", rec.Success).
		Msg("usage recorded")
	return rec.CostCents, nil
}

// Run performs one metered call: it holds the user's lock while checking
// the budget, calling fn and recording what fn reports. fn is not called
// when the budget check fails.
func (l *Ledger) Run(ctx context.Context, userID, purpose string, fn func(ctx context.Context) (Usage, error)) error {
	unlock, err := l.locker.Lock(ctx, userID)
	if err != nil {
		return err
	}
	defer unlock()

	if err := l.CheckBudget(ctx, userID); err != nil {
		return err
	}

	start := l.now()
	u, callErr := fn(ctx)
	if u.Latency == 0 {
		u.Latency = l.now().Sub(start)
	}
	if callErr != nil && u.Err == nil {
		u.Err = callErr
	}
	if _, err := l.RecordUsage(ctx, userID, purpose, u); err != nil {
		if callErr != nil {
			return callErr
		}
		return err
	}
	return callErr
}

// Summary reports the user's spend for the current month and their most
// recent records.
func (l *Ledger) Summary(ctx context.Context, userID string, recent int) (*Summary, error) {
	u, err := l.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	start := MonthStart(l.now())
	totals, err := l.store.UsageSince(ctx, userID, start)
	if err != nil {
		return nil, err
	}
	capCents, _ := CapCents(u.Tier)
	s := &Summary{
		UserID:         userID,
		Tier:           u.Tier,
		CapCents:       capCents,
		SpentCents:     totals.CostCents,
		RemainingCents: max(capCents-totals.CostCents, 0),
		Calls:          totals.Calls,
		InputTokens:    totals.InputTokens,
		OutputTokens:   totals.OutputTokens,
		PeriodStart:    start,
	}
	if recent > 0 {
		s.Recent, err = l.store.RecentUsage(ctx, userID, recent)
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (l *Ledger) user(ctx context.Context, userID string) (*store.User, error) {
	u, err := l.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.NotFound("user %s not found", userID)
	}
	return u, nil
}
