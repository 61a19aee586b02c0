package store

import (
	"strings"
	"time"
)

// Tier is a user's subscription level.
type Tier string

const (
	TierNone    Tier = "NONE"
	TierBasic   Tier = "BASIC"
	TierPremium Tier = "PREMIUM"
)

// ParseTier accepts tier names case-insensitively.
func ParseTier(s string) (Tier, bool) {
	switch Tier(strings.ToUpper(strings.TrimSpace(s))) {
	case TierNone:
		return TierNone, true
	case TierBasic:
		return TierBasic, true
	case TierPremium:
		return TierPremium, true
	}
	return "", false
}

// User is the minimal account record the quiz engine and ledger need.
type User struct {
	ID          string
	DisplayName string
	Tier        Tier
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Category groups catalog questions for one sport and position.
type Category struct {
	ID          int64
	Sport       string
	Position    string
	Name        string
	Description string
}

// Option is one answer choice.
type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// QuestionSource records where a question came from.
type QuestionSource string

const (
	SourceCatalog   QuestionSource = "catalog"
	SourceGenerated QuestionSource = "generated"
)

// Question is a single multiple-choice scenario question.
type Question struct {
	ID            int64
	CategoryID    int64
	Sport         string
	Position      string
	ExternalKey   string
	Scenario      string
	Question      string
	Options       []Option
	CorrectOption string
	Explanation   string
	Difficulty    string
	Tags          []string
	Source        QuestionSource
	CreatedAt     time.Time
}

// SessionKind distinguishes the catalog-defined CORE quiz from the quizzes
// unlocked after it.
type SessionKind string

const (
	KindCore      SessionKind = "CORE"
	KindGenerated SessionKind = "GENERATED"
)

// Session is one unlockable quiz for a (user, sport, position).
// Sequence is 0 for CORE and k for the k-th GENERATED session.
type Session struct {
	ID            string
	UserID        string
	Kind          SessionKind
	Sport         string
	Position      string
	Sequence      int
	Name          string
	QuestionIDs   []int64
	IsCompleted   bool
	BestScore     int
	BestAttemptID string
	TotalAttempts int
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Attempt is one scored run through a session.
type Attempt struct {
	ID             string
	SessionID      string
	UserID         string
	AttemptNumber  int
	TotalScore     int
	CorrectAnswers int
	TotalQuestions int
	TotalTimeTaken *int // seconds
	CompletedAt    time.Time
}

// QuestionResult is the outcome of one question within an attempt.
type QuestionResult struct {
	AttemptID      string
	QuestionID     int64
	Position       int
	SelectedAnswer string
	IsCorrect      bool
	TimeTaken      *int // seconds
}

// UsageRecord is one metered AI call.
type UsageRecord struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Purpose      string    `json:"purpose"`
	Provider     string    `json:"provider"`
	Model        string    `json:"model"`
	InputTokens  int64     `json:"inputTokens"`
	OutputTokens int64     `json:"outputTokens"`
	CostCents    int64     `json:"costCents"`
	LatencyMs    int64     `json:"latencyMs"`
	Success      bool      `json:"success"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// UsageTotals aggregates usage records over a window.
type UsageTotals struct {
	Calls        int64
	CostCents    int64
	InputTokens  int64
	OutputTokens int64
}

// SessionFilter narrows session listings. Empty fields match everything.
type SessionFilter struct {
	Sport    string
	Position string
}
