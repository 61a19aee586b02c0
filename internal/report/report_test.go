package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/gameiq/internal/ledger"
	"github.com/abhisek/gameiq/internal/quiz"
	"github.com/abhisek/gameiq/internal/store"
)

func TestUsage(t *testing.T) {
	var buf bytes.Buffer
	err := Usage(&buf, &ledger.Summary{
		UserID:         "u1",
		Tier:           store.TierBasic,
		CapCents:       300,
		SpentCents:     125,
		RemainingCents: 175,
		Calls:          2,
		InputTokens:    1200,
		OutputTokens:   800,
		PeriodStart:    time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		Recent: []store.UsageRecord{
			{Purpose: ledger.PurposeChat, Model: "claude-haiku-4-5", InputTokens: 600, OutputTokens: 400, CostCents: 1, Success: true},
		},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "AI usage for u1")
	assert.Contains(t, out, "$1.25 of $3.00")
	assert.Contains(t, out, "$1.75")
	assert.Contains(t, out, "1200 in / 800 out")
	assert.Contains(t, out, "41%")
	assert.Contains(t, out, "claude-haiku-4-5")
	assert.NotContains(t, out, "\x1b[", "non-terminal writers get plain text")
}

func TestUsage_NoAccess(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Usage(&buf, &ledger.Summary{UserID: "u2", Tier: store.TierNone}))
	assert.Contains(t, buf.String(), "No AI access")
}

func TestSessions(t *testing.T) {
	took := 42
	var buf bytes.Buffer
	err := Sessions(&buf, []quiz.SessionSummary{{
		Session: store.Session{
			ID:          "s1",
			Kind:        store.KindCore,
			Name:        "Core Soccer Goalkeeper Quiz",
			QuestionIDs: []int64{1, 2, 3, 4},
		},
		Attempts: []store.Attempt{
			{AttemptNumber: 2, TotalScore: 75, CorrectAnswers: 3, TotalQuestions: 4, TotalTimeTaken: &took},
			{AttemptNumber: 1, TotalScore: 50, CorrectAnswers: 2, TotalQuestions: 4},
		},
		TotalAttempts: 2,
		BestScore:     75,
		LatestScore:   75,
		Passed:        true,
	}})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Core Soccer Goalkeeper Quiz")
	assert.Contains(t, out, "passed")
	assert.Contains(t, out, "3/4")
	assert.Contains(t, out, "42s")
	assert.Contains(t, out, "75%")
}

func TestSessions_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Sessions(&buf, nil))
	assert.Contains(t, buf.String(), "No quizzes yet.")
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Progress(&buf, quiz.Progress{
		Stage:            quiz.StageGenUnlocked,
		Sequence:         2,
		BestScore:        80,
		CanGenerate:      true,
		QuestionsPerQuiz: 15,
		AIAvailable:      true,
	}))
	out := buf.String()
	assert.Contains(t, out, "unlocked")
	assert.Contains(t, out, "quiz #2 passed")
	assert.Contains(t, out, "15 questions per generated quiz, AI generation available")

	buf.Reset()
	require.NoError(t, Progress(&buf, quiz.Progress{Stage: quiz.StageNoCore}))
	assert.NotContains(t, buf.String(), "questions per generated quiz")
}

func TestBarColor(t *testing.T) {
	assert.Equal(t, Secondary, Bar{Percent: 0.2}.fillColor())
	assert.Equal(t, Warning, Bar{Percent: 0.8}.fillColor())
	assert.Equal(t, Error, Bar{Percent: 1.2}.fillColor())
}

func TestCents(t *testing.T) {
	tests := map[int64]string{0: "$0.00", 5: "$0.05", 300: "$3.00", 1234: "$12.34", -50: "-$0.50"}
	for in, want := range tests {
		assert.Equal(t, want, cents(in))
	}
}
