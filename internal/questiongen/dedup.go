package questiongen

import (
	"fmt"
	"strings"

	"github.com/abhisek/gameiq/internal/catalog"
	"github.com/abhisek/gameiq/internal/quiz"
)

// DedupValidator rejects batches that repeat an id or a scenario, within
// the batch or against the scenarios the athlete has already seen.
type DedupValidator struct{}

func (v *DedupValidator) Name() string { return "dedup" }

func (v *DedupValidator) Validate(qs []catalog.QuestionData, req quiz.GenerateRequest) *ValidationError {
	seen := make(map[string]bool, len(req.Avoid)+len(qs))
	for _, s := range req.Avoid {
		seen[scenarioKey(s)] = true
	}
	ids := make(map[string]bool, len(qs))

	for _, q := range qs {
		if ids[q.ID] {
			return &ValidationError{
				Validator: v.Name(),
				Message:   fmt.Sprintf("duplicate id %q", q.ID),
				Retryable: true,
			}
		}
		ids[q.ID] = true

		key := scenarioKey(q.Scenario)
		if seen[key] {
			return &ValidationError{
				Validator: v.Name(),
				Message:   fmt.Sprintf("question %s repeats a known scenario", q.ID),
				Retryable: true,
			}
		}
		seen[key] = true
	}
	return nil
}

// scenarioKey folds case, punctuation and spacing so trivially reworded
// copies compare equal.
func scenarioKey(s string) string {
	var b strings.Builder
	space := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteRune(r)
			space = false
		default:
			space = true
		}
	}
	return b.String()
}
