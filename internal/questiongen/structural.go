package questiongen

import (
	"fmt"

	"github.com/abhisek/gameiq/internal/catalog"
	"github.com/abhisek/gameiq/internal/quiz"
)

const (
	maxScenarioLen    = 1200
	maxExplanationLen = 1500
)

// StructuralValidator checks the batch size and the fixed question shape.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(qs []catalog.QuestionData, req quiz.GenerateRequest) *ValidationError {
	if len(qs) != req.Count {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("got %d questions, want %d", len(qs), req.Count),
			Retryable: true,
		}
	}
	for i, q := range qs {
		if err := q.Validate(); err != nil {
			return &ValidationError{
				Validator: v.Name(),
				Message:   fmt.Sprintf("question %d: %v", i+1, err),
				Retryable: true,
			}
		}
		if len(q.Scenario) > maxScenarioLen {
			return &ValidationError{
				Validator: v.Name(),
				Message:   fmt.Sprintf("question %s: scenario exceeds %d characters", q.ID, maxScenarioLen),
				Retryable: true,
			}
		}
		if q.Explanation == "" || len(q.Explanation) > maxExplanationLen {
			return &ValidationError{
				Validator: v.Name(),
				Message:   fmt.Sprintf("question %s: explanation empty or over %d characters", q.ID, maxExplanationLen),
				Retryable: true,
			}
		}
	}
	return nil
}
