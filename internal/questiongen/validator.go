package questiongen

import (
	"fmt"

	"github.com/abhisek/gameiq/internal/catalog"
	"github.com/abhisek/gameiq/internal/quiz"
)

// Validator checks a generated batch. Implementations should be stateless
// and safe for concurrent use.
type Validator interface {
	// Name returns a short identifier, e.g. "structural".
	Name() string

	// Validate returns nil if the batch passes.
	Validate(qs []catalog.QuestionData, req quiz.GenerateRequest) *ValidationError
}

// ValidationError describes why a batch failed validation.
type ValidationError struct {
	Validator string
	Message   string
	Retryable bool // whether asking again is likely to fix it
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}
