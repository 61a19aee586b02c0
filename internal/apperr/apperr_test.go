package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf_WrappedError(t *testing.T) {
	base := NotFound("session %s not found", "s1")
	wrapped := fmt.Errorf("load session: %w", base)

	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.True(t, Is(wrapped, KindNotFound))
	assert.False(t, Is(wrapped, KindOwnership))
}

func TestKindOf_PlainError(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(errors.New("boom")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestStateCode(t *testing.T) {
	err := State(CodeGenerationNotUnlocked, "pass the previous quiz first")
	assert.Equal(t, KindState, KindOf(err))
	assert.Equal(t, CodeGenerationNotUnlocked, CodeOf(err))
}

func TestBudgetExceeded_Remaining(t *testing.T) {
	err := BudgetExceeded(240, 300)
	assert.Equal(t, int64(60), err.RemainingCents())

	over := BudgetExceeded(320, 300)
	assert.Equal(t, int64(0), over.RemainingCents())
	assert.Contains(t, over.Error(), "320 of 300")
}

func TestExternalGeneration_Unwrap(t *testing.T) {
	cause := errors.New("short result")
	err := ExternalGeneration(cause, "generate questions")
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "generate questions: short result", err.Error())
}
