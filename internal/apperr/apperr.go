// Package apperr defines the tagged error type shared by the quiz engine,
// the usage ledger and their outer surfaces. Callers switch on Kind rather
// than on concrete error types.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a recoverable failure.
type Kind string

const (
	KindUnknown              Kind = ""
	KindNotFound             Kind = "not_found"
	KindOwnership            Kind = "ownership"
	KindValidation           Kind = "validation"
	KindState                Kind = "state"
	KindBudgetExceeded       Kind = "budget_exceeded"
	KindSubscriptionRequired Kind = "subscription_required"
	KindExternalGeneration   Kind = "external_generation"
)

// Codes refine a Kind for callers that need to tell two failures of the
// same kind apart.
const (
	CodeNoQuestionsAvailable  = "no_questions_available"
	CodeGenerationNotUnlocked = "generation_not_unlocked"
	CodeGeneratorUnavailable  = "generator_unavailable"
	CodeConcurrentUpdate      = "concurrent_update"
)

// Error is a failure carrying a Kind.
type Error struct {
	Kind    Kind
	Code    string
	Message string

	// SpentCents and CapCents are set for KindBudgetExceeded.
	SpentCents int64
	CapCents   int64

	Err error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// RemainingCents is the unspent part of the cap, never negative.
func (e *Error) RemainingCents() int64 {
	if e.SpentCents >= e.CapCents {
		return 0
	}
	return e.CapCents - e.SpentCents
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// CodeOf returns the Code of the first *Error in err's chain.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Ownership(format string, args ...any) *Error {
	return &Error{Kind: KindOwnership, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// State builds a KindState error with a refining code.
func State(code, format string, args ...any) *Error {
	return &Error{Kind: KindState, Code: code, Message: fmt.Sprintf(format, args...)}
}

func BudgetExceeded(spent, capCents int64) *Error {
	return &Error{
		Kind:       KindBudgetExceeded,
		Message:    fmt.Sprintf("monthly AI budget exhausted (%d of %d cents used)", spent, capCents),
		SpentCents: spent,
		CapCents:   capCents,
	}
}

func SubscriptionRequired() *Error {
	return &Error{
		Kind:    KindSubscriptionRequired,
		Message: "an active subscription is required for AI features",
	}
}

// ExternalGeneration wraps a failure of the generative collaborator.
func ExternalGeneration(err error, format string, args ...any) *Error {
	return &Error{Kind: KindExternalGeneration, Message: fmt.Sprintf(format, args...), Err: err}
}
