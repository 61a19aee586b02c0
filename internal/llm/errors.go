package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrorKind classifies provider failures for the retry policy.
type ErrorKind int

const (
	// ErrUnavailable covers 5xx, network and unclassified SDK errors.
	ErrUnavailable ErrorKind = iota
	// ErrRateLimited is a 429.
	ErrRateLimited
	// ErrInvalidResponse means the output did not parse or validate.
	ErrInvalidResponse
	// ErrTruncated means generation stopped at MaxTokens.
	ErrTruncated
	// ErrRejected is a 4xx other than 429; retrying will not help.
	ErrRejected
)

func (k ErrorKind) String() string {
	switch k {
	case ErrRateLimited:
		return "rate limited"
	case ErrInvalidResponse:
		return "invalid response"
	case ErrTruncated:
		return "response truncated"
	case ErrRejected:
		return "request rejected"
	}
	return "provider unavailable"
}

// Error is a provider failure.
type Error struct {
	Kind       ErrorKind
	Provider   string
	RetryAfter time.Duration   // set for ErrRateLimited when known
	Content    json.RawMessage // offending output for ErrInvalidResponse
	Usage      Usage           // tokens spent before the failure, if known
	Err        error
}

func (e *Error) Error() string {
	prefix := e.Kind.String()
	if e.Provider != "" {
		prefix = e.Provider + ": " + prefix
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", prefix, e.Err)
	}
	return prefix
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the ErrorKind of an *Error in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

func invalidResponse(raw json.RawMessage, format string, args ...any) *Error {
	return &Error{Kind: ErrInvalidResponse, Content: raw, Err: fmt.Errorf(format, args...)}
}

// statusError classifies an HTTP status returned by an SDK.
func statusError(provider string, status int, err error) *Error {
	kind := ErrUnavailable
	switch {
	case status == 429:
		kind = ErrRateLimited
	case status >= 400 && status < 500:
		kind = ErrRejected
	}
	return &Error{Kind: kind, Provider: provider, Err: err}
}
