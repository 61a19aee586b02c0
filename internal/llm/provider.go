// Package llm talks to the text-generation services behind coaching chat
// and quiz generation. Every provider is wrapped as
// retry -> metered -> base, so each attempt passes the usage ledger.
package llm

import (
	"context"
	"encoding/json"
)

// Provider sends one request to a model.
type Provider interface {
	// Generate returns the model's answer. With a Schema set, Content is
	// JSON validated against it; otherwise Text holds the plain reply.
	Generate(ctx context.Context, req Request) (*Response, error)

	// Name is the provider family, e.g. "anthropic".
	Name() string

	// ModelID is the configured model identifier.
	ModelID() string
}

// Request describes what to send to the model.
type Request struct {
	System   string
	Messages []Message

	// Schema asks for structured JSON output conforming to it.
	Schema *Schema

	MaxTokens   int
	Temperature float64
}

// Message is one turn of a conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a JSON Schema the response must satisfy. Name doubles as the
// OpenAI schema name, so keep it kebab-case.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// Response is the model's output.
type Response struct {
	// Content is the validated JSON for structured requests.
	Content json.RawMessage

	// Text is the reply of a plain request.
	Text string

	Usage      Usage
	Model      string
	StopReason string // "end" or "max_tokens"
}

// Usage is the token count of one request.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Total is input plus output tokens.
func (u Usage) Total() int {
	return u.InputTokens + u.OutputTokens
}

// UserMessage is a single-turn conversation.
func UserMessage(content string) []Message {
	return []Message{{Role: RoleUser, Content: content}}
}
