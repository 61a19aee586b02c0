// Package coach answers free-form training questions. Every answer is a
// metered AI call with purpose "chat".
package coach

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/abhisek/gameiq/internal/apperr"
	"github.com/abhisek/gameiq/internal/catalog"
	"github.com/abhisek/gameiq/internal/ledger"
	"github.com/abhisek/gameiq/internal/llm"
)

const (
	MaxMessageLen = 2000
	maxTokens     = 1024
	temperature   = 0.7
)

const basePrompt = `You are an expert sports coach and trainer specializing in position-specific athletic development.
Your answers are practical, actionable and focused on helping athletes improve their performance.

Guidelines:
- Stay focused on sports, training and athletic development. Politely redirect anything else back to training.
- Give position-specific advice when you can.
- Include injury prevention considerations where relevant.
- Be encouraging.
- Keep answers between 200 and 400 words.`

// Reply is the coach's answer to one message.
type Reply struct {
	Sport     string    `json:"sport,omitempty"`
	Position  string    `json:"position,omitempty"`
	Message   string    `json:"message"`
	Answer    string    `json:"answer"`
	Model     string    `json:"model"`
	Tokens    int       `json:"tokens"`
	CreatedAt time.Time `json:"createdAt"`
}

// Coach sends athletes' questions to the configured provider.
type Coach struct {
	provider llm.Provider
	log      zerolog.Logger
	now      func() time.Time
}

// New returns a Coach. A nil provider makes every Ask fail with
// CodeGeneratorUnavailable.
func New(provider llm.Provider, log zerolog.Logger) *Coach {
	return &Coach{provider: provider, log: log, now: time.Now}
}

// Ask answers message for userID. sport and position are optional and
// narrow the advice.
func (c *Coach) Ask(ctx context.Context, userID, sport, position, message string) (*Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperr.Validation("message is required")
	}
	if utf8.RuneCountInString(message) > MaxMessageLen {
		return nil, apperr.Validation("message is longer than %d characters", MaxMessageLen)
	}
	if c.provider == nil {
		return nil, apperr.State(apperr.CodeGeneratorUnavailable, "AI coaching is not configured")
	}
	sport, position = catalog.NormalizeKey(sport), catalog.NormalizeKey(position)

	ctx = llm.ForUser(ctx, userID, ledger.PurposeChat)
	resp, err := c.provider.Generate(ctx, llm.Request{
		System:      systemPrompt(sport, position),
		Messages:    llm.UserMessage(message),
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		if apperr.KindOf(err) != apperr.KindUnknown {
			return nil, err
		}
		c.log.Warn().Err(err).Str("user_id", userID).Msg("coaching call failed")
		return nil, apperr.ExternalGeneration(err, "coaching answer failed")
	}

	return &Reply{
		Sport:     sport,
		Position:  position,
		Message:   message,
		Answer:    strings.TrimSpace(resp.Text),
		Model:     resp.Model,
		Tokens:    resp.Usage.Total(),
		CreatedAt: c.now(),
	}, nil
}

func systemPrompt(sport, position string) string {
	var b strings.Builder
	b.WriteString(basePrompt)
	if sport != "" {
		fmt.Fprintf(&b, "\n\nYou are specifically focused on %s training and development.", catalog.DisplayName(sport))
	}
	if position != "" {
		fmt.Fprintf(&b, "\nThe athlete plays %s, so tailor your advice to that position.", catalog.DisplayName(position))
	}
	return b.String()
}
