// Package questiongen writes new quiz questions with an LLM provider.
package questiongen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/abhisek/gameiq/internal/catalog"
	"github.com/abhisek/gameiq/internal/ledger"
	"github.com/abhisek/gameiq/internal/llm"
	"github.com/abhisek/gameiq/internal/quiz"
)

var _ quiz.Generator = (*LLMGenerator)(nil)

// LLMGenerator implements quiz.Generator. Each request is paid for by the
// requesting user through the provider's metering.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
	log      zerolog.Logger
}

func New(provider llm.Provider, cfg Config, log zerolog.Logger) *LLMGenerator {
	if cfg.Attempts < 1 {
		cfg.Attempts = 1
	}
	return &LLMGenerator{provider: provider, config: cfg, log: log}
}

// batchOutput is the raw response before validation.
type batchOutput struct {
	Questions []catalog.QuestionData `json:"questions"`
}

// Generate returns exactly req.Count validated questions.
func (g *LLMGenerator) Generate(ctx context.Context, req quiz.GenerateRequest) ([]catalog.QuestionData, error) {
	ctx = llm.ForUser(ctx, req.UserID, ledger.PurposeQuizGeneration)

	llmReq := llm.Request{
		System:      systemPrompt,
		Messages:    llm.UserMessage(buildUserMessage(req, g.config)),
		Schema:      QuizSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}

	var lastErr error
	for attempt := 1; attempt <= g.config.Attempts; attempt++ {
		qs, err := g.generateOnce(ctx, llmReq, req)
		if err == nil {
			return qs, nil
		}
		lastErr = err

		var verr *ValidationError
		if !errors.As(err, &verr) || !verr.Retryable {
			return nil, err
		}
		g.log.Warn().
			Str("validator", verr.Validator).
			Str("user_id", req.UserID).
			Int("attempt", attempt).
			Msg("generated batch rejected")
	}
	return nil, lastErr
}

func (g *LLMGenerator) generateOnce(ctx context.Context, llmReq llm.Request, req quiz.GenerateRequest) ([]catalog.QuestionData, error) {
	resp, err := g.provider.Generate(ctx, llmReq)
	if err != nil {
		return nil, fmt.Errorf("LLM generation failed: %w", err)
	}

	var out batchOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}

	for _, v := range g.config.Validators {
		if verr := v.Validate(out.Questions, req); verr != nil {
			return nil, verr
		}
	}

	g.log.Debug().
		Str("user_id", req.UserID).
		Str("sport", req.Sport).
		Str("position", req.Position).
		Int("count", len(out.Questions)).
		Int("tokens", resp.Usage.Total()).
		Msg("questions generated")
	return out.Questions, nil
}
