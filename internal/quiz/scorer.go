package quiz

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/abhisek/gameiq/internal/apperr"
	"github.com/abhisek/gameiq/internal/catalog"
	"github.com/abhisek/gameiq/internal/store"
)

// maxSubmitRetries bounds retries after a lost race on the session.
const maxSubmitRetries = 5

// Answer is the user's choice for one question.
type Answer struct {
	QuestionID     int64
	SelectedAnswer string
	TimeTaken      *int // seconds
}

// Submission is a full-quiz answer set, in session order.
type Submission struct {
	Answers        []Answer
	TotalTimeTaken *int // seconds
}

// AttemptStart is what a client needs to present an attempt.
type AttemptStart struct {
	Session           store.Session
	Questions         []store.Question
	NextAttemptNumber int // advisory, the number is assigned on submit
}

// AttemptDetail is a recorded attempt with its per-question results.
type AttemptDetail struct {
	Attempt   store.Attempt
	Results   []store.QuestionResult
	Questions []store.Question // same order as Results
}

// Scorer grades and records attempts.
type Scorer struct {
	store   *store.Store
	catalog *catalog.Catalog
	log     zerolog.Logger
	now     func() time.Time
}

// NewScorer creates a Scorer.
func NewScorer(s *store.Store, cat *catalog.Catalog, log zerolog.Logger) *Scorer {
	return &Scorer{
		store:   s,
		catalog: cat,
		log:     log.With().Str("component", "scorer").Logger(),
		now:     time.Now,
	}
}

// StartAttempt returns the session's questions in order. It writes nothing.
func (s *Scorer) StartAttempt(ctx context.Context, userID, sessionID string) (*AttemptStart, error) {
	sess, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	questions, err := s.sessionQuestions(ctx, sess)
	if err != nil {
		return nil, err
	}
	last, err := s.store.MaxAttemptNumber(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	return &AttemptStart{Session: *sess, Questions: questions, NextAttemptNumber: last + 1}, nil
}

// SubmitAttempt grades a full answer set and records it together with the
// session aggregates. Concurrent submissions on one session each get their
// own attempt number.
func (s *Scorer) SubmitAttempt(ctx context.Context, userID, sessionID string, sub Submission) (*store.Attempt, error) {
	sess, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	n := len(sess.QuestionIDs)
	if len(sub.Answers) != n {
		return nil, apperr.Validation("expected %d answers, got %d", n, len(sub.Answers))
	}
	questions, err := s.sessionQuestions(ctx, sess)
	if err != nil {
		return nil, err
	}

	results := make([]store.QuestionResult, n)
	correct := 0
	for i, a := range sub.Answers {
		q := questions[i]
		if a.QuestionID != q.ID {
			return nil, apperr.Validation("answer %d is for question %d, expected question %d", i+1, a.QuestionID, q.ID)
		}
		ok := a.SelectedAnswer == q.CorrectOption
		if ok {
			correct++
		}
		results[i] = store.QuestionResult{
			QuestionID:     q.ID,
			Position:       i + 1,
			SelectedAnswer: a.SelectedAnswer,
			IsCorrect:      ok,
			TimeTaken:      a.TimeTaken,
		}
	}
	score := Score(correct, n)

	for try := 1; try <= maxSubmitRetries; try++ {
		attempt := &store.Attempt{
			ID:             uuid.NewString(),
			SessionID:      sess.ID,
			UserID:         userID,
			TotalScore:     score,
			CorrectAnswers: correct,
			TotalQuestions: n,
			TotalTimeTaken: sub.TotalTimeTaken,
			CompletedAt:    s.now(),
		}
		updated, err := s.record(ctx, attempt, results)
		if err == nil {
			s.log.Info().
				Str("user_id", userID).
				Str("session_id", sess.ID).
				Int("attempt", attempt.AttemptNumber).
				Int("score", score).
				Int("best_score", updated.BestScore).
				Bool("passed", Passed(updated.BestScore)).
				Msg("attempt scored")
			return attempt, nil
		}
		if !errors.Is(err, store.ErrVersionConflict) && !store.IsUniqueViolation(err) {
			return nil, err
		}
		s.log.Debug().Err(err).Str("session_id", sess.ID).Int("try", try).Msg("attempt submission conflict, retrying")
	}
	return nil, apperr.State(apperr.CodeConcurrentUpdate,
		"session %s is being updated concurrently, try again", sess.ID)
}

// record writes the attempt, its results and the new aggregates in one
// transaction. The attempt number is assigned here.
func (s *Scorer) record(ctx context.Context, a *store.Attempt, results []store.QuestionResult) (*store.Session, error) {
	var updated store.Session
	err := s.store.InTx(ctx, func(tx *store.Repos) error {
		cur, err := tx.GetSession(ctx, a.SessionID)
		if err != nil {
			return err
		}
		if cur == nil {
			return apperr.NotFound("quiz session %s not found", a.SessionID)
		}
		last, err := tx.MaxAttemptNumber(ctx, cur.ID)
		if err != nil {
			return err
		}
		a.AttemptNumber = last + 1
		if err := tx.InsertAttempt(ctx, a); err != nil {
			return err
		}
		for i := range results {
			results[i].AttemptID = a.ID
		}
		if err := tx.InsertResults(ctx, results); err != nil {
			return err
		}
		updated = ApplyAttemptResult(*cur, a.ID, a.TotalScore)
		return tx.UpdateSessionAggregates(ctx, &updated, cur.Version)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// GetAttemptDetail returns an attempt owned by userID with its results in
// question order.
func (s *Scorer) GetAttemptDetail(ctx context.Context, userID, attemptID string) (*AttemptDetail, error) {
	a, err := s.store.GetAttempt(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, apperr.NotFound("quiz attempt %s not found", attemptID)
	}
	if a.UserID != userID {
		return nil, apperr.Ownership("quiz attempt %s does not belong to user %s", attemptID, userID)
	}
	results, err := s.store.ResultsForAttempt(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(results))
	for i, r := range results {
		ids[i] = r.QuestionID
	}
	questions, err := s.catalog.QuestionsByID(ctx, ids)
	if err != nil {
		return nil, err
	}
	return &AttemptDetail{Attempt: *a, Results: results, Questions: questions}, nil
}

func (s *Scorer) ownedSession(ctx context.Context, userID, sessionID string) (*store.Session, error) {
	sess, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, apperr.NotFound("quiz session %s not found", sessionID)
	}
	if sess.UserID != userID {
		return nil, apperr.Ownership("quiz session %s does not belong to user %s", sessionID, userID)
	}
	return sess, nil
}

func (s *Scorer) sessionQuestions(ctx context.Context, sess *store.Session) ([]store.Question, error) {
	questions, err := s.catalog.QuestionsByID(ctx, sess.QuestionIDs)
	if err != nil {
		return nil, err
	}
	if len(questions) != len(sess.QuestionIDs) {
		return nil, fmt.Errorf("session %s references %d questions, found %d", sess.ID, len(sess.QuestionIDs), len(questions))
	}
	return questions, nil
}
