package store

import (
	"context"
	"database/sql"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

var attemptColumns = []string{
	"id", "session_id", "user_id", "attempt_number", "total_score", "correct_answers",
	"total_questions", "total_time_taken", "completed_at",
}

var resultColumns = []string{
	"attempt_id", "question_id", "position", "selected_answer", "is_correct", "time_taken",
}

// MaxAttemptNumber returns the highest attempt number of a session, or 0.
func (r *Repos) MaxAttemptNumber(ctx context.Context, sessionID string) (int, error) {
	sel := r.builder().Select(entsql.Max("attempt_number")).
		From(r.builder().Table(TableAttempts)).
		Where(entsql.EQ("session_id", sessionID))

	var n sql.NullInt64
	if err := r.queryRow(ctx, sel).Scan(&n); err != nil {
		return 0, fmt.Errorf("max attempt number: %w", err)
	}
	return int(n.Int64), nil
}

// InsertAttempt stores an attempt. A clashing (session, attempt number)
// surfaces as a unique violation.
func (r *Repos) InsertAttempt(ctx context.Context, a *Attempt) error {
	ins := r.builder().Insert(TableAttempts).
		Columns(attemptColumns...).
		Values(
			a.ID, a.SessionID, a.UserID, a.AttemptNumber, a.TotalScore, a.CorrectAnswers,
			a.TotalQuestions, nullInt(a.TotalTimeTaken), toMillis(a.CompletedAt),
		)
	if _, err := r.exec(ctx, ins); err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

// InsertResults stores the per-question results of one attempt in a single
// statement.
func (r *Repos) InsertResults(ctx context.Context, results []QuestionResult) error {
	if len(results) == 0 {
		return nil
	}
	ins := r.builder().Insert(TableQuestionResults).Columns(resultColumns...)
	for _, res := range results {
		ins.Values(res.AttemptID, res.QuestionID, res.Position, res.SelectedAnswer, res.IsCorrect, nullInt(res.TimeTaken))
	}
	if _, err := r.exec(ctx, ins); err != nil {
		return fmt.Errorf("insert results: %w", err)
	}
	return nil
}

// GetAttempt returns the attempt, or nil if it does not exist.
func (r *Repos) GetAttempt(ctx context.Context, id string) (*Attempt, error) {
	sel := r.builder().Select(attemptColumns...).
		From(r.builder().Table(TableAttempts)).
		Where(entsql.EQ("id", id))

	out, err := r.scanAttempts(ctx, sel)
	if err != nil || len(out) == 0 {
		return nil, err
	}
	return &out[0], nil
}

// AttemptsForSession returns a session's attempts, newest first.
func (r *Repos) AttemptsForSession(ctx context.Context, sessionID string) ([]Attempt, error) {
	sel := r.builder().Select(attemptColumns...).
		From(r.builder().Table(TableAttempts)).
		Where(entsql.EQ("session_id", sessionID)).
		OrderBy(entsql.Desc("attempt_number"))
	return r.scanAttempts(ctx, sel)
}

// ResultsForAttempt returns an attempt's results ordered by position.
func (r *Repos) ResultsForAttempt(ctx context.Context, attemptID string) ([]QuestionResult, error) {
	sel := r.builder().Select(resultColumns...).
		From(r.builder().Table(TableQuestionResults)).
		Where(entsql.EQ("attempt_id", attemptID)).
		OrderBy("position")

	rows, err := r.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var out []QuestionResult
	for rows.Next() {
		var (
			res       QuestionResult
			timeTaken sql.NullInt64
		)
		if err := rows.Scan(&res.AttemptID, &res.QuestionID, &res.Position, &res.SelectedAnswer, &res.IsCorrect, &timeTaken); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		res.TimeTaken = intPtr(timeTaken)
		out = append(out, res)
	}
	return out, rows.Err()
}

func (r *Repos) scanAttempts(ctx context.Context, sel *entsql.Selector) ([]Attempt, error) {
	rows, err := r.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var out []Attempt
	for rows.Next() {
		var (
			a           Attempt
			timeTaken   sql.NullInt64
			completedAt int64
		)
		if err := rows.Scan(
			&a.ID, &a.SessionID, &a.UserID, &a.AttemptNumber, &a.TotalScore, &a.CorrectAnswers,
			&a.TotalQuestions, &timeTaken, &completedAt,
		); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		a.TotalTimeTaken = intPtr(timeTaken)
		a.CompletedAt = fromMillis(completedAt)
		out = append(out, a)
	}
	return out, rows.Err()
}
