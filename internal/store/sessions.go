package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var sessionColumns = []string{
	"id", "user_id", "kind", "sport", "position", "sequence", "name", "question_ids",
	"is_completed", "best_score", "best_attempt_id", "total_attempts", "version",
	"created_at", "updated_at",
}

// InsertSession stores a new session. A duplicate (user, sport, position,
// sequence) surfaces as a unique violation; see IsUniqueViolation.
func (r *Repos) InsertSession(ctx context.Context, s *Session) error {
	ids, err := json.Marshal(s.QuestionIDs)
	if err != nil {
		return fmt.Errorf("marshal question ids: %w", err)
	}
	now := time.Now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = s.CreatedAt

	ins := r.builder().Insert(TableSessions).
		Columns(sessionColumns...).
		Values(
			s.ID, s.UserID, string(s.Kind), s.Sport, s.Position, s.Sequence, s.Name, string(ids),
			s.IsCompleted, s.BestScore, nullString(s.BestAttemptID), s.TotalAttempts, s.Version,
			toMillis(s.CreatedAt), toMillis(s.UpdatedAt),
		)
	if _, err := r.exec(ctx, ins); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// GetSession returns the session, or nil if it does not exist.
func (r *Repos) GetSession(ctx context.Context, id string) (*Session, error) {
	return r.oneSession(ctx, entsql.EQ("id", id))
}

// CoreSession returns the CORE session of a (user, sport, position), or nil.
func (r *Repos) CoreSession(ctx context.Context, userID, sport, position string) (*Session, error) {
	return r.oneSession(ctx, entsql.And(
		entsql.EQ("user_id", userID),
		entsql.EQ("sport", sport),
		entsql.EQ("position", position),
		entsql.EQ("kind", string(KindCore)),
	))
}

// LatestGenerated returns the most recently created GENERATED session of a
// (user, sport, position), or nil when none exists.
func (r *Repos) LatestGenerated(ctx context.Context, userID, sport, position string) (*Session, error) {
	sel := r.builder().Select(sessionColumns...).
		From(r.builder().Table(TableSessions)).
		Where(entsql.And(
			entsql.EQ("user_id", userID),
			entsql.EQ("sport", sport),
			entsql.EQ("position", position),
			entsql.EQ("kind", string(KindGenerated)),
		)).
		OrderBy(entsql.Desc("sequence")).
		Limit(1)

	out, err := r.scanSessions(ctx, sel)
	if err != nil || len(out) == 0 {
		return nil, err
	}
	return &out[0], nil
}

// CountSessions counts all sessions (CORE included) of a (user, sport,
// position).
func (r *Repos) CountSessions(ctx context.Context, userID, sport, position string) (int, error) {
	sel := r.builder().Select(entsql.Count("*")).
		From(r.builder().Table(TableSessions)).
		Where(entsql.And(
			entsql.EQ("user_id", userID),
			entsql.EQ("sport", sport),
			entsql.EQ("position", position),
		))
	var n int
	if err := r.queryRow(ctx, sel).Scan(&n); err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return n, nil
}

// ListSessions returns a user's sessions ordered by sport, position and
// sequence.
func (r *Repos) ListSessions(ctx context.Context, userID string, f SessionFilter) ([]Session, error) {
	preds := []*entsql.Predicate{entsql.EQ("user_id", userID)}
	if f.Sport != "" {
		preds = append(preds, entsql.EQ("sport", f.Sport))
	}
	if f.Position != "" {
		preds = append(preds, entsql.EQ("position", f.Position))
	}

	sel := r.builder().Select(sessionColumns...).
		From(r.builder().Table(TableSessions)).
		Where(entsql.And(preds...)).
		OrderBy("sport", "position", "sequence")
	return r.scanSessions(ctx, sel)
}

// UpdateSessionAggregates writes the attempt-derived fields of s if the
// stored version still equals expectedVersion, then bumps the version.
// It returns ErrVersionConflict when another writer got there first.
func (r *Repos) UpdateSessionAggregates(ctx context.Context, s *Session, expectedVersion int64) error {
	s.UpdatedAt = time.Now()
	upd := r.builder().Update(TableSessions).
		Set("is_completed", s.IsCompleted).
		Set("best_score", s.BestScore).
		Set("best_attempt_id", nullString(s.BestAttemptID)).
		Set("total_attempts", s.TotalAttempts).
		Set("version", expectedVersion+1).
		Set("updated_at", toMillis(s.UpdatedAt)).
		Where(entsql.And(entsql.EQ("id", s.ID), entsql.EQ("version", expectedVersion)))

	res, err := r.exec(ctx, upd)
	if err != nil {
		return fmt.Errorf("update session %s: %w", s.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrVersionConflict
	}
	s.Version = expectedVersion + 1
	return nil
}

func (r *Repos) oneSession(ctx context.Context, p *entsql.Predicate) (*Session, error) {
	sel := r.builder().Select(sessionColumns...).
		From(r.builder().Table(TableSessions)).
		Where(p).
		Limit(1)
	out, err := r.scanSessions(ctx, sel)
	if err != nil || len(out) == 0 {
		return nil, err
	}
	return &out[0], nil
}

func (r *Repos) scanSessions(ctx context.Context, sel *entsql.Selector) ([]Session, error) {
	rows, err := r.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func scanSession(rows *sql.Rows) (*Session, error) {
	var (
		s                    Session
		kind                 string
		ids                  []byte
		bestAttempt          sql.NullString
		createdAt, updatedAt int64
	)
	if err := rows.Scan(
		&s.ID, &s.UserID, &kind, &s.Sport, &s.Position, &s.Sequence, &s.Name, &ids,
		&s.IsCompleted, &s.BestScore, &bestAttempt, &s.TotalAttempts, &s.Version,
		&createdAt, &updatedAt,
	); err != nil {
		return nil, fmt.Errorf("scan session: %w", err)
	}
	if err := json.Unmarshal(ids, &s.QuestionIDs); err != nil {
		return nil, fmt.Errorf("decode question ids of session %s: %w", s.ID, err)
	}
	s.Kind = SessionKind(kind)
	s.BestAttemptID = bestAttempt.String
	s.CreatedAt = fromMillis(createdAt)
	s.UpdatedAt = fromMillis(updatedAt)
	return &s, nil
}
