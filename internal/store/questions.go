package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var questionColumns = []string{
	"id", "category_id", "sport", "position", "external_key", "scenario", "question",
	"options", "correct_option", "explanation", "difficulty", "tags", "source", "created_at",
}

// EnsureCategory returns the id of the (sport, position, name) category,
// creating it when missing.
func (r *Repos) EnsureCategory(ctx context.Context, c Category) (int64, error) {
	sel := r.builder().Select("id").
		From(r.builder().Table(TableCategories)).
		Where(entsql.And(
			entsql.EQ("sport", c.Sport),
			entsql.EQ("position", c.Position),
			entsql.EQ("name", c.Name),
		))

	var id int64
	err := r.queryRow(ctx, sel).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("find category %q: %w", c.Name, err)
	}

	ins := r.builder().Insert(TableCategories).
		Columns("sport", "position", "name", "description").
		Values(c.Sport, c.Position, c.Name, c.Description)
	res, err := r.exec(ctx, ins)
	if err != nil {
		return 0, fmt.Errorf("insert category %q: %w", c.Name, err)
	}
	return res.LastInsertId()
}

// Categories lists the categories of a sport and position by name.
func (r *Repos) Categories(ctx context.Context, sport, position string) ([]Category, error) {
	sel := r.builder().Select("id", "sport", "position", "name", "description").
		From(r.builder().Table(TableCategories)).
		Where(entsql.And(entsql.EQ("sport", sport), entsql.EQ("position", position))).
		OrderBy("name")

	rows, err := r.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Sport, &c.Position, &c.Name, &c.Description); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// InsertQuestion stores q unless a question with the same external key
// already exists in its category. It reports whether a row was written and
// sets q.ID either way.
func (r *Repos) InsertQuestion(ctx context.Context, q *Question) (bool, error) {
	sel := r.builder().Select("id").
		From(r.builder().Table(TableQuestions)).
		Where(entsql.And(
			entsql.EQ("category_id", q.CategoryID),
			entsql.EQ("external_key", q.ExternalKey),
		))
	var existing int64
	err := r.queryRow(ctx, sel).Scan(&existing)
	if err == nil {
		q.ID = existing
		return false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("find question %q: %w", q.ExternalKey, err)
	}

	options, err := json.Marshal(q.Options)
	if err != nil {
		return false, fmt.Errorf("marshal options: %w", err)
	}
	tags := q.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return false, fmt.Errorf("marshal tags: %w", err)
	}
	if q.Source == "" {
		q.Source = SourceCatalog
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now()
	}

	ins := r.builder().Insert(TableQuestions).
		Columns(questionColumns[1:]...).
		Values(
			q.CategoryID, q.Sport, q.Position, q.ExternalKey, q.Scenario, q.Question,
			string(options), q.CorrectOption, q.Explanation, q.Difficulty, string(tagsJSON),
			string(q.Source), toMillis(q.CreatedAt),
		)
	res, err := r.exec(ctx, ins)
	if err != nil {
		return false, fmt.Errorf("insert question %q: %w", q.ExternalKey, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return false, fmt.Errorf("question id: %w", err)
	}
	q.ID = id
	return true, nil
}

// QuestionsFor returns every question of a sport and position in catalog
// order: by category, then by insertion.
func (r *Repos) QuestionsFor(ctx context.Context, sport, position string) ([]Question, error) {
	sel := r.builder().Select(questionColumns...).
		From(r.builder().Table(TableQuestions)).
		Where(entsql.And(entsql.EQ("sport", sport), entsql.EQ("position", position))).
		OrderBy("category_id", "id")
	return r.scanQuestions(ctx, sel)
}

// QuestionsByID returns the questions with the given ids in the order the
// ids were given. Unknown ids are skipped.
func (r *Repos) QuestionsByID(ctx context.Context, ids []int64) ([]Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	sel := r.builder().Select(questionColumns...).
		From(r.builder().Table(TableQuestions)).
		Where(entsql.In("id", args...))
	found, err := r.scanQuestions(ctx, sel)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]Question, len(found))
	for _, q := range found {
		byID[q.ID] = q
	}
	out := make([]Question, 0, len(ids))
	for _, id := range ids {
		if q, ok := byID[id]; ok {
			out = append(out, q)
		}
	}
	return out, nil
}

// CountQuestions returns the catalog size for a sport and position.
func (r *Repos) CountQuestions(ctx context.Context, sport, position string) (int, error) {
	sel := r.builder().Select(entsql.Count("*")).
		From(r.builder().Table(TableQuestions)).
		Where(entsql.And(entsql.EQ("sport", sport), entsql.EQ("position", position)))
	var n int
	if err := r.queryRow(ctx, sel).Scan(&n); err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return n, nil
}

func (r *Repos) scanQuestions(ctx context.Context, sel *entsql.Selector) ([]Question, error) {
	rows, err := r.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	var out []Question
	for rows.Next() {
		var (
			q             Question
			options, tags []byte
			source        string
			createdAt     int64
		)
		if err := rows.Scan(
			&q.ID, &q.CategoryID, &q.Sport, &q.Position, &q.ExternalKey, &q.Scenario, &q.Question,
			&options, &q.CorrectOption, &q.Explanation, &q.Difficulty, &tags, &source, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if err := json.Unmarshal(options, &q.Options); err != nil {
			return nil, fmt.Errorf("decode options of question %d: %w", q.ID, err)
		}
		if len(tags) > 0 {
			if err := json.Unmarshal(tags, &q.Tags); err != nil {
				return nil, fmt.Errorf("decode tags of question %d: %w", q.ID, err)
			}
		}
		q.Source = QuestionSource(source)
		q.CreatedAt = fromMillis(createdAt)
		out = append(out, q)
	}
	return out, rows.Err()
}
