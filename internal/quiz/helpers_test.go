package quiz

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/gameiq/internal/catalog"
	"github.com/abhisek/gameiq/internal/store"
)

var fourOptions = []store.Option{
	{ID: "A", Text: "first"},
	{ID: "B", Text: "second"},
	{ID: "C", Text: "third"},
	{ID: "D", Text: "fourth"},
}

type fixture struct {
	store  *store.Store
	cat    *catalog.Catalog
	mgr    *Manager
	scorer *Scorer
}

func noShuffle(int, func(i, j int)) {}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	s, err := store.Open(context.Background(), store.Config{DSN: filepath.Join(t.TempDir(), "quiz.db")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	cat := catalog.New(s)
	opts = append([]Option{WithShuffle(noShuffle)}, opts...)
	return &fixture{
		store:  s,
		cat:    cat,
		mgr:    NewManager(s, cat, zerolog.Nop(), opts...),
		scorer: NewScorer(s, cat, zerolog.Nop()),
	}
}

func (f *fixture) addUser(t *testing.T, id string) {
	t.Helper()
	require.NoError(t, f.store.UpsertUser(context.Background(), store.User{ID: id, Tier: store.TierPremium}))
}

// seed inserts n catalog questions for soccer/goalkeeper under category.
func (f *fixture) seed(t *testing.T, category string, n int) []int64 {
	t.Helper()
	ctx := context.Background()
	catID, err := f.store.EnsureCategory(ctx, store.Category{Sport: "soccer", Position: "goalkeeper", Name: category})
	require.NoError(t, err)

	ids := make([]int64, 0, n)
	for i := range n {
		q := &store.Question{
			CategoryID:    catID,
			Sport:         "soccer",
			Position:      "goalkeeper",
			ExternalKey:   fmt.Sprintf("%s_%d", category, i),
			Scenario:      fmt.Sprintf("%s scenario %d", category, i),
			Question:      "What do you do?",
			Options:       fourOptions,
			CorrectOption: "A",
			Difficulty:    "beginner",
			Source:        store.SourceCatalog,
		}
		_, err := f.store.InsertQuestion(ctx, q)
		require.NoError(t, err)
		ids = append(ids, q.ID)
	}
	return ids
}

// answers answers the first correct questions right and the rest wrong.
func (f *fixture) answers(t *testing.T, sess *store.Session, correct int) Submission {
	t.Helper()
	qs, err := f.cat.QuestionsByID(context.Background(), sess.QuestionIDs)
	require.NoError(t, err)
	sub := Submission{}
	for i, q := range qs {
		choice := q.CorrectOption
		if i >= correct {
			for _, o := range q.Options {
				if o.ID != q.CorrectOption {
					choice = o.ID
					break
				}
			}
		}
		sub.Answers = append(sub.Answers, Answer{QuestionID: q.ID, SelectedAnswer: choice})
	}
	return sub
}

func (f *fixture) pass(t *testing.T, userID string, sess *store.Session) {
	t.Helper()
	_, err := f.scorer.SubmitAttempt(context.Background(), userID, sess.ID, f.answers(t, sess, len(sess.QuestionIDs)))
	require.NoError(t, err)
}

type fakeGenerator struct {
	mu    sync.Mutex
	calls []GenerateRequest
	hint  string
	err   error
	short bool
	// barrier, when set, holds each call until every party has arrived.
	barrier *sync.WaitGroup
}

func (g *fakeGenerator) Generate(_ context.Context, req GenerateRequest) ([]catalog.QuestionData, error) {
	g.mu.Lock()
	g.calls = append(g.calls, req)
	call := len(g.calls)
	g.mu.Unlock()

	if g.barrier != nil {
		g.barrier.Done()
		g.barrier.Wait()
	}
	if g.err != nil {
		return nil, g.err
	}
	n := req.Count
	if g.short {
		n--
	}
	out := make([]catalog.QuestionData, 0, n)
	for i := range n {
		out = append(out, catalog.QuestionData{
			ID:           fmt.Sprintf("q%d_%d", call, i+1),
			CategoryHint: g.hint,
			Scenario:     fmt.Sprintf("generated scenario %d-%d", call, i),
			Question:     "Which option?",
			Options:      fourOptions,
			Correct:      "B",
			Explanation:  "Because.",
			Difficulty:   "advanced",
			Tags:         []string{"generated"},
		})
	}
	return out, nil
}
