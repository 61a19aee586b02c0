package quiz

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/abhisek/gameiq/internal/apperr"
	"github.com/abhisek/gameiq/internal/catalog"
	"github.com/abhisek/gameiq/internal/store"
)

// DefaultGeneratedSize is the number of questions in a generated quiz.
const DefaultGeneratedSize = 15

// GeneratedCategory receives generated questions whose category hint does
// not name an existing category.
const (
	GeneratedCategory            = "generated-scenarios"
	GeneratedCategoryDescription = "AI-generated situational scenarios and decision-making questions"
)

// maxAvoidScenarios bounds the scenarios passed to a generator.
const maxAvoidScenarios = 5

// GenerateRequest asks a Generator for new questions.
type GenerateRequest struct {
	UserID     string
	Sport      string
	Position   string
	Count      int
	Categories []string
	Avoid      []string // scenarios the user has already seen
}

// Generator produces new questions. It must return exactly Count
// well-formed questions or an error; it never writes to the store.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) ([]catalog.QuestionData, error)
}

// GenerateOptions tune GenerateNewQuiz.
type GenerateOptions struct {
	// UseAI generates the whole quiz instead of sampling the catalog.
	UseAI bool
}

// SessionFilter narrows GetSessions. Empty fields match everything.
type SessionFilter struct {
	Sport    string
	Position string
	MinScore *int // keeps attempts scoring at least this much
}

// SessionSummary is a session with its attempts, newest first.
type SessionSummary struct {
	Session       store.Session
	Attempts      []store.Attempt
	TotalAttempts int
	BestScore     int
	LatestScore   int
	Passed        bool
}

// Manager creates and lists quiz sessions.
type Manager struct {
	store   *store.Store
	catalog *catalog.Catalog
	gen     Generator
	log     zerolog.Logger

	size    int
	shuffle func(n int, swap func(i, j int))
	now     func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithGenerator enables generated questions.
func WithGenerator(g Generator) Option {
	return func(m *Manager) { m.gen = g }
}

// WithGeneratedSize overrides DefaultGeneratedSize.
func WithGeneratedSize(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.size = n
		}
	}
}

// WithShuffle replaces the random permutation used when sampling.
func WithShuffle(fn func(n int, swap func(i, j int))) Option {
	return func(m *Manager) { m.shuffle = fn }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a Manager.
func NewManager(s *store.Store, cat *catalog.Catalog, log zerolog.Logger, opts ...Option) *Manager {
	m := &Manager{
		store:   s,
		catalog: cat,
		log:     log.With().Str("component", "quiz").Logger(),
		size:    DefaultGeneratedSize,
		shuffle: rand.Shuffle,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CreateOrGetCoreQuiz returns the user's CORE session for a sport and
// position, creating it from the catalog on first use.
func (m *Manager) CreateOrGetCoreQuiz(ctx context.Context, userID, sport, position string) (*store.Session, error) {
	sport, position, err := normalize(sport, position)
	if err != nil {
		return nil, err
	}
	if err := requireUser(ctx, m.store, userID); err != nil {
		return nil, err
	}

	core, err := m.store.CoreSession(ctx, userID, sport, position)
	if err != nil {
		return nil, err
	}
	if core != nil {
		return core, nil
	}

	questions, err := m.catalog.Questions(ctx, sport, position)
	if err != nil {
		return nil, err
	}
	var ids []int64
	for _, q := range questions {
		if q.Source == store.SourceCatalog {
			ids = append(ids, q.ID)
		}
	}
	if len(ids) == 0 {
		return nil, apperr.State(apperr.CodeNoQuestionsAvailable,
			"no questions available for %s %s", sport, position)
	}

	core = &store.Session{
		ID:          uuid.NewString(),
		UserID:      userID,
		Kind:        store.KindCore,
		Sport:       sport,
		Position:    position,
		Name:        fmt.Sprintf("Core %s %s Quiz", catalog.DisplayName(sport), catalog.DisplayName(position)),
		QuestionIDs: ids,
		CreatedAt:   m.now(),
	}
	if err := m.store.InsertSession(ctx, core); err != nil {
		if !store.IsUniqueViolation(err) {
			return nil, err
		}
		// Lost a race with a concurrent first call.
		existing, rerr := m.store.CoreSession(ctx, userID, sport, position)
		if rerr != nil {
			return nil, rerr
		}
		if existing == nil {
			return nil, err
		}
		return existing, nil
	}

	m.log.Info().
		Str("user_id", userID).
		Str("session_id", core.ID).
		Str("sport", sport).
		Str("position", position).
		Int("questions", len(ids)).
		Msg("core quiz created")
	return core, nil
}

// CanGenerateNewQuiz reports whether the user may generate the next quiz.
func (m *Manager) CanGenerateNewQuiz(ctx context.Context, userID, sport, position string) (bool, error) {
	p, err := m.Progress(ctx, userID, sport, position)
	if err != nil {
		return false, err
	}
	return p.CanGenerate, nil
}

// Progress returns the user's place in the unlock sequence.
func (m *Manager) Progress(ctx context.Context, userID, sport, position string) (Progress, error) {
	sport, position, err := normalize(sport, position)
	if err != nil {
		return Progress{}, err
	}
	if err := requireUser(ctx, m.store, userID); err != nil {
		return Progress{}, err
	}
	core, latest, err := gateInputs(ctx, m.store.Repos, userID, sport, position)
	if err != nil {
		return Progress{}, err
	}
	p := ProgressOf(core, latest)
	p.QuestionsPerQuiz = m.size
	p.AIAvailable = m.gen != nil
	return p, nil
}

func gateInputs(ctx context.Context, r *store.Repos, userID, sport, position string) (core, latest *store.Session, err error) {
	core, err = r.CoreSession(ctx, userID, sport, position)
	if err != nil {
		return nil, nil, err
	}
	latest, err = r.LatestGenerated(ctx, userID, sport, position)
	if err != nil {
		return nil, nil, err
	}
	return core, latest, nil
}

// nextSequence is the sequence the next GENERATED session takes.
func nextSequence(latest *store.Session) int {
	if latest == nil {
		return 1
	}
	return latest.Sequence + 1
}

// GenerateNewQuiz creates the next GENERATED session once the gate is open.
// Nothing is written unless the whole quiz, including any generated
// questions, can be stored.
func (m *Manager) GenerateNewQuiz(ctx context.Context, userID, sport, position string, opts GenerateOptions) (*store.Session, error) {
	sport, position, err := normalize(sport, position)
	if err != nil {
		return nil, err
	}
	if err := requireUser(ctx, m.store, userID); err != nil {
		return nil, err
	}

	core, latest, err := gateInputs(ctx, m.store.Repos, userID, sport, position)
	if err != nil {
		return nil, err
	}
	if !CanGenerate(core, latest) {
		p := ProgressOf(core, latest)
		m.log.Info().
			Str("user_id", userID).
			Str("sport", sport).
			Str("position", position).
			Str("stage", string(p.Stage)).
			Msg("quiz generation refused")
		return nil, apperr.State(apperr.CodeGenerationNotUnlocked,
			"pass the previous quiz with at least %d%% to unlock a new one: %s", PassThreshold, p)
	}
	if opts.UseAI && m.gen == nil {
		return nil, apperr.State(apperr.CodeGeneratorUnavailable, "AI question generation is not configured")
	}
	// The gate is re-checked against this sequence before anything is
	// written; a concurrent writer also trips the unique index on it.
	seq := nextSequence(latest)

	sessions, err := m.store.ListSessions(ctx, userID, store.SessionFilter{Sport: sport, Position: position})
	if err != nil {
		return nil, err
	}
	pool, err := m.catalog.Questions(ctx, sport, position)
	if err != nil {
		return nil, err
	}

	plan, err := m.plan(pool, sessions, opts)
	if err != nil {
		return nil, err
	}

	var generated []catalog.QuestionData
	if plan.need > 0 {
		generated, err = m.generate(ctx, userID, sport, position, plan)
		if err != nil {
			return nil, err
		}
	}

	sess := &store.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Kind:      store.KindGenerated,
		Sport:     sport,
		Position:  position,
		Sequence:  seq,
		Name:      fmt.Sprintf("Generated %s %s Quiz #%d", catalog.DisplayName(sport), catalog.DisplayName(position), seq),
		CreatedAt: m.now(),
	}
	err = m.store.InTx(ctx, func(tx *store.Repos) error {
		core, latest, err := gateInputs(ctx, tx, userID, sport, position)
		if err != nil {
			return err
		}
		if !CanGenerate(core, latest) || nextSequence(latest) != seq {
			return errGateMoved
		}
		newIDs, err := saveGenerated(ctx, tx, sess.ID, sport, position, generated, sess.CreatedAt)
		if err != nil {
			return err
		}
		ids := make([]int64, 0, len(plan.picked)+len(newIDs)+len(plan.repeats))
		ids = append(ids, plan.picked...)
		ids = append(ids, newIDs...)
		sess.QuestionIDs = append(ids, plan.repeats...)
		m.shuffle(len(sess.QuestionIDs), func(i, j int) {
			sess.QuestionIDs[i], sess.QuestionIDs[j] = sess.QuestionIDs[j], sess.QuestionIDs[i]
		})
		return tx.InsertSession(ctx, sess)
	})
	if err != nil {
		if errors.Is(err, errGateMoved) || store.IsUniqueViolation(err) {
			m.log.Warn().
				Str("user_id", userID).
				Int("sequence", seq).
				Msg("quiz generation lost a concurrent race")
			return nil, apperr.State(apperr.CodeConcurrentUpdate,
				"another quiz for %s %s was generated concurrently", sport, position)
		}
		return nil, err
	}

	m.log.Info().
		Str("user_id", userID).
		Str("session_id", sess.ID).
		Int("sequence", sess.Sequence).
		Int("sampled", len(plan.picked)).
		Int("generated", len(generated)).
		Int("repeats", len(plan.repeats)).
		Msg("generated quiz created")
	return sess, nil
}

var errGateMoved = errors.New("quiz progression changed during generation")

// samplePlan is the composition of a generated quiz before anything is
// written.
type samplePlan struct {
	picked  []int64 // unseen catalog questions
	repeats []int64 // previously served questions
	need    int     // questions to generate
	avoid   []string
}

// plan applies the exclusion policy: prefer questions the user has never
// been served, fill a shortfall with generated questions when a generator
// is configured, otherwise repeat served ones.
func (m *Manager) plan(pool []store.Question, sessions []store.Session, opts GenerateOptions) (samplePlan, error) {
	var p samplePlan

	served := make(map[int64]bool)
	var servedOrder []int64
	for _, s := range sessions {
		for _, id := range s.QuestionIDs {
			if !served[id] {
				served[id] = true
				servedOrder = append(servedOrder, id)
			}
		}
	}

	byID := make(map[int64]store.Question, len(pool))
	var unseen, seen []int64
	for _, q := range pool {
		byID[q.ID] = q
		if served[q.ID] {
			seen = append(seen, q.ID)
		} else {
			unseen = append(unseen, q.ID)
		}
	}

	// Latest served scenarios first.
	for i := len(servedOrder) - 1; i >= 0 && len(p.avoid) < maxAvoidScenarios; i-- {
		if q, ok := byID[servedOrder[i]]; ok {
			p.avoid = append(p.avoid, q.Scenario)
		}
	}

	if opts.UseAI {
		p.need = m.size
		return p, nil
	}

	p.picked = m.sample(unseen, m.size)
	short := m.size - len(p.picked)
	if short == 0 {
		return p, nil
	}
	if m.gen != nil {
		p.need = short
		return p, nil
	}
	if len(pool) < m.size {
		return samplePlan{}, apperr.State(apperr.CodeNoQuestionsAvailable,
			"only %d questions available, a quiz needs %d", len(pool), m.size)
	}
	p.repeats = m.sample(seen, short)
	return p, nil
}

func (m *Manager) sample(ids []int64, n int) []int64 {
	out := append([]int64(nil), ids...)
	m.shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func (m *Manager) generate(ctx context.Context, userID, sport, position string, p samplePlan) ([]catalog.QuestionData, error) {
	cats, err := m.catalog.Categories(ctx, sport, position)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(cats))
	for _, c := range cats {
		names = append(names, c.Name)
	}

	out, err := m.gen.Generate(ctx, GenerateRequest{
		UserID:     userID,
		Sport:      sport,
		Position:   position,
		Count:      p.need,
		Categories: names,
		Avoid:      p.avoid,
	})
	if err != nil {
		m.log.Warn().Err(err).Str("user_id", userID).Int("count", p.need).Msg("question generation failed")
		if apperr.KindOf(err) != apperr.KindUnknown {
			return nil, err
		}
		return nil, apperr.ExternalGeneration(err, "question generation failed")
	}
	if len(out) != p.need {
		return nil, apperr.ExternalGeneration(nil, "generator returned %d questions, want %d", len(out), p.need)
	}
	seen := make(map[string]bool, len(out))
	for _, q := range out {
		if err := q.Validate(); err != nil {
			return nil, apperr.ExternalGeneration(err, "generator returned a malformed question")
		}
		if seen[q.ID] {
			return nil, apperr.ExternalGeneration(nil, "generator returned duplicate question id %q", q.ID)
		}
		seen[q.ID] = true
	}
	return out, nil
}

// saveGenerated stores generated questions under their hinted category, or
// under GeneratedCategory, and returns their ids in order.
func saveGenerated(ctx context.Context, tx *store.Repos, sessionID, sport, position string, qs []catalog.QuestionData, at time.Time) ([]int64, error) {
	if len(qs) == 0 {
		return nil, nil
	}
	cats, err := tx.Categories(ctx, sport, position)
	if err != nil {
		return nil, err
	}
	catIDs := make(map[string]int64, len(cats))
	for _, c := range cats {
		catIDs[catalog.NormalizeKey(c.Name)] = c.ID
	}

	ids := make([]int64, 0, len(qs))
	for _, qd := range qs {
		catID, ok := catIDs[catalog.NormalizeKey(qd.CategoryHint)]
		if !ok {
			catID, err = tx.EnsureCategory(ctx, store.Category{
				Sport:       sport,
				Position:    position,
				Name:        GeneratedCategory,
				Description: GeneratedCategoryDescription,
			})
			if err != nil {
				return nil, err
			}
			catIDs[GeneratedCategory] = catID
		}
		key := fmt.Sprintf("generated_%s_%s", sessionID, qd.ID)
		q := qd.ToQuestion(catID, sport, position, key, store.SourceGenerated)
		q.CreatedAt = at
		inserted, err := tx.InsertQuestion(ctx, q)
		if err != nil {
			return nil, err
		}
		if !inserted {
			return nil, fmt.Errorf("generated question %q already stored", key)
		}
		ids = append(ids, q.ID)
	}
	return ids, nil
}

// GetSessions lists a user's sessions with their attempts.
func (m *Manager) GetSessions(ctx context.Context, userID string, f SessionFilter) ([]SessionSummary, error) {
	if err := requireUser(ctx, m.store, userID); err != nil {
		return nil, err
	}
	sessions, err := m.store.ListSessions(ctx, userID, store.SessionFilter{
		Sport:    catalog.NormalizeKey(f.Sport),
		Position: catalog.NormalizeKey(f.Position),
	})
	if err != nil {
		return nil, err
	}

	out := make([]SessionSummary, 0, len(sessions))
	for _, s := range sessions {
		attempts, err := m.store.AttemptsForSession(ctx, s.ID)
		if err != nil {
			return nil, err
		}
		sum := SessionSummary{
			Session:       s,
			TotalAttempts: s.TotalAttempts,
			BestScore:     s.BestScore,
			Passed:        Passed(s.BestScore),
		}
		if len(attempts) > 0 {
			sum.LatestScore = attempts[0].TotalScore
		}
		for _, a := range attempts {
			if f.MinScore == nil || a.TotalScore >= *f.MinScore {
				sum.Attempts = append(sum.Attempts, a)
			}
		}
		out = append(out, sum)
	}
	return out, nil
}

func normalize(sport, position string) (string, string, error) {
	sport, position = catalog.NormalizeKey(sport), catalog.NormalizeKey(position)
	if sport == "" || position == "" {
		return "", "", apperr.Validation("sport and position are required")
	}
	return sport, position, nil
}

func requireUser(ctx context.Context, s *store.Store, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return apperr.Validation("user id is required")
	}
	u, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if u == nil {
		return apperr.NotFound("user %s not found", userID)
	}
	return nil
}
