package catalog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/gameiq/internal/store"
)

const sampleCatalog = `{
  "sport": "basketball",
  "position": "point-guard",
  "categories": {
    "pick-and-roll": {
      "description": "Reading the screen",
      "questions": [
        {"id": "pnr_1", "scenario": "Big sets a high screen.", "question": "Defender goes under. What do you do?",
         "options": [{"id":"A","text":"Pull up"},{"id":"B","text":"Reject"},{"id":"C","text":"Pass back"},{"id":"D","text":"Reset"}],
         "correct": "A", "explanation": "Space to shoot.", "difficulty": "beginner", "tags": ["screens"]},
        {"id": "pnr_2", "scenario": "Hedge from the big.", "question": "Where is the outlet?",
         "options": [{"id":"A","text":"Corner"},{"id":"B","text":"Roller"},{"id":"C","text":"Wing"},{"id":"D","text":"Dribble out"}],
         "correct": "B", "explanation": "Roller is open.", "difficulty": "intermediate", "tags": []}
      ]
    },
    "transition": {
      "description": "Pushing pace",
      "questions": [
        {"id": "tr_1", "scenario": "3 on 2 break.", "question": "First read?",
         "options": [{"id":"A","text":"Attack middle"},{"id":"B","text":"Stop"},{"id":"C","text":"Lob"},{"id":"D","text":"Spin"}],
         "correct": "A", "explanation": "Force a commitment.", "difficulty": "advanced", "tags": ["fast-break"]}
      ]
    }
  }
}`

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(context.Background(), store.Config{DSN: filepath.Join(t.TempDir(), "catalog.db")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestParseFileName(t *testing.T) {
	tests := []struct {
		name     string
		sport    string
		position string
		wantErr  bool
	}{
		{"basketball__point-guard_core.json", "basketball", "point-guard", false},
		{"Soccer__Center_Back_core.json", "soccer", "center-back", false},
		{"basketball_point-guard_core.json", "", "", true},
		{"basketball__point-guard.json", "", "", true},
		{"__x_core.json", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sport, position, err := ParseFileName(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.sport, sport)
			assert.Equal(t, tt.position, position)
		})
	}
}

func TestNormalizeKeyAndDisplayName(t *testing.T) {
	assert.Equal(t, "point-guard", NormalizeKey(" Point Guard "))
	assert.Equal(t, "point-guard", NormalizeKey("POINT_GUARD"))
	assert.Equal(t, "Point Guard", DisplayName("point-guard"))
	assert.Equal(t, "Soccer", DisplayName("soccer"))
}

func TestImportDir_Idempotent(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	dir := t.TempDir()
	writeFile(t, dir, "basketball__point-guard_core.json", sampleCatalog)

	im := NewImporter(s, zerolog.Nop())
	res, err := im.ImportDir(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Files)
	assert.Equal(t, 3, res.Inserted)
	assert.Empty(t, res.Failed)

	again, err := im.ImportDir(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Inserted)
	assert.Equal(t, 3, again.Skipped)

	cat := New(s)
	qs, err := cat.Questions(ctx, "Basketball", "Point Guard")
	require.NoError(t, err)
	require.Len(t, qs, 3)

	// Categories are imported in name order, questions in file order.
	assert.Equal(t, "pnr_1", qs[0].ExternalKey)
	assert.Equal(t, "pnr_2", qs[1].ExternalKey)
	assert.Equal(t, "tr_1", qs[2].ExternalKey)
	assert.Equal(t, "B", qs[1].CorrectOption)
	assert.Equal(t, store.SourceCatalog, qs[0].Source)

	cats, err := cat.Categories(ctx, "basketball", "point-guard")
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "Reading the screen", cats[0].Description)
}

func TestImportFiles_SkipsBrokenFiles(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	dir := t.TempDir()

	good := writeFile(t, dir, "basketball__point-guard_core.json", sampleCatalog)
	badJSON := writeFile(t, dir, "soccer__goalkeeper_core.json", "{not json")
	badName := writeFile(t, dir, "volleyball_core.json", sampleCatalog)
	badQuestion := writeFile(t, dir, "hockey__goalie_core.json",
		strings.Replace(sampleCatalog, `"correct": "A", "explanation": "Space`, `"correct": "E", "explanation": "Space`, 1))

	res := NewImporter(s, zerolog.Nop()).ImportFiles(ctx, badJSON, good, badName, badQuestion)
	assert.Equal(t, 1, res.Files)
	assert.Equal(t, 3, res.Inserted)
	assert.ElementsMatch(t, []string{badJSON, badName, badQuestion}, res.Failed)

	// The invalid file rolled back completely.
	n, err := s.CountQuestions(ctx, "hockey", "goalie")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestQuestionDataValidate(t *testing.T) {
	valid := QuestionData{
		ID:       "q1",
		Scenario: "s",
		Question: "q",
		Options: []store.Option{
			{ID: "A", Text: "a"}, {ID: "B", Text: "b"}, {ID: "C", Text: "c"}, {ID: "D", Text: "d"},
		},
		Correct:    "C",
		Difficulty: "Intermediate",
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(q *QuestionData)
	}{
		{"three options", func(q *QuestionData) { q.Options = q.Options[:3] }},
		{"unknown correct", func(q *QuestionData) { q.Correct = "E" }},
		{"duplicate option", func(q *QuestionData) { q.Options[1].ID = "A" }},
		{"empty scenario", func(q *QuestionData) { q.Scenario = " " }},
		{"bad difficulty", func(q *QuestionData) { q.Difficulty = "expert" }},
		{"missing id", func(q *QuestionData) { q.ID = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := valid
			q.Options = append([]store.Option(nil), valid.Options...)
			tt.mutate(&q)
			assert.Error(t, q.Validate())
		})
	}
}
