package questiongen

import (
	"encoding/json"
	"fmt"

	"github.com/abhisek/gameiq/internal/catalog"
	"github.com/abhisek/gameiq/internal/quiz"
	"github.com/abhisek/gameiq/internal/store"
)

func testRequest(n int) quiz.GenerateRequest {
	return quiz.GenerateRequest{
		UserID:     "u1",
		Sport:      "soccer",
		Position:   "goalkeeper",
		Count:      n,
		Categories: []string{"shot-stopping", "distribution"},
		Avoid:      []string{"A striker breaks through one on one."},
	}
}

func testQuestion(i int) catalog.QuestionData {
	return catalog.QuestionData{
		ID:           fmt.Sprintf("g%d", i),
		CategoryHint: "distribution",
		Scenario:     fmt.Sprintf("You collect a cross in minute %d with the opponents pressing high.", i),
		Question:     "Where do you distribute?",
		Options: []store.Option{
			{ID: "A", Text: "Long to the striker"},
			{ID: "B", Text: "Quick throw to the free full-back"},
			{ID: "C", Text: "Hold the ball"},
			{ID: "D", Text: "Kick it out"},
		},
		Correct:     "B",
		Explanation: "The full-back is free and the press has committed forward.",
		Difficulty:  "intermediate",
		Tags:        []string{"distribution", "pressing"},
	}
}

func batchJSON(qs ...catalog.QuestionData) json.RawMessage {
	b, _ := json.Marshal(map[string]any{"questions": qs})
	return b
}

func batch(n int) []catalog.QuestionData {
	qs := make([]catalog.QuestionData, n)
	for i := range n {
		qs[i] = testQuestion(i + 1)
	}
	return qs
}
