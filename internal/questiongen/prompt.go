package questiongen

import (
	"fmt"
	"strings"

	"github.com/abhisek/gameiq/internal/catalog"
	"github.com/abhisek/gameiq/internal/quiz"
)

const systemPrompt = `You are an expert coach writing game-IQ quiz questions for athletes.

Rules:
- Every question is a realistic game situation specific to the given sport and position.
- Test situational decision-making, tactical awareness, opponent analysis and strategic thinking.
- Each question has exactly 4 options with ids "A", "B", "C" and "D", and exactly one is correct.
- Distractors must be plausible choices a real player might make, not obviously wrong answers.
- The explanation says why the correct option is best and why the others fall short.
- Vary difficulty across "beginner", "intermediate" and "advanced".
- Set categoryHint to the closest listed category name, or leave it empty if none fits.
- Give every question a distinct id and 2 to 4 short lowercase tags.
- Do not repeat or paraphrase any scenario from the "already seen" list.`

// buildUserMessage constructs the user message for one generation request.
func buildUserMessage(req quiz.GenerateRequest, cfg Config) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Sport: %s\n", catalog.DisplayName(req.Sport))
	fmt.Fprintf(&b, "Position: %s\n", catalog.DisplayName(req.Position))
	fmt.Fprintf(&b, "Questions: exactly %d\n", req.Count)

	b.WriteString("\nCategories:\n")
	b.WriteString(buildList(req.Categories, 0))

	b.WriteString("\n\nAlready seen by this athlete (do not duplicate):\n")
	b.WriteString(buildList(req.Avoid, cfg.MaxAvoid))

	fmt.Fprintf(&b, "\n\nGenerate exactly %d new questions for %s %s training.",
		req.Count, catalog.DisplayName(req.Sport), catalog.DisplayName(req.Position))
	return b.String()
}

// buildList numbers items for the prompt, keeping the last limit of them.
// Returns "None" for an empty list.
func buildList(items []string, limit int) string {
	if len(items) == 0 {
		return "None"
	}
	if limit > 0 && len(items) > limit {
		items = items[len(items)-limit:]
	}

	var b strings.Builder
	for i, it := range items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, it)
	}
	return strings.TrimRight(b.String(), "\n")
}
