package questiongen

import (
	"github.com/abhisek/gameiq/internal/catalog"
	"github.com/abhisek/gameiq/internal/llm"
)

// The batch size is not in the schema: OpenAI strict mode and Anthropic
// structured output reject minItems/maxItems. StructuralValidator checks it.

var optionIDs = []any{"A", "B", "C", "D"}

// QuizSchema is the JSON schema of a generated batch.
var QuizSchema = &llm.Schema{
	Name:        "quiz-questions",
	Description: "A batch of multiple-choice game situation questions",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type":  "array",
				"items": questionDefinition(),
			},
		},
		"required":             []any{"questions"},
		"additionalProperties": false,
	},
}

func questionDefinition() map[string]any {
	difficulties := make([]any, len(catalog.Difficulties))
	for i, d := range catalog.Difficulties {
		difficulties[i] = d
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id": map[string]any{
				"type":        "string",
				"description": "Identifier unique within the batch",
			},
			"categoryHint": map[string]any{
				"type":        "string",
				"description": "Name of the closest listed category, or empty",
			},
			"scenario": map[string]any{
				"type":        "string",
				"description": "The game situation the athlete is in",
			},
			"question": map[string]any{
				"type":        "string",
				"description": "What the athlete must decide",
			},
			"options": map[string]any{
				"type":        "array",
				"description": "Exactly 4 options with ids A, B, C and D",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id":   map[string]any{"type": "string", "enum": optionIDs},
						"text": map[string]any{"type": "string"},
					},
					"required":             []any{"id", "text"},
					"additionalProperties": false,
				},
			},
			"correct": map[string]any{
				"type": "string",
				"enum": optionIDs,
			},
			"explanation": map[string]any{
				"type":        "string",
				"description": "Why the correct option is the best decision",
			},
			"difficulty": map[string]any{
				"type": "string",
				"enum": difficulties,
			},
			"tags": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required":             []any{"id", "categoryHint", "scenario", "question", "options", "correct", "explanation", "difficulty", "tags"},
		"additionalProperties": false,
	}
}
