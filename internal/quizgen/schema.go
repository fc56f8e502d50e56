package quizgen

import "github.com/abhisek/quizgen/internal/llm"

var optionText = map[string]any{"type": "string"}

// QuizSchema is the structured-output schema sent to providers. It is
// compatible with OpenAI strict mode: every property is required and no
// additional properties are allowed. Provider-side checks are advisory;
// Validate is authoritative.
var QuizSchema = &llm.Schema{
	Name:        "quiz",
	Description: "A multiple-choice quiz with exactly five questions",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type":        "array",
				"description": "Exactly 5 questions",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id": map[string]any{
							"type":        "string",
							"description": "Question number as a string, starting at \"1\"",
						},
						"question": map[string]any{
							"type":        "string",
							"description": "The question text",
						},
						"options": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"A": optionText,
								"B": optionText,
								"C": optionText,
								"D": optionText,
							},
							"required":             []any{"A", "B", "C", "D"},
							"additionalProperties": false,
						},
						"correctAnswer": map[string]any{
							"type":        "string",
							"enum":        []any{"A", "B", "C", "D"},
							"description": "Key of the correct option",
						},
						"explanation": map[string]any{
							"type":        "string",
							"description": "Brief explanation of the correct answer",
						},
					},
					"required":             []any{"id", "question", "options", "correctAnswer", "explanation"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"questions"},
		"additionalProperties": false,
	},
}
