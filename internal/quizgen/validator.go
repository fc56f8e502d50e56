package quizgen

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Validate checks a loosely-typed quiz payload, as produced by decoding JSON
// into any, and returns exactly QuestionCount normalized questions.
//
// Checks run in order and the first violation is returned as a
// *ValidationError: the payload is an object with a "questions" list; the
// list has exactly QuestionCount entries; then, entry by entry, non-blank
// question text, non-blank text for each of options A-D, a correctAnswer
// that is exactly one of A-D, and an explanation that is a string when
// present. Missing or blank ids become the 1-based position. Ids must be
// unique after normalization. Text is checked, not trimmed.
func Validate(payload any) ([]Question, error) {
	root, ok := payload.(map[string]any)
	if !ok {
		return nil, &ValidationError{Rule: "payload", Message: "payload is not a JSON object"}
	}

	rawList, ok := root["questions"].([]any)
	if !ok {
		return nil, &ValidationError{Rule: "questions", Message: `payload has no "questions" list`}
	}

	if len(rawList) != QuestionCount {
		return nil, &ValidationError{
			Rule:    "count",
			Message: fmt.Sprintf("expected exactly %d questions, got %d", QuestionCount, len(rawList)),
		}
	}

	questions := make([]Question, 0, QuestionCount)
	firstAt := make(map[string]int, QuestionCount)

	for i, raw := range rawList {
		q, verr := validateEntry(i, raw)
		if verr != nil {
			return nil, verr
		}
		if prev, dup := firstAt[q.ID]; dup {
			return nil, &ValidationError{
				Rule:     "id",
				Question: i + 1,
				Message:  fmt.Sprintf("question %d repeats the id of question %d", i+1, prev),
			}
		}
		firstAt[q.ID] = i + 1
		questions = append(questions, q)
	}

	return questions, nil
}

func validateEntry(i int, raw any) (Question, *ValidationError) {
	pos := i + 1
	fail := func(rule, format string, args ...any) (Question, *ValidationError) {
		return Question{}, &ValidationError{Rule: rule, Question: pos, Message: fmt.Sprintf(format, args...)}
	}

	entry, ok := raw.(map[string]any)
	if !ok {
		return fail("entry", "question is not a JSON object")
	}

	text, ok := entry["question"].(string)
	if !ok || strings.TrimSpace(text) == "" {
		return fail("question", "question text is missing or empty")
	}

	rawOptions, ok := entry["options"].(map[string]any)
	if !ok {
		return fail("options", "options is not an object")
	}
	var texts [4]string
	for k, key := range Keys {
		s, ok := rawOptions[string(key)].(string)
		if !ok || strings.TrimSpace(s) == "" {
			return fail("options", "option %s is missing or empty", key)
		}
		texts[k] = s
	}

	answer, ok := entry["correctAnswer"].(string)
	if !ok || !OptionKey(answer).Valid() {
		return fail("correctAnswer", "correctAnswer must be one of A, B, C, D")
	}

	var explanation string
	if rawExp, present := entry["explanation"]; present && rawExp != nil {
		s, ok := rawExp.(string)
		if !ok {
			return fail("explanation", "explanation is not a string")
		}
		explanation = s
	}

	id, ok := normalizeID(entry["id"], pos)
	if !ok {
		return fail("id", "id must be a string or a number")
	}

	return Question{
		ID:       id,
		Question: text,
		Options: Options{
			A: texts[0],
			B: texts[1],
			C: texts[2],
			D: texts[3],
		},
		CorrectAnswer: OptionKey(answer),
		Explanation:   explanation,
	}, nil
}

// normalizeID turns the raw id into a string, falling back to pos.
func normalizeID(raw any, pos int) (string, bool) {
	switch v := raw.(type) {
	case nil:
		return strconv.Itoa(pos), true
	case string:
		if strings.TrimSpace(v) == "" {
			return strconv.Itoa(pos), true
		}
		return v, true
	case json.Number:
		return v.String(), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	}
	return "", false
}
