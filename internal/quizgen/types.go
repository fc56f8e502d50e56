package quizgen

import "time"

// QuestionCount is the number of questions every Quiz carries.
const QuestionCount = 5

// OptionKey labels one of the four answer options.
type OptionKey string

const (
	OptionA OptionKey = "A"
	OptionB OptionKey = "B"
	OptionC OptionKey = "C"
	OptionD OptionKey = "D"
)

// Keys lists the option keys in display order.
var Keys = [4]OptionKey{OptionA, OptionB, OptionC, OptionD}

// Valid reports whether k is one of A, B, C or D. Matching is exact.
func (k OptionKey) Valid() bool {
	switch k {
	case OptionA, OptionB, OptionC, OptionD:
		return true
	}
	return false
}

// Options holds the text of the four labeled options.
type Options struct {
	A string `json:"A"`
	B string `json:"B"`
	C string `json:"C"`
	D string `json:"D"`
}

// Get returns the text for key, or "" for an unknown key.
func (o Options) Get(key OptionKey) string {
	switch key {
	case OptionA:
		return o.A
	case OptionB:
		return o.B
	case OptionC:
		return o.C
	case OptionD:
		return o.D
	}
	return ""
}

// Question is one multiple-choice item.
type Question struct {
	// ID is unique within its Quiz.
	ID string `json:"id"`

	// Question is the prompt shown to the user.
	Question string `json:"question"`

	Options Options `json:"options"`

	// CorrectAnswer is the key of the correct option.
	CorrectAnswer OptionKey `json:"correctAnswer"`

	// Explanation is optional and shown after submission.
	Explanation string `json:"explanation,omitempty"`
}

// Quiz is a validated set of QuestionCount questions about one topic.
// Treat it as immutable once returned by a Generator.
type Quiz struct {
	ID        string     `json:"id"`
	Topic     string     `json:"topic"`
	Questions []Question `json:"questions"`
	CreatedAt time.Time  `json:"createdAt"`
}

// QuestionByID returns the question with the given id.
func (q *Quiz) QuestionByID(id string) (Question, bool) {
	for _, question := range q.Questions {
		if question.ID == id {
			return question, true
		}
	}
	return Question{}, false
}
