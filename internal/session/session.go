// Package session holds the per-attempt quiz state machine: navigation,
// answer capture, completion gating and scoring.
//
// A Session is not safe for concurrent use; callers serialize access, as the
// TUI event loop does.
package session

import (
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/abhisek/quizgen/internal/quizgen"
)

var (
	ErrInvalidQuestion   = errors.New("question does not belong to this quiz")
	ErrInvalidOption     = errors.New("option must be one of A, B, C, D")
	ErrInvalidIndex      = errors.New("question index out of range")
	ErrIncompleteAnswers = errors.New("every question must be answered before submitting")
	ErrCompleted         = errors.New("session is already completed")
)

// Phase is the state of a Session.
type Phase int

const (
	PhaseInProgress Phase = iota // Answering questions
	PhaseCompleted               // Submitted; terminal
)

func (p Phase) String() string {
	switch p {
	case PhaseInProgress:
		return "in_progress"
	case PhaseCompleted:
		return "completed"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// Session tracks one attempt at a Quiz.
type Session struct {
	quiz    *quizgen.Quiz
	index   int
	answers map[string]quizgen.OptionKey
	phase   Phase
	retake  bool

	now func() time.Time
}

// New starts a Session at the first question with no answers.
func New(quiz *quizgen.Quiz) *Session {
	return &Session{
		quiz:    quiz,
		answers: make(map[string]quizgen.OptionKey, len(quiz.Questions)),
		phase:   PhaseInProgress,
		now:     time.Now,
	}
}

// Retake starts a fresh Session over the quiz of a completed attempt.
func Retake(c *Completed) *Session {
	s := New(c.Quiz)
	s.retake = true
	return s
}

// Quiz returns the quiz being taken.
func (s *Session) Quiz() *quizgen.Quiz { return s.quiz }

// Phase returns the current phase.
func (s *Session) Phase() Phase { return s.phase }

// IsRetake reports whether this session was started with Retake.
func (s *Session) IsRetake() bool { return s.retake }

// Index returns the 0-based position of the current question.
func (s *Session) Index() int { return s.index }

// Count returns the number of questions.
func (s *Session) Count() int { return len(s.quiz.Questions) }

// Current returns the question at the current index.
func (s *Session) Current() quizgen.Question { return s.quiz.Questions[s.index] }

// Progress returns "Question i of n".
func (s *Session) Progress() string {
	return fmt.Sprintf("Question %d of %d", s.index+1, s.Count())
}

// Answer returns the recorded answer for a question id.
func (s *Session) Answer(questionID string) (quizgen.OptionKey, bool) {
	k, ok := s.answers[questionID]
	return k, ok
}

// CurrentAnswer returns the recorded answer for the current question.
func (s *Session) CurrentAnswer() (quizgen.OptionKey, bool) {
	return s.Answer(s.Current().ID)
}

// Answers returns a copy of the answer mapping.
func (s *Session) Answers() map[string]quizgen.OptionKey {
	return maps.Clone(s.answers)
}

// AnsweredCount returns how many questions have an answer.
func (s *Session) AnsweredCount() int { return len(s.answers) }

// AllAnswered reports whether every question has an answer.
func (s *Session) AllAnswered() bool { return len(s.answers) == s.Count() }

// IsFirst reports whether the current question is the first.
func (s *Session) IsFirst() bool { return s.index == 0 }

// IsLast reports whether the current question is the last.
func (s *Session) IsLast() bool { return s.index == s.Count()-1 }

// CanMoveNext reports whether MoveNext would advance.
func (s *Session) CanMoveNext() bool {
	if s.phase != PhaseInProgress || s.IsLast() {
		return false
	}
	_, answered := s.CurrentAnswer()
	return answered
}

// SelectAnswer records key for the question, replacing any earlier choice.
// It never changes the index or the phase.
func (s *Session) SelectAnswer(questionID string, key quizgen.OptionKey) error {
	if s.phase != PhaseInProgress {
		return ErrCompleted
	}
	if _, ok := s.quiz.QuestionByID(questionID); !ok {
		return fmt.Errorf("%w: %q", ErrInvalidQuestion, questionID)
	}
	if !key.Valid() {
		return fmt.Errorf("%w: got %q", ErrInvalidOption, key)
	}
	s.answers[questionID] = key
	return nil
}

// SelectCurrent records key for the current question.
func (s *Session) SelectCurrent(key quizgen.OptionKey) error {
	return s.SelectAnswer(s.Current().ID, key)
}

// MoveNext advances one question. It does nothing and returns false on the
// last question, when the current question is unanswered, or after
// completion.
func (s *Session) MoveNext() bool {
	if !s.CanMoveNext() {
		return false
	}
	s.index++
	return true
}

// MovePrevious goes back one question. It returns false on the first
// question or after completion.
func (s *Session) MovePrevious() bool {
	if s.phase != PhaseInProgress || s.index == 0 {
		return false
	}
	s.index--
	return true
}

// JumpTo moves to any question; the target need not be answered.
func (s *Session) JumpTo(index int) error {
	if s.phase != PhaseInProgress {
		return ErrCompleted
	}
	if index < 0 || index >= s.Count() {
		return fmt.Errorf("%w: %d not in [0, %d]", ErrInvalidIndex, index, s.Count()-1)
	}
	s.index = index
	return nil
}

// Completed is the outcome of a submitted Session.
type Completed struct {
	Quiz        *quizgen.Quiz
	Answers     map[string]quizgen.OptionKey
	Score       int
	Total       int
	SubmittedAt time.Time
	Retake      bool
}

// Submit scores the session and moves it to PhaseCompleted. It fails with
// ErrIncompleteAnswers, leaving the session untouched, until every question
// is answered.
func (s *Session) Submit() (*Completed, error) {
	if s.phase != PhaseInProgress {
		return nil, ErrCompleted
	}
	if !s.AllAnswered() {
		return nil, fmt.Errorf("%w: %d of %d answered", ErrIncompleteAnswers, s.AnsweredCount(), s.Count())
	}

	score := 0
	for _, q := range s.quiz.Questions {
		if s.answers[q.ID] == q.CorrectAnswer {
			score++
		}
	}

	s.phase = PhaseCompleted

	return &Completed{
		Quiz:        s.quiz,
		Answers:     maps.Clone(s.answers),
		Score:       score,
		Total:       s.Count(),
		SubmittedAt: s.now().UTC(),
		Retake:      s.retake,
	}, nil
}
