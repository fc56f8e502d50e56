// Package home is the topic entry screen that starts quiz generation.
package home

import (
	"context"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizgen/internal/quizgen"
	"github.com/abhisek/quizgen/internal/router"
	"github.com/abhisek/quizgen/internal/screen"
	"github.com/abhisek/quizgen/internal/screens/history"
	sessionscreen "github.com/abhisek/quizgen/internal/screens/session"
	sess "github.com/abhisek/quizgen/internal/session"
	"github.com/abhisek/quizgen/internal/store"
	"github.com/abhisek/quizgen/internal/ui/components"
	"github.com/abhisek/quizgen/internal/ui/layout"
	"github.com/abhisek/quizgen/internal/ui/theme"
)

// maxTopicChars bounds the topic input.
const maxTopicChars = 120

const spinnerInterval = 100 * time.Millisecond

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// quizReadyMsg carries the result of one generation request.
type quizReadyMsg struct {
	Seq  int
	Quiz *quizgen.Quiz
	Err  error
}

// spinnerTickMsg animates the loading indicator.
type spinnerTickMsg time.Time

// HomeScreen collects a topic and generates a quiz for it.
type HomeScreen struct {
	generator quizgen.Generator
	eventRepo store.EventRepo
	input     components.TextInput

	loading bool
	seq     int
	cancel  context.CancelFunc
	frame   int
	errMsg  string
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)
var _ screen.BackHandler = (*HomeScreen)(nil)

// New creates a HomeScreen. eventRepo may be nil, which disables history.
func New(generator quizgen.Generator, eventRepo store.EventRepo) *HomeScreen {
	return &HomeScreen{
		generator: generator,
		eventRepo: eventRepo,
		input:     components.NewTextInput("e.g. The Roman Empire, photosynthesis, Go channels", maxTopicChars),
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.input.Init()
}

func (h *HomeScreen) Title() string {
	return "New Quiz"
}

// Loading reports whether a generation request is in flight.
func (h *HomeScreen) Loading() bool {
	return h.loading
}

// HandlesBack lets Esc cancel an in-flight request.
func (h *HomeScreen) HandlesBack() bool {
	return h.loading
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	if h.loading {
		return []layout.KeyHint{
			{Key: "Esc", Description: "Cancel"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	hints := []layout.KeyHint{{Key: "Enter", Description: "Generate"}}
	if h.eventRepo != nil {
		hints = append(hints, layout.KeyHint{Key: "Tab", Description: "History"})
	}
	return append(hints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case quizReadyMsg:
		return h.handleQuizReady(msg)

	case spinnerTickMsg:
		if !h.loading {
			return h, nil
		}
		h.frame = (h.frame + 1) % len(spinnerFrames)
		return h, spinnerTick()

	case tea.KeyMsg:
		if h.loading {
			if msg.String() == "esc" {
				h.stop()
				h.errMsg = "Generation cancelled."
			}
			return h, nil
		}
		switch msg.String() {
		case "enter":
			return h.generate()
		case "tab":
			if h.eventRepo == nil {
				return h, nil
			}
			return h, func() tea.Msg {
				return router.PushScreenMsg{Screen: history.New(h.eventRepo)}
			}
		}
		h.errMsg = ""
	}

	if h.loading {
		return h, nil
	}
	var cmd tea.Cmd
	h.input, cmd = h.input.Update(msg)
	return h, cmd
}

// generate starts one request. The topic is checked here as well so that
// an empty topic never leaves the screen.
func (h *HomeScreen) generate() (screen.Screen, tea.Cmd) {
	topic := strings.TrimSpace(h.input.Value())
	if topic == "" {
		h.input.MarkInvalid()
		h.errMsg = "Please enter a topic."
		return h, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	h.seq++
	h.cancel = cancel
	h.loading = true
	h.frame = 0
	h.errMsg = ""

	seq, gen := h.seq, h.generator
	return h, tea.Batch(
		func() tea.Msg {
			q, err := gen.Generate(ctx, topic)
			return quizReadyMsg{Seq: seq, Quiz: q, Err: err}
		},
		spinnerTick(),
	)
}

func (h *HomeScreen) handleQuizReady(msg quizReadyMsg) (screen.Screen, tea.Cmd) {
	// Stale replies from cancelled requests are dropped.
	if msg.Seq != h.seq || !h.loading {
		return h, nil
	}
	h.stop()

	if msg.Err != nil {
		h.errMsg = quizgen.MessageOf(msg.Err)
		return h, nil
	}

	next := sessionscreen.New(sess.New(msg.Quiz), h.eventRepo)
	return h, func() tea.Msg { return router.PushScreenMsg{Screen: next} }
}

func (h *HomeScreen) stop() {
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
	h.loading = false
}

func spinnerTick() tea.Cmd {
	return tea.Tick(spinnerInterval, func(t time.Time) tea.Msg {
		return spinnerTickMsg(t)
	})
}

func (h *HomeScreen) View(width, height int) string {
	var sections []string

	sections = append(sections,
		lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("What should the quiz be about?"),
		lipgloss.NewStyle().Foreground(theme.TextDim).
			Render("Five multiple-choice questions, generated on demand."),
		"",
	)

	box := theme.Card.Width(min(70, width-4)).Render(h.input.View())
	sections = append(sections, box, "")

	switch {
	case h.loading:
		sections = append(sections, lipgloss.NewStyle().Foreground(theme.Secondary).
			Render(spinnerFrames[h.frame]+" Generating your quiz..."))
	case h.errMsg != "":
		sections = append(sections, lipgloss.NewStyle().Foreground(theme.Error).Render(h.errMsg))
	default:
		sections = append(sections, theme.Hint.Render("press Enter to generate"))
	}

	content := lipgloss.JoinVertical(lipgloss.Center, sections...)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
