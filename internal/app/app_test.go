package app

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizgen/internal/quizgen"
	"github.com/abhisek/quizgen/internal/router"
	"github.com/abhisek/quizgen/internal/screen"
	"github.com/abhisek/quizgen/internal/screens/home"
	"github.com/abhisek/quizgen/internal/screens/welcome"
)

type nopGenerator struct{}

func (nopGenerator) Generate(context.Context, string) (*quizgen.Quiz, error) {
	return nil, &quizgen.Error{Kind: quizgen.KindUpstream, Message: "offline"}
}

// backScreen claims Esc for itself.
type backScreen struct{ gotEsc bool }

func (s *backScreen) Init() tea.Cmd { return nil }
func (s *backScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
		s.gotEsc = true
	}
	return s, nil
}
func (s *backScreen) View(int, int) string { return "back" }
func (s *backScreen) Title() string        { return "Back" }
func (s *backScreen) HandlesBack() bool    { return true }

func TestNewAppModel_StartScreen(t *testing.T) {
	m := newAppModel(Options{Generator: nopGenerator{}})
	if _, ok := m.router.Active().(*welcome.WelcomeScreen); !ok {
		t.Fatalf("expected welcome screen, got %T", m.router.Active())
	}

	m = newAppModel(Options{Generator: nopGenerator{}, SkipWelcome: true})
	if _, ok := m.router.Active().(*home.HomeScreen); !ok {
		t.Fatalf("expected home screen, got %T", m.router.Active())
	}
}

func TestEscPopsOrForwards(t *testing.T) {
	m := newAppModel(Options{Generator: nopGenerator{}, SkipWelcome: true})
	m.router.Push(&backScreen{})

	bs := m.router.Active().(*backScreen)
	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd != nil {
		t.Fatal("screen handling back should not trigger a pop")
	}
	if !bs.gotEsc {
		t.Fatal("esc should be forwarded to the screen")
	}

	m.router.Replace(&welcome.WelcomeScreen{})
	_, cmd = m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd == nil {
		t.Fatal("expected pop command")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Fatal("expected PopScreenMsg")
	}
}

func TestView(t *testing.T) {
	m := newAppModel(Options{Generator: nopGenerator{}, Status: "mock · test", SkipWelcome: true})

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	frame := updated.(AppModel).render()
	if !strings.Contains(frame, "mock · test") {
		t.Error("expected status in header")
	}
	if !strings.Contains(frame, "Generate") {
		t.Error("expected screen key hints in footer")
	}

	small, _ := m.Update(tea.WindowSizeMsg{Width: 40, Height: 10})
	if !strings.Contains(small.(AppModel).render(), "Terminal too small") {
		t.Error("expected min size message")
	}
}
