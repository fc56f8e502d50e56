// Package history lists past quiz attempts.
package history

import (
	"context"
	"fmt"
	"sort"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizgen/internal/router"
	"github.com/abhisek/quizgen/internal/screen"
	"github.com/abhisek/quizgen/internal/store"
	"github.com/abhisek/quizgen/internal/ui/layout"
	"github.com/abhisek/quizgen/internal/ui/theme"
)

// pageSize is the number of attempts loaded.
const pageSize = 50

type historyLoadedMsg struct {
	Attempts []store.AttemptRecord
	Stats    store.AttemptStats
	Err      error
}

// HistoryScreen displays recent attempts and overall stats.
type HistoryScreen struct {
	eventRepo store.EventRepo
	attempts  []store.AttemptRecord
	stats     store.AttemptStats
	selected  int
	loaded    bool
	errMsg    string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(eventRepo store.EventRepo) *HistoryScreen {
	return &HistoryScreen{eventRepo: eventRepo}
}

func (s *HistoryScreen) Init() tea.Cmd {
	repo := s.eventRepo
	return func() tea.Msg {
		ctx := context.Background()

		attempts, err := repo.QueryAttempts(ctx, store.QueryOpts{Limit: pageSize})
		if err != nil {
			return historyLoadedMsg{Err: err}
		}
		stats, err := repo.AttemptStats(ctx)
		if err != nil {
			return historyLoadedMsg{Err: err}
		}
		return historyLoadedMsg{Attempts: attempts, Stats: stats}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.attempts = msg.Attempts
			s.stats = msg.Stats
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "tab":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.attempts)-1 {
				s.selected++
			}
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return layout.Centered(fmt.Sprintf("\n\nError: %s", s.errMsg), width, theme.Error)
	}
	if !s.loaded {
		return layout.Centered("\n\n  Loading history...", width, theme.TextDim)
	}
	if len(s.attempts) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No quizzes taken yet.")
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(layout.Centered(s.statsLine(), width, theme.Secondary))
	b.WriteString("\n\n")

	// Keep the selection visible.
	avail := height - 4
	if avail < 1 {
		avail = 1
	}
	start := 0
	if s.selected >= avail {
		start = s.selected - avail + 1
	}
	end := min(start+avail, len(s.attempts))

	for i := start; i < end; i++ {
		a := s.attempts[i]
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}
		retake := ""
		if a.Retake {
			retake = "  (retake)"
		}
		line := fmt.Sprintf("%s%s  %-36s %d/%d  %3d%%%s",
			prefix, a.Timestamp.Local().Format("Jan 02 15:04"), truncate(a.Topic, 36),
			a.Score, a.Total, a.Percentage, retake)

		style := lipgloss.NewStyle().Foreground(theme.BandColor(a.Band))
		if i == s.selected {
			style = style.Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")
	}

	return b.String()
}

func (s *HistoryScreen) statsLine() string {
	st := s.stats
	parts := []string{
		fmt.Sprintf("%d attempts", st.Attempts),
		fmt.Sprintf("%d quizzes", st.Quizzes),
		fmt.Sprintf("avg %.0f%%", st.AvgPercentage),
		fmt.Sprintf("best %d%%", st.BestPercent),
	}
	bands := make([]string, 0, len(st.ByBand))
	for band := range st.ByBand {
		bands = append(bands, band)
	}
	sort.Strings(bands)
	for _, band := range bands {
		parts = append(parts, fmt.Sprintf("%s %d", band, st.ByBand[band]))
	}
	return strings.Join(parts, "  ·  ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
