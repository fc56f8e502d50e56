package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
)

func TestMenu_SkipsDisabled(t *testing.T) {
	var picked string
	m := NewMenu([]MenuItem{
		{Label: "Off", Disabled: true},
		{Label: "Retake", Action: func() tea.Cmd { picked = "retake"; return nil }},
		{Label: "New Quiz", Action: func() tea.Cmd { picked = "new"; return nil }},
	})
	if m.Selected != 1 {
		t.Fatalf("Selected = %d, want first enabled item 1", m.Selected)
	}

	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	if m.Selected != 1 {
		t.Fatalf("up over disabled item moved selection to %d", m.Selected)
	}

	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if picked != "new" {
		t.Fatalf("picked = %q, want new", picked)
	}
}

func TestMultiChoice_View(t *testing.T) {
	mc := NewMultiChoice("Which planet is largest?", []Choice{
		{Key: "A", Text: "Mars"},
		{Key: "B", Text: "Jupiter"},
	}, "A")

	view := mc.View(60)
	if !strings.Contains(view, "▸ A)  Mars") {
		t.Errorf("expected chosen marker on A, got:\n%s", view)
	}
	if !strings.Contains(view, "B)  Jupiter") {
		t.Errorf("expected option B, got:\n%s", view)
	}

	graded := mc.Graded("B")
	if graded.Correct != "B" || mc.Correct != "" {
		t.Error("Graded should return a modified copy")
	}
}

func TestProgressBar(t *testing.T) {
	p := NewProgressBar("Answered", 3, 5, 40)
	if p.Percent != 0.6 {
		t.Errorf("Percent = %v, want 0.6", p.Percent)
	}
	if !strings.Contains(p.View(), "3/5") {
		t.Errorf("expected suffix 3/5 in %q", p.View())
	}

	empty := NewProgressBar("", 0, 0, 10)
	if empty.Percent != 0 {
		t.Errorf("Percent = %v, want 0 for empty total", empty.Percent)
	}
}

func TestButton(t *testing.T) {
	if !strings.Contains(NewButton("Submit", "s", false).View(), "[s] Submit") {
		t.Error("expected hotkey prefix")
	}
}
