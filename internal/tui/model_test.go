package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/marksplan/internal/catalog"
	"github.com/verte-zerg/marksplan/internal/marksheet"
)

func newTestModel(t *testing.T, exportPath string) *Model {
	t.Helper()
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("default catalog: %v", err)
	}
	return NewModel(Options{
		Catalog:    cat,
		Sheet:      marksheet.Empty(cat),
		TargetGPA:  8,
		Quote:      "Keep going.",
		ExportPath: exportPath,
	})
}

func setField(t *testing.T, m *Model, course, comp, value string) {
	t.Helper()
	for i := range m.fields {
		if string(m.fields[i].course) == course && string(m.fields[i].comp.ID) == comp {
			m.fields[i].input.SetValue(value)
			m.evaluate()
			return
		}
	}
	t.Fatalf("no field %s %s", course, comp)
}

func TestNewModelEvaluates(t *testing.T) {
	m := newTestModel(t, "")
	if m.errMsg != "" {
		t.Fatalf("unexpected error: %s", m.errMsg)
	}
	if len(m.fields) != 20 {
		t.Fatalf("expected 20 component fields, got %d", len(m.fields))
	}
	if m.gpaInput.Value() != "8" {
		t.Fatalf("expected gpa input 8, got %q", m.gpaInput.Value())
	}
	if v, _ := m.eval.Adjusted.Get("BD", "M1"); v < 19.19 || v > 19.21 {
		t.Fatalf("expected BD M1 19.2, got %v", v)
	}
	if !m.eval.Feasible {
		t.Fatalf("expected feasible evaluation")
	}
}

func TestInvalidInputKeepsLastEvaluation(t *testing.T) {
	m := newTestModel(t, "")
	m.gpaInput.SetValue("11")
	m.evaluate()
	if !strings.Contains(m.errMsg, "target GPA must be between 0 and 10") {
		t.Fatalf("expected gpa range error, got %q", m.errMsg)
	}
	if m.input.TargetGPA != 8 {
		t.Fatalf("expected previous evaluation to remain, got gpa %v", m.input.TargetGPA)
	}

	m.gpaInput.SetValue("8")
	setField(t, m, "BD", "M1", "abc")
	if !strings.Contains(m.errMsg, `BD M1: invalid number "abc"`) {
		t.Fatalf("expected parse error, got %q", m.errMsg)
	}
	setField(t, m, "BD", "M1", "31")
	if !strings.Contains(m.errMsg, "M1 must be between 0 and 30") {
		t.Fatalf("expected mark range error, got %q", m.errMsg)
	}
	setField(t, m, "BD", "M1", "NaN")
	if !strings.Contains(m.errMsg, "M1 must be between 0 and 30, got NaN") {
		t.Fatalf("expected NaN mark to be rejected, got %q", m.errMsg)
	}
	setField(t, m, "BD", "M1", "")
	if m.errMsg != "" {
		t.Fatalf("expected empty input to read as zero, got %q", m.errMsg)
	}
}

func TestToggleCompletedRedistributes(t *testing.T) {
	m := newTestModel(t, "")
	setField(t, m, "BD", "M1", "2")

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.focus != 1 {
		t.Fatalf("expected focus on first component, got %d", m.focus)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlX})
	if !m.completed.Has("BD", "M1") {
		t.Fatalf("expected BD M1 to be completed")
	}
	if v, _ := m.eval.Adjusted.Get("BD", "M1"); v != 2 {
		t.Fatalf("expected completed component to hold its mark, got %v", v)
	}
	want := 19.2 + 17.2*15.0/85.0
	if v, _ := m.eval.Adjusted.Get("BD", "M2"); v < want-1e-9 || v > want+1e-9 {
		t.Fatalf("expected BD M2 %v, got %v", want, v)
	}
	if len(m.eval.Capped) != 2 {
		t.Fatalf("expected EndSem and Others capped, got %+v", m.eval.Capped)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlX})
	if m.completed.Has("BD", "M1") {
		t.Fatalf("expected second toggle to clear completion")
	}
}

func TestToggleOnGPAFieldIsIgnored(t *testing.T) {
	m := newTestModel(t, "")
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlX})
	if m.status == "" {
		t.Fatalf("expected a status hint")
	}
	if len(m.completed) != 0 {
		t.Fatalf("expected nothing completed, got %v", m.completed)
	}
}

func TestTypingReevaluates(t *testing.T) {
	m := newTestModel(t, "")
	m.gpaInput.SetValue("")
	m.evaluate()
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("5")})
	if m.gpaInput.Value() != "5" {
		t.Fatalf("expected gpa input 5, got %q", m.gpaInput.Value())
	}
	if m.input.TargetGPA != 5 {
		t.Fatalf("expected evaluation at gpa 5, got %v", m.input.TargetGPA)
	}
}

func TestFocusWraps(t *testing.T) {
	m := newTestModel(t, "")
	m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.focus != len(m.fields) {
		t.Fatalf("expected focus to wrap to last field, got %d", m.focus)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if m.focus != 0 {
		t.Fatalf("expected focus to wrap to gpa, got %d", m.focus)
	}
}

func TestTabsCycle(t *testing.T) {
	m := newTestModel(t, "")
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlP})
	if m.activeTab != tabSchedule {
		t.Fatalf("expected schedule tab, got %d", m.activeTab)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	if m.activeTab != tabPlan {
		t.Fatalf("expected plan tab, got %d", m.activeTab)
	}
}

func TestExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gradesheet.txt")
	m := newTestModel(t, path)
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if !strings.HasPrefix(m.status, "Wrote ") {
		t.Fatalf("expected export status, got %q", m.status)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read gradesheet: %v", err)
	}
	if !strings.Contains(string(data), "Target GPA: 8.00") {
		t.Fatalf("unexpected gradesheet:\n%s", data)
	}
}

func TestExportRefusesInvalidInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gradesheet.txt")
	m := newTestModel(t, path)
	m.gpaInput.SetValue("x")
	m.evaluate()
	m.export()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected no gradesheet, got %v", err)
	}
}

func TestViewFitsWindow(t *testing.T) {
	m := newTestModel(t, "")
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 20})
	view := m.View()
	if got := len(strings.Split(view, "\n")); got != 20 {
		t.Fatalf("expected 20 lines, got %d", got)
	}
	if !strings.Contains(view, "Target GPA is reachable") {
		t.Fatalf("expected feasibility banner in view")
	}
	if !strings.Contains(view, "Keep going.") {
		t.Fatalf("expected quote in header")
	}
}

func TestWindowLines(t *testing.T) {
	lines := []string{"a", "b", "c", "d", "e"}
	if got := windowLines(lines, 1, 3); strings.Join(got, "") != "abc" {
		t.Fatalf("unexpected window %q", got)
	}
	if got := windowLines(lines, 4, 3); strings.Join(got, "") != "cde" {
		t.Fatalf("unexpected window %q", got)
	}
	if got := windowLines(lines, 0, 10); len(got) != 5 {
		t.Fatalf("expected all lines, got %q", got)
	}
}

func TestTruncateLine(t *testing.T) {
	if got := truncateLine("abcdefgh", 6); got != "abc..." {
		t.Fatalf("unexpected truncation %q", got)
	}
	if got := truncateLine("abc", 6); got != "abc" {
		t.Fatalf("unexpected truncation %q", got)
	}
	got := truncateLine("数学数学数学", 7)
	if got != "数学..." {
		t.Fatalf("unexpected wide truncation %q", got)
	}
	if w := runewidth.StringWidth(got); w > 7 {
		t.Fatalf("expected width <= 7, got %d", w)
	}
}

func TestCreditBars(t *testing.T) {
	bar := creditBar(0.25, 20)
	if strings.Count(bar, "█") != 5 || strings.Count(bar, "░") != 15 {
		t.Fatalf("unexpected bar %q", bar)
	}
	if bar := creditBar(1.5, 10); strings.Count(bar, "█") != 10 || strings.Contains(bar, "░") {
		t.Fatalf("expected share to clamp at full, got %q", bar)
	}

	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("default catalog: %v", err)
	}
	out := renderCreditBars(cat, 60)
	lines := strings.Split(out, "\n")
	if len(lines) != len(cat.Courses())+1 || !strings.Contains(lines[0], "Course Credits") {
		t.Fatalf("unexpected credit section:\n%s", out)
	}
	found := false
	for _, line := range lines[1:] {
		if lipgloss.Width(line) > 60 {
			t.Fatalf("line exceeds width: %q", line)
		}
		if strings.HasPrefix(line, "CN ") && strings.HasSuffix(line, "25.0%") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected CN share line:\n%s", out)
	}
}
