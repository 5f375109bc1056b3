// Package tui provides the Bubble Tea marks planning interface.
package tui

import (
	"bytes"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/marksplan/internal/catalog"
	"github.com/verte-zerg/marksplan/internal/marksheet"
	"github.com/verte-zerg/marksplan/internal/model"
	"github.com/verte-zerg/marksplan/internal/planner"
	"github.com/verte-zerg/marksplan/internal/report"
	"github.com/verte-zerg/marksplan/internal/stats"
)

const (
	tabPlan = iota
	tabAnalysis
	tabReference
	tabSchedule
)

const (
	defaultPlotHeight = 10
	fallbackWidth     = 80
	markInputWidth    = 8

	minCreditBarWidth = 10
	maxCreditBarWidth = 40
	// space, space and "100.0%"
	creditBarSuffix = 8
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	courseStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	focusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	cardStyle    = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	barFilledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	barEmptyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#3A3A3A"))
	cardTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
)

// Options configures a Model.
type Options struct {
	Catalog    *catalog.Catalog
	Sheet      marksheet.Sheet
	TargetGPA  float64
	Quote      string
	ExportPath string
	PlotHeight int
}

type field struct {
	course model.CourseID
	comp   catalog.Component
	input  textinput.Model
}

// Model implements the Bubble Tea planning UI.
type Model struct {
	cat        *catalog.Catalog
	planner    *planner.Planner
	quote      string
	exportPath string
	plotHeight int

	gpaInput  textinput.Model
	fields    []field
	focus     int
	completed model.Completed

	input  model.Input
	eval   planner.Evaluation
	report stats.Report
	errMsg string
	status string

	tabs      []string
	activeTab int
	viewports []viewport.Model

	width  int
	height int
}

// NewModel constructs a planning UI model and runs the first evaluation.
func NewModel(opts Options) *Model {
	m := &Model{
		cat:        opts.Catalog,
		planner:    planner.New(opts.Catalog),
		quote:      opts.Quote,
		exportPath: opts.ExportPath,
		plotHeight: opts.PlotHeight,
		completed:  model.Completed{},
		tabs:       []string{"Plan", "Analysis", "Reference", "Schedule"},
	}
	if m.plotHeight <= 0 {
		m.plotHeight = defaultPlotHeight
	}
	for course, set := range opts.Sheet.Completed {
		for comp := range set {
			m.completed.Toggle(course, comp)
		}
	}

	m.gpaInput = newInput("", formatNumber(opts.TargetGPA))
	for _, course := range m.cat.Courses() {
		for _, comp := range course.Components {
			mark, _ := opts.Sheet.Current.Get(course.ID, comp.ID)
			m.fields = append(m.fields, field{
				course: course.ID,
				comp:   comp,
				input:  newInput("", formatNumber(mark)),
			})
		}
	}
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
	m.setFocus(0)
	m.evaluate()
	return m
}

func newInput(prompt, value string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Width = markInputWidth
	input.Placeholder = "0"
	input.Cursor.SetMode(cursor.CursorBlink)
	input.SetValue(value)
	return input
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyCtrlN:
			m.moveTab(1)
			return m, tea.ClearScreen
		case tea.KeyCtrlP:
			m.moveTab(-1)
			return m, tea.ClearScreen
		case tea.KeyCtrlS:
			m.export()
			return m, nil
		}
		if m.activeTab != tabPlan {
			vp := m.viewports[m.activeTab]
			var cmd tea.Cmd
			vp, cmd = vp.Update(msg)
			m.viewports[m.activeTab] = vp
			return m, cmd
		}
		switch msg.Type {
		case tea.KeyTab, tea.KeyDown, tea.KeyEnter:
			return m, m.setFocus(m.focus + 1)
		case tea.KeyShiftTab, tea.KeyUp:
			return m, m.setFocus(m.focus - 1)
		case tea.KeyCtrlX:
			m.toggleCompleted()
			return m, nil
		}
	}
	input := m.focusedInput()
	before := input.Value()
	var cmd tea.Cmd
	*input, cmd = input.Update(msg)
	if input.Value() != before {
		m.status = ""
		m.evaluate()
	}
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) focusedInput() *textinput.Model {
	if m.focus == 0 {
		return &m.gpaInput
	}
	return &m.fields[m.focus-1].input
}

func (m *Model) setFocus(idx int) tea.Cmd {
	count := len(m.fields) + 1
	if idx < 0 {
		idx = count - 1
	}
	if idx >= count {
		idx = 0
	}
	m.focus = idx
	m.gpaInput.Blur()
	for i := range m.fields {
		m.fields[i].input.Blur()
	}
	return m.focusedInput().Focus()
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
}

func (m *Model) toggleCompleted() {
	if m.focus == 0 {
		m.status = "Select a component to mark it completed."
		return
	}
	f := m.fields[m.focus-1]
	m.completed.Toggle(f.course, f.comp.ID)
	m.status = ""
	m.evaluate()
}

// evaluate reparses every input and reruns the planner. Invalid input keeps
// the previous evaluation on screen and reports the first problem.
func (m *Model) evaluate() {
	in, err := m.parseInput()
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.errMsg = ""
	m.input = in
	m.eval = m.planner.Evaluate(in)
	m.report = stats.BuildReport(m.cat, in, m.eval)
	slog.Debug("plan evaluated", "target_gpa", in.TargetGPA, "feasible", m.eval.Feasible, "capped", len(m.eval.Capped))
	m.renderTabContents()
}

func (m *Model) parseInput() (model.Input, error) {
	gpa, err := parseNumber(m.gpaInput.Value())
	if err != nil {
		return model.Input{}, fmt.Errorf("target GPA: %w", err)
	}
	if err := marksheet.ValidateGPA(gpa); err != nil {
		return model.Input{}, err
	}
	current := model.Marks{}
	var errs []error
	for _, f := range m.fields {
		mark, err := parseNumber(f.input.Value())
		if err == nil {
			err = marksheet.ValidateMark(f.comp, mark)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s %s: %w", f.course, f.comp.ID, err))
			continue
		}
		current.Set(f.course, f.comp.ID, mark)
	}
	if len(errs) > 0 {
		return model.Input{}, errs[0]
	}
	return model.Input{TargetGPA: gpa, Current: current, Completed: m.completed}, nil
}

func (m *Model) export() {
	if m.errMsg != "" {
		m.status = "Fix the highlighted input before exporting."
		return
	}
	if m.exportPath == "" {
		m.status = "No gradesheet path configured."
		return
	}
	if err := report.WriteFile(m.exportPath, m.cat, m.input.TargetGPA, m.input.Current, m.eval.Adjusted); err != nil {
		m.status = fmt.Sprintf("Export failed: %v", err)
		slog.Warn("gradesheet export failed", "path", m.exportPath, "err", err)
		return
	}
	m.status = fmt.Sprintf("Wrote %s", m.exportPath)
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if m.status != "" || m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, vpHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = vpHeight
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	quote := headerStyle.Render(truncateLine(m.quote, m.width))
	return tabs + "\n" + quote
}

func (m *Model) renderHelp() string {
	if m.activeTab == tabPlan {
		return headerStyle.Render("Tabs: ctrl+n/ctrl+p  Field: tab/up/down  Done: ctrl+x  Export: ctrl+s  Quit: esc")
	}
	return headerStyle.Render("Tabs: ctrl+n/ctrl+p  Scroll: up/down/pgup/pgdn  Export: ctrl+s  Quit: esc")
}

func (m *Model) renderFooter() string {
	switch {
	case m.errMsg != "":
		return m.renderHelp() + "\n" + errorStyle.Render(m.errMsg)
	case m.status != "":
		return m.renderHelp() + "\n" + warnStyle.Render(m.status)
	default:
		return m.renderHelp()
	}
}

func (m *Model) renderBody(height int) string {
	if m.activeTab != tabPlan {
		return fitLines(m.viewports[m.activeTab].View(), m.width, height)
	}
	lines, focusLine := m.renderPlanLines()
	return fitLines(strings.Join(windowLines(lines, focusLine, height), "\n"), m.width, height)
}

// renderPlanLines draws the verdict banner and the input form. It also
// returns the index of the focused line so the body can keep it visible.
func (m *Model) renderPlanLines() ([]string, int) {
	lines := []string{m.renderBanner()}
	if len(m.eval.Capped) > 0 {
		names := make([]string, 0, len(m.eval.Capped))
		for _, c := range m.eval.Capped {
			names = append(names, fmt.Sprintf("%s %s", c.Course, c.Component))
		}
		lines = append(lines, warnStyle.Render("Capped at maximum: "+strings.Join(names, ", ")))
	}
	lines = append(lines, "")

	focusLine := len(lines)
	lines = append(lines, formLine(m.focus == 0, "Target GPA  "+m.gpaInput.View()))

	var course model.CourseID
	for i, f := range m.fields {
		if f.course != course {
			course = f.course
			credits := 0.0
			if c, ok := m.cat.Course(course); ok {
				credits = c.Credits
			}
			lines = append(lines, "", courseStyle.Render(fmt.Sprintf("%s (%s credits)", course, formatNumber(credits))))
		}
		if m.focus == i+1 {
			focusLine = len(lines)
		}
		lines = append(lines, formLine(m.focus == i+1, m.renderField(f)))
	}
	return lines, focusLine
}

func (m *Model) renderBanner() string {
	if m.eval.Feasible {
		return successStyle.Render("Target GPA is reachable with the adjusted marks below.")
	}
	return errorStyle.Render("It is not possible to achieve the target GPA with the current marks.")
}

func (m *Model) renderField(f field) string {
	required, _ := m.eval.Required.Get(f.course, f.comp.ID)
	adjusted, _ := m.eval.Adjusted.Get(f.course, f.comp.ID)
	done := "[ ]"
	if m.completed.Has(f.course, f.comp.ID) {
		done = "[x]"
	}
	return fmt.Sprintf("%-8s %s / %-4s  Required %7.2f  Adjusted %7.2f  %s done",
		f.comp.ID, f.input.View(), formatNumber(f.comp.MaxMarks), required, adjusted, done)
}

func formLine(focused bool, s string) string {
	if focused {
		return focusStyle.Render("> ") + s
	}
	return "  " + s
}

func (m *Model) renderTabContents() {
	if len(m.viewports) == 0 {
		return
	}
	width := m.width
	if width <= 0 {
		width = fallbackWidth
	}
	m.viewports[tabAnalysis].SetContent(m.renderAnalysis(width))
	m.viewports[tabReference].SetContent(renderWith(func(buf *bytes.Buffer) error {
		return stats.RenderReference(buf, m.cat)
	}))
	m.viewports[tabSchedule].SetContent(renderWith(func(buf *bytes.Buffer) error {
		return stats.RenderSchedule(buf, m.cat)
	}))
}

func (m *Model) renderAnalysis(width int) string {
	cards := []string{
		metricCard("Target GPA", fmt.Sprintf("%.2f", m.input.TargetGPA)),
		metricCard("Total Credits", formatNumber(m.cat.TotalCredits())),
		metricCard("Feasible", yesNo(m.eval.Feasible)),
		metricCard("Capped", strconv.Itoa(len(m.eval.Capped))),
		metricCard("On Track", fmt.Sprintf("%d/%d", onTrack(m.report), len(m.report.Rows))),
	}
	var summary string
	if width < 80 {
		summary = strings.Join(cards, "\n")
	} else {
		summary = lipgloss.JoinHorizontal(lipgloss.Top, cards...)
	}
	describe := renderWith(func(buf *bytes.Buffer) error {
		return stats.RenderDescribe(buf, m.cat, m.input.Current)
	})
	plot := renderWith(func(buf *bytes.Buffer) error {
		return stats.RenderMarksPlot(buf, m.cat, m.input.Current, width, m.plotHeight, true)
	})
	body := strings.Join([]string{describe, renderCreditBars(m.cat, width), plot}, "\n\n")
	return strings.TrimRight(summary+"\n\n"+body, "\n")
}

// renderCreditBars draws one bar per course sized by its share of total credits.
func renderCreditBars(cat *catalog.Catalog, width int) string {
	shares := stats.CreditShares(cat)
	if len(shares) == 0 {
		return ""
	}
	labelWidth := 0
	for _, s := range shares {
		if w := runewidth.StringWidth(s.Course); w > labelWidth {
			labelWidth = w
		}
	}
	barWidth := width - labelWidth - creditBarSuffix
	if barWidth > maxCreditBarWidth {
		barWidth = maxCreditBarWidth
	}
	if barWidth < minCreditBarWidth {
		barWidth = minCreditBarWidth
	}
	lines := []string{courseStyle.Render("Course Credits")}
	for _, s := range shares {
		lines = append(lines, fmt.Sprintf("%s %s %5.1f%%",
			runewidth.FillRight(s.Course, labelWidth), creditBar(s.Share, barWidth), s.Share*100))
	}
	return strings.Join(lines, "\n")
}

func creditBar(share float64, width int) string {
	share = math.Max(0, math.Min(1, share))
	filled := int(math.Round(share * float64(width)))
	return barFilledStyle.Render(strings.Repeat("█", filled)) +
		barEmptyStyle.Render(strings.Repeat("░", width-filled))
}

func renderWith(render func(buf *bytes.Buffer) error) string {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return fmt.Sprintf("Failed to render: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func onTrack(r stats.Report) int {
	n := 0
	for _, row := range r.Rows {
		if row.OnTrack {
			n++
		}
	}
	return n
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return v, nil
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
