package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pthm/widgetlint/internal/rules"
)

// Stage represents the current stage of analysis
type Stage int

const (
	StageLoadConfig Stage = iota
	StageReadSnapshot
	StageRunRules
	StageDone
)

// Message types for updating the model
type (
	StageMsg     Stage
	OperationMsg string
	// PlanMsg carries the category of each rule about to run, in order.
	PlanMsg      []rules.Category
	RuleStartMsg struct {
		Name     string
		Category rules.Category
	}
	RuleDoneMsg struct{ Found int }
	DoneMsg     struct {
		Diagnostics int
		Err         error
	}
)

// categoryProgress counts rules and findings for one report category.
type categoryProgress struct {
	category rules.Category
	total    int
	done     int
	found    int
}

// Model is the Bubbletea model for progress display
type Model struct {
	stage       Stage
	spinner     spinner.Model
	progress    progress.Model
	currentOp   string
	current     rules.Category
	categories  []categoryProgress
	ruleCount   int
	rulesDone   int
	findings    int
	diagnostics int
	width       int
	quitting    bool
	err         error
}

// NewModel creates a new progress model
func NewModel() Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	p := progress.New(progress.WithDefaultGradient())

	return Model{
		stage:    StageLoadConfig,
		spinner:  s,
		progress: p,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = msg.Width - 4
		if m.progress.Width > 60 {
			m.progress.Width = 60
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case StageMsg:
		m.stage = Stage(msg)
		return m, nil

	case OperationMsg:
		m.currentOp = string(msg)
		return m, nil

	case PlanMsg:
		m.ruleCount = len(msg)
		m.rulesDone, m.findings = 0, 0
		m.categories = planCategories(msg)
		return m, nil

	case RuleStartMsg:
		m.current = msg.Category
		m.currentOp = fmt.Sprintf("Checking %s: %s", msg.Category, msg.Name)
		return m, nil

	case RuleDoneMsg:
		m.rulesDone++
		m.findings += msg.Found
		if cp := m.category(m.current); cp != nil {
			cp.done++
			cp.found += msg.Found
		}
		return m, nil

	case DoneMsg:
		m.err = msg.Err
		m.diagnostics = msg.Diagnostics
		m.stage = StageDone
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

// planCategories tallies the plan per category, in report order.
func planCategories(plan []rules.Category) []categoryProgress {
	totals := make(map[rules.Category]int, len(plan))
	for _, c := range plan {
		totals[c]++
	}
	var out []categoryProgress
	for _, c := range rules.Categories() {
		if totals[c] > 0 {
			out = append(out, categoryProgress{category: c, total: totals[c]})
		}
	}
	return out
}

func (m *Model) category(c rules.Category) *categoryProgress {
	for i := range m.categories {
		if m.categories[i].category == c {
			return &m.categories[i]
		}
	}
	return nil
}

// View renders the model
func (m Model) View() string {
	if m.quitting {
		return m.summary()
	}

	var sb strings.Builder

	switch m.stage {
	case StageLoadConfig:
		sb.WriteString(m.spinner.View())
		sb.WriteString(" Loading configuration...")

	case StageReadSnapshot:
		sb.WriteString(m.spinner.View())
		sb.WriteString(" Reading widget snapshot")
		if m.currentOp != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", m.currentOp))
		}

	case StageRunRules:
		if m.ruleCount > 0 {
			pct := float64(m.rulesDone) / float64(m.ruleCount)
			sb.WriteString(m.progress.ViewAs(pct))
			sb.WriteString(fmt.Sprintf(" %d/%d rules, %s\n", m.rulesDone, m.ruleCount, plural(m.findings, "finding")))
			sb.WriteString(m.categoryLine())
			sb.WriteString("\n")
		}
		sb.WriteString(m.spinner.View())
		sb.WriteString(" ")
		if m.currentOp != "" {
			sb.WriteString(m.currentOp)
		} else {
			sb.WriteString("Running rules...")
		}
	}

	return sb.String()
}

var (
	categoryDone    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	categoryActive  = lipgloss.NewStyle().Bold(true)
	categoryPending = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	categoryFound   = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
)

// categoryLine renders "layout 3/7 (2)  contrast 0/2 ..." with the count of
// findings in parentheses once a category has any.
func (m Model) categoryLine() string {
	parts := make([]string, 0, len(m.categories))
	for _, cp := range m.categories {
		style := categoryPending
		switch {
		case cp.done == cp.total:
			style = categoryDone
		case cp.category == m.current:
			style = categoryActive
		}
		part := style.Render(fmt.Sprintf("%s %d/%d", cp.category, cp.done, cp.total))
		if cp.found > 0 {
			part += categoryFound.Render(fmt.Sprintf(" (%d)", cp.found))
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "  ")
}

// summary is left on screen once the program exits. It is empty when the
// run was interrupted or no rules ran.
func (m Model) summary() string {
	if m.err != nil || m.stage != StageDone || m.ruleCount == 0 {
		return ""
	}
	return categoryDone.Render(fmt.Sprintf("Ran %d rules: %s, %s",
		m.rulesDone, plural(m.findings, "finding"), plural(m.diagnostics, "diagnostic"))) + "\n"
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
