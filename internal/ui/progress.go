package ui

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pthm/widgetlint/internal/rules"
)

// ProgressController manages the bubbletea program for progress display.
// It satisfies rules.Observer, and every method is a no-op on a nil receiver
// so callers need not check whether progress is shown.
type ProgressController struct {
	ui      *UI
	program *tea.Program
}

// StartProgress starts the progress display if in interactive mode
// Returns nil if not in interactive mode
func (ui *UI) StartProgress() *ProgressController {
	if ui.Mode != OutputModeInteractive {
		return nil
	}

	m := NewModel()
	p := tea.NewProgram(m, tea.WithOutput(ui.ErrWriter))

	ctrl := &ProgressController{
		ui:      ui,
		program: p,
	}

	// Rendering errors only affect the display, never the analysis.
	go func() {
		_, _ = p.Run()
	}()

	return ctrl
}

// SetStage updates the current stage
func (pc *ProgressController) SetStage(stage Stage) {
	if pc != nil && pc.program != nil {
		pc.program.Send(StageMsg(stage))
	}
}

// SetOperation updates the current operation description
func (pc *ProgressController) SetOperation(op string) {
	if pc != nil && pc.program != nil {
		pc.program.Send(OperationMsg(op))
	}
}

// SetPlan announces the rules about to run so progress can be shown per
// report category.
func (pc *ProgressController) SetPlan(plan []rules.Rule) {
	if pc != nil && pc.program != nil {
		cats := make(PlanMsg, len(plan))
		for i, r := range plan {
			cats[i] = rules.CategoryOf(r)
		}
		pc.program.Send(cats)
	}
}

// RuleStart indicates a rule has started
func (pc *ProgressController) RuleStart(name string, category rules.Category) {
	if pc != nil && pc.program != nil {
		pc.program.Send(RuleStartMsg{Name: name, Category: category})
	}
}

// RuleDone indicates a rule has completed with found findings
func (pc *ProgressController) RuleDone(found int) {
	if pc != nil && pc.program != nil {
		pc.program.Send(RuleDoneMsg{Found: found})
	}
}

// Done signals that all work is complete. A successful run leaves a one-line
// summary including the number of diagnostics the pass recorded.
func (pc *ProgressController) Done(diagnostics int, err error) {
	if pc != nil && pc.program != nil {
		pc.program.Send(DoneMsg{Diagnostics: diagnostics, Err: err})
		pc.program.Wait()
	}
}

// SimpleSpinner provides a simple spinner for short operations
// without the full progress tracking
type SimpleSpinner struct {
	ui      *UI
	program *tea.Program
	done    chan struct{}
}

// simpleSpinnerModel is a minimal model for just showing a spinner
type simpleSpinnerModel struct {
	message  string
	quitting bool
}

func (m simpleSpinnerModel) Init() tea.Cmd {
	return nil
}

func (m simpleSpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
	case DoneMsg:
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m simpleSpinnerModel) View() string {
	if m.quitting {
		return ""
	}
	return fmt.Sprintf("  %s", m.message)
}

// StartSimpleSpinner starts a simple spinner with a message
func (ui *UI) StartSimpleSpinner(w io.Writer, message string) *SimpleSpinner {
	if ui.Mode != OutputModeInteractive {
		// In non-interactive mode, just print the message
		fmt.Fprintf(w, "%s\n", message)
		return nil
	}

	m := simpleSpinnerModel{message: message}
	p := tea.NewProgram(m, tea.WithOutput(w))

	ss := &SimpleSpinner{
		ui:      ui,
		program: p,
		done:    make(chan struct{}),
	}

	go func() {
		_, _ = p.Run()
		close(ss.done)
	}()

	return ss
}

// Stop stops the simple spinner
func (ss *SimpleSpinner) Stop() {
	if ss != nil && ss.program != nil {
		ss.program.Send(DoneMsg{})
		<-ss.done
	}
}
